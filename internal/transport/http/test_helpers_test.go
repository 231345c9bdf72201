package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/unsentapp/unsent-server/internal/config"
	"github.com/unsentapp/unsent-server/internal/core"
	"github.com/unsentapp/unsent-server/internal/store"
)

// memStore is an in-memory store.Store for transport tests.
type memStore struct {
	mu    sync.Mutex
	stars map[string]store.Star
}

func newMemStore() *memStore {
	return &memStore{stars: make(map[string]store.Star)}
}

func (m *memStore) CreateStar(_ context.Context, star *store.Star) (*store.Star, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := *star
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	m.stars[s.ID] = s
	return &s, nil
}

func (m *memStore) GetStar(_ context.Context, id string) (*store.Star, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stars[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &s, nil
}

func (m *memStore) ListStars(_ context.Context) ([]store.Star, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]store.Star, 0, len(m.stars))
	for _, s := range m.stars {
		out = append(out, s)
	}
	return out, nil
}

func (m *memStore) ListStarsByEmotion(_ context.Context, emotion string) ([]store.Star, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Star
	for _, s := range m.stars {
		if s.Emotion == emotion {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) ListStarsByConstellation(_ context.Context, constellationID string) ([]store.Star, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Star
	for _, s := range m.stars {
		if s.ConstellationID == constellationID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) DeleteStarsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.stars {
		if s.CreatedAt.Before(cutoff) {
			delete(m.stars, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) Close() error { return nil }

type memStarSource struct {
	st *memStore
}

func (s memStarSource) GetStar(ctx context.Context, id string) (*core.Star, error) {
	star, err := s.st.GetStar(ctx, id)
	if err != nil {
		return nil, err
	}
	return &core.Star{
		ID: star.ID, Text: star.Text, Emotion: star.Emotion,
		EmotionScore: star.EmotionScore, Lat: star.Lat, Lng: star.Lng,
		ConstellationID: star.ConstellationID, CreatedAt: star.CreatedAt,
	}, nil
}

func startTestServer(t *testing.T, st *memStore) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()
	hub := core.NewHub(memStarSource{st: st}, &logger, core.Config{
		SessionSeconds: 263,
		MergeSeconds:   2,
		TickInterval:   50 * time.Millisecond,
		CanvasWidth:    800,
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := NewServer(hub, st, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func sendWS(ctx context.Context, t *testing.T, conn *websocket.Conn, msgType string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s: %v", msgType, err)
	}
	if err := wsjson.Write(ctx, conn, map[string]any{"type": msgType, "data": json.RawMessage(payload)}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

type outboundFrame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
	} `json:"error"`
}

// awaitEvent reads frames until one with the given event name arrives.
func awaitEvent(ctx context.Context, t *testing.T, conn *websocket.Conn, event string) outboundFrame {
	t.Helper()

	for {
		var frame outboundFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			t.Fatalf("read waiting for %s: %v", event, err)
		}
		if frame.Type == "event" && frame.Event == event {
			return frame
		}
	}
}

// awaitError reads frames until an error with the given code arrives.
func awaitError(ctx context.Context, t *testing.T, conn *websocket.Conn, code string) {
	t.Helper()

	for {
		var frame outboundFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			t.Fatalf("read waiting for error %s: %v", code, err)
		}
		if frame.Type == "error" && frame.Error != nil {
			if frame.Error.Code != code {
				t.Fatalf("expected error code %q, got %q", code, frame.Error.Code)
			}
			return
		}
	}
}
