package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStars struct {
	stars map[string]*Star
}

func (f fakeStars) GetStar(_ context.Context, id string) (*Star, error) {
	if s, ok := f.stars[id]; ok {
		return s, nil
	}
	return nil, errors.New("no such star")
}

func testConfig() Config {
	return Config{
		SessionSeconds: 60,
		MergeSeconds:   2,
		TickInterval:   10 * time.Millisecond,
		CanvasWidth:    800,
	}
}

func startHub(t *testing.T, stars StarSource, cfg Config) *Hub {
	t.Helper()

	hub := NewHub(stars, nil, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

// connect registers a client and optionally claims a star for it. The
// pump delivers commands in order, so a snapshot answer proves the hub
// has applied the registration before connect returns.
func connect(t *testing.T, hub *Hub, id, starID string) *Client {
	t.Helper()

	c := NewClient(id)
	hub.RegisterClient(c)
	if starID != "" {
		c.Commands <- &Command{Kind: CommandRegisterStar, StarID: starID}
		c.Commands <- &Command{Kind: CommandGetActiveStars}
		mustEvent(t, c.Events, EventActiveStars)
	}
	return c
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustError(t *testing.T, ch <-chan *Event, code string) *CoreError {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil || ev.Kind != EventError || ev.Error == nil {
				continue
			}
			if ev.Error.Code == code {
				return ev.Error
			}
			t.Fatalf("expected error code %q, got %q", code, ev.Error.Code)
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected error code %q not received", code)
	return nil
}
