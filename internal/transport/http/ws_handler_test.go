package http

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/unsentapp/unsent-server/internal/core"
	"github.com/unsentapp/unsent-server/internal/proto"
	"github.com/unsentapp/unsent-server/internal/store"
)

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t, newMemStore())

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWebSocketThreadLifecycle(t *testing.T) {
	st := newMemStore()
	_, err := st.CreateStar(context.Background(), &store.Star{
		ID: "star-a", Text: "i never told you", Emotion: "regret",
	})
	if err != nil {
		t.Fatalf("seed star: %v", err)
	}
	_, err = st.CreateStar(context.Background(), &store.Star{
		ID: "star-b", Text: "thank you", Emotion: "gratitude",
	})
	if err != nil {
		t.Fatalf("seed star: %v", err)
	}

	ts := startTestServer(t, st)
	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connA, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial A: %v", err)
	}
	defer connA.Close(websocket.StatusNormalClosure, "done")

	connB, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial B: %v", err)
	}
	defer connB.Close(websocket.StatusNormalClosure, "done")

	sendWS(ctx, t, connA, proto.InboundTypeHello, proto.HelloData{ClientID: "tab-a"})
	sendWS(ctx, t, connB, proto.InboundTypeHello, proto.HelloData{ClientID: "tab-b"})

	sendWS(ctx, t, connA, proto.InboundTypeRegisterStar, proto.RegisterStarData{StarID: "star-a"})
	sendWS(ctx, t, connB, proto.InboundTypeRegisterStar, proto.RegisterStarData{StarID: "star-b"})

	// A sees B's star come online (or already finds it in the snapshot).
	sendWS(ctx, t, connA, proto.InboundTypeGetActiveStars, struct{}{})
	snap := awaitEvent(ctx, t, connA, "active_stars")
	var active proto.EventActiveStars
	if err := json.Unmarshal(snap.Data, &active); err != nil {
		t.Fatalf("unmarshal active stars: %v", err)
	}
	if len(active.StarIDs) == 0 {
		t.Fatalf("expected at least one active star, got %v", active.StarIDs)
	}

	// Handshake: A requests B, B accepts.
	sendWS(ctx, t, connA, proto.InboundTypeRequestThread, proto.RequestThreadData{
		StarID: "star-b", RequesterStarID: "star-a",
	})
	reqFrame := awaitEvent(ctx, t, connB, "thread_request")
	var req proto.EventThreadRequest
	if err := json.Unmarshal(reqFrame.Data, &req); err != nil {
		t.Fatalf("unmarshal thread request: %v", err)
	}
	if req.RequesterStar.ID != "star-a" || req.RequesterStar.Text != "i never told you" {
		t.Fatalf("request missing full requester star: %+v", req.RequesterStar)
	}

	sendWS(ctx, t, connB, proto.InboundTypeRespondThread, proto.RespondThreadData{
		RequestID: req.RequestID, Accepted: true,
	})

	var accA, accB proto.EventThreadAccepted
	if err := json.Unmarshal(awaitEvent(ctx, t, connA, "thread_accepted").Data, &accA); err != nil {
		t.Fatalf("unmarshal accepted A: %v", err)
	}
	if err := json.Unmarshal(awaitEvent(ctx, t, connB, "thread_accepted").Data, &accB); err != nil {
		t.Fatalf("unmarshal accepted B: %v", err)
	}
	if accA.ThreadID == "" || accA.ThreadID != accB.ThreadID {
		t.Fatalf("thread ids differ: %q vs %q", accA.ThreadID, accB.ThreadID)
	}
	if accA.Side != "left" || accB.Side != "right" {
		t.Fatalf("unexpected sides: %q / %q", accA.Side, accB.Side)
	}
	if accA.SecondsLeft != 263 {
		t.Fatalf("unexpected session seconds: %d", accA.SecondsLeft)
	}

	threadID := accA.ThreadID
	sendWS(ctx, t, connA, proto.InboundTypeJoinThread, proto.ThreadRefData{ThreadID: threadID})
	sendWS(ctx, t, connB, proto.InboundTypeJoinThread, proto.ThreadRefData{ThreadID: threadID})
	awaitEvent(ctx, t, connA, "chat_history")
	awaitEvent(ctx, t, connB, "chat_history")

	// A draws on the left; B observes the identical stroke.
	sendWS(ctx, t, connA, proto.InboundTypeDraw, proto.DrawData{
		ThreadID: threadID, FromX: 10, FromY: 20, ToX: 30, ToY: 40, Color: "#ffffff",
	})
	var stroke proto.DrawData
	if err := json.Unmarshal(awaitEvent(ctx, t, connB, "draw").Data, &stroke); err != nil {
		t.Fatalf("unmarshal draw: %v", err)
	}
	if stroke.FromX != 10 || stroke.ToX != 30 || stroke.Color != "#ffffff" {
		t.Fatalf("stroke not forwarded verbatim: %+v", stroke)
	}

	// B draws in its right region; relayed to A.
	sendWS(ctx, t, connB, proto.InboundTypeDraw, proto.DrawData{
		ThreadID: threadID, FromX: 410, FromY: 20, ToX: 430, ToY: 40, Color: "#4ECDC4",
	})
	if err := json.Unmarshal(awaitEvent(ctx, t, connA, "draw").Data, &stroke); err != nil {
		t.Fatalf("unmarshal draw: %v", err)
	}
	if stroke.FromX != 410 {
		t.Fatalf("unexpected relayed stroke: %+v", stroke)
	}

	// B drawing on A's side is rejected server-side.
	sendWS(ctx, t, connB, proto.InboundTypeDraw, proto.DrawData{
		ThreadID: threadID, FromX: 10, FromY: 20, ToX: 30, ToY: 40, Color: "#ffffff",
	})
	awaitError(ctx, t, connB, core.ErrCodeOutOfBounds)

	// Chat echoes to both sides.
	sendWS(ctx, t, connA, proto.InboundTypeChatMessage, proto.ChatData{
		ThreadID: threadID, Text: "hello out there",
	})
	var msgA, msgB proto.EventChatMessage
	if err := json.Unmarshal(awaitEvent(ctx, t, connA, "chat_message").Data, &msgA); err != nil {
		t.Fatalf("unmarshal chat A: %v", err)
	}
	if err := json.Unmarshal(awaitEvent(ctx, t, connB, "chat_message").Data, &msgB); err != nil {
		t.Fatalf("unmarshal chat B: %v", err)
	}
	if msgA.Text != "hello out there" || msgB.Text != "hello out there" {
		t.Fatalf("chat not echoed to both: %+v / %+v", msgA, msgB)
	}
	if msgA.SenderSID == "" || msgA.SenderSID != msgB.SenderSID {
		t.Fatalf("sender ids inconsistent: %q / %q", msgA.SenderSID, msgB.SenderSID)
	}

	// Peer disconnect tears the thread down.
	connB.Close(websocket.StatusNormalClosure, "leaving")
	awaitEvent(ctx, t, connA, "peer_left")
}

func TestWebSocketRequestOfflineTarget(t *testing.T) {
	st := newMemStore()
	_, err := st.CreateStar(context.Background(), &store.Star{ID: "star-a", Text: "hi"})
	if err != nil {
		t.Fatalf("seed star: %v", err)
	}

	ts := startTestServer(t, st)
	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	sendWS(ctx, t, conn, proto.InboundTypeRegisterStar, proto.RegisterStarData{StarID: "star-a"})
	sendWS(ctx, t, conn, proto.InboundTypeRequestThread, proto.RequestThreadData{
		StarID: "star-ghost", RequesterStarID: "star-a",
	})
	awaitError(ctx, t, conn, core.ErrCodeTargetOffline)
}

func TestWebSocketUnknownMessageType(t *testing.T) {
	ts := startTestServer(t, newMemStore())
	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	sendWS(ctx, t, conn, "launch_rocket", struct{}{})
	awaitError(ctx, t, conn, "invalid_message")
}
