package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	InboundTypeHello          = "hello"
	InboundTypeGetActiveStars = "get_active_stars"
	InboundTypeRegisterStar   = "register_star"
	InboundTypeDeregisterStar = "deregister_star"
	InboundTypeRequestThread  = "request_thread"
	InboundTypeRespondThread  = "respond_thread"
	InboundTypeJoinThread     = "join_thread"
	InboundTypeLeaveThread    = "leave_thread"
	InboundTypeDraw           = "draw"
	InboundTypeChatMessage    = "chat_message"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// HelloData is sent by the client to introduce its tab identity.
type HelloData struct {
	ClientID string `json:"client_id"`
	Protocol int    `json:"protocol,omitempty"`
}

// RegisterStarData claims a star as the connection's current star.
type RegisterStarData struct {
	StarID string `json:"star_id"`
}

// RequestThreadData asks the owner of star_id for a session.
type RequestThreadData struct {
	StarID          string `json:"star_id"`
	RequesterStarID string `json:"requester_star_id"`
}

// RespondThreadData accepts or rejects a pending request.
type RespondThreadData struct {
	RequestID string `json:"request_id"`
	Accepted  bool   `json:"accepted"`
}

// ThreadRefData addresses an existing thread.
type ThreadRefData struct {
	ThreadID string `json:"thread_id"`
}

// DrawData is a canvas stroke, both inbound and relayed outbound.
type DrawData struct {
	ThreadID string  `json:"thread_id"`
	FromX    float64 `json:"fromX"`
	FromY    float64 `json:"fromY"`
	ToX      float64 `json:"toX"`
	ToY      float64 `json:"toY"`
	Color    string  `json:"color"`
}

// ChatData is a chat message from the client.
type ChatData struct {
	ThreadID string `json:"thread_id"`
	Text     string `json:"text"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// StarPayload is a full star record carried inside events.
type StarPayload struct {
	ID              string  `json:"id"`
	Text            string  `json:"text"`
	Emotion         string  `json:"emotion"`
	EmotionScore    float64 `json:"emotion_score"`
	Lat             float64 `json:"lat"`
	Lng             float64 `json:"lng"`
	ConstellationID string  `json:"constellation_id"`
	CreatedAt       int64   `json:"created_at"`
}

// EventActiveStars is the presence snapshot.
type EventActiveStars struct {
	StarIDs []string `json:"star_ids"`
}

// EventStarOnline announces a star coming online.
type EventStarOnline struct {
	StarID string `json:"star_id"`
}

// EventStarsOffline announces stars going offline, possibly batched.
type EventStarsOffline struct {
	StarIDs []string `json:"star_ids"`
}

// EventThreadRequest delivers an incoming request with the requester's
// full star, so the receiver can render it without another round trip.
type EventThreadRequest struct {
	RequestID     string      `json:"request_id"`
	RequesterStar StarPayload `json:"requester_star"`
}

// EventThreadAccepted tells a participant its thread, side, and budget.
type EventThreadAccepted struct {
	ThreadID    string `json:"thread_id"`
	Side        string `json:"side"`
	SecondsLeft int    `json:"seconds_left"`
}

// EventThreadDeclined tells the requester the request was rejected or
// the target vanished; the two are indistinguishable on the wire.
type EventThreadDeclined struct {
	RequestID string `json:"request_id,omitempty"`
}

// EventSessionPhase announces a server-driven phase transition.
type EventSessionPhase struct {
	ThreadID string `json:"thread_id"`
	Phase    string `json:"phase"`
}

// EventThreadClosed signals thread destruction (peer left or session
// ended).
type EventThreadClosed struct {
	ThreadID string `json:"thread_id"`
}

// EventChatMessage is a relayed chat message.
type EventChatMessage struct {
	ThreadID  string `json:"thread_id"`
	Text      string `json:"text"`
	SenderSID string `json:"sender_sid"`
	TS        int64  `json:"ts"`
}

// EventChatHistory replays the transcript on join.
type EventChatHistory struct {
	ThreadID string             `json:"thread_id"`
	Messages []EventChatMessage `json:"messages"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
