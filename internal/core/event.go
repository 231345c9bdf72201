package core

import "time"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventActiveStars delivers a presence snapshot to one client.
	EventActiveStars EventKind = iota
	// EventStarOnline notifies that a star came online.
	EventStarOnline
	// EventStarsOffline notifies that one or more stars went offline.
	EventStarsOffline
	// EventThreadRequest delivers an incoming request with the full
	// requester star, so the receiver can render it without a round trip.
	EventThreadRequest
	// EventThreadAccepted notifies both sides that a thread was created.
	EventThreadAccepted
	// EventThreadDeclined notifies the requester of a rejection. Also
	// emitted when the target vanishes while pending; the two cases are
	// indistinguishable on the wire.
	EventThreadDeclined
	// EventSessionPhase announces a phase transition to thread viewers.
	EventSessionPhase
	// EventDraw relays a stroke to the other participant.
	EventDraw
	// EventChatHistory replays the transcript to a joining connection.
	EventChatHistory
	// EventChatMessage relays a chat message to both participants.
	EventChatMessage
	// EventPeerLeft notifies that the other participant disconnected and
	// the thread was destroyed.
	EventPeerLeft
	// EventSessionEnded notifies that the peer closed a finished thread.
	EventSessionEnded
	// EventError notifies a client about a domain error.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind          EventKind
	StarID        string
	StarIDs       []string
	RequestID     string
	RequesterStar *Star
	ThreadID      string
	Side          Side
	SecondsLeft   int
	Phase         Phase
	Stroke        *Stroke
	Message       *ChatMessage
	Messages      []ChatMessage
	Error         *CoreError
}

// ChatMessage is one entry in a thread's in-memory transcript.
type ChatMessage struct {
	ThreadID     string
	SenderConnID string
	SenderStarID string
	Text         string
	SentAt       time.Time
}
