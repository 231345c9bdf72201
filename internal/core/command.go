package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandHello introduces the tab-supplied client identity.
	CommandHello CommandKind = iota
	// CommandGetActiveStars requests a presence snapshot.
	CommandGetActiveStars
	// CommandRegisterStar claims a star as this connection's current star.
	CommandRegisterStar
	// CommandDeregisterStar releases the connection's current star.
	CommandDeregisterStar
	// CommandRequestThread asks a target star's owner for a session.
	CommandRequestThread
	// CommandRespondThread accepts or rejects a pending thread request.
	CommandRespondThread
	// CommandJoinThread starts viewing a matched thread.
	CommandJoinThread
	// CommandLeaveThread stops viewing a thread.
	CommandLeaveThread
	// CommandDraw relays a canvas stroke to the thread peer.
	CommandDraw
	// CommandChatMessage relays a chat message to both participants.
	CommandChatMessage
)

// Command represents an action requested by a client.
type Command struct {
	Kind            CommandKind
	ClientID        string
	StarID          string // register target or request target
	RequesterStarID string
	RequestID       string
	Accepted        bool
	ThreadID        string
	Stroke          *Stroke
	Text            string
}

// Stroke is an ephemeral drawing event. Strokes are validated, forwarded
// to the peer, and never stored.
type Stroke struct {
	ThreadID string
	FromX    float64
	FromY    float64
	ToX      float64
	ToY      float64
	Color    string
}
