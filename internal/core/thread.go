package core

import "sync"

// Phase is the session lifecycle state. Transitions are strictly forward:
// active -> merging -> finished.
type Phase int

const (
	PhaseActive Phase = iota
	PhaseMerging
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseMerging:
		return "merging"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Side is the half of the shared canvas a participant may draw in.
// It derives from role at thread creation and is never renegotiated:
// the requester draws left, the receiver right.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// allows reports whether an origin x coordinate falls inside this side
// for the given canvas width.
func (s Side) allows(x, width float64) bool {
	mid := width / 2
	if s == SideLeft {
		return x < mid
	}
	return x >= mid
}

// participant binds a star to its owning connection and canvas side for
// the lifetime of a thread.
type participant struct {
	StarID string
	Conn   *Client
	Side   Side
}

// Thread is a matched, time-boxed pairing between two stars. All fields
// are owned by the hub goroutine except the tick stop channel.
type Thread struct {
	ID          string
	Requester   participant
	Receiver    participant
	Phase       Phase
	SecondsLeft int

	mergeLeft  int
	transcript []ChatMessage
	viewers    map[*Client]struct{}

	stopTick chan struct{}
	stopOnce sync.Once
}

func newThread(id string, requester, receiver participant, seconds int) *Thread {
	return &Thread{
		ID:          id,
		Requester:   requester,
		Receiver:    receiver,
		Phase:       PhaseActive,
		SecondsLeft: seconds,
		viewers:     make(map[*Client]struct{}),
		stopTick:    make(chan struct{}),
	}
}

// stop cancels the thread's countdown ticker. Safe to call repeatedly.
func (t *Thread) stop() {
	t.stopOnce.Do(func() { close(t.stopTick) })
}

// isOwner reports whether c is one of the two owning connections.
func (t *Thread) isOwner(c *Client) bool {
	return t.Requester.Conn == c || t.Receiver.Conn == c
}

// participantStar reports whether starID belongs to either participant.
func (t *Thread) participantStar(starID string) bool {
	return starID != "" && (starID == t.Requester.StarID || starID == t.Receiver.StarID)
}

// sideFor returns the canvas side assigned to starID's role.
func (t *Thread) sideFor(starID string) Side {
	if starID == t.Requester.StarID {
		return t.Requester.Side
	}
	return t.Receiver.Side
}

func (t *Thread) join(c *Client) {
	t.viewers[c] = struct{}{}
}

func (t *Thread) leave(c *Client) {
	delete(t.viewers, c)
}

func (t *Thread) viewing(c *Client) bool {
	_, ok := t.viewers[c]
	return ok
}

// broadcast sends an event to every viewing connection.
func (t *Thread) broadcast(ev *Event) {
	for c := range t.viewers {
		c.send(ev)
	}
}

// broadcastExcept sends an event to every viewing connection but one.
func (t *Thread) broadcastExcept(skip *Client, ev *Event) {
	for c := range t.viewers {
		if c != skip {
			c.send(ev)
		}
	}
}
