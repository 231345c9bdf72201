package core

import "sync"

// Client is a live connection as seen by the core layer. StarID is the
// star this connection currently claims; it is read and written only by
// the hub goroutine.
type Client struct {
	ID       string // connection id, server-assigned
	ClientID string // tab-supplied identity, not authenticated
	StarID   string
	Commands chan *Command
	Events   chan *Event

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 32),
		done:     make(chan struct{}),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// send delivers an event without blocking. Slow consumers drop events
// rather than stalling the hub.
func (c *Client) send(ev *Event) {
	select {
	case c.Events <- ev:
	default:
	}
}
