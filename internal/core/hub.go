package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config holds the session design constants. Tests shrink the tick
// interval to drive phase transitions quickly.
type Config struct {
	SessionSeconds int
	MergeSeconds   int
	TickInterval   time.Duration
	CanvasWidth    float64
}

// DefaultConfig returns the production session constants.
func DefaultConfig() Config {
	return Config{
		SessionSeconds: 263,
		MergeSeconds:   2,
		TickInterval:   time.Second,
		CanvasWidth:    800,
	}
}

type clientCommand struct {
	client *Client
	cmd    *Command
}

type requestResolution struct {
	requestID string
	star      *Star
	err       error
}

// Hub is the single authority over presence, pending thread requests,
// and live threads. All mutable coordination state is owned by the Run
// goroutine and mutated only through channel messages, so every
// operation is atomic with respect to the others.
type Hub struct {
	cfg   Config
	stars StarSource
	log   zerolog.Logger

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand
	ticks      chan string
	resolved   chan requestResolution

	ctx      context.Context
	clients  map[*Client]struct{}
	presence *presenceSet
	broker   *matchBroker
	threads  map[string]*Thread
}

// NewHub creates a hub. stars may be nil, in which case thread requests
// carry only the requester star id.
func NewHub(stars StarSource, logger *zerolog.Logger, cfg Config) *Hub {
	lg := zerolog.Nop()
	if logger != nil {
		lg = logger.With().Str("component", "hub").Logger()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.CanvasWidth <= 0 {
		cfg.CanvasWidth = 800
	}
	return &Hub{
		cfg:        cfg,
		stars:      stars,
		log:        lg,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan clientCommand, 64),
		ticks:      make(chan string, 64),
		resolved:   make(chan requestResolution, 16),
		clients:    make(map[*Client]struct{}),
		presence:   newPresenceSet(),
		broker:     newMatchBroker(),
		threads:    make(map[string]*Thread),
	}
}

// RegisterClient adds a connection and starts pumping its commands into
// the hub loop. The pump stops when the client is unregistered.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
	go func() {
		for {
			select {
			case cmd := <-c.Commands:
				select {
				case h.commands <- clientCommand{client: c, cmd: cmd}:
				case <-c.done:
					return
				}
			case <-c.done:
				return
			}
		}
	}()
}

// UnregisterClient removes a connection and runs its disconnect cascade.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Run processes hub messages until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.ctx = ctx
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.log.Debug().Str("conn_id", c.ID).Msg("client registered")
		case c := <-h.unregister:
			h.handleDisconnect(c)
		case cc := <-h.commands:
			h.handleCommand(cc.client, cc.cmd)
		case threadID := <-h.ticks:
			h.handleTick(threadID)
		case res := <-h.resolved:
			h.handleResolved(res)
		case <-ctx.Done():
			for _, t := range h.threads {
				t.stop()
			}
			return
		}
	}
}

func (h *Hub) handleCommand(c *Client, cmd *Command) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	switch cmd.Kind {
	case CommandHello:
		c.ClientID = cmd.ClientID
	case CommandGetActiveStars:
		c.send(&Event{Kind: EventActiveStars, StarIDs: h.presence.snapshot()})
	case CommandRegisterStar:
		h.handleRegisterStar(c, cmd.StarID)
	case CommandDeregisterStar:
		h.releaseStar(c)
	case CommandRequestThread:
		h.handleRequestThread(c, cmd.RequesterStarID, cmd.StarID)
	case CommandRespondThread:
		h.handleRespondThread(c, cmd.RequestID, cmd.Accepted)
	case CommandJoinThread:
		h.handleJoinThread(c, cmd.ThreadID)
	case CommandLeaveThread:
		h.handleLeaveThread(c, cmd.ThreadID)
	case CommandDraw:
		h.handleDraw(c, cmd.Stroke)
	case CommandChatMessage:
		h.handleChat(c, cmd.ThreadID, cmd.Text)
	}
}

// ---- presence ----

func (h *Hub) handleRegisterStar(c *Client, starID string) {
	if starID == "" {
		h.sendError(c, ErrCodeBadRequest, "star_id is required")
		return
	}
	if c.StarID == starID {
		return
	}
	if c.StarID != "" {
		h.releaseStar(c)
	}
	c.StarID = starID
	if h.presence.add(starID) {
		h.broadcastExcept(c, &Event{Kind: EventStarOnline, StarID: starID})
		h.log.Debug().Str("star_id", starID).Msg("star online")
	}
}

// releaseStar drops the connection's star claim and cascades: offline
// broadcast when the last claim is gone, plus cancellation of pending
// requests that can no longer complete.
func (h *Hub) releaseStar(c *Client) {
	starID := c.StarID
	if starID == "" {
		return
	}
	c.StarID = ""
	h.broker.cancelByRequester(c)
	if !h.presence.remove(starID) {
		return
	}
	// Requesters of a vanished target get the same signal as a human
	// rejection, so presence timing does not leak.
	for _, req := range h.broker.cancelByTarget(starID) {
		req.Requester.send(&Event{Kind: EventThreadDeclined, RequestID: req.ID})
	}
	h.broadcastAll(&Event{Kind: EventStarsOffline, StarIDs: []string{starID}})
	h.log.Debug().Str("star_id", starID).Msg("star offline")
}

// ---- matchmaking ----

func (h *Hub) handleRequestThread(c *Client, requesterStarID, targetStarID string) {
	if requesterStarID == "" || targetStarID == "" {
		h.sendError(c, ErrCodeBadRequest, "star_id and requester_star_id are required")
		return
	}
	if requesterStarID == targetStarID || c.StarID == targetStarID {
		h.sendError(c, ErrCodeSelfConnect, "cannot connect to own star")
		return
	}
	if !h.presence.contains(targetStarID) {
		h.sendError(c, ErrCodeTargetOffline, "target star is offline")
		return
	}
	if h.broker.hasPair(requesterStarID, targetStarID) {
		h.sendError(c, ErrCodeDuplicateRequest, "request already pending for this star")
		return
	}

	req := &threadRequest{
		ID:              uuid.NewString(),
		RequesterStarID: requesterStarID,
		TargetStarID:    targetStarID,
		Requester:       c,
	}
	h.broker.add(req)
	h.log.Debug().
		Str("request_id", req.ID).
		Str("requester_star", requesterStarID).
		Str("target_star", targetStarID).
		Msg("thread requested")

	// Load the full requester star off-loop; a slow store must not
	// stall presence or matchmaking.
	go h.fetchRequesterStar(req.ID, requesterStarID)
}

func (h *Hub) fetchRequesterStar(requestID, starID string) {
	var (
		star *Star
		err  error
	)
	if h.stars != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		star, err = h.stars.GetStar(ctx, starID)
	} else {
		star = &Star{ID: starID}
	}

	res := requestResolution{requestID: requestID, star: star, err: err}
	select {
	case h.resolved <- res:
	case <-h.ctx.Done():
	}
}

// handleResolved delivers a pending request to the target's connections
// once the requester star has been loaded. The request may have been
// cancelled or the target gone offline in the meantime.
func (h *Hub) handleResolved(res requestResolution) {
	req, ok := h.broker.get(res.requestID)
	if !ok {
		return
	}
	if res.err != nil || res.star == nil {
		h.broker.resolve(res.requestID)
		h.log.Warn().Err(res.err).Str("request_id", res.requestID).Msg("requester star load failed")
		h.sendError(req.Requester, ErrCodeStarUnavailable, "could not load star data")
		return
	}
	if !h.presence.contains(req.TargetStarID) {
		h.broker.resolve(res.requestID)
		req.Requester.send(&Event{Kind: EventThreadDeclined, RequestID: req.ID})
		return
	}

	ev := &Event{Kind: EventThreadRequest, RequestID: req.ID, RequesterStar: res.star}
	for c := range h.clients {
		if c.StarID == req.TargetStarID {
			c.send(ev)
		}
	}
}

func (h *Hub) handleRespondThread(c *Client, requestID string, accepted bool) {
	req, ok := h.broker.get(requestID)
	if !ok || c.StarID != req.TargetStarID {
		// Already resolved by another responder, or not ours to answer.
		h.sendError(c, ErrCodeUnknownRequest, "no pending request with this id")
		return
	}
	h.broker.resolve(requestID)

	if !accepted {
		req.Requester.send(&Event{Kind: EventThreadDeclined, RequestID: req.ID})
		h.log.Debug().Str("request_id", requestID).Msg("thread declined")
		return
	}

	t := newThread(
		uuid.NewString(),
		participant{StarID: req.RequesterStarID, Conn: req.Requester, Side: SideLeft},
		participant{StarID: req.TargetStarID, Conn: c, Side: SideRight},
		h.cfg.SessionSeconds,
	)
	h.threads[t.ID] = t
	h.startTicker(t)

	req.Requester.send(&Event{
		Kind: EventThreadAccepted, ThreadID: t.ID,
		Side: t.Requester.Side, SecondsLeft: t.SecondsLeft,
	})
	c.send(&Event{
		Kind: EventThreadAccepted, ThreadID: t.ID,
		Side: t.Receiver.Side, SecondsLeft: t.SecondsLeft,
	})
	h.log.Info().
		Str("thread_id", t.ID).
		Str("requester_star", t.Requester.StarID).
		Str("receiver_star", t.Receiver.StarID).
		Msg("thread accepted")
}

// ---- session lifecycle ----

func (h *Hub) handleJoinThread(c *Client, threadID string) {
	t, ok := h.threads[threadID]
	if !ok {
		h.sendError(c, ErrCodeThreadNotFound, "thread not found")
		return
	}
	if !t.participantStar(c.StarID) {
		h.sendError(c, ErrCodeNotAParticipant, "not a participant of this thread")
		return
	}
	t.join(c)

	history := make([]ChatMessage, len(t.transcript))
	copy(history, t.transcript)
	c.send(&Event{Kind: EventChatHistory, ThreadID: t.ID, Messages: history})
}

func (h *Hub) handleLeaveThread(c *Client, threadID string) {
	t, ok := h.threads[threadID]
	if !ok {
		return
	}
	if !t.viewing(c) {
		return
	}
	t.leave(c)

	// In the terminal phase an owner leaving closes the session for
	// both sides.
	if t.Phase == PhaseFinished && t.isOwner(c) {
		h.destroyThread(t, &Event{Kind: EventSessionEnded, ThreadID: t.ID})
		return
	}
	if len(t.viewers) == 0 {
		h.destroyThread(t, nil)
	}
}

func (h *Hub) startTicker(t *Thread) {
	ticker := time.NewTicker(h.cfg.TickInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case h.ticks <- t.ID:
				case <-t.stopTick:
					return
				}
			case <-t.stopTick:
				return
			}
		}
	}()
}

func (h *Hub) handleTick(threadID string) {
	t, ok := h.threads[threadID]
	if !ok {
		return // stale tick from a destroyed thread
	}
	switch t.Phase {
	case PhaseActive:
		t.SecondsLeft--
		if t.SecondsLeft > 0 {
			return
		}
		t.SecondsLeft = 0
		t.Phase = PhaseMerging
		t.mergeLeft = h.cfg.MergeSeconds
		t.broadcast(&Event{Kind: EventSessionPhase, ThreadID: t.ID, Phase: PhaseMerging})
		h.log.Debug().Str("thread_id", t.ID).Msg("thread merging")
	case PhaseMerging:
		t.mergeLeft--
		if t.mergeLeft > 0 {
			return
		}
		t.Phase = PhaseFinished
		t.stop()
		t.broadcast(&Event{Kind: EventSessionPhase, ThreadID: t.ID, Phase: PhaseFinished})
		h.log.Debug().Str("thread_id", t.ID).Msg("thread finished")
	case PhaseFinished:
	}
}

// destroyThread removes a thread and cancels its ticker. If notify is
// non-nil it is sent to every remaining viewer.
func (h *Hub) destroyThread(t *Thread, notify *Event) {
	delete(h.threads, t.ID)
	t.stop()
	if notify != nil {
		t.broadcast(notify)
	}
	h.log.Debug().Str("thread_id", t.ID).Msg("thread destroyed")
}

// ---- canvas and chat ----

func (h *Hub) handleDraw(c *Client, stroke *Stroke) {
	if stroke == nil {
		h.sendError(c, ErrCodeBadRequest, "stroke is required")
		return
	}
	t, ok := h.threads[stroke.ThreadID]
	if !ok {
		h.sendError(c, ErrCodeThreadNotFound, "thread not found")
		return
	}
	if !t.viewing(c) || !t.participantStar(c.StarID) {
		h.sendError(c, ErrCodeNotAParticipant, "not a participant of this thread")
		return
	}
	if t.Phase != PhaseActive {
		h.sendError(c, ErrCodeThreadClosed, "drawing is closed for this thread")
		return
	}
	// Re-validate the side server-side; the client boundary check is a
	// UX aid, not a trust boundary.
	if !t.sideFor(c.StarID).allows(stroke.FromX, h.cfg.CanvasWidth) {
		h.sendError(c, ErrCodeOutOfBounds, "stroke origin outside assigned side")
		return
	}
	t.broadcastExcept(c, &Event{Kind: EventDraw, ThreadID: t.ID, Stroke: stroke})
}

func (h *Hub) handleChat(c *Client, threadID, text string) {
	if text == "" {
		h.sendError(c, ErrCodeBadRequest, "text is required")
		return
	}
	t, ok := h.threads[threadID]
	if !ok {
		h.sendError(c, ErrCodeThreadNotFound, "thread not found")
		return
	}
	if !t.viewing(c) || !t.participantStar(c.StarID) {
		h.sendError(c, ErrCodeNotAParticipant, "not a participant of this thread")
		return
	}

	msg := ChatMessage{
		ThreadID:     t.ID,
		SenderConnID: c.ID,
		SenderStarID: c.StarID,
		Text:         text,
		SentAt:       time.Now(),
	}
	t.transcript = append(t.transcript, msg)
	// Echoed to the sender too: the transcript is the single source of
	// truth and the sender matches on identity, not suppression.
	t.broadcast(&Event{Kind: EventChatMessage, ThreadID: t.ID, Message: &msg})
}

// ---- disconnect cascade ----

func (h *Hub) handleDisconnect(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.close()

	// Requests authored by this connection die with it even when it
	// never claimed a star of its own.
	h.broker.cancelByRequester(c)
	h.releaseStar(c)

	for _, t := range h.threads {
		if t.isOwner(c) {
			t.leave(c)
			h.destroyThread(t, &Event{Kind: EventPeerLeft, ThreadID: t.ID})
		} else if t.viewing(c) {
			t.leave(c)
			if len(t.viewers) == 0 {
				h.destroyThread(t, nil)
			}
		}
	}
	h.log.Debug().Str("conn_id", c.ID).Msg("client disconnected")
}

// ---- helpers ----

func (h *Hub) sendError(c *Client, code, msg string) {
	c.send(&Event{Kind: EventError, Error: coreError(code, msg)})
}

func (h *Hub) broadcastAll(ev *Event) {
	for c := range h.clients {
		c.send(ev)
	}
}

func (h *Hub) broadcastExcept(skip *Client, ev *Event) {
	for c := range h.clients {
		if c != skip {
			c.send(ev)
		}
	}
}
