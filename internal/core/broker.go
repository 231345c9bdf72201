package core

// threadRequest is a pending consent handshake between two stars.
type threadRequest struct {
	ID              string
	RequesterStarID string
	TargetStarID    string
	Requester       *Client
}

type pairKey struct {
	requesterStarID string
	targetStarID    string
}

// matchBroker holds pending thread requests. At most one pending request
// exists per (requester star, target star) pair. Resolution removes the
// request atomically with respect to other hub operations, so competing
// responders settle first-wins. All access happens on the hub goroutine.
type matchBroker struct {
	pending map[string]*threadRequest
	pairs   map[pairKey]string
}

func newMatchBroker() *matchBroker {
	return &matchBroker{
		pending: make(map[string]*threadRequest),
		pairs:   make(map[pairKey]string),
	}
}

// hasPair reports whether a request for this pair is already pending.
func (b *matchBroker) hasPair(requesterStarID, targetStarID string) bool {
	_, ok := b.pairs[pairKey{requesterStarID, targetStarID}]
	return ok
}

func (b *matchBroker) add(req *threadRequest) {
	b.pending[req.ID] = req
	b.pairs[pairKey{req.RequesterStarID, req.TargetStarID}] = req.ID
}

func (b *matchBroker) get(requestID string) (*threadRequest, bool) {
	req, ok := b.pending[requestID]
	return req, ok
}

// resolve removes a pending request. Returns false if it was already
// resolved, so later responders become no-ops.
func (b *matchBroker) resolve(requestID string) (*threadRequest, bool) {
	req, ok := b.pending[requestID]
	if !ok {
		return nil, false
	}
	delete(b.pending, requestID)
	delete(b.pairs, pairKey{req.RequesterStarID, req.TargetStarID})
	return req, true
}

// cancelByRequester drops all requests authored by the given connection.
func (b *matchBroker) cancelByRequester(c *Client) {
	for id, req := range b.pending {
		if req.Requester == c {
			delete(b.pending, id)
			delete(b.pairs, pairKey{req.RequesterStarID, req.TargetStarID})
		}
	}
}

// cancelByTarget drops all requests targeting the given star and returns
// them so the hub can notify their requesters.
func (b *matchBroker) cancelByTarget(targetStarID string) []*threadRequest {
	var cancelled []*threadRequest
	for id, req := range b.pending {
		if req.TargetStarID == targetStarID {
			delete(b.pending, id)
			delete(b.pairs, pairKey{req.RequesterStarID, req.TargetStarID})
			cancelled = append(cancelled, req)
		}
	}
	return cancelled
}
