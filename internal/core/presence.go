package core

// presenceSet tracks which stars are online, reference-counted by the
// number of live connections claiming each star. Two tabs may claim the
// same star; it goes offline only when the last claim is released.
// All access happens on the hub goroutine.
type presenceSet struct {
	refs map[string]int
}

func newPresenceSet() *presenceSet {
	return &presenceSet{refs: make(map[string]int)}
}

// add registers one claim. Returns true if the star just came online.
func (p *presenceSet) add(starID string) bool {
	p.refs[starID]++
	return p.refs[starID] == 1
}

// remove releases one claim. Returns true if the star just went offline.
func (p *presenceSet) remove(starID string) bool {
	n, ok := p.refs[starID]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(p.refs, starID)
		return true
	}
	p.refs[starID] = n - 1
	return false
}

func (p *presenceSet) contains(starID string) bool {
	return p.refs[starID] > 0
}

// snapshot returns the set of online star ids.
func (p *presenceSet) snapshot() []string {
	ids := make([]string, 0, len(p.refs))
	for id := range p.refs {
		ids = append(ids, id)
	}
	return ids
}
