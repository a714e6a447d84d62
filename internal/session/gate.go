package session

import "sync"

// Gate serializes logout. While a logout is in progress every other caller —
// API requests, refresh attempts, a second logout — must either fail fast or
// wait for the in-flight teardown instead of starting another one.
type Gate struct {
	mu     sync.Mutex
	active bool
	done   chan struct{}
}

// NewGate creates an inactive gate.
func NewGate() *Gate {
	return &Gate{}
}

// Begin activates the gate. first reports whether this caller initiated the
// logout and therefore owns the teardown; done is a shared channel closed when
// the initiating caller calls End. Callers with first == false wait on done.
func (g *Gate) Begin() (first bool, done <-chan struct{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active {
		return false, g.done
	}
	g.active = true
	g.done = make(chan struct{})
	return true, g.done
}

// End deactivates the gate and releases every waiter. Credentials must be
// cleared before End is called so that no waiter resumes against a half
// torn-down session. Calling End on an inactive gate is a no-op.
func (g *Gate) End() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.active {
		return
	}
	g.active = false
	close(g.done)
	g.done = nil
}

// Active reports whether a logout is in progress.
func (g *Gate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}
