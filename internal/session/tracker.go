package session

import (
	"sync"

	"github.com/blinkforge/blinkforge-api/internal/domain/entity"
)

// State is a snapshot of the authenticated session: the current user (nil
// when signed out) and whether the initial auth resolution is still pending.
type State struct {
	User    *entity.User
	Loading bool
}

// SignedIn reports whether the state carries a live user.
func (s State) SignedIn() bool {
	return s.User != nil
}

// Tracker is the single source of truth for auth state. Sign-in and sign-out
// never mutate consumer state directly; they publish here and every consumer
// observes the same notification. User and loading are always replaced
// together under one lock, so no observer can see a half-updated state.
type Tracker struct {
	mu    sync.Mutex
	state State
	subs  map[int]func(State)
	next  int
}

// NewTracker returns a tracker in the initial loading state.
func NewTracker() *Tracker {
	return &Tracker{
		state: State{Loading: true},
		subs:  make(map[int]func(State)),
	}
}

// Current returns the latest published state.
func (t *Tracker) Current() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Subscribe registers fn for every subsequent state change and returns an
// unsubscribe func. Unsubscribing more than once is harmless; every exit
// path of a consumer can call it unconditionally.
func (t *Tracker) Subscribe(fn func(State)) func() {
	t.mu.Lock()
	id := t.next
	t.next++
	t.subs[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

// Publish atomically replaces the session state and notifies subscribers.
// A nil user means signed out. Loading is always cleared: once any auth
// notification has arrived, the session is resolved.
func (t *Tracker) Publish(user *entity.User) {
	t.mu.Lock()
	t.state = State{User: user, Loading: false}
	st := t.state
	fns := make([]func(State), 0, len(t.subs))
	for _, fn := range t.subs {
		fns = append(fns, fn)
	}
	t.mu.Unlock()

	// Callbacks run outside the lock so a subscriber may unsubscribe or
	// read Current without deadlocking.
	for _, fn := range fns {
		fn(st)
	}
}
