package ui

import (
	"sync"

	"github.com/blinkforge/blinkforge-api/internal/session"
)

// View is one of the three top-level views a client can be on.
type View string

const (
	ViewHome      View = "home"
	ViewDashboard View = "dashboard"
	ViewPricing   View = "pricing"
)

// Known reports whether v names a real view.
func (v View) Known() bool {
	switch v {
	case ViewHome, ViewDashboard, ViewPricing:
		return true
	}
	return false
}

// Router is the finite state machine selecting the current view. Transitions
// happen only through Navigate (explicit user action) or through session
// loss, which forces Home. It has no terminal state and lives as long as the
// client session does.
type Router struct {
	mu      sync.Mutex
	current View
}

func NewRouter() *Router {
	return &Router{current: ViewHome}
}

func (r *Router) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate moves the router to the requested view and returns the view that
// was actually selected. Dashboard is gated on a live session: without one
// the navigation falls back to Home. Unknown views also land on Home.
func (r *Router) Navigate(to View, st session.State) View {
	if !to.Known() {
		to = ViewHome
	}
	if to == ViewDashboard && !st.SignedIn() {
		to = ViewHome
	}

	r.mu.Lock()
	r.current = to
	r.mu.Unlock()
	return to
}

// ForceHome resets the router to Home regardless of the current view. Called
// when the session goes away while a gated view is active.
func (r *Router) ForceHome() {
	r.mu.Lock()
	r.current = ViewHome
	r.mu.Unlock()
}
