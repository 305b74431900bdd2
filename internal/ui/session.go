package ui

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/blinkforge/blinkforge-api/internal/domain/entity"
	"github.com/blinkforge/blinkforge-api/internal/domain/repository"
	"github.com/blinkforge/blinkforge-api/internal/session"
)

// Session is the server-held UI state for one signed-in client: the auth
// state tracker, the view router, and the dashboard. It is created at
// sign-in and torn down at sign-out.
type Session struct {
	Tracker   *session.Tracker
	Router    *Router
	Dashboard *Dashboard

	unsub func()
}

func newSession(repo repository.ProjectRepository, logger *logrus.Logger, user *entity.User) *Session {
	s := &Session{
		Tracker:   session.NewTracker(),
		Router:    NewRouter(),
		Dashboard: NewDashboard(repo, logger, user.ID),
	}
	// Session loss forces the router off gated views. Ungated views are left
	// alone; the router itself never reacts to background events.
	s.unsub = s.Tracker.Subscribe(func(st session.State) {
		if !st.SignedIn() && s.Router.Current() == ViewDashboard {
			s.Router.ForceHome()
		}
	})
	s.Tracker.Publish(user)
	return s
}

// teardown publishes the signed-out state and releases the subscription.
func (s *Session) teardown() {
	s.Tracker.Publish(nil)
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
}

// Navigate runs the router transition against the current session state.
func (s *Session) Navigate(to View) View {
	return s.Router.Navigate(to, s.Tracker.Current())
}

// Manager owns the UI sessions, keyed by user id.
type Manager struct {
	repo   repository.ProjectRepository
	logger *logrus.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(repo repository.ProjectRepository, logger *logrus.Logger) *Manager {
	return &Manager{
		repo:     repo,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// SignIn returns the user's UI session, creating it on first sign-in.
func (m *Manager) SignIn(user *entity.User) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[user.ID]; ok {
		s.Tracker.Publish(user)
		return s
	}
	s := newSession(m.repo, m.logger, user)
	m.sessions[user.ID] = s
	return s
}

// Get returns the UI session for a user, if one exists.
func (m *Manager) Get(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// SignOut tears the session down. Safe to call for an unknown user.
func (m *Manager) SignOut(userID string) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if ok {
		s.teardown()
	}
}
