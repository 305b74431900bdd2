package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinkforge/blinkforge-api/internal/domain/entity"
)

func TestTrackerInitialState(t *testing.T) {
	tr := NewTracker()
	st := tr.Current()
	assert.True(t, st.Loading)
	assert.Nil(t, st.User)
	assert.False(t, st.SignedIn())
}

func TestTrackerPublish(t *testing.T) {
	u := &entity.User{ID: "u1", Email: "u1@example.com"}

	t.Run("sign in replaces user and loading together", func(t *testing.T) {
		tr := NewTracker()
		tr.Publish(u)
		st := tr.Current()
		assert.False(t, st.Loading)
		require.NotNil(t, st.User)
		assert.Equal(t, "u1", st.User.ID)
		assert.True(t, st.SignedIn())
	})

	t.Run("nil user means signed out and resolved", func(t *testing.T) {
		tr := NewTracker()
		tr.Publish(u)
		tr.Publish(nil)
		st := tr.Current()
		assert.False(t, st.Loading)
		assert.False(t, st.SignedIn())
	})

	t.Run("every subscriber sees every change", func(t *testing.T) {
		tr := NewTracker()
		var a, b []State
		tr.Subscribe(func(st State) { a = append(a, st) })
		tr.Subscribe(func(st State) { b = append(b, st) })

		tr.Publish(u)
		tr.Publish(nil)

		require.Len(t, a, 2)
		require.Len(t, b, 2)
		assert.True(t, a[0].SignedIn())
		assert.False(t, a[1].SignedIn())
		assert.Equal(t, a, b)
	})

	t.Run("subscriber observes state consistent with Current", func(t *testing.T) {
		tr := NewTracker()
		tr.Subscribe(func(st State) {
			assert.Equal(t, st, tr.Current())
		})
		tr.Publish(u)
	})
}

func TestTrackerUnsubscribe(t *testing.T) {
	tr := NewTracker()
	u := &entity.User{ID: "u1"}

	var n int
	unsub := tr.Subscribe(func(State) { n++ })

	tr.Publish(u)
	assert.Equal(t, 1, n)

	unsub()
	tr.Publish(nil)
	assert.Equal(t, 1, n)

	// calling it again must not panic or affect other subscribers
	var m int
	tr.Subscribe(func(State) { m++ })
	unsub()
	tr.Publish(u)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, m)
}
