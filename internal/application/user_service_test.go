package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinkforge/blinkforge-api/internal/domain/entity"
	repo "github.com/blinkforge/blinkforge-api/internal/domain/repository"
	"github.com/blinkforge/blinkforge-api/internal/ui"
	"github.com/blinkforge/blinkforge-api/pkg/helpers"
)

type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*entity.User
	byEmail map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byID:    make(map[string]*entity.User),
		byEmail: make(map[string]*entity.User),
	}
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	r.byID[u.ID] = &cp
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.byID[u.ID] = &cp
	r.byEmail[u.Email] = &cp
	return nil
}

var _ repo.UserRepository = (*memUserRepo)(nil)

func newTestUserService(t *testing.T) (*UserService, *memUserRepo) {
	t.Helper()
	r := newMemUserRepo()
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	uiMgr := ui.NewManager(&memProjectRepo{}, testLogger())
	svc := NewUserService(r, jwt, testRedis(t), testLogger(), uiMgr)
	return svc, r
}

func register(t *testing.T, svc *UserService, email, password string) *entity.User {
	t.Helper()
	u, err := svc.Register(context.Background(), email, password, "Test User")
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, r := newTestUserService(t)

	u := register(t, svc, "a@example.com", "hunter22")
	assert.NotEmpty(t, u.ID)

	t.Run("password is stored hashed", func(t *testing.T) {
		stored, err := r.GetByEmail(ctx, "a@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, "hunter22", stored.Password)
		assert.True(t, helpers.CompareHashAndPassword(stored.Password, "hunter22"))
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, "a@example.com", "other", "Other")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestUserService(t)
	register(t, svc, "a@example.com", "hunter22")

	t.Run("valid credentials", func(t *testing.T) {
		u, err := svc.Authenticate(ctx, "a@example.com", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", u.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "a@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "b@example.com", "hunter22")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestUserService(t)
	u := register(t, svc, "a@example.com", "hunter22")

	resp, pair, err := svc.Login(ctx, "a@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, u.ID, resp.UserID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.AccessTokenExpiry.After(time.Now()))

	t.Run("redis session carries the token sid", func(t *testing.T) {
		claims, err := svc.JWT.ParseAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, u.ID, claims.UserID)

		data, err := svc.Redis.HGetAll(ctx, sessionKey(u.ID)).Result()
		require.NoError(t, err)
		assert.Equal(t, claims.SessionID, data["sid"])
		assert.Equal(t, u.Email, data["email"])
	})

	t.Run("ui session comes up signed in", func(t *testing.T) {
		s, ok := svc.UI.Get(u.ID)
		require.True(t, ok)
		assert.True(t, s.Tracker.Current().SignedIn())
		assert.Equal(t, ui.ViewHome, s.Router.Current())
	})

	t.Run("bad password issues nothing", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "a@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestUserService(t)
	u := register(t, svc, "a@example.com", "hunter22")
	_, pair, err := svc.Login(ctx, "a@example.com", "hunter22")
	require.NoError(t, err)

	rotated, userID, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	t.Run("session id rotates", func(t *testing.T) {
		claims, err := svc.JWT.ParseRefreshToken(rotated.RefreshToken)
		require.NoError(t, err)
		data, err := svc.Redis.HGetAll(ctx, sessionKey(u.ID)).Result()
		require.NoError(t, err)
		assert.Equal(t, claims.SessionID, data["sid"])
	})

	t.Run("replaying the old token revokes the session", func(t *testing.T) {
		_, _, err := svc.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		n, err := svc.Redis.Exists(ctx, sessionKey(u.ID)).Result()
		require.NoError(t, err)
		assert.Zero(t, n)
		_, ok := svc.UI.Get(u.ID)
		assert.False(t, ok)

		// the rotated pair died with the session
		_, _, err = svc.Refresh(ctx, rotated.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, _, err := svc.Refresh(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestUserService(t)
	u := register(t, svc, "a@example.com", "hunter22")
	_, _, err := svc.Login(ctx, "a@example.com", "hunter22")
	require.NoError(t, err)

	s, ok := svc.UI.Get(u.ID)
	require.True(t, ok)
	s.Navigate(ui.ViewDashboard)

	svc.Logout(ctx, u.ID)

	n, err := svc.Redis.Exists(ctx, sessionKey(u.ID)).Result()
	require.NoError(t, err)
	assert.Zero(t, n)

	_, ok = svc.UI.Get(u.ID)
	assert.False(t, ok)

	// the torn-down session observed the sign-out
	assert.False(t, s.Tracker.Current().SignedIn())
	assert.Equal(t, ui.ViewHome, s.Router.Current())
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestUserService(t)
	u := register(t, svc, "a@example.com", "hunter22")

	got, err := svc.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = svc.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
