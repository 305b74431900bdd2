package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateLimitedRouter(t *testing.T, limit int, allow AllowFunc) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	r := gin.New()
	r.GET("/ping", RateLimit(rdb, limit, time.Minute, KeyByIP(), allow), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r, mr
}

func get(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	t.Run("requests under the limit pass with headers", func(t *testing.T) {
		r, _ := rateLimitedRouter(t, 2, nil)

		w := get(r)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

		w = get(r)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("requests over the limit are rejected", func(t *testing.T) {
		r, _ := rateLimitedRouter(t, 1, nil)
		require.Equal(t, http.StatusOK, get(r).Code)
		assert.Equal(t, http.StatusTooManyRequests, get(r).Code)
	})

	t.Run("window expiry resets the counter", func(t *testing.T) {
		r, mr := rateLimitedRouter(t, 1, nil)
		require.Equal(t, http.StatusOK, get(r).Code)
		require.Equal(t, http.StatusTooManyRequests, get(r).Code)

		mr.FastForward(2 * time.Minute)
		assert.Equal(t, http.StatusOK, get(r).Code)
	})

	t.Run("allow func bypasses the limit", func(t *testing.T) {
		r, _ := rateLimitedRouter(t, 1, func(*gin.Context) bool { return true })
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, get(r).Code)
		}
	})

	t.Run("redis outage fails open", func(t *testing.T) {
		r, mr := rateLimitedRouter(t, 1, nil)
		mr.Close()
		assert.Equal(t, http.StatusOK, get(r).Code)
	})
}
