package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Limit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(1, 2)
	router := gin.New()
	router.POST("/orders", limiter.Limit(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/orders", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, send("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))

	assert.Equal(t, http.StatusCreated, send("10.0.0.2"))
}

func TestRateLimiter_CleanupDropsIdleVisitors(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	limiter.allow("a")
	limiter.allow("b")
	limiter.visitors["a"].lastSeen = time.Now().Add(-time.Hour)

	limiter.Cleanup()

	assert.NotContains(t, limiter.visitors, "a")
	assert.Contains(t, limiter.visitors, "b")
}
