package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedRouter(cfg RateLimiterConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimiter(cfg).RateLimit())
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/events", ok)
	r.POST("/events", ok)
	return r
}

func do(r *gin.Engine, method string) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, "/events", nil))
	return w.Code
}

func TestWriteBudgetSeparateFromReads(t *testing.T) {
	r := newLimitedRouter(RateLimiterConfig{
		ReadRPS:   1,
		ReadBurst: 5,
		// Tiny refill so the exhausted bucket stays empty for the test.
		WriteRPS:   0.001,
		WriteBurst: 2,
	})

	require.Equal(t, http.StatusOK, do(r, http.MethodPost))
	require.Equal(t, http.StatusOK, do(r, http.MethodPost))
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost))

	// Reads keep flowing after the write bucket is drained.
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet))
}

func TestReadBudgetExhausts(t *testing.T) {
	r := newLimitedRouter(RateLimiterConfig{
		ReadRPS:    0.001,
		ReadBurst:  1,
		WriteRPS:   1,
		WriteBurst: 1,
	})

	require.Equal(t, http.StatusOK, do(r, http.MethodGet))
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet))
}
