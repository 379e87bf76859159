package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wagerhub/domain/entities"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err      error
		expected int
	}{
		{fmt.Errorf("wager 4: %w", entities.ErrNotFound), http.StatusNotFound},
		{entities.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: token expired", entities.ErrUnauthorized), http.StatusUnauthorized},
		{entities.ErrForbidden, http.StatusForbidden},
		{entities.ErrEmailTaken, http.StatusConflict},
		{fmt.Errorf("%w: wager is completed", entities.ErrInvalidState), http.StatusConflict},
		{fmt.Errorf("%w: have 1, need 2", entities.ErrInsufficientTokens), http.StatusUnprocessableEntity},
		{entities.ErrLimitExceeded, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: %w", entities.ErrPaymentFailed, errors.New("declined")), http.StatusBadGateway},
		{entities.ErrUnknownProvider, http.StatusBadRequest},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, statusFor(tt.err), tt.err.Error())
	}
}

func TestRespondError_HidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/token-management/value", nil)

	respondError(c, errors.New("failed to fetch token value: pool closed"), "Failed to fetch token value")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Failed to fetch token value"}`, rec.Body.String())
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Recovery())
	engine.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestMemoryRateLimiter(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewMemoryRateLimiter(2, time.Minute)
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _, err := limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, allowed)
		now = now.Add(10 * time.Second)
	}

	allowed, retryAfter, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 40*time.Second, retryAfter)

	allowed, _, _ = limiter.Allow(ctx, "5.6.7.8")
	assert.True(t, allowed)

	now = now.Add(41 * time.Second)
	allowed, _, _ = limiter.Allow(ctx, "1.2.3.4")
	assert.True(t, allowed, "the first attempt has left the window")
}

type recordedRequest struct {
	method string
	route  string
	status int
}

type fakeMetrics struct {
	requests []recordedRequest
}

func (f *fakeMetrics) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	f.requests = append(f.requests, recordedRequest{method: method, route: route, status: status})
}

func (f *fakeMetrics) RecordPayment(string, string, string) {}

func (f *fakeMetrics) RecordWagerSettled(int64) {}

func TestMetrics_RecordsMatchedRoute(t *testing.T) {
	metrics := &fakeMetrics{}
	engine := gin.New()
	engine.Use(Metrics(metrics))
	engine.GET("/api/p2p/wager/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for _, path := range []string{"/api/p2p/wager/7", "/api/p2p/wager/8", "/nowhere"} {
		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, metrics.requests, 3)
	assert.Equal(t, recordedRequest{http.MethodGet, "/api/p2p/wager/:id", http.StatusNoContent}, metrics.requests[0])
	assert.Equal(t, "/api/p2p/wager/:id", metrics.requests[1].route, "raw IDs stay out of the label")
	assert.Equal(t, recordedRequest{http.MethodGet, "unmatched", http.StatusNotFound}, metrics.requests[2])
}

func TestNew_RejectsBadTrustedProxies(t *testing.T) {
	_, err := New(":0", Dependencies{TrustedProxies: []string{"not-an-ip"}, Environment: "test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trusted proxies")
}
