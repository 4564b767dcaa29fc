package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scrypster/saleflow/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func authConfig(mode, token string) *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{SecurityMode: mode, APIToken: token},
	}
}

func TestRequireAuthDevelopmentModePassesThrough(t *testing.T) {
	handler := RequireAuth(okHandler(), authConfig("development", ""))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/processes/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthProductionRejectsMissingToken(t *testing.T) {
	handler := RequireAuth(okHandler(), authConfig("production", "secret"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/processes/x", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthProductionRejectsWrongToken(t *testing.T) {
	handler := RequireAuth(okHandler(), authConfig("production", "secret"))

	req := httptest.NewRequest(http.MethodGet, "/api/processes/x", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthProductionAcceptsValidToken(t *testing.T) {
	handler := RequireAuth(okHandler(), authConfig("production", "secret"))

	req := httptest.NewRequest(http.MethodGet, "/api/processes/x", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthProductionWithoutConfiguredTokenRejectsAll(t *testing.T) {
	// A production deployment with no token configured must fail closed.
	handler := RequireAuth(okHandler(), authConfig("production", ""))

	req := httptest.NewRequest(http.MethodGet, "/api/processes/x", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	handler := RateLimitMiddleware(okHandler(), rl)

	statuses := []int{}
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/processes/x", nil))
		statuses = append(statuses, rec.Code)
	}

	// Burst of 2 passes, the third request in the same instant is limited.
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}
