package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ukydev/service-ledger/internal/auth"
	"github.com/ukydev/service-ledger/internal/models"
)

var testAccount = models.MustParseAccount("0x00000000000000000000000000000000000000a1")

func TestAuthMiddleware_Authenticate(t *testing.T) {
	authService := auth.NewService("secret", time.Hour, 0)
	middleware := NewAuthMiddleware(authService)

	// Test successful authentication
	t.Run("valid token", func(t *testing.T) {
		token, _, _ := authService.GenerateToken(testAccount)

		req := httptest.NewRequest("POST", "/api/records", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			account, ok := GetAccountFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, testAccount, account)
		})

		middleware.Authenticate(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing authorization header", ""},
		{"not a bearer header", "Basic abc"},
		{"invalid token", "Bearer invalid-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/records", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handlerCalled := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			})

			middleware.Authenticate(handler).ServeHTTP(w, req)
			assert.False(t, handlerCalled)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	middleware := NewRateLimitMiddleware()

	t.Run("rate limit not exceeded", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/records/count", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		middleware.RateLimit(5, 60)(handler).ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rate limit exceeded", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/records/count", nil)
		req.RemoteAddr = "192.168.1.2:12345"
		w := httptest.NewRecorder()

		handlerCalled := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
		})

		rateLimitHandler := middleware.RateLimit(1, 60)(handler)

		// First request should succeed
		rateLimitHandler.ServeHTTP(w, req)
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)

		// Second request should be rate limited
		w = httptest.NewRecorder()
		handlerCalled = false
		rateLimitHandler.ServeHTTP(w, req)
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)

		// Another client is unaffected
		other := httptest.NewRequest("GET", "/api/records/count", nil)
		other.RemoteAddr = "192.168.1.3:12345"
		w = httptest.NewRecorder()
		rateLimitHandler.ServeHTTP(w, other)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("window expires", func(t *testing.T) {
		m := NewRateLimitMiddleware()
		now := time.Unix(1700000000, 0)
		m.now = func() time.Time { return now }
		handler := m.RateLimit(1, 60)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest("GET", "/api/brand", nil)
		req.RemoteAddr = "10.0.0.1:1"

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)

		now = now.Add(61 * time.Second)
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.9:443"
	assert.Equal(t, "ip:10.0.0.9", clientKey(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "ip:203.0.113.7", clientKey(req))

	ctx := context.WithValue(req.Context(), ClaimsContextKey, &models.Claims{Account: testAccount})
	assert.Equal(t, "account:"+testAccount.String(), clientKey(req.WithContext(ctx)))
}

func TestGetClaimsFromContext(t *testing.T) {
	claims := &models.Claims{Account: testAccount, Exp: 42}

	ctx := context.WithValue(context.Background(), ClaimsContextKey, claims)

	retrieved, ok := GetClaimsFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, claims, retrieved)

	// Test with no claims in context
	_, ok = GetClaimsFromContext(context.Background())
	assert.False(t, ok)
	_, ok = GetAccountFromContext(context.Background())
	assert.False(t, ok)
}
