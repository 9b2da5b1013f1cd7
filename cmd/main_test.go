package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/service-ledger/internal/config"
	"github.com/ukydev/service-ledger/internal/models"
)

var testBrand = models.MustParseAccount("0x00000000000000000000000000000000000000b1")

func testConfig() *config.Config {
	return &config.Config{
		Port:          "0",
		Brand:         testBrand,
		Domain:        "test-domain",
		JWTSecret:     "secret",
		JWTExpiry:     time.Hour,
		SignInMaxAge:  time.Minute,
		RateLimit:     100,
		RateWindowSec: 60,
	}
}

func TestSetup_InMemory(t *testing.T) {
	a, err := setup(context.Background(), testConfig())
	require.NoError(t, err)
	defer a.close()

	assert.Nil(t, a.journal)
	assert.Equal(t, testBrand, a.ledger.Brand())
	assert.Equal(t, uint64(0), a.ledger.RecordCount())
}

func TestNewServer_Routes(t *testing.T) {
	cfg := testConfig()
	a, err := setup(context.Background(), cfg)
	require.NoError(t, err)
	defer a.close()

	srv := newServer(cfg, a)
	assert.Equal(t, ":0", srv.Addr)

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/health", http.StatusOK, `{"status":"ok"}`},
		{"/api/brand", http.StatusOK, fmt.Sprintf(`{"brand":%q}`, testBrand.String())},
		{"/api/records/count", http.StatusOK, `{"count":0}`},
		{"/api/records/unverified", http.StatusOK, `{"record_ids":[]}`},
		{"/api/service-centers", http.StatusOK, `{"service_centers":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestNewServer_MutationsNeedSession(t *testing.T) {
	cfg := testConfig()
	a, err := setup(context.Background(), cfg)
	require.NoError(t, err)
	defer a.close()

	srv := newServer(cfg, a)
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/records", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
