package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/service-ledger/internal/auth"
	"github.com/ukydev/service-ledger/internal/models"
	"github.com/ukydev/service-ledger/internal/signature"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func testSigner(t *testing.T) *signature.Signer {
	t.Helper()
	key, err := signature.ParsePrivateKey(testKey)
	require.NoError(t, err)
	return signature.NewSigner(key, "")
}

func TestParseFlags(t *testing.T) {
	t.Setenv("SIGNER_KEY", "0xabc")
	t.Setenv("API_BASE_URL", "http://ledger:9000/api")

	opts, err := parseFlags([]string{"-record", "7", "-role", "brand", "-submit"})
	require.NoError(t, err)
	assert.Equal(t, "0xabc", opts.Key)
	assert.Equal(t, "http://ledger:9000/api", opts.APIURL)
	assert.Equal(t, signature.DefaultDomain, opts.Domain)
	assert.Equal(t, uint64(7), opts.Record)
	assert.Equal(t, "brand", opts.Role)
	assert.True(t, opts.Submit)

	_, err = parseFlags([]string{"-record", "-1"})
	assert.Error(t, err)
}

func TestRun_SignsRecord(t *testing.T) {
	var out bytes.Buffer
	err := run(&options{Key: testKey, Role: "user", Record: 3}, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	s := testSigner(t)
	assert.Equal(t, "account: "+s.Account().String(), lines[0])

	sig, err := signature.DecodeHex(strings.TrimPrefix(lines[1], "signature: "))
	require.NoError(t, err)
	ok, err := signature.NewVerifier("").Verify(s.Account(), 3, signature.RoleUser, sig)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts options
	}{
		{"missing key", options{Role: "user"}},
		{"bad key", options{Key: "zz", Role: "user"}},
		{"unknown role", options{Key: testKey, Role: "mechanic"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, run(&tt.opts, io.Discard))
		})
	}
}

func TestRun_NewKey(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(&options{NewKey: true}, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	key, err := hex.DecodeString(strings.TrimPrefix(lines[0], "key: "))
	require.NoError(t, err)
	assert.Len(t, key, 32)
	_, err = models.ParseAccount(strings.TrimPrefix(lines[1], "account: "))
	assert.NoError(t, err)
}

func TestSignIn_AcceptedByAuthService(t *testing.T) {
	s := testSigner(t)
	req := signIn(s, time.Now())

	account, err := auth.NewService("secret", time.Hour, time.Minute).VerifySignIn(req)
	require.NoError(t, err)
	assert.Equal(t, s.Account(), account)
}

func TestRun_SignInPrintsRequest(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(&options{Key: testKey, SignIn: true}, &out))

	var req models.SessionRequest
	require.NoError(t, json.Unmarshal(out.Bytes(), &req))
	assert.Equal(t, testSigner(t).Account().String(), req.Account)
	assert.NotEmpty(t, req.Signature)
}

func TestSubmitSignature(t *testing.T) {
	sig := testSigner(t).SignRecord(4, signature.RoleBrand)

	t.Run("accepted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/records/4/verify/brand", r.URL.Path)
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, signature.EncodeHex(sig), body["signature"])
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"events":[]}`))
		}))
		defer server.Close()

		status, err := submitSignature(server.URL+"/api", 4, signature.RoleBrand, sig)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"record already verified"}`))
		}))
		defer server.Close()

		status, err := submitSignature(server.URL+"/api", 4, signature.RoleBrand, sig)
		assert.Equal(t, http.StatusConflict, status)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "record already verified")
	})

	t.Run("unreachable", func(t *testing.T) {
		_, err := submitSignature("http://127.0.0.1:1/api", 4, signature.RoleBrand, sig)
		assert.Error(t, err)
	})
}
