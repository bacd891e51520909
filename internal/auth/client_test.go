package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-portal/internal/domain"
	apperrors "bank-portal/internal/errors"
	"bank-portal/internal/session"
	"bank-portal/internal/signing"
)

var testNow = time.UnixMilli(1_700_000_000_000)

func newTestClient(t *testing.T, handler http.HandlerFunc, signLogin bool) (*Client, *session.MemoryStore) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	client := NewClient(ClientConfig{
		LoginURL:   srv.URL + "/post/login",
		SignLogin:  signLogin,
		DefaultTTL: 30 * time.Minute,
	}, store, signing.NewSigner(signing.StaticSecret("test-secret")), slog.New(slog.NewTextHandler(io.Discard, nil)))

	return client.WithClock(func() time.Time { return testNow }), store
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func storedExpiry(t *testing.T, store domain.SessionStore) time.Time {
	t.Helper()
	raw, ok, err := store.Get(domain.ExpiresAtKey)
	require.NoError(t, err)
	require.True(t, ok)
	ms, err := strconv.ParseInt(raw, 10, 64)
	require.NoError(t, err)
	return time.UnixMilli(ms)
}

func TestLoginStoresTokenAndLogoutClearsIt(t *testing.T) {
	var received LoginRequest
	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/post/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		writeJSON(w, http.StatusOK, map[string]any{"accessToken": "opaque-token"})
	}, false)

	assert.False(t, client.IsAuthenticated())

	token, err := client.Login(context.Background(), 1001, "hash")
	require.NoError(t, err)

	assert.Equal(t, "opaque-token", token)
	assert.Equal(t, LoginRequest{CustomerNo: 1001, PasswordHash: "hash"}, received)
	assert.True(t, client.IsAuthenticated())
	assert.Equal(t, testNow.Add(30*time.Minute).UnixMilli(), storedExpiry(t, store).UnixMilli())

	client.Logout()

	assert.False(t, client.IsAuthenticated())
	_, ok, err := store.Get(domain.ExpiresAtKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoginAcceptsBackendFieldNames(t *testing.T) {
	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "snake-token",
			"expires_in":   "2023-11-14T22:43:20Z",
			"customer_no":  1001,
		})
	}, false)

	token, err := client.Login(context.Background(), 1001, "hash")
	require.NoError(t, err)

	assert.Equal(t, "snake-token", token)
	assert.True(t, storedExpiry(t, store).Equal(time.Date(2023, 11, 14, 22, 43, 20, 0, time.UTC)))
}

func TestLoginPrefersExplicitExpiry(t *testing.T) {
	expiresAt := testNow.Add(time.Hour).UnixMilli()
	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"accessToken": "t", "expiresAt": expiresAt})
	}, false)

	_, err := client.Login(context.Background(), 1001, "hash")
	require.NoError(t, err)

	assert.Equal(t, expiresAt, storedExpiry(t, store).UnixMilli())
}

func TestLoginReadsJWTExpiry(t *testing.T) {
	exp := testNow.Add(15 * time.Minute).Truncate(time.Second)
	jwtToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"customer_no": 1001,
		"exp":         exp.Unix(),
	}).SignedString([]byte("backend-key"))
	require.NoError(t, err)

	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"access_token": jwtToken, "expires_in": "not a date"})
	}, false)

	token, err := client.Login(context.Background(), 1001, "hash")
	require.NoError(t, err)

	assert.Equal(t, jwtToken, token)
	assert.True(t, storedExpiry(t, store).Equal(exp))
}

func TestLoginSignedEnvelope(t *testing.T) {
	signer := signing.NewSigner(signing.StaticSecret("test-secret"))
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var envelope domain.SignedEnvelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&envelope))

		assert.JSONEq(t, `{"customer_no":1001,"password_hash":"hash"}`, string(envelope.Payload))
		assert.True(t, signer.Verify(envelope.Payload, envelope.Signature))

		writeJSON(w, http.StatusOK, map[string]any{"accessToken": "signed-token"})
	}, true)

	token, err := client.Login(context.Background(), 1001, "hash")
	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
}

func TestLoginFailuresLeaveStateUntouched(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr *apperrors.AppError
		detail  string
	}{
		{
			name: "invalid credentials",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusForbidden, map[string]any{"detail": "Invalid Credentials"})
			},
			wantErr: apperrors.ErrAuth,
			detail:  "Invalid Credentials",
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			wantErr: apperrors.ErrAuth,
			detail:  "boom\n",
		},
		{
			name: "missing token",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{"customer_no": 1001})
			},
			wantErr: apperrors.ErrAuth,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("<html>"))
			},
			wantErr: apperrors.ErrAuth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, store := newTestClient(t, tt.handler, false)
			require.NoError(t, store.Set(map[string]string{domain.AccessTokenKey: "previous"}))

			_, err := client.Login(context.Background(), 1001, "hash")

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.detail != "" {
				var appErr *apperrors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.detail, appErr.Details)
			}

			token, _, _ := store.Get(domain.AccessTokenKey)
			assert.Equal(t, "previous", token)
			_, ok, _ := store.Get(domain.ExpiresAtKey)
			assert.False(t, ok)
		})
	}
}

func TestLoginNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	store := session.NewMemoryStore()
	client := NewClient(ClientConfig{LoginURL: url + "/post/login", DefaultTTL: time.Minute}, store,
		signing.NewSigner(signing.StaticSecret("k")), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.Login(context.Background(), 1001, "hash")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNetwork)
	assert.False(t, client.IsAuthenticated())
}

func TestLoginSignedWithoutSecret(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	t.Cleanup(srv.Close)

	client := NewClient(ClientConfig{LoginURL: srv.URL, SignLogin: true, DefaultTTL: time.Minute}, session.NewMemoryStore(),
		signing.NewSigner(signing.StaticSecret("")), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.Login(context.Background(), 1001, "hash")

	assert.ErrorIs(t, err, apperrors.ErrSerialization)
	assert.False(t, called)
}

func TestIsAuthenticatedIgnoresEmptyToken(t *testing.T) {
	client, store := newTestClient(t, nil, false)

	require.NoError(t, store.Set(map[string]string{domain.AccessTokenKey: ""}))

	assert.False(t, client.IsAuthenticated())
}

func TestPostSigned(t *testing.T) {
	signer := signing.NewSigner(signing.StaticSecret("test-secret"))
	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer stored-token", r.Header.Get("Authorization"))

		var envelope domain.SignedEnvelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&envelope))
		assert.True(t, signer.Verify(envelope.Payload, envelope.Signature))
		assert.JSONEq(t, `{"account":"12345","amount":40}`, string(envelope.Payload))

		writeJSON(w, http.StatusCreated, map[string]any{"ref_no": "abc"})
	}, false)

	require.NoError(t, store.Set(map[string]string{domain.AccessTokenKey: "stored-token"}))

	var out struct {
		RefNo string `json:"ref_no"`
	}
	err := client.PostSigned(context.Background(), client.cfg.LoginURL, map[string]any{"account": "12345", "amount": 40}, &out)

	require.NoError(t, err)
	assert.Equal(t, "abc", out.RefNo)
}

func TestPostSignedKeepsPayloadBytes(t *testing.T) {
	signer := signing.NewSigner(signing.StaticSecret("test-secret"))
	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var envelope domain.SignedEnvelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&envelope))

		assert.Equal(t, `{"biller":"Tom & Jerry <Ltd>","name":"Jos\u00e9"}`, string(envelope.Payload))
		assert.True(t, signer.Verify(envelope.Payload, envelope.Signature))

		writeJSON(w, http.StatusCreated, map[string]any{})
	}, false)
	require.NoError(t, store.Set(map[string]string{domain.AccessTokenKey: "stored-token"}))

	err := client.PostSigned(context.Background(), client.cfg.LoginURL, map[string]any{"biller": "Tom & Jerry <Ltd>", "name": "José"}, nil)

	require.NoError(t, err)
}

func TestPostSignedErrors(t *testing.T) {
	status := http.StatusUnauthorized
	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, map[string]any{"detail": "Failed"})
	}, false)

	err := client.PostSigned(context.Background(), client.cfg.LoginURL, map[string]any{}, nil)
	assert.ErrorIs(t, err, apperrors.ErrAuth, "no token stored")

	require.NoError(t, store.Set(map[string]string{domain.AccessTokenKey: "t"}))

	err = client.PostSigned(context.Background(), client.cfg.LoginURL, map[string]any{}, nil)
	assert.ErrorIs(t, err, apperrors.ErrAuth)

	status = http.StatusNotImplemented
	err = client.PostSigned(context.Background(), client.cfg.LoginURL, map[string]any{}, nil)
	assert.ErrorIs(t, err, apperrors.ErrNetwork)

	err = client.PostSigned(context.Background(), client.cfg.LoginURL, map[string]any{"bad": make(chan int)}, nil)
	assert.ErrorIs(t, err, apperrors.ErrSerialization)
}
