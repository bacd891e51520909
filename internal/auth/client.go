package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"bank-portal/internal/domain"
	"bank-portal/internal/errors"
	"bank-portal/internal/session"
	"bank-portal/internal/signing"
)

// maxResponseBody caps how much of a backend reply is read.
const maxResponseBody = 1 << 20

type ClientConfig struct {
	LoginURL string
	// SignLogin wraps the credentials in a signed envelope.
	SignLogin bool
	// DefaultTTL is used when neither the response nor the token says
	// when the session ends.
	DefaultTTL time.Duration
	// HTTPClient defaults to a client without timeout.
	HTTPClient *http.Client
}

// Client logs in against the banking backend and keeps the resulting
// access token in an injected SessionStore. A session is authenticated
// exactly when a non-empty token is stored.
type Client struct {
	cfg    ClientConfig
	http   *http.Client
	store  domain.SessionStore
	signer *signing.Signer
	now    func() time.Time
	logger *slog.Logger
}

func NewClient(cfg ClientConfig, store domain.SessionStore, signer *signing.Signer, logger *slog.Logger) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		store:  store,
		signer: signer,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the time source used to compute expiry.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

type LoginRequest struct {
	CustomerNo   int64  `json:"customer_no"`
	PasswordHash string `json:"password_hash"`
}

// Login posts the credentials and, on success, stores the access token
// together with its expiry. Nothing is written when any step fails, and
// the call is never retried.
func (c *Client) Login(ctx context.Context, customerNo int64, passwordHash string) (string, error) {
	c.logger.Info("Logging in", "customer_no", customerNo, "signed", c.cfg.SignLogin)

	var body any = LoginRequest{CustomerNo: customerNo, PasswordHash: passwordHash}
	if c.cfg.SignLogin {
		envelope, err := c.signer.Sign(body)
		if err != nil {
			return "", err
		}
		body = envelope
	}

	resp, err := c.post(ctx, c.cfg.LoginURL, body, "")
	if err != nil {
		return "", err
	}

	if resp.status < 200 || resp.status > 299 {
		c.logger.Warn("Login rejected", "customer_no", customerNo, "status", resp.status)
		return "", errors.NewAppErrorf(errors.AuthError, "login rejected with status %d", resp.status).
			WithDetails(resp.detail())
	}

	var decoded loginResponse
	if err := json.Unmarshal(resp.body, &decoded); err != nil {
		c.logger.Warn("Malformed login response", "customer_no", customerNo, "error", err)
		return "", errors.NewAppError(errors.AuthError, "malformed login response").Wrap(err)
	}

	token := decoded.token()
	if token == "" {
		c.logger.Warn("Login response carried no access token", "customer_no", customerNo)
		return "", errors.NewAppError(errors.AuthError, "login response is missing the access token")
	}

	expiresAt := c.expiry(decoded, token)
	if err := c.store.Set(map[string]string{
		domain.AccessTokenKey: token,
		domain.ExpiresAtKey:   session.FormatExpiry(expiresAt),
	}); err != nil {
		c.logger.Error("Failed to persist session", "customer_no", customerNo, "error", err)
		return "", err
	}

	c.logger.Info("Login succeeded", "customer_no", customerNo, "expires_at", expiresAt)
	return token, nil
}

// Logout forgets the stored session. It never fails; store errors are
// only logged.
func (c *Client) Logout() {
	if err := c.store.Delete(domain.AccessTokenKey, domain.ExpiresAtKey); err != nil {
		c.logger.Error("Failed to clear session", "error", err)
		return
	}
	c.logger.Info("Logged out")
}

// IsAuthenticated reports whether a non-empty access token is stored. It
// does not look at expiry.
func (c *Client) IsAuthenticated() bool {
	token, ok, err := c.store.Get(domain.AccessTokenKey)
	if err != nil {
		c.logger.Error("Failed to read session", "error", err)
		return false
	}
	return ok && token != ""
}

// PostSigned sends payload as a signed envelope to url with the stored
// bearer token and decodes a 2xx reply into out when out is non-nil.
func (c *Client) PostSigned(ctx context.Context, url string, payload any, out any) error {
	token, ok, err := c.store.Get(domain.AccessTokenKey)
	if err != nil {
		return errors.NewAppError(errors.InternalError, "failed to read session").Wrap(err)
	}
	if !ok || token == "" {
		return errors.NewAppError(errors.AuthError, "not logged in")
	}

	envelope, err := c.signer.Sign(payload)
	if err != nil {
		return err
	}

	resp, err := c.post(ctx, url, envelope, token)
	if err != nil {
		return err
	}

	switch {
	case resp.status == http.StatusUnauthorized || resp.status == http.StatusForbidden:
		return errors.NewAppErrorf(errors.AuthError, "request rejected with status %d", resp.status).
			WithDetails(resp.detail())
	case resp.status < 200 || resp.status > 299:
		return errors.NewAppErrorf(errors.NetworkError, "backend answered with status %d", resp.status).
			WithDetails(resp.detail())
	}

	if out == nil || len(resp.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return errors.NewAppError(errors.InternalError, "malformed backend response").Wrap(err)
	}
	return nil
}

type rawResponse struct {
	status int
	body   []byte
}

// detail extracts FastAPI's {"detail": ...} message, or the raw body.
func (r rawResponse) detail() string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(r.body, &payload); err == nil && len(payload.Detail) > 0 {
		var text string
		if err := json.Unmarshal(payload.Detail, &text); err == nil {
			return text
		}
		return string(payload.Detail)
	}
	return string(r.body)
}

func (c *Client) post(ctx context.Context, url string, body any, bearer string) (rawResponse, error) {
	// Same encoding as the signed payload, so envelope bytes reach the wire unchanged.
	encoded, err := signing.Canonicalize(body)
	if err != nil {
		return rawResponse{}, errors.NewAppError(errors.SerializationError, "request body could not be serialized").Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return rawResponse{}, errors.NewAppError(errors.NetworkError, "failed to build request").Wrap(err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Backend request failed", "url", url, "request_id", requestID, "error", err)
		return rawResponse{}, errors.NewAppError(errors.NetworkError, "backend unreachable").Wrap(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return rawResponse{}, errors.NewAppError(errors.NetworkError, "failed to read backend response").Wrap(err)
	}

	c.logger.Debug("Backend request completed", "url", url, "request_id", requestID, "status", resp.StatusCode)
	return rawResponse{status: resp.StatusCode, body: data}, nil
}

type loginResponse struct {
	AccessToken      string      `json:"accessToken"`
	AccessTokenSnake string      `json:"access_token"`
	ExpiresAt        json.Number `json:"expiresAt"`
	ExpiresIn        string      `json:"expires_in"`
}

func (r loginResponse) token() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.AccessTokenSnake
}

// expiry picks the session end from, in order: an explicit expiresAt in
// epoch milliseconds, the token's exp claim, the backend's expires_in
// timestamp, and finally now plus the configured TTL.
func (c *Client) expiry(resp loginResponse, token string) time.Time {
	if resp.ExpiresAt != "" {
		if ms, err := strconv.ParseInt(resp.ExpiresAt.String(), 10, 64); err == nil {
			return time.UnixMilli(ms)
		}
	}
	if exp, ok := tokenExpiry(token); ok {
		return exp
	}
	if resp.ExpiresIn != "" {
		if exp, err := parseTimestamp(resp.ExpiresIn); err == nil {
			return exp
		}
		c.logger.Warn("Ignoring unparseable expires_in", "value", resp.ExpiresIn)
	}
	return c.now().Add(c.cfg.DefaultTTL)
}

func parseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	// The backend emits naive local timestamps such as 2024-05-01T10:00:00.123456.
	t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}
