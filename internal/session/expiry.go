package session

import (
	"log/slog"
	"strconv"
	"time"

	"bank-portal/internal/domain"
)

// IsTokenExpired reports whether the stored session is stale at now. A
// missing, unreadable or malformed expiresAt counts as expired. The store
// is never modified.
func IsTokenExpired(store domain.SessionStore, now time.Time) bool {
	raw, ok, err := store.Get(domain.ExpiresAtKey)
	if err != nil || !ok {
		return true
	}

	expiresAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return true
	}

	return expiresAt < now.UnixMilli()
}

// FormatExpiry renders t the way expiresAt is stored.
func FormatExpiry(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// Checker binds a store to a clock for callers that gate on expiry.
type Checker struct {
	store  domain.SessionStore
	now    func() time.Time
	logger *slog.Logger
}

func NewChecker(store domain.SessionStore, logger *slog.Logger) *Checker {
	return &Checker{
		store:  store,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the time source, mainly for tests.
func (c *Checker) WithClock(now func() time.Time) *Checker {
	c.now = now
	return c
}

func (c *Checker) Expired() bool {
	expired := IsTokenExpired(c.store, c.now())
	if expired && c.logger != nil {
		c.logger.Debug("Session expired or missing")
	}
	return expired
}

// HasStaleToken reports whether an access token is still stored even
// though the session has expired.
func (c *Checker) HasStaleToken() bool {
	token, ok, err := c.store.Get(domain.AccessTokenKey)
	if err != nil || !ok || token == "" {
		return false
	}
	return IsTokenExpired(c.store, c.now())
}
