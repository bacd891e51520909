package domain

// Keys under which the portal persists its client state.
const (
	AccessTokenKey = "accessToken"
	ExpiresAtKey   = "expiresAt"
)

// SessionStore is the persisted client state of the portal. Values are plain
// strings; expiresAt holds epoch milliseconds in base 10.
type SessionStore interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set writes all entries or none of them.
	Set(entries map[string]string) error
	// Delete removes keys; missing keys are not an error.
	Delete(keys ...string) error
}
