package signing

import "os"

// SecretProvider hands out the shared HMAC key. The key is looked up on
// every signature so a rotated secret takes effect without a restart.
type SecretProvider interface {
	Secret() ([]byte, error)
}

// StaticSecret serves a key fixed at construction time.
type StaticSecret []byte

func (s StaticSecret) Secret() ([]byte, error) {
	return []byte(s), nil
}

// EnvSecret reads the key from an environment variable.
type EnvSecret string

// SecretEnvName is the variable EnvSecret falls back to when empty.
const SecretEnvName = "PORTAL_HMAC_SECRET"

func (e EnvSecret) Secret() ([]byte, error) {
	name := string(e)
	if name == "" {
		name = SecretEnvName
	}
	return []byte(os.Getenv(name)), nil
}
