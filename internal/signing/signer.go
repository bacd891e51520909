package signing

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"bank-portal/internal/domain"
	"bank-portal/internal/errors"
)

// Signer produces HMAC-SHA256 envelopes over compact JSON. The same payload
// always yields the same signature; there is no nonce or timestamp.
type Signer struct {
	secrets SecretProvider
}

func NewSigner(secrets SecretProvider) *Signer {
	return &Signer{secrets: secrets}
}

// Sign serializes payload with Canonicalize and signs the resulting bytes.
func (s *Signer) Sign(payload any) (domain.SignedEnvelope, error) {
	body, err := Canonicalize(payload)
	if err != nil {
		return domain.SignedEnvelope{}, errors.NewAppError(errors.SerializationError, "payload could not be serialized").Wrap(err)
	}

	signature, err := s.sign(body)
	if err != nil {
		return domain.SignedEnvelope{}, err
	}

	return domain.SignedEnvelope{
		Payload:   body,
		Signature: signature,
	}, nil
}

// Verify checks signature against the exact payload bytes.
func (s *Signer) Verify(payload json.RawMessage, signature string) bool {
	expected, err := s.sign(payload)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *Signer) sign(body []byte) (string, error) {
	key, err := s.secrets.Secret()
	if err != nil {
		return "", errors.NewAppError(errors.SerializationError, "signing key unavailable").Wrap(err)
	}
	if len(key) == 0 {
		return "", errors.NewAppError(errors.SerializationError, "signing key not provisioned")
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// Canonicalize encodes v as compact JSON byte-identical to Python's
// json.dumps(v, separators=(",", ":")): no HTML escaping, and DEL plus
// every non-ASCII rune written as a lowercase \uXXXX escape, using
// surrogate pairs above U+FFFF.
func Canonicalize(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return escapeNonASCII(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

func escapeNonASCII(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for len(b) > 0 {
		if b[0] == 0x7f {
			out = append(out, `\u007f`...)
			b = b[1:]
			continue
		}
		if b[0] < utf8.RuneSelf {
			out = append(out, b[0])
			b = b[1:]
			continue
		}

		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			out = fmt.Appendf(out, "\\u%04x\\u%04x", hi, lo)
			continue
		}
		out = fmt.Appendf(out, "\\u%04x", r)
	}
	return out
}
