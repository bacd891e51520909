package domain

import "encoding/json"

// SignedEnvelope is built fresh for every outbound call and never stored.
type SignedEnvelope struct {
	Payload   json.RawMessage `json:"payload"`
	Signature string          `json:"signature"`
}
