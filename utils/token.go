package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewSessionToken generates an opaque 48-byte random token, hex encoded.
// The token carries no structure; it is only meaningful as a lookup key
// in the sessions table.
func NewSessionToken() (string, error) {
	b := make([]byte, 48)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
