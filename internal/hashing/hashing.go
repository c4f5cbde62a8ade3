package hashing

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns the hex-encoded SHA-256 digest of the provided text.
// Sensitive candidate fields (email, phone) are stored only in this form;
// the raw values must never be persisted or logged.
func Digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
