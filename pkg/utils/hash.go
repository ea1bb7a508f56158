package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// API tokens are not stored as plain text. Since the hash is used to look up
// the user we cannot use salts here. The tokens are random, so a plain hash
// is acceptable.
func HashAPIToken(arg string) string {
	hasher := sha256.New()
	hasher.Write([]byte(arg))
	return hex.EncodeToString(hasher.Sum(nil))
}

// NewAPIToken returns a random token. Only its hash is stored.
func NewAPIToken() string {
	return uuid.NewString()
}
