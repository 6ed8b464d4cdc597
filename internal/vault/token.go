package vault

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes gives 128 bits of entropy per access token.
const tokenBytes = 16

// NewToken generates an opaque object identifier. Tokens are the only
// capability needed to reach an object, so they come straight from the
// system CSPRNG and are never reused.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
