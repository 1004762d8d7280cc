package remote

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSecret returns a new random sync secret: 16 random bytes, hex
// encoded, so the result is 32 characters and comfortably clears
// MinSecretLen. The same secret must then be configured on every device
// sharing the record book.
func GenerateSecret() (string, error) {
	b := make([]byte, MinSecretLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
