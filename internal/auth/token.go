package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// VerificationTTL is how long an email verification link stays valid.
const VerificationTTL = 24 * time.Hour

// NewVerificationToken returns 32 random bytes, hex encoded.
func NewVerificationToken() (string, error) {
	return randomHex(32)
}

// NewState returns a random value for the OAuth state parameter.
func NewState() (string, error) {
	return randomHex(16)
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
