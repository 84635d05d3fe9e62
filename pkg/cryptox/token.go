package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// SecretSize is the byte length of single-use secrets (256 bits of entropy,
// 43 chars base64url). Reset secrets must not be shorter than this.
const SecretSize = 32

// GenerateSecret creates a cryptographically random secret of the given byte
// length, returned base64url-encoded without padding so it can travel in a
// query string unescaped.
func GenerateSecret(size int) (string, error) {
	if size < SecretSize {
		return "", fmt.Errorf("cryptox: secret size must be at least %d bytes, got %d", SecretSize, size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: generate secret: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintSecret returns a deterministic SHA-256 fingerprint of a secret,
// base64url-encoded. Stored in place of the secret itself so the database can
// look a secret up by an indexed column without ever holding the plaintext.
//
// Only use this for high-entropy generated secrets. Passwords go through
// HashPassword; a deterministic digest of a guessable input is not safe.
func FingerprintSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
