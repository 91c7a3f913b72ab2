package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// TokenBytes is the entropy of a bearer token issued to external signers.
const TokenBytes = 32

var tokenEncoding = base64.RawURLEncoding

// NewToken returns an unguessable URL-safe bearer token.
func NewToken() (string, error) {
	var b [TokenBytes]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return tokenEncoding.EncodeToString(b[:]), nil
}

// HashToken returns the hex SHA-256 of a token; only the hash is persisted.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidTokenFormat reports whether token has the shape produced by NewToken.
func ValidTokenFormat(token string) bool {
	if len(token) != tokenEncoding.EncodedLen(TokenBytes) {
		return false
	}
	decoded, err := tokenEncoding.DecodeString(token)
	return err == nil && len(decoded) == TokenBytes
}
