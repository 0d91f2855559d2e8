package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// DefaultCodeBytes is the entropy of verification and reset codes.
const DefaultCodeBytes = 32

// CodeGenerator produces opaque, URL-safe, fixed-length codes.
type CodeGenerator interface {
	NewCode() (string, error)
}

// RandomCodes draws codes from crypto/rand and encodes them as unpadded base64url.
type RandomCodes struct {
	size int
}

// NewRandomCodes builds a generator emitting size random bytes per code.
func NewRandomCodes(size int) *RandomCodes {
	if size <= 0 {
		size = DefaultCodeBytes
	}
	return &RandomCodes{size: size}
}

// NewCode returns a fresh code.
func (g *RandomCodes) NewCode() (string, error) {
	buf := make([]byte, g.size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// CodesEqual compares two codes in constant time.
func CodesEqual(stored, supplied string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
