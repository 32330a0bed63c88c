// utils/codes.go
package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Alphabet omits 0/O/1/I so codes read unambiguously off a printed card.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewCode returns a random uppercase code of the given length.
func NewCode(length int) string {
	buf := make([]byte, length)
	_, _ = rand.Read(buf)
	var b strings.Builder
	b.Grow(length)
	for _, c := range buf {
		b.WriteByte(codeAlphabet[int(c)%len(codeAlphabet)])
	}
	return b.String()
}

// NewJoinCode returns a short public code guests type to find an event.
func NewJoinCode() string {
	return NewCode(6)
}

// NewAccessCode returns a prefixed one-time license code, e.g. "WED-K7PQ2M".
func NewAccessCode(prefix string) string {
	return fmt.Sprintf("%s-%s", strings.ToUpper(strings.TrimSpace(prefix)), NewCode(6))
}
