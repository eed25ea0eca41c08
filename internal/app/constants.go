package app

import (
	"math/rand"
	"strings"
)

// codeAlphabet is the character set for session codes.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// maxCodeAttempts bounds the search for an unused session code.
const maxCodeAttempts = 64

// NewSessionCode returns a random code of the given length drawn from codeAlphabet.
func NewSessionCode(rng *rand.Rand, length int) string {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(codeAlphabet[rng.Intn(len(codeAlphabet))])
	}
	return b.String()
}

// NormalizeCode upper-cases and trims a user supplied code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
