package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// codeAlphabet is uppercase letters and digits with the visually ambiguous
// 0/O and 1/I removed, so codes survive being read from a phone screen.
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// NewRandomToken returns nBytes of crypto-random data, hex encoded.
// Used for opaque refresh tokens and OAuth state values.
func NewRandomToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32 // 256 bits by default
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewVerificationCode returns a human-enterable code of exactly length chars
// drawn from codeAlphabet. Randomness source failure is the only error and
// callers treat it as fatal.
func NewVerificationCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("verification code length must be positive, got %d", length)
	}
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("verification code: %w", err)
	}
	code := make([]byte, length)
	for i, b := range raw {
		code[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(code), nil
}
