package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateRandomID generates a random hex ID of the given byte length.
func GenerateRandomID(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(bytes)
}
