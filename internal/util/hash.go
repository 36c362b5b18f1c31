package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// GenerateHash creates a short identifier from content and a timestamp.
func GenerateHash(content string, timestamp int64) string {
	hasher := sha256.New()
	hasher.Write([]byte(content))
	hasher.Write([]byte(time.Unix(0, timestamp).UTC().String()))
	return hex.EncodeToString(hasher.Sum(nil))[:16] // Use first 16 chars of the hash
}

// ContentHash returns the hex SHA-256 of text together with the summary
// length, identifying a summarization request independent of time.
func ContentHash(text string, length int) string {
	hasher := sha256.New()
	hasher.Write([]byte(text))
	hasher.Write([]byte{0})
	hasher.Write([]byte(strconv.Itoa(length)))
	return hex.EncodeToString(hasher.Sum(nil))
}
