package common

import (
	"crypto/sha1"
	"encoding/hex"
	"time"
)

// GenerateRunID generates a unique identifier for a scrape run based on the
// current timestamp, formatted as "YYYYMMDDHHMMSS".
func GenerateRunID() string {
	return time.Now().Format("20060102150405")
}

// SourceLocalID derives a stable source-local identifier from a listing's
// external URL. Sites rarely expose a clean id in their cards, so the URL
// hash stands in for one.
func SourceLocalID(sourceURL string) string {
	sum := sha1.Sum([]byte(sourceURL))
	return hex.EncodeToString(sum[:])[:16]
}
