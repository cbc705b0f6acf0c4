package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// OwnerSegment is the owner directory of an export key. Provider ids such as
// "google:123" are hashed so they never show up in bucket listings.
func OwnerSegment(ownerID string) string {
	sum := sha256.Sum256([]byte(ownerID))
	return hex.EncodeToString(sum[:])
}
