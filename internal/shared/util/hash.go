package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey returns the storage namespace for a user id. Keys never expose
// the raw id, and the same user always lands in the same directory.
func HashUserKey(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}
