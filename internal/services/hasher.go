package services

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the hex SHA-256 digest of the file content. Equal
// bytes always produce equal fingerprints; it identifies content, it does
// not protect it.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
