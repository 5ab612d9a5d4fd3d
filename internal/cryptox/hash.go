package cryptox

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Hash returns the hex sha256 digest of b. Event ids are Hash(canonical payload).
func Hash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Fingerprint returns a short BLAKE3 digest of publicKey, 10 bytes as 20 hex
// chars. It is meant for logs and terminal output only.
func Fingerprint(publicKey string) string {
	b, err := decodePublicKey(publicKey)
	if err != nil {
		return "invalid"
	}
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:10])
}
