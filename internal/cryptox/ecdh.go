package cryptox

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// DeriveSharedSecret computes the ECDH secret between privateKey and
// peerPublicKey and returns hex(sha256(x)), x being the x coordinate of the
// shared point. Public keys are x-only and lifted to the even-y point; since
// k·P and k·(-P) share x, the result is independent of that choice and
// derive(a, B) == derive(b, A) holds for every pair.
func DeriveSharedSecret(privateKey, peerPublicKey string) (string, error) {
	priv, err := parsePrivateKey(privateKey)
	if err != nil {
		return "", err
	}
	defer priv.Zero()

	b, err := decodePublicKey(peerPublicKey)
	if err != nil {
		return "", err
	}
	pub, err := parsePublicKey(b)
	if err != nil {
		return "", err
	}

	x := secp256k1.GenerateSharedSecret(priv, pub)
	sum := sha256.Sum256(x)
	return hex.EncodeToString(sum[:]), nil
}
