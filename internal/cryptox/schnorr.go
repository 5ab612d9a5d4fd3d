package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"github.com/dmitrijs2005/sigrelay/internal/common"
)

// Sign returns the hex BIP-340 Schnorr signature of sha256(message).
// A malformed private key yields ErrInvalidKey.
func Sign(message []byte, privateKey string) (string, error) {
	priv, err := parsePrivateKey(privateKey)
	if err != nil {
		return "", err
	}
	defer priv.Zero()

	digest := sha256.Sum256(message)
	sig, err := schnorr.Sign(priv, digest[:])
	if err != nil {
		return "", fmt.Errorf("schnorr sign: %w", err)
	}
	return hex.EncodeToString(sig.Serialize()), nil
}

// Verify checks signature over sha256(message) against publicKey.
//
// A signature that does not verify is reported as false with a nil error.
// Errors are returned only when an encoding is structurally malformed (not
// hex, or the wrong length): ErrInvalidKey for the key, ErrInvalidSignature
// for the signature. Well-shaped input that names no valid curve point or
// scalar simply fails to verify.
func Verify(message []byte, signature, publicKey string) (bool, error) {
	keyBytes, err := decodePublicKey(publicKey)
	if err != nil {
		return false, err
	}
	raw, err := hex.DecodeString(signature)
	if err != nil {
		return false, fmt.Errorf("%w: signature is not hex", common.ErrInvalidSignature)
	}
	if len(raw) != SignatureSize {
		return false, fmt.Errorf("%w: signature must be %d bytes, got %d", common.ErrInvalidSignature, SignatureSize, len(raw))
	}

	pub, err := parsePublicKey(keyBytes)
	if err != nil {
		return false, nil
	}
	sig, err := schnorr.ParseSignature(raw)
	if err != nil {
		return false, nil
	}

	digest := sha256.Sum256(message)
	return sig.Verify(digest[:], pub), nil
}
