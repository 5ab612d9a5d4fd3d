package cryptox

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/dmitrijs2005/sigrelay/internal/common"
)

const (
	PrivateKeySize = 32
	PublicKeySize  = 32
	SignatureSize  = 64
)

// KeyPair is a hex-encoded secp256k1 key pair. It is also the on-disk key
// file layout, hence the JSON tags.
type KeyPair struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

// String keeps private key material out of logs and %v output.
func (k KeyPair) String() string {
	return "KeyPair{" + k.PublicKey + "}"
}

// GenerateKeyPair returns a fresh key pair read from the system random source.
// The only possible failure is ErrEntropyFailure.
func GenerateKeyPair() (KeyPair, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return KeyPair{}, fmt.Errorf("%w: %v", common.ErrEntropyFailure, err)
	}
	defer priv.Zero()

	return KeyPair{
		PublicKey:  hex.EncodeToString(schnorr.SerializePubKey(priv.PubKey())),
		PrivateKey: hex.EncodeToString(priv.Serialize()),
	}, nil
}

// PublicKeyOf returns the x-only public key for privateKey.
func PublicKeyOf(privateKey string) (string, error) {
	priv, err := parsePrivateKey(privateKey)
	if err != nil {
		return "", err
	}
	defer priv.Zero()
	return hex.EncodeToString(schnorr.SerializePubKey(priv.PubKey())), nil
}

// ValidatePublicKey returns nil when publicKey is a well-formed key naming a
// point on the curve.
func ValidatePublicKey(publicKey string) error {
	b, err := decodePublicKey(publicKey)
	if err != nil {
		return err
	}
	_, err = parsePublicKey(b)
	return err
}

// SameKey reports whether a and b encode the same public key, ignoring hex
// letter case. Malformed input never matches.
func SameKey(a, b string) bool {
	ab, err := decodePublicKey(a)
	if err != nil {
		return false
	}
	bb, err := decodePublicKey(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

func parsePrivateKey(s string) (*btcec.PrivateKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: private key is not hex", common.ErrInvalidKey)
	}
	defer common.WipeByteArray(b)

	if len(b) != PrivateKeySize {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d", common.ErrInvalidKey, PrivateKeySize, len(b))
	}

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(b); overflow || scalar.IsZero() {
		return nil, fmt.Errorf("%w: private key outside curve order", common.ErrInvalidKey)
	}
	return secp256k1.NewPrivateKey(&scalar), nil
}

// decodePublicKey checks the encoding shape of a public key: hex of the
// right length. It does not check that the point is on the curve.
func decodePublicKey(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: public key is not hex", common.ErrInvalidKey)
	}
	if len(b) != PublicKeySize {
		return nil, fmt.Errorf("%w: public key must be %d bytes, got %d", common.ErrInvalidKey, PublicKeySize, len(b))
	}
	return b, nil
}

func parsePublicKey(b []byte) (*btcec.PublicKey, error) {
	pub, err := schnorr.ParsePubKey(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidKey, err)
	}
	return pub, nil
}
