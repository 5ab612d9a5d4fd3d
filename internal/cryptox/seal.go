package cryptox

import (
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/dmitrijs2005/sigrelay/internal/common"
)

const (
	KEKBytes  = 32
	SaltBytes = 16
)

// SealedKey is a private key encrypted under a passphrase-derived key.
type SealedKey struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// DeriveKEK derives a key-encryption key from passphrase and salt with Argon2id.
func DeriveKEK(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KEKBytes)
}

// SealPrivateKey encrypts privateKey with ChaCha20-Poly1305 under a KEK
// derived from passphrase. The public key is bound as associated data so a
// sealed blob cannot be moved to another key file unnoticed.
func SealPrivateKey(privateKey, publicKey string, passphrase []byte) (*SealedKey, error) {
	if _, err := parsePrivateKey(privateKey); err != nil {
		return nil, err
	}

	salt := common.GenerateRandByteArray(SaltBytes)
	kek := DeriveKEK(passphrase, salt)
	defer common.WipeByteArray(kek)

	aead, err := chacha20poly1305.New(kek)
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(aead.NonceSize())
	ct := aead.Seal(nil, nonce, []byte(privateKey), []byte(publicKey))

	return &SealedKey{Salt: salt, Nonce: nonce, Ciphertext: ct}, nil
}

// OpenPrivateKey reverses SealPrivateKey. A wrong passphrase or tampered blob
// yields ErrInvalidKey.
func OpenPrivateKey(sealed *SealedKey, publicKey string, passphrase []byte) (string, error) {
	if sealed == nil || len(sealed.Salt) != SaltBytes {
		return "", fmt.Errorf("%w: malformed sealed key", common.ErrInvalidKey)
	}
	kek := DeriveKEK(passphrase, sealed.Salt)
	defer common.WipeByteArray(kek)

	aead, err := chacha20poly1305.New(kek)
	if err != nil {
		return "", err
	}
	if len(sealed.Nonce) != aead.NonceSize() {
		return "", fmt.Errorf("%w: malformed sealed key", common.ErrInvalidKey)
	}
	pt, err := aead.Open(nil, sealed.Nonce, sealed.Ciphertext, []byte(publicKey))
	if err != nil {
		return "", fmt.Errorf("%w: wrong passphrase or corrupted key file", common.ErrInvalidKey)
	}
	defer common.WipeByteArray(pt)
	return string(pt), nil
}
