// Package assertion implements the handshake credential: a compact JWT that
// a client signs with its own secp256k1 key to prove it holds the key a new
// session will be bound to.
//
// The token uses the "BIP340" algorithm registered with golang-jwt. Its sub
// claim is the client's hex x-only public key, which is also the key the
// signature is checked against.
package assertion

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/cryptox"
)

// DefaultLifetime is the exp - iat window of assertions built by New.
const DefaultLifetime = time.Minute

// SigningMethodBIP340 signs with a hex private key string and verifies with
// a hex x-only public key string.
var SigningMethodBIP340 = &signingMethodBIP340{}

type signingMethodBIP340 struct{}

func init() {
	jwt.RegisterSigningMethod(SigningMethodBIP340.Alg(), func() jwt.SigningMethod {
		return SigningMethodBIP340
	})
}

func (m *signingMethodBIP340) Alg() string { return "BIP340" }

func (m *signingMethodBIP340) Sign(signingString string, key any) ([]byte, error) {
	priv, ok := key.(string)
	if !ok {
		return nil, jwt.ErrInvalidKeyType
	}
	sig, err := cryptox.Sign([]byte(signingString), priv)
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(sig)
}

func (m *signingMethodBIP340) Verify(signingString string, sig []byte, key any) error {
	pub, ok := key.(string)
	if !ok {
		return jwt.ErrInvalidKeyType
	}
	valid, err := cryptox.Verify([]byte(signingString), hex.EncodeToString(sig), pub)
	if err != nil {
		return err
	}
	if !valid {
		return jwt.ErrSignatureInvalid
	}
	return nil
}

// New returns an assertion for the key pair owning privateKey, issued at
// now and valid for lifetime (DefaultLifetime when zero).
func New(privateKey string, lifetime time.Duration, now time.Time) (string, error) {
	pub, err := cryptox.PublicKeyOf(privateKey)
	if err != nil {
		return "", err
	}
	if lifetime == 0 {
		lifetime = DefaultLifetime
	}

	token := jwt.NewWithClaims(SigningMethodBIP340, jwt.RegisteredClaims{
		Subject:   pub,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
	})
	return token.SignedString(privateKey)
}

// Parse verifies token at now and returns the public key it was signed by.
//
// The token must use BIP340, carry iat and exp, be unexpired, and be no
// older than maxAge. Any failure is reported as ErrorUnauthenticated; the
// wrapped cause is kept for logging.
func Parse(token string, maxAge time.Duration, now time.Time) (string, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		sub, err := t.Claims.GetSubject()
		if err != nil {
			return nil, err
		}
		if err := cryptox.ValidatePublicKey(sub); err != nil {
			return nil, err
		}
		return sub, nil
	},
		jwt.WithValidMethods([]string{SigningMethodBIP340.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorUnauthenticated, err)
	}

	if claims.IssuedAt == nil {
		return "", fmt.Errorf("%w: assertion has no iat", common.ErrorUnauthenticated)
	}
	if age := now.Sub(claims.IssuedAt.Time); age > maxAge {
		return "", fmt.Errorf("%w: assertion is %s old", common.ErrorUnauthenticated, age.Truncate(time.Second))
	}
	return claims.Subject, nil
}
