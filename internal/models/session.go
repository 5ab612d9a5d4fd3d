package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/cryptox"
)

// DefaultSessionTTL applies when a session is requested with a zero TTL.
const DefaultSessionTTL = time.Hour

// Session is a time-boxed grant bound to a client public key.
//
// The server generates KeyPair per session. SharedSecret is the ECDH secret
// between that key pair and PublicKey; the client derives the same value from
// its private key and ServerPublicKey, so neither the secret nor the server
// private key is ever serialised.
//
// ExpiresAt is unix seconds. A zero ExpiresAt means the session never expires
// and is never evicted by the store. NewSession always sets a non-zero value;
// the zero case exists only for sessions built by hand.
type Session struct {
	ID           string          `json:"id"`
	PublicKey    string          `json:"public_key"`
	KeyPair      cryptox.KeyPair `json:"-"`
	SharedSecret string          `json:"-"`
	ExpiresAt    int64           `json:"expires_at"`
}

// NewSession establishes a session for clientPublicKey valid for ttl from t,
// or DefaultSessionTTL when ttl is zero. A negative ttl is a validation error
// and a malformed client key yields ErrInvalidKey.
func NewSession(clientPublicKey string, ttl time.Duration, t time.Time) (*Session, error) {
	if ttl < 0 {
		return nil, fmt.Errorf("%w: negative session ttl", common.ErrorValidation)
	}
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}

	kp, err := cryptox.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	secret, err := cryptox.DeriveSharedSecret(kp.PrivateKey, clientPublicKey)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEntropyFailure, err)
	}

	return &Session{
		ID:           id.String(),
		PublicKey:    clientPublicKey,
		KeyPair:      kp,
		SharedSecret: secret,
		ExpiresAt:    t.Add(ttl).Unix(),
	}, nil
}

// ServerPublicKey is the public half of the per-session server key pair.
func (s *Session) ServerPublicKey() string {
	return s.KeyPair.PublicKey
}

// Expired reports whether the session is past its expiry at t.
func (s *Session) Expired(t time.Time) bool {
	return s.ExpiresAt != 0 && t.Unix() >= s.ExpiresAt
}
