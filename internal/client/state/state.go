// Package state persists the CLI's identity and current session in a local
// SQLite database.
//
// The identity is the user's key pair. The private key is stored either in
// the clear or sealed under a passphrase (see cryptox.SealPrivateKey). The
// session is the id returned by the relay handshake together with the
// server's ephemeral public key, which is all a client needs to recompute
// the shared secret.
package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/sigrelay/internal/client/migrations"
	"github.com/dmitrijs2005/sigrelay/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/cryptox"
	"github.com/dmitrijs2005/sigrelay/internal/dbx"
)

const (
	identityKey = "identity"
	sessionKey  = "session"
)

// ErrPassphraseRequired is returned when the stored private key is sealed
// and no passphrase was supplied.
var ErrPassphraseRequired = errors.New("private key is sealed, passphrase required")

// Identity is a stored key pair. Exactly one of PrivateKey and Sealed is set.
type Identity struct {
	PublicKey  string             `json:"public_key"`
	PrivateKey string             `json:"private_key,omitempty"`
	Sealed     *cryptox.SealedKey `json:"sealed,omitempty"`
}

// NewIdentity builds an Identity for kp, sealing the private key when
// passphrase is non-empty.
func NewIdentity(kp cryptox.KeyPair, passphrase []byte) (*Identity, error) {
	if len(passphrase) == 0 {
		return &Identity{PublicKey: kp.PublicKey, PrivateKey: kp.PrivateKey}, nil
	}
	sealed, err := cryptox.SealPrivateKey(kp.PrivateKey, kp.PublicKey, passphrase)
	if err != nil {
		return nil, err
	}
	return &Identity{PublicKey: kp.PublicKey, Sealed: sealed}, nil
}

func (i *Identity) IsSealed() bool {
	return i.Sealed != nil
}

// Unlock returns the private key, opening the sealed form with passphrase
// when needed.
func (i *Identity) Unlock(passphrase []byte) (string, error) {
	if !i.IsSealed() {
		return i.PrivateKey, nil
	}
	if len(passphrase) == 0 {
		return "", ErrPassphraseRequired
	}
	return cryptox.OpenPrivateKey(i.Sealed, i.PublicKey, passphrase)
}

// Session is the locally remembered relay session.
type Session struct {
	ID              string    `json:"session_id"`
	ServerPublicKey string    `json:"server_public_key"`
	ExpiresAt       time.Time `json:"expires_at"`
}

func (s *Session) Expired(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the state database at dsn.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := dbx.OpenSQLite(ctx, dsn, migrations.Migrations)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func get[T any](ctx context.Context, r metadata.Repository, key string) (*T, error) {
	b, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("corrupted %s record: %w", key, err)
	}
	return &v, nil
}

func set(ctx context.Context, r metadata.Repository, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.Set(ctx, key, b)
}

// SaveIdentity replaces the stored identity. Any session belongs to the
// previous key and is dropped in the same transaction.
func (s *Store) SaveIdentity(ctx context.Context, id *Identity) error {
	if err := cryptox.ValidatePublicKey(id.PublicKey); err != nil {
		return err
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := s.repo(tx)
		if err := set(ctx, r, identityKey, id); err != nil {
			return err
		}
		return r.Delete(ctx, sessionKey)
	})
}

// Identity returns the stored identity or common.ErrorNotFound.
func (s *Store) Identity(ctx context.Context) (*Identity, error) {
	return get[Identity](ctx, s.repo(s.db), identityKey)
}

func (s *Store) SaveSession(ctx context.Context, sess *Session) error {
	return set(ctx, s.repo(s.db), sessionKey, sess)
}

// Session returns the stored session. A session that has expired at t is
// removed and reported as common.ErrorNotFound.
func (s *Store) Session(ctx context.Context, t time.Time) (*Session, error) {
	r := s.repo(s.db)
	sess, err := get[Session](ctx, r, sessionKey)
	if err != nil {
		return nil, err
	}
	if sess.Expired(t) {
		if err := r.Delete(ctx, sessionKey); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("session expired at %s: %w", sess.ExpiresAt.Format(time.RFC3339), common.ErrorNotFound)
	}
	return sess, nil
}

func (s *Store) ClearSession(ctx context.Context) error {
	return s.repo(s.db).Delete(ctx, sessionKey)
}

// Reset removes every stored entry and returns the keys it dropped, sorted.
func (s *Store) Reset(ctx context.Context) ([]string, error) {
	var keys []string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := s.repo(tx)
		kv, err := r.List(ctx)
		if err != nil {
			return err
		}
		for k := range kv {
			keys = append(keys, k)
		}
		return r.Clear(ctx)
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}
