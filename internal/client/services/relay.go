package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sigrelay/internal/assertion"
	"github.com/dmitrijs2005/sigrelay/internal/client/api"
	"github.com/dmitrijs2005/sigrelay/internal/client/state"
	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/cryptox"
	"github.com/dmitrijs2005/sigrelay/internal/models"
)

// Store is the part of state.Store the service needs.
type Store interface {
	SaveIdentity(ctx context.Context, id *state.Identity) error
	Identity(ctx context.Context) (*state.Identity, error)
	SaveSession(ctx context.Context, sess *state.Session) error
	Session(ctx context.Context, t time.Time) (*state.Session, error)
	ClearSession(ctx context.Context) error
	Reset(ctx context.Context) ([]string, error)
}

// EventDraft describes an event to be signed.
type EventDraft struct {
	Content string
	Kind    uint32
	Tags    string
	// TTL sets ExpiresAt relative to signing time; zero never expires.
	TTL time.Duration
}

type RelayService struct {
	client api.Client
	store  Store
	now    func() time.Time
}

func NewRelayService(c api.Client, s Store) *RelayService {
	return &RelayService{client: c, store: s, now: time.Now}
}

func (s *RelayService) Close() error {
	return s.client.Close()
}

func (s *RelayService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Keygen creates and stores a new identity. An existing identity is only
// replaced when force is set.
func (s *RelayService) Keygen(ctx context.Context, passphrase []byte, force bool) (*state.Identity, error) {
	kp, err := cryptox.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	return s.save(ctx, kp, passphrase, force)
}

// ImportKey stores the identity owning privateKey.
func (s *RelayService) ImportKey(ctx context.Context, privateKey string, passphrase []byte, force bool) (*state.Identity, error) {
	pub, err := cryptox.PublicKeyOf(privateKey)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, cryptox.KeyPair{PublicKey: pub, PrivateKey: privateKey}, passphrase, force)
}

func (s *RelayService) save(ctx context.Context, kp cryptox.KeyPair, passphrase []byte, force bool) (*state.Identity, error) {
	if !force {
		_, err := s.store.Identity(ctx)
		if err == nil {
			return nil, ErrIdentityExists
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
	}

	id, err := state.NewIdentity(kp, passphrase)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveIdentity(ctx, id); err != nil {
		return nil, err
	}
	return id, nil
}

// Identity returns the stored identity or ErrNoIdentity.
func (s *RelayService) Identity(ctx context.Context) (*state.Identity, error) {
	id, err := s.store.Identity(ctx)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, ErrNoIdentity
	}
	return id, err
}

// ExportKey returns the stored key pair with the private key unlocked.
func (s *RelayService) ExportKey(ctx context.Context, passphrase []byte) (cryptox.KeyPair, error) {
	id, priv, err := s.privateKey(ctx, passphrase)
	if err != nil {
		return cryptox.KeyPair{}, err
	}
	return cryptox.KeyPair{PublicKey: id.PublicKey, PrivateKey: priv}, nil
}

// Reset forgets the identity and the session. It returns the names of the
// entries that were removed.
func (s *RelayService) Reset(ctx context.Context) ([]string, error) {
	s.client.SetToken("")
	return s.store.Reset(ctx)
}

func (s *RelayService) privateKey(ctx context.Context, passphrase []byte) (*state.Identity, string, error) {
	id, err := s.Identity(ctx)
	if err != nil {
		return nil, "", err
	}
	priv, err := id.Unlock(passphrase)
	if err != nil {
		return nil, "", err
	}
	return id, priv, nil
}

// Login runs the handshake with a fresh assertion and stores the session.
// ttl zero lets the server pick its default.
func (s *RelayService) Login(ctx context.Context, passphrase []byte, ttl time.Duration) (*state.Session, error) {
	_, priv, err := s.privateKey(ctx, passphrase)
	if err != nil {
		return nil, err
	}

	token, err := assertion.New(priv, 0, s.now())
	if err != nil {
		return nil, err
	}
	s.client.SetToken(token)

	info, err := s.client.Authenticate(ctx, ttl)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	sess := &state.Session{
		ID:              info.SessionID,
		ServerPublicKey: info.ServerPublicKey,
		ExpiresAt:       time.Unix(info.ExpiresAt, 0),
	}
	if err := s.store.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	s.client.SetToken(sess.ID)
	return sess, nil
}

// Logout forgets the local session. The relay lets it expire on its own.
func (s *RelayService) Logout(ctx context.Context) error {
	s.client.SetToken("")
	return s.store.ClearSession(ctx)
}

func (s *RelayService) useSession(ctx context.Context) (*state.Session, error) {
	sess, err := s.store.Session(ctx, s.now())
	if errors.Is(err, common.ErrorNotFound) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, err
	}
	s.client.SetToken(sess.ID)
	return sess, nil
}

// call runs fn with the session token and drops the local session when the
// relay no longer knows it.
func (s *RelayService) call(ctx context.Context, fn func() error) error {
	if _, err := s.useSession(ctx); err != nil {
		return err
	}
	err := fn()
	if !errors.Is(err, common.ErrorUnauthenticated) {
		return err
	}
	err = fmt.Errorf("%w: %w", ErrNotLoggedIn, err)
	if cerr := s.store.ClearSession(ctx); cerr != nil {
		return errors.Join(err, fmt.Errorf("drop session: %w", cerr))
	}
	return err
}

// Session asks the relay about the current session.
func (s *RelayService) Session(ctx context.Context) (*state.Session, error) {
	var sess *state.Session
	err := s.call(ctx, func() error {
		info, err := s.client.GetSession(ctx)
		if err != nil {
			return err
		}
		sess = &state.Session{ID: info.SessionID, ServerPublicKey: info.ServerPublicKey, ExpiresAt: time.Unix(info.ExpiresAt, 0)}
		return nil
	})
	return sess, err
}

// SharedSecret recomputes the ECDH secret of the current session from the
// stored private key and the server's session public key.
func (s *RelayService) SharedSecret(ctx context.Context, passphrase []byte) (string, error) {
	sess, err := s.useSession(ctx)
	if err != nil {
		return "", err
	}
	_, priv, err := s.privateKey(ctx, passphrase)
	if err != nil {
		return "", err
	}
	return cryptox.DeriveSharedSecret(priv, sess.ServerPublicKey)
}

// Sign builds and signs an event locally with the stored identity.
func (s *RelayService) Sign(ctx context.Context, passphrase []byte, d EventDraft) (*models.Event, error) {
	kp, err := s.ExportKey(ctx, passphrase)
	if err != nil {
		return nil, err
	}
	return s.SignWith(kp, d)
}

// SignWith signs d with kp instead of the stored identity.
func (s *RelayService) SignWith(kp cryptox.KeyPair, d EventDraft) (*models.Event, error) {
	var expiresAt int64
	if d.TTL > 0 {
		expiresAt = s.now().Add(d.TTL).Unix()
	}
	e := models.NewEvent(kp.PublicKey, d.Content, expiresAt)
	e.Kind = d.Kind
	e.Tags = d.Tags
	if err := e.Sign(kp.PrivateKey); err != nil {
		return nil, err
	}
	return e, nil
}

// Publish signs d and sends it to the relay.
func (s *RelayService) Publish(ctx context.Context, passphrase []byte, d EventDraft) (*models.Event, error) {
	e, err := s.Sign(ctx, passphrase, d)
	if err != nil {
		return nil, err
	}

	var out *models.Event
	err = s.call(ctx, func() (err error) {
		out, err = s.client.PublishEvent(ctx, e)
		return err
	})
	return out, err
}

// Events lists the relay's events. The whole listing is rejected if any
// event fails its check.
func (s *RelayService) Events(ctx context.Context) ([]*models.Event, error) {
	var out []*models.Event
	err := s.call(ctx, func() (err error) {
		out, err = s.client.ListEvents(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, e := range out {
		if err := e.Check(); err != nil {
			return nil, fmt.Errorf("relay returned a bad event %q: %w", e.ID, err)
		}
	}
	return out, nil
}

// Event fetches an event and checks its signature before returning it.
func (s *RelayService) Event(ctx context.Context, id string) (*models.Event, error) {
	var out *models.Event
	err := s.call(ctx, func() (err error) {
		out, err = s.client.GetEvent(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := out.Check(); err != nil {
		return nil, fmt.Errorf("relay returned a bad event: %w", err)
	}
	return out, nil
}

func (s *RelayService) DeleteEvent(ctx context.Context, id string) error {
	return s.call(ctx, func() error {
		return s.client.DeleteEvent(ctx, id)
	})
}

// Register publishes name for the stored identity.
func (s *RelayService) Register(ctx context.Context, name string) (*models.User, error) {
	id, err := s.Identity(ctx)
	if err != nil {
		return nil, err
	}
	u := models.NewUser(name, id.PublicKey)
	if err := u.Validate(); err != nil {
		return nil, err
	}

	var out *models.User
	err = s.call(ctx, func() (err error) {
		out, err = s.client.RegisterUser(ctx, u)
		return err
	})
	return out, err
}

func (s *RelayService) Users(ctx context.Context) ([]*models.User, error) {
	var out []*models.User
	err := s.call(ctx, func() (err error) {
		out, err = s.client.ListUsers(ctx)
		return err
	})
	return out, err
}

func (s *RelayService) User(ctx context.Context, publicKey string) (*models.User, error) {
	var out *models.User
	err := s.call(ctx, func() (err error) {
		out, err = s.client.GetUser(ctx, publicKey)
		return err
	})
	return out, err
}
