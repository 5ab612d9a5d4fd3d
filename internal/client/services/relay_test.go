package services

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sigrelay/internal/client/api"
	"github.com/dmitrijs2005/sigrelay/internal/client/state"
	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/cryptox"
	"github.com/dmitrijs2005/sigrelay/internal/logging"
	"github.com/dmitrijs2005/sigrelay/internal/models"
	"github.com/dmitrijs2005/sigrelay/internal/server/config"
	"github.com/dmitrijs2005/sigrelay/internal/server/httpapi"
	"github.com/dmitrijs2005/sigrelay/internal/server/repositories/repomanager"
	serversvc "github.com/dmitrijs2005/sigrelay/internal/server/services"
)

func newRelayURL(t *testing.T) string {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	m := repomanager.NewInMemoryRepositoryManager()
	l := logging.Nop{}

	srv := httpapi.NewServer("", l,
		serversvc.NewEventService(m, l),
		serversvc.NewSessionService(m, cfg, l),
		serversvc.NewUserService(m, l))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func newService(t *testing.T, url string) (*RelayService, *state.Store) {
	t.Helper()
	st, err := state.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	s := NewRelayService(api.NewHTTPClient(url, nil), st)
	t.Cleanup(func() { _ = s.Close() })
	return s, st
}

func TestKeygen(t *testing.T) {
	s, _ := newService(t, newRelayURL(t))
	ctx := context.Background()

	_, err := s.Identity(ctx)
	require.ErrorIs(t, err, ErrNoIdentity)

	id, err := s.Keygen(ctx, nil, false)
	require.NoError(t, err)
	require.NoError(t, cryptox.ValidatePublicKey(id.PublicKey))

	_, err = s.Keygen(ctx, nil, false)
	require.ErrorIs(t, err, ErrIdentityExists)

	replaced, err := s.Keygen(ctx, []byte("pw"), true)
	require.NoError(t, err)
	assert.NotEqual(t, id.PublicKey, replaced.PublicKey)
	assert.True(t, replaced.IsSealed())
}

func TestImportKey(t *testing.T) {
	s, _ := newService(t, newRelayURL(t))
	ctx := context.Background()
	kp, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)

	id, err := s.ImportKey(ctx, kp.PrivateKey, nil, false)
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, id.PublicKey)

	_, err = s.ImportKey(ctx, "nothex", nil, true)
	assert.ErrorIs(t, err, common.ErrInvalidKey)
}

func TestLoginSecretPublish(t *testing.T) {
	s, _ := newService(t, newRelayURL(t))
	ctx := context.Background()
	pw := []byte("secret phrase")

	_, err := s.Keygen(ctx, pw, false)
	require.NoError(t, err)

	_, err = s.Events(ctx)
	require.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = s.Login(ctx, nil, 0)
	require.ErrorIs(t, err, state.ErrPassphraseRequired)

	sess, err := s.Login(ctx, pw, 10*time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), sess.ExpiresAt, 5*time.Second)

	remote, err := s.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, remote.ID)

	secret, err := s.SharedSecret(ctx, pw)
	require.NoError(t, err)
	assert.Len(t, secret, 64)

	e, err := s.Publish(ctx, pw, EventDraft{Content: "hello", Kind: 1, Tags: `[["t","x"]]`, TTL: time.Hour})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), e.Kind)
	assert.NotZero(t, e.ExpiresAt)

	got, err := s.Event(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)

	list, err := s.Events(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.DeleteEvent(ctx, e.ID))
	_, err = s.Event(ctx, e.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRegisterAndLookup(t *testing.T) {
	s, _ := newService(t, newRelayURL(t))
	ctx := context.Background()

	id, err := s.Keygen(ctx, nil, false)
	require.NoError(t, err)
	_, err = s.Login(ctx, nil, 0)
	require.NoError(t, err)

	_, err = s.Register(ctx, "   ")
	require.ErrorIs(t, err, common.ErrorValidation)

	u, err := s.Register(ctx, " alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Name)

	got, err := s.User(ctx, id.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)

	users, err := s.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUnknownSessionIsDropped(t *testing.T) {
	s, st := newService(t, newRelayURL(t))
	ctx := context.Background()

	_, err := s.Keygen(ctx, nil, false)
	require.NoError(t, err)
	require.NoError(t, st.SaveSession(ctx, &state.Session{ID: "stale", ExpiresAt: time.Now().Add(time.Hour)}))

	_, err = s.Events(ctx)
	require.ErrorIs(t, err, ErrNotLoggedIn)
	assert.ErrorIs(t, err, common.ErrorUnauthenticated)

	_, err = st.Session(ctx, time.Now())
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestLogout(t *testing.T) {
	s, _ := newService(t, newRelayURL(t))
	ctx := context.Background()

	_, err := s.Keygen(ctx, nil, false)
	require.NoError(t, err)
	_, err = s.Login(ctx, nil, 0)
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx))
	_, err = s.SharedSecret(ctx, nil)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestSign_LocalOnly(t *testing.T) {
	s, _ := newService(t, "http://127.0.0.1:1")
	ctx := context.Background()

	_, err := s.Sign(ctx, nil, EventDraft{Content: "x"})
	require.ErrorIs(t, err, ErrNoIdentity)

	_, err = s.Keygen(ctx, nil, false)
	require.NoError(t, err)

	e, err := s.Sign(ctx, nil, EventDraft{Content: "x"})
	require.NoError(t, err)
	assert.True(t, e.Verify())
	assert.Zero(t, e.ExpiresAt)
}

type stickyStore struct {
	*state.Store
}

var errDiskFull = errors.New("disk full")

func (stickyStore) ClearSession(context.Context) error { return errDiskFull }

func TestUnknownSession_ClearFailureReported(t *testing.T) {
	st, err := state.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	s := NewRelayService(api.NewHTTPClient(newRelayURL(t), nil), stickyStore{st})
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	_, err = s.Keygen(ctx, nil, false)
	require.NoError(t, err)
	require.NoError(t, st.SaveSession(ctx, &state.Session{ID: "stale", ExpiresAt: time.Now().Add(time.Hour)}))

	_, err = s.Events(ctx)
	require.ErrorIs(t, err, ErrNotLoggedIn)
	assert.ErrorIs(t, err, common.ErrorUnauthenticated)
	assert.ErrorIs(t, err, errDiskFull)
}

// cannedClient serves a fixed event listing.
type cannedClient struct {
	api.Client
	events []*models.Event
}

func (c *cannedClient) SetToken(string) {}

func (c *cannedClient) ListEvents(context.Context) ([]*models.Event, error) {
	return c.events, nil
}

func TestEvents_RejectsTamperedListing(t *testing.T) {
	st, err := state.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	ctx := context.Background()
	require.NoError(t, st.SaveSession(ctx, &state.Session{ID: "s", ExpiresAt: time.Now().Add(time.Hour)}))

	kp, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)
	good := models.NewEvent(kp.PublicKey, "fine", 0)
	require.NoError(t, good.Sign(kp.PrivateKey))
	bad := models.NewEvent(kp.PublicKey, "original", 0)
	require.NoError(t, bad.Sign(kp.PrivateKey))
	bad.Content = "altered"

	c := &cannedClient{events: []*models.Event{good}}
	s := NewRelayService(c, st)

	list, err := s.Events(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	c.events = append(c.events, bad)
	list, err = s.Events(ctx)
	assert.ErrorIs(t, err, common.ErrorSignatureMismatch)
	assert.ErrorContains(t, err, bad.ID)
	assert.Nil(t, list)
}

func TestExportKeyAndSignWith(t *testing.T) {
	s, _ := newService(t, "http://127.0.0.1:1")
	ctx := context.Background()
	pw := []byte("pw")

	_, err := s.ExportKey(ctx, pw)
	require.ErrorIs(t, err, ErrNoIdentity)

	id, err := s.Keygen(ctx, pw, false)
	require.NoError(t, err)

	_, err = s.ExportKey(ctx, nil)
	require.ErrorIs(t, err, state.ErrPassphraseRequired)

	kp, err := s.ExportKey(ctx, pw)
	require.NoError(t, err)
	assert.Equal(t, id.PublicKey, kp.PublicKey)
	pub, err := cryptox.PublicKeyOf(kp.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, pub)

	other, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)
	e, err := s.SignWith(other, EventDraft{Content: "x", TTL: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, other.PublicKey, e.PublicKey)
	assert.NotZero(t, e.ExpiresAt)
	assert.True(t, e.Verify())
}

func TestReset(t *testing.T) {
	s, _ := newService(t, newRelayURL(t))
	ctx := context.Background()

	_, err := s.Keygen(ctx, nil, false)
	require.NoError(t, err)
	_, err = s.Login(ctx, nil, 0)
	require.NoError(t, err)

	removed, err := s.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"identity", "session"}, removed)

	_, err = s.Identity(ctx)
	assert.ErrorIs(t, err, ErrNoIdentity)
	_, err = s.Events(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}
