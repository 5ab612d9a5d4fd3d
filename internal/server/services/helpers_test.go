package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/sigrelay/internal/cryptox"
	"github.com/dmitrijs2005/sigrelay/internal/logging"
	"github.com/dmitrijs2005/sigrelay/internal/models"
	"github.com/dmitrijs2005/sigrelay/internal/server/config"
	"github.com/dmitrijs2005/sigrelay/internal/server/repositories/events"
	"github.com/dmitrijs2005/sigrelay/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sigrelay/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/sigrelay/internal/server/repositories/users"
	"github.com/dmitrijs2005/sigrelay/internal/store"
)

var errStorage = errors.New("storage down")

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	return c
}

func newKeyPair(t *testing.T) cryptox.KeyPair {
	t.Helper()
	kp, err := cryptox.GenerateKeyPair()
	require.NoError(t, err)
	return kp
}

func signedEvent(t *testing.T, kp cryptox.KeyPair, content string, expiresAt int64) *models.Event {
	t.Helper()
	e := models.NewEvent(kp.PublicKey, content, expiresAt)
	require.NoError(t, e.Sign(kp.PrivateKey))
	return e
}

// clockedManager returns a manager whose stores read the time from *now.
func clockedManager(now *time.Time) *repomanager.InMemoryRepositoryManager {
	return repomanager.NewInMemoryRepositoryManager(store.WithClock(func() time.Time { return *now }))
}

// brokenManager fails every write.
type brokenManager struct {
	*repomanager.InMemoryRepositoryManager
}

type brokenEvents struct{ events.Repository }

func (brokenEvents) Save(context.Context, *models.Event) error { return errStorage }

type brokenSessions struct{ sessions.Repository }

func (brokenSessions) Save(context.Context, *models.Session) error { return errStorage }

type brokenUsers struct{ users.Repository }

func (brokenUsers) Save(context.Context, *models.User) error { return errStorage }

func (m brokenManager) Events() events.Repository {
	return brokenEvents{m.InMemoryRepositoryManager.Events()}
}

func (m brokenManager) Sessions() sessions.Repository {
	return brokenSessions{m.InMemoryRepositoryManager.Sessions()}
}

func (m brokenManager) Users() users.Repository {
	return brokenUsers{m.InMemoryRepositoryManager.Users()}
}

func newBrokenManager() brokenManager {
	return brokenManager{repomanager.NewInMemoryRepositoryManager()}
}

var nop logging.Logger = logging.Nop{}
