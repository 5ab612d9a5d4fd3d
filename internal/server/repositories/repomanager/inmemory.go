package repomanager

import (
	"github.com/dmitrijs2005/sigrelay/internal/models"
	"github.com/dmitrijs2005/sigrelay/internal/server/repositories/events"
	"github.com/dmitrijs2005/sigrelay/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/sigrelay/internal/server/repositories/users"
	"github.com/dmitrijs2005/sigrelay/internal/store"
)

// InMemoryRepositoryManager owns one expiring store per entity type. Nothing
// survives a restart.
type InMemoryRepositoryManager struct {
	events   *events.InMemoryRepository
	sessions *sessions.InMemoryRepository
	users    *users.InMemoryRepository
}

// NewInMemoryRepositoryManager builds the stores; opts (typically a test
// clock) apply to each of them.
func NewInMemoryRepositoryManager(opts ...store.Option) *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		events:   events.NewInMemoryRepository(store.NewExpiring[models.Event](opts...)),
		sessions: sessions.NewInMemoryRepository(store.NewExpiring[models.Session](opts...)),
		users:    users.NewInMemoryRepository(store.NewExpiring[models.User](opts...)),
	}
}

func (m *InMemoryRepositoryManager) Events() events.Repository {
	return m.events
}

func (m *InMemoryRepositoryManager) Sessions() sessions.Repository {
	return m.sessions
}

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}
