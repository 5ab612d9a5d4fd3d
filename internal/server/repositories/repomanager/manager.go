package repomanager

import (
	"github.com/dmitrijs2005/sigrelay/internal/server/repositories/events"
	"github.com/dmitrijs2005/sigrelay/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/sigrelay/internal/server/repositories/users"
)

// RepositoryManager hands out the repositories owned by the server state.
type RepositoryManager interface {
	Events() events.Repository
	Sessions() sessions.Repository
	Users() users.Repository
}
