// Package api talks to a relay server over HTTP or gRPC behind one
// interface. Transport failures map back to the sentinel errors in common,
// so callers can match with errors.Is regardless of transport.
package api

import (
	"context"
	"time"

	"github.com/dmitrijs2005/sigrelay/internal/models"
	"github.com/dmitrijs2005/sigrelay/internal/rpc"
)

// Client is a relay connection. SetToken selects the bearer credential sent
// with subsequent calls: a handshake assertion before Authenticate, the
// session id after it.
type Client interface {
	SetToken(token string)
	Ping(ctx context.Context) error
	Authenticate(ctx context.Context, ttl time.Duration) (*rpc.SessionInfo, error)
	GetSession(ctx context.Context) (*rpc.SessionInfo, error)
	PublishEvent(ctx context.Context, e *models.Event) (*models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]*models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	RegisterUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUser(ctx context.Context, publicKey string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	Close() error
}

func ttlString(ttl time.Duration) string {
	if ttl == 0 {
		return ""
	}
	return ttl.String()
}
