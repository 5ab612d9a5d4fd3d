package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sigrelay/internal/assertion"
	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/cryptox"
	"github.com/dmitrijs2005/sigrelay/internal/logging"
	"github.com/dmitrijs2005/sigrelay/internal/models"
	"github.com/dmitrijs2005/sigrelay/internal/server/config"
	"github.com/dmitrijs2005/sigrelay/internal/server/repositories/repomanager"
)

// SessionService creates and resolves sessions.
type SessionService struct {
	repomanager     repomanager.RepositoryManager
	logger          logging.Logger
	defaultTTL      time.Duration
	maxTTL          time.Duration
	assertionMaxAge time.Duration
	now             func() time.Time
}

func NewSessionService(m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *SessionService {
	return &SessionService{
		repomanager:     m,
		logger:          l.With("module", "sessions"),
		defaultTTL:      cfg.DefaultSessionTTL,
		maxTTL:          cfg.MaxSessionTTL,
		assertionMaxAge: cfg.AssertionMaxAge,
		now:             time.Now,
	}
}

// Authenticate verifies a handshake assertion and establishes a session for
// the key that signed it.
func (s *SessionService) Authenticate(ctx context.Context, token string, ttl time.Duration) (*models.Session, error) {
	pub, err := assertion.Parse(token, s.assertionMaxAge, s.now())
	if err != nil {
		s.logger.Warn(ctx, "assertion rejected", "error", err)
		return nil, err
	}
	return s.Establish(ctx, pub, ttl)
}

// Establish creates and stores a session bound to clientPublicKey. A zero
// ttl selects the configured default; a ttl above the configured maximum is
// clamped to it.
func (s *SessionService) Establish(ctx context.Context, clientPublicKey string, ttl time.Duration) (*models.Session, error) {
	if ttl < 0 {
		return nil, fmt.Errorf("%w: negative session ttl", common.ErrorValidation)
	}
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	if s.maxTTL > 0 && ttl > s.maxTTL {
		ttl = s.maxTTL
	}

	session, err := models.NewSession(clientPublicKey, ttl, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.Sessions().Save(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "session established",
		"key", cryptox.Fingerprint(clientPublicKey),
		"expires_at", session.ExpiresAt)
	return session, nil
}

// Resolve returns the live session with the given id, or
// common.ErrorNotFound.
func (s *SessionService) Resolve(ctx context.Context, id string) (*models.Session, error) {
	return s.repomanager.Sessions().Get(ctx, id)
}
