package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/cryptox"
	"github.com/dmitrijs2005/sigrelay/internal/logging"
	"github.com/dmitrijs2005/sigrelay/internal/models"
	"github.com/dmitrijs2005/sigrelay/internal/server/repositories/repomanager"
)

// UserService maintains the name directory.
type UserService struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewUserService(m repomanager.RepositoryManager, l logging.Logger) *UserService {
	return &UserService{
		repomanager: m,
		logger:      l.With("module", "users"),
	}
}

// Register names the session's own key. Registering another key is
// common.ErrorForbidden; registering again renames.
func (s *UserService) Register(ctx context.Context, session *models.Session, u *models.User) (*models.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if !cryptox.SameKey(u.PublicKey, session.PublicKey) {
		return nil, fmt.Errorf("%w: a session may only register its own key", common.ErrorForbidden)
	}
	if err := s.repomanager.Users().Save(ctx, u); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "user registered", "name", u.Name, "key", cryptox.Fingerprint(u.PublicKey))
	return u, nil
}

func (s *UserService) Get(ctx context.Context, publicKey string) (*models.User, error) {
	return s.repomanager.Users().Get(ctx, publicKey)
}

// List returns every user ordered by name.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	list, err := s.repomanager.Users().List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].PublicKey < list[j].PublicKey
	})
	return list, nil
}
