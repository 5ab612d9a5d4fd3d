package sessions

import (
	"context"

	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/models"
	"github.com/dmitrijs2005/sigrelay/internal/store"
)

type InMemoryRepository struct {
	sessions *store.Expiring[models.Session]
}

func NewInMemoryRepository(s *store.Expiring[models.Session]) *InMemoryRepository {
	return &InMemoryRepository{sessions: s}
}

func (r *InMemoryRepository) Save(ctx context.Context, s *models.Session) error {
	r.sessions.Put(s.ID, *s, s.ExpiresAt)
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	s, ok := r.sessions.Get(id)
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &s, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.sessions.Delete(id)
	return nil
}
