package events

import (
	"context"

	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/models"
	"github.com/dmitrijs2005/sigrelay/internal/store"
)

type InMemoryRepository struct {
	events *store.Expiring[models.Event]
}

func NewInMemoryRepository(s *store.Expiring[models.Event]) *InMemoryRepository {
	return &InMemoryRepository{events: s}
}

func (r *InMemoryRepository) Save(ctx context.Context, e *models.Event) error {
	r.events.Put(e.ID, *e, e.ExpiresAt)
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, id string) (*models.Event, error) {
	e, ok := r.events.Get(id)
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &e, nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*models.Event, error) {
	all := r.events.ListAll()
	out := make([]*models.Event, len(all))
	for i := range all {
		out[i] = &all[i]
	}
	return out, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.events.Delete(id)
	return nil
}
