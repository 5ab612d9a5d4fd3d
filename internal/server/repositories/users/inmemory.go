package users

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/models"
	"github.com/dmitrijs2005/sigrelay/internal/store"
)

// InMemoryRepository keeps users in an expiring store with no expiry set.
// Keys are normalised to lower-case hex.
type InMemoryRepository struct {
	users *store.Expiring[models.User]
}

func NewInMemoryRepository(s *store.Expiring[models.User]) *InMemoryRepository {
	return &InMemoryRepository{users: s}
}

func (r *InMemoryRepository) Save(ctx context.Context, u *models.User) error {
	r.users.Put(strings.ToLower(u.PublicKey), *u, 0)
	return nil
}

func (r *InMemoryRepository) Get(ctx context.Context, publicKey string) (*models.User, error) {
	u, ok := r.users.Get(strings.ToLower(publicKey))
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*models.User, error) {
	all := r.users.ListAll()
	out := make([]*models.User, len(all))
	for i := range all {
		out[i] = &all[i]
	}
	return out, nil
}
