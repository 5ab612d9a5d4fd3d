package users

import (
	"context"

	"github.com/dmitrijs2005/sigrelay/internal/models"
)

// Repository is the name directory keyed by public key. Saving a user whose
// key is already present replaces the entry.
type Repository interface {
	Save(ctx context.Context, u *models.User) error
	Get(ctx context.Context, publicKey string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}
