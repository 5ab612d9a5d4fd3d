package sessions

import (
	"context"

	"github.com/dmitrijs2005/sigrelay/internal/models"
)

// Repository stores sessions by id. An expired session is indistinguishable
// from one that never existed: both are common.ErrorNotFound.
type Repository interface {
	Save(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}
