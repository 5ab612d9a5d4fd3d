package events

import (
	"context"

	"github.com/dmitrijs2005/sigrelay/internal/models"
)

// Repository stores signed events by id. Expired events are reported as
// common.ErrorNotFound and left out of List.
type Repository interface {
	Save(ctx context.Context, e *models.Event) error
	Get(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	Delete(ctx context.Context, id string) error
}
