package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/cryptox"
	"github.com/dmitrijs2005/sigrelay/internal/logging"
	"github.com/dmitrijs2005/sigrelay/internal/models"
	"github.com/dmitrijs2005/sigrelay/internal/server/repositories/repomanager"
)

// EventService accepts signed events from session holders and serves them
// back.
type EventService struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewEventService(m repomanager.RepositoryManager, l logging.Logger) *EventService {
	return &EventService{
		repomanager: m,
		logger:      l.With("module", "events"),
		now:         time.Now,
	}
}

// Publish stores e after checking it.
//
// The event must verify and must be authored by the session's key
// (common.ErrorForbidden otherwise). An event already past its expiry is
// rejected with common.ErrorValidation.
func (s *EventService) Publish(ctx context.Context, session *models.Session, e *models.Event) (*models.Event, error) {
	if err := e.Check(); err != nil {
		s.logger.Warn(ctx, "event rejected", "id", e.ID, "error", err)
		return nil, err
	}
	if !cryptox.SameKey(e.PublicKey, session.PublicKey) {
		return nil, fmt.Errorf("%w: event author is not the session key", common.ErrorForbidden)
	}
	if e.Expired(s.now()) {
		return nil, fmt.Errorf("%w: event already expired", common.ErrorValidation)
	}

	if err := s.repomanager.Events().Save(ctx, e); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "event published", "id", e.ID, "author", cryptox.Fingerprint(e.PublicKey))
	return e, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	return s.repomanager.Events().Get(ctx, id)
}

// List returns every live event, newest first. Events created in the same
// second are ordered by id.
func (s *EventService) List(ctx context.Context) ([]*models.Event, error) {
	list, err := s.repomanager.Events().List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt != list[j].CreatedAt {
			return list[i].CreatedAt > list[j].CreatedAt
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

// Delete removes the event with the given id. Only its author may do that.
func (s *EventService) Delete(ctx context.Context, session *models.Session, id string) error {
	e, err := s.repomanager.Events().Get(ctx, id)
	if err != nil {
		return err
	}
	if !cryptox.SameKey(e.PublicKey, session.PublicKey) {
		return fmt.Errorf("%w: only the author may delete an event", common.ErrorForbidden)
	}
	if err := s.repomanager.Events().Delete(ctx, id); err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "event deleted", "id", id)
	return nil
}
