package todos

import (
	"context"

	"github.com/R3E-Network/fatesheet/internal/app/storage"
	svcerr "github.com/R3E-Network/fatesheet/internal/errors"
	"github.com/R3E-Network/fatesheet/internal/logging"
)

// Service manages the todo list.
type Service struct {
	store storage.TodoStore
	log   *logging.Logger
}

// New constructs a todo service.
func New(store storage.TodoStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("todos")
	}
	return &Service{store: store, log: log}
}

// Add appends item and returns the refreshed list. The append and the
// listing are separate store calls, so concurrent writers may interleave.
func (s *Service) Add(ctx context.Context, item string) ([]string, error) {
	id, err := s.store.Append(ctx, item)
	if err != nil {
		return nil, svcerr.Upstream("save todo", err)
	}
	s.log.WithContext(ctx).WithField("todo_id", id.String()).Debug("todo added")

	return s.List(ctx)
}

// List returns every todo in submission order.
func (s *Service) List(ctx context.Context) ([]string, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, svcerr.Upstream("list todos", err)
	}
	return items, nil
}
