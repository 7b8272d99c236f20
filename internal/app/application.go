package app

import (
	"context"

	"github.com/R3E-Network/fatesheet/internal/app/services/sheets"
	"github.com/R3E-Network/fatesheet/internal/app/services/todos"
	"github.com/R3E-Network/fatesheet/internal/app/storage"
	"github.com/R3E-Network/fatesheet/internal/app/storage/memory"
	"github.com/R3E-Network/fatesheet/internal/app/system"
	"github.com/R3E-Network/fatesheet/internal/logging"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Todos      storage.TodoStore
	Characters storage.CharacterStore
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logging.Logger

	Todos  *todos.Service
	Sheets *sheets.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logging.Logger) (*Application, error) {
	if log == nil {
		log = logging.NewDefault("app")
	}

	mem := memory.New()
	if stores.Todos == nil {
		stores.Todos = mem
	}
	if stores.Characters == nil {
		stores.Characters = mem
	}

	return &Application{
		manager: system.NewManager(),
		log:     log,
		Todos:   todos.New(stores.Todos, log),
		Sheets:  sheets.New(stores.Characters, log),
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
