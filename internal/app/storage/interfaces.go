package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/R3E-Network/fatesheet/internal/app/domain/character"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// TodoStore persists todo items in submission order.
type TodoStore interface {
	// Append stores item and returns an identifier for it.
	Append(ctx context.Context, item string) (uuid.UUID, error)
	// List returns every item in submission order. An empty store yields an
	// empty slice.
	List(ctx context.Context) ([]string, error)
}

// CharacterStore persists character records and the allowed skill list.
type CharacterStore interface {
	GetCharacter(ctx context.Context, id string) (character.Record, error)
	// ListAllowedSkills returns skill names in alphabetical order.
	ListAllowedSkills(ctx context.Context) ([]string, error)
	UpdateCharacter(ctx context.Context, id string, rec character.Record) error
}
