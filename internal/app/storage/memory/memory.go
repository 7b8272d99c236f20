package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/R3E-Network/fatesheet/internal/app/domain/character"
	"github.com/R3E-Network/fatesheet/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local development.
type Store struct {
	mu            sync.RWMutex
	todos         []string
	characters    map[string]character.Record
	allowedSkills []string
}

var _ storage.TodoStore = (*Store)(nil)
var _ storage.CharacterStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		todos:      []string{},
		characters: make(map[string]character.Record),
	}
}

// TodoStore implementation -------------------------------------------------

// Append adds item to the end of the list. The returned identifier is not
// retained.
func (s *Store) Append(_ context.Context, item string) (uuid.UUID, error) {
	id := uuid.New()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.todos = append(s.todos, item)
	return id, nil
}

func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.todos))
	copy(out, s.todos)
	return out, nil
}

// CharacterStore implementation --------------------------------------------

// PutCharacter inserts or replaces a character.
func (s *Store) PutCharacter(id string, rec character.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.characters[id] = cloneRecord(rec)
}

// SetAllowedSkills replaces the allowed skill list.
func (s *Store) SetAllowedSkills(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowedSkills = append([]string(nil), names...)
}

func (s *Store) GetCharacter(_ context.Context, id string) (character.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.characters[id]
	if !ok {
		return character.Record{}, storage.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (s *Store) ListAllowedSkills(_ context.Context) ([]string, error) {
	s.mu.RLock()
	out := make([]string, len(s.allowedSkills))
	copy(out, s.allowedSkills)
	s.mu.RUnlock()

	sort.Strings(out)
	return out, nil
}

func (s *Store) UpdateCharacter(_ context.Context, id string, rec character.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.characters[id]; !ok {
		return storage.ErrNotFound
	}
	s.characters[id] = cloneRecord(rec)
	return nil
}

func cloneRecord(rec character.Record) character.Record {
	return character.Record{
		Name:    rec.Name,
		Stunts:  append([]string{}, rec.Stunts...),
		Skills:  append([]character.SkillLevel{}, rec.Skills...),
		Aspects: append([]character.Aspect{}, rec.Aspects...),
	}
}
