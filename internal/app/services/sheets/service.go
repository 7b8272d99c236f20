// Package sheets builds Fate character sheets from stored character records.
package sheets

import (
	"context"
	"errors"
	"net/url"

	"github.com/R3E-Network/fatesheet/internal/app/domain/character"
	"github.com/R3E-Network/fatesheet/internal/app/storage"
	svcerr "github.com/R3E-Network/fatesheet/internal/errors"
	"github.com/R3E-Network/fatesheet/internal/logging"
)

// Service loads, assembles and updates character sheets.
type Service struct {
	store storage.CharacterStore
	log   *logging.Logger
}

// New constructs a sheet service.
func New(store storage.CharacterStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("sheets")
	}
	return &Service{store: store, log: log}
}

// Get loads character id and shapes it for display.
func (s *Service) Get(ctx context.Context, id string, editable bool) (character.Sheet, error) {
	rec, err := s.store.GetCharacter(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return character.Sheet{}, svcerr.NotFound("character", id)
		}
		return character.Sheet{}, svcerr.Upstream("load character", err)
	}

	allSkills, err := s.store.ListAllowedSkills(ctx)
	if err != nil {
		return character.Sheet{}, svcerr.Upstream("load allowed skills", err)
	}

	sheet, err := Assemble(id, rec, allSkills, editable)
	if err != nil {
		s.log.WithContext(ctx).WithError(err).WithField("character_id", id).Error("stored character cannot be displayed")
		return character.Sheet{}, svcerr.Upstream("assemble character sheet", err)
	}
	return sheet, nil
}

// Update replaces character id with the submitted form and returns the
// refreshed, read-only sheet.
func (s *Service) Update(ctx context.Context, id string, form url.Values) (character.Sheet, error) {
	allowed, err := s.store.ListAllowedSkills(ctx)
	if err != nil {
		return character.Sheet{}, svcerr.Upstream("load allowed skills", err)
	}

	rec, err := ParseUpdateForm(form, allowed)
	if err != nil {
		return character.Sheet{}, svcerr.BadRequest(err.Error(), err)
	}

	if err := s.store.UpdateCharacter(ctx, id, rec); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return character.Sheet{}, svcerr.NotFound("character", id)
		}
		return character.Sheet{}, svcerr.Upstream("update character", err)
	}
	s.log.WithContext(ctx).
		WithField("character_id", id).
		WithField("skills", len(rec.Skills)).
		WithField("aspects", len(rec.Aspects)).
		Info("character updated")

	return s.Get(ctx, id, false)
}
