package sheets

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/R3E-Network/fatesheet/internal/app/domain/character"
)

// MaxRating is the highest skill rating a sheet can display.
const MaxRating = math.MaxUint8

// ErrRatingOutOfRange is returned when a stored skill level does not fit a
// rating. Out-of-range levels are rejected, never clamped.
var ErrRatingOutOfRange = errors.New("skill level out of rating range")

// SortAspects orders aspects by type (high, trouble, other). The sort is
// stable so aspects of the same type keep their stored order.
func SortAspects(aspects []character.Aspect) {
	sort.SliceStable(aspects, func(i, j int) bool {
		return aspects[i].Type.Rank() < aspects[j].Type.Rank()
	})
}

// Rating converts a stored skill level to a display rating.
func Rating(level int64) (uint8, error) {
	if level < 0 || level > MaxRating {
		return 0, fmt.Errorf("%w: %d not in 0-%d", ErrRatingOutOfRange, level, MaxRating)
	}
	return uint8(level), nil
}

// Assemble shapes a stored record into the sheet view-model. The record is
// not modified.
func Assemble(id string, rec character.Record, allSkills []string, editable bool) (character.Sheet, error) {
	aspects := append([]character.Aspect(nil), rec.Aspects...)
	SortAspects(aspects)

	descriptions := make([]string, 0, len(aspects))
	types := make([]character.AspectType, 0, len(aspects))
	for _, a := range aspects {
		descriptions = append(descriptions, a.Description)
		types = append(types, a.Type)
	}

	skills := make([]character.Skill, 0, len(rec.Skills))
	for _, s := range rec.Skills {
		rating, err := Rating(s.Level)
		if err != nil {
			return character.Sheet{}, fmt.Errorf("skill %q: %w", s.Name.Name, err)
		}
		skills = append(skills, character.Skill{Name: s.Name.Name, Rating: rating})
	}

	stunts := append([]string{}, rec.Stunts...)
	if allSkills == nil {
		allSkills = []string{}
	}

	return character.Sheet{
		ID: id,
		Character: character.Character{
			Name:    rec.Name,
			Aspects: descriptions,
			Skills:  skills,
			Stunts:  stunts,
		},
		AspectTypes: types,
		AllSkills:   allSkills,
		Editable:    editable,
	}, nil
}

// ParseEditable reads the editable query flag. Only "true", in any case,
// turns editing on; absent or other values mean false.
func ParseEditable(raw string) bool {
	return strings.EqualFold(raw, "true")
}
