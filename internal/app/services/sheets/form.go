package sheets

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/R3E-Network/fatesheet/internal/app/domain/character"
)

// Form field names accepted by ParseUpdateForm.
const (
	FieldName       = "name"
	FieldAspect     = "aspect"
	FieldAspectType = "aspect_type"
	FieldSkill      = "skill"
	FieldRating     = "rating"
	FieldStunt      = "stunt"
)

// ParseUpdateForm builds a record from a submitted character sheet form.
// Aspects and skills are sent as parallel repeated fields; every skill must
// be one of allowed and every rating must fit 0-255. Blank aspects, stunts
// and skill rows with neither a skill nor a rating are dropped.
func ParseUpdateForm(form url.Values, allowed []string) (character.Record, error) {
	name := strings.TrimSpace(form.Get(FieldName))
	if name == "" {
		return character.Record{}, fmt.Errorf("%s is required", FieldName)
	}

	rec := character.Record{
		Name:    name,
		Stunts:  []string{},
		Skills:  []character.SkillLevel{},
		Aspects: []character.Aspect{},
	}

	descs, types := form[FieldAspect], form[FieldAspectType]
	if len(descs) != len(types) {
		return character.Record{}, fmt.Errorf("got %d aspects but %d aspect types", len(descs), len(types))
	}
	for i, desc := range descs {
		desc = strings.TrimSpace(desc)
		if desc == "" {
			continue
		}
		typ, err := character.ParseAspectType(types[i])
		if err != nil {
			return character.Record{}, fmt.Errorf("aspect %d: %w", i, err)
		}
		rec.Aspects = append(rec.Aspects, character.Aspect{Description: desc, Type: typ})
	}

	skills, ratings := form[FieldSkill], form[FieldRating]
	if len(skills) != len(ratings) {
		return character.Record{}, fmt.Errorf("got %d skills but %d ratings", len(skills), len(ratings))
	}
	permitted := make(map[string]struct{}, len(allowed))
	for _, s := range allowed {
		permitted[s] = struct{}{}
	}
	seen := make(map[string]struct{}, len(skills))
	for i, skill := range skills {
		skill = strings.TrimSpace(skill)
		rating := strings.TrimSpace(ratings[i])
		if skill == "" && rating == "" {
			continue
		}
		if _, ok := permitted[skill]; !ok {
			return character.Record{}, fmt.Errorf("skill %q is not allowed", skill)
		}
		if _, dup := seen[skill]; dup {
			return character.Record{}, fmt.Errorf("skill %q listed twice", skill)
		}
		seen[skill] = struct{}{}

		level, err := strconv.ParseInt(rating, 10, 64)
		if err != nil {
			return character.Record{}, fmt.Errorf("rating for %q: %w", skill, err)
		}
		if _, err := Rating(level); err != nil {
			return character.Record{}, fmt.Errorf("rating for %q: %w", skill, err)
		}
		rec.Skills = append(rec.Skills, character.SkillLevel{
			Name:  character.SkillName{Name: skill},
			Level: level,
		})
	}

	for _, stunt := range form[FieldStunt] {
		if stunt = strings.TrimSpace(stunt); stunt != "" {
			rec.Stunts = append(rec.Stunts, stunt)
		}
	}

	return rec, nil
}
