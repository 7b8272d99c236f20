package character

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrMalformedRecord is returned when a stored record cannot be decoded.
var ErrMalformedRecord = errors.New("malformed character record")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedRecord, fmt.Sprintf(format, args...))
}

// ParseRecord decodes the JSON document produced by the character query:
//
//	{"name": "...", "stunts": ["..."],
//	 "skills": [{"name": {"name": "..."}, "level": 3}],
//	 "aspects": [{"description": "...", "aspect_type": "High"}]}
//
// Missing arrays decode as empty; a missing name or a wrongly typed field is
// an ErrMalformedRecord.
func ParseRecord(raw []byte) (Record, error) {
	if !gjson.ValidBytes(raw) {
		return Record{}, malformed("invalid JSON")
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return Record{}, malformed("expected object, got %s", doc.Type)
	}

	name := doc.Get("name")
	if name.Type != gjson.String {
		return Record{}, malformed("name must be a string")
	}
	rec := Record{
		Name:    name.String(),
		Stunts:  []string{},
		Skills:  []SkillLevel{},
		Aspects: []Aspect{},
	}

	stunts, err := array(doc, "stunts")
	if err != nil {
		return Record{}, err
	}
	for i, s := range stunts {
		if s.Type != gjson.String {
			return Record{}, malformed("stunts[%d] must be a string", i)
		}
		rec.Stunts = append(rec.Stunts, s.String())
	}

	skills, err := array(doc, "skills")
	if err != nil {
		return Record{}, err
	}
	for i, s := range skills {
		skillName := s.Get("name.name")
		if skillName.Type != gjson.String {
			return Record{}, malformed("skills[%d].name.name must be a string", i)
		}
		level := s.Get("level")
		if level.Type != gjson.Number || level.Num != float64(level.Int()) {
			return Record{}, malformed("skills[%d].level must be an integer", i)
		}
		rec.Skills = append(rec.Skills, SkillLevel{
			Name:  SkillName{Name: skillName.String()},
			Level: level.Int(),
		})
	}

	aspects, err := array(doc, "aspects")
	if err != nil {
		return Record{}, err
	}
	for i, a := range aspects {
		desc := a.Get("description")
		if desc.Type != gjson.String {
			return Record{}, malformed("aspects[%d].description must be a string", i)
		}
		typ, err := ParseAspectType(a.Get("aspect_type").String())
		if err != nil {
			return Record{}, malformed("aspects[%d]: %v", i, err)
		}
		rec.Aspects = append(rec.Aspects, Aspect{Description: desc.String(), Type: typ})
	}

	return rec, nil
}

func array(doc gjson.Result, path string) ([]gjson.Result, error) {
	v := doc.Get(path)
	switch {
	case !v.Exists() || v.Type == gjson.Null:
		return nil, nil
	case v.IsArray():
		return v.Array(), nil
	default:
		return nil, malformed("%s must be an array", path)
	}
}
