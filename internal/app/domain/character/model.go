package character

import (
	"fmt"
	"strings"
)

// AspectType categorises an aspect. The zero value is not a valid type.
type AspectType string

const (
	AspectHigh    AspectType = "High"
	AspectTrouble AspectType = "Trouble"
	AspectOther   AspectType = "Other"
)

// Rank orders aspect types for display: high concept, then trouble, then the
// rest. Unknown types sort last.
func (t AspectType) Rank() int {
	switch t {
	case AspectHigh:
		return 0
	case AspectTrouble:
		return 1
	case AspectOther:
		return 2
	default:
		return 3
	}
}

// ParseAspectType accepts the stored names and their lowercase form.
func ParseAspectType(raw string) (AspectType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return AspectHigh, nil
	case "trouble":
		return AspectTrouble, nil
	case "other":
		return AspectOther, nil
	default:
		return "", fmt.Errorf("unknown aspect type %q", raw)
	}
}

// Aspect is a stored aspect with its category.
type Aspect struct {
	Description string     `json:"description" yaml:"description"`
	Type        AspectType `json:"aspect_type" yaml:"aspect_type"`
}

// SkillName is the nested name record of a skill.
type SkillName struct {
	Name string `json:"name" yaml:"name"`
}

// SkillLevel is a stored skill with its unbounded level.
type SkillLevel struct {
	Name  SkillName `json:"name" yaml:"name"`
	Level int64     `json:"level" yaml:"level"`
}

// Record is a character as persisted, before it is shaped for display.
type Record struct {
	Name    string       `json:"name" yaml:"name"`
	Stunts  []string     `json:"stunts" yaml:"stunts"`
	Skills  []SkillLevel `json:"skills" yaml:"skills"`
	Aspects []Aspect     `json:"aspects" yaml:"aspects"`
}

// Skill is a skill ready for display.
type Skill struct {
	Name   string
	Rating uint8
}

// Character is the display form of a Record.
type Character struct {
	Name    string
	Aspects []string
	Skills  []Skill
	Stunts  []string
}

// Sheet is the view-model of the character sheet page. AspectTypes runs
// parallel to Character.Aspects so the edit form can preselect categories.
type Sheet struct {
	ID          string
	Character   Character
	AspectTypes []AspectType
	AllSkills   []string
	Editable    bool
}
