package memory

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/R3E-Network/fatesheet/internal/app/domain/character"
)

// Seed is the YAML document accepted by LoadSeed:
//
//	allowed_skills: [Athletics, Lore, Will]
//	characters:
//	  - id: 0b0c6f7e-...
//	    name: Zird the Arcane
//	    stunts: [...]
//	    skills: [{name: {name: Lore}, level: 4}]
//	    aspects: [{description: Wizard for Hire, aspect_type: High}]
type Seed struct {
	AllowedSkills []string        `yaml:"allowed_skills"`
	Characters    []SeedCharacter `yaml:"characters"`
}

type SeedCharacter struct {
	ID               string `yaml:"id"`
	character.Record `yaml:",inline"`
}

// LoadSeedFile reads a seed document from path into the store.
func (s *Store) LoadSeedFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	return s.LoadSeed(bytes.NewReader(data))
}

// LoadSeed decodes a seed document and adds its contents to the store.
// Ids must be unique UUIDs and are stored in canonical form. Aspect types
// are validated, and every skill must be allowed (by the seed's list, or the
// store's when the seed has none) with a level in 0-255.
func (s *Store) LoadSeed(r io.Reader) error {
	var seed Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse seed: %w", err)
	}

	allowed := seed.AllowedSkills
	if len(allowed) == 0 {
		s.mu.RLock()
		allowed = append([]string(nil), s.allowedSkills...)
		s.mu.RUnlock()
	}
	permitted := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		permitted[name] = struct{}{}
	}

	seen := make(map[string]struct{}, len(seed.Characters))
	for i := range seed.Characters {
		c := &seed.Characters[i]
		if c.ID == "" {
			return fmt.Errorf("seed character %d: id is required", i)
		}
		parsed, err := uuid.Parse(c.ID)
		if err != nil {
			return fmt.Errorf("seed character %d: id %q: %w", i, c.ID, err)
		}
		c.ID = parsed.String()
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("seed character %s: duplicate id", c.ID)
		}
		seen[c.ID] = struct{}{}
		for j, a := range c.Aspects {
			typ, err := character.ParseAspectType(string(a.Type))
			if err != nil {
				return fmt.Errorf("seed character %s aspect %d: %w", c.ID, j, err)
			}
			c.Aspects[j].Type = typ
		}
		for _, sk := range c.Skills {
			if _, ok := permitted[sk.Name.Name]; !ok {
				return fmt.Errorf("seed character %s: skill %q is not allowed", c.ID, sk.Name.Name)
			}
			if sk.Level < 0 || sk.Level > math.MaxUint8 {
				return fmt.Errorf("seed character %s: skill %q level %d out of range", c.ID, sk.Name.Name, sk.Level)
			}
		}
	}

	if len(seed.AllowedSkills) > 0 {
		s.SetAllowedSkills(seed.AllowedSkills)
	}
	for _, c := range seed.Characters {
		s.PutCharacter(c.ID, c.Record)
	}
	return nil
}
