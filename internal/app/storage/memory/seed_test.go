package memory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/fatesheet/internal/app/domain/character"
)

const seedDoc = `
allowed_skills: [Will, Lore, Athletics]
characters:
  - id: 5f0e5f5e-54a5-4a59-a58b-4d7a4b0c1e01
    name: Zird the Arcane
    stunts: ["Scholar's Insight"]
    skills:
      - name: {name: Lore}
        level: 4
    aspects:
      - description: Rivals in the Collegia Arcana
        aspect_type: trouble
      - description: Wizard for Hire
        aspect_type: High
`

func TestLoadSeed(t *testing.T) {
	store := New()
	require.NoError(t, store.LoadSeed(strings.NewReader(seedDoc)))

	ctx := context.Background()
	rec, err := store.GetCharacter(ctx, "5f0e5f5e-54a5-4a59-a58b-4d7a4b0c1e01")
	require.NoError(t, err)
	assert.Equal(t, "Zird the Arcane", rec.Name)
	assert.Equal(t, []string{"Scholar's Insight"}, rec.Stunts)
	require.Len(t, rec.Skills, 1)
	assert.Equal(t, "Lore", rec.Skills[0].Name.Name)
	assert.Equal(t, int64(4), rec.Skills[0].Level)
	require.Len(t, rec.Aspects, 2)
	assert.Equal(t, character.AspectTrouble, rec.Aspects[0].Type)
	assert.Equal(t, character.AspectHigh, rec.Aspects[1].Type)

	skills, err := store.ListAllowedSkills(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Athletics", "Lore", "Will"}, skills)
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedDoc), 0o600))

	store := New()
	require.NoError(t, store.LoadSeedFile(path))
	_, err := store.GetCharacter(context.Background(), "5f0e5f5e-54a5-4a59-a58b-4d7a4b0c1e01")
	assert.NoError(t, err)
}

func TestLoadSeedRejectsBadInput(t *testing.T) {
	const id = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	cases := map[string]string{
		"missing id":    "characters:\n  - name: x\n",
		"non uuid id":   "characters:\n  - id: zird\n    name: x\n",
		"duplicate id":  "characters:\n  - id: " + id + "\n    name: x\n  - id: " + strings.ToUpper(id) + "\n    name: y\n",
		"bad aspect":    "characters:\n  - id: " + id + "\n    name: x\n    aspects: [{description: d, aspect_type: minor}]\n",
		"unknown field": "characters:\n  - id: " + id + "\n    nickname: x\n",
		"skill not allowed": "allowed_skills: [Lore]\ncharacters:\n  - id: " + id + "\n    name: x\n" +
			"    skills: [{name: {name: Burglary}, level: 1}]\n",
		"no allowed skills": "characters:\n  - id: " + id + "\n    name: x\n    skills: [{name: {name: Lore}, level: 1}]\n",
		"level above range": "allowed_skills: [Lore]\ncharacters:\n  - id: " + id + "\n    name: x\n" +
			"    skills: [{name: {name: Lore}, level: 256}]\n",
		"negative level": "allowed_skills: [Lore]\ncharacters:\n  - id: " + id + "\n    name: x\n" +
			"    skills: [{name: {name: Lore}, level: -1}]\n",
		"malformed yaml": "characters: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, New().LoadSeed(strings.NewReader(doc)))
		})
	}
}

func TestLoadSeedEmptyDocument(t *testing.T) {
	assert.NoError(t, New().LoadSeed(strings.NewReader("")))
}

func TestLoadSeedChecksSkillsAgainstStore(t *testing.T) {
	store := New()
	store.SetAllowedSkills([]string{"Lore"})

	doc := "characters:\n  - id: 7c9e6679-7425-40de-944b-e07fc1f90ae7\n    name: x\n" +
		"    skills: [{name: {name: Lore}, level: 255}]\n"
	require.NoError(t, store.LoadSeed(strings.NewReader(doc)))

	rec, err := store.GetCharacter(context.Background(), "7c9e6679-7425-40de-944b-e07fc1f90ae7")
	require.NoError(t, err)
	assert.Equal(t, int64(255), rec.Skills[0].Level)
}
