package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"wision/internal/models"
)

// UnknownRadical is the meaning reported for radicals missing from the table
const UnknownRadical = "unknown"

//go:embed seed.yaml
var seedYAML []byte

// Data is the seed character list plus the synonym and radical tables
type Data struct {
	Characters      []models.Character  `yaml:"characters"`
	Synonyms        map[string][]string `yaml:"synonyms"`
	RadicalMeanings map[string]string   `yaml:"radicals"`
}

// Default returns the embedded catalog
func Default() *Data {
	data, err := Parse(seedYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return data
}

// Load reads a catalog file, or returns the embedded catalog when path is empty
func Load(path string) (*Data, error) {
	if path == "" {
		return Default(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	data, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return data, nil
}

// Parse decodes and validates a YAML catalog document
func Parse(content []byte) (*Data, error) {
	var data Data
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if len(data.Characters) == 0 {
		return nil, errors.New("catalog has no characters")
	}

	seen := make(map[string]bool, len(data.Characters))
	for i, c := range data.Characters {
		if strings.TrimSpace(c.Character) == "" {
			return nil, fmt.Errorf("character %d: character is required", i)
		}
		if strings.TrimSpace(c.Meaning) == "" {
			return nil, fmt.Errorf("character %s: meaning is required", c.Character)
		}
		if c.Difficulty < 1 {
			return nil, fmt.Errorf("character %s: difficulty must be at least 1", c.Character)
		}
		if seen[c.Character] {
			return nil, fmt.Errorf("duplicate character %s", c.Character)
		}
		seen[c.Character] = true
	}

	if data.Synonyms == nil {
		data.Synonyms = map[string][]string{}
	}
	if data.RadicalMeanings == nil {
		data.RadicalMeanings = map[string]string{}
	}

	return &data, nil
}

// AlternateMeanings returns the synonyms accepted for a canonical meaning
func (d *Data) AlternateMeanings(meaning string) []string {
	alts := d.Synonyms[meaning]
	if len(alts) == 0 {
		return nil
	}
	out := make([]string, len(alts))
	copy(out, alts)
	return out
}

// RadicalMeaning looks up a radical, falling back to UnknownRadical
func (d *Data) RadicalMeaning(radical string) string {
	if meaning, ok := d.RadicalMeanings[radical]; ok {
		return meaning
	}
	return UnknownRadical
}

// Lookup finds a character in the seed list
func (d *Data) Lookup(character string) (models.Character, bool) {
	for _, c := range d.Characters {
		if c.Character == character {
			return c, true
		}
	}
	return models.Character{}, false
}
