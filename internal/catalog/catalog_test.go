package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeedOrder(t *testing.T) {
	data := Default()

	var got []string
	for _, c := range data.Characters {
		got = append(got, c.Character)
	}
	want := []string{"森", "炎", "明", "休", "桌", "淋", "想", "看", "听", "跑"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("seed order mismatch (-want +got):\n%s", diff)
	}

	rest := data.Characters[3]
	assert.Equal(t, "xiū", rest.Pronunciation)
	assert.Equal(t, "rest", rest.Meaning)
	assert.Equal(t, []string{"人", "木"}, rest.Radicals)
	assert.Equal(t, 2, rest.Difficulty)
	assert.Equal(t, "human", rest.Category)
}

func TestAlternateMeanings(t *testing.T) {
	data := Default()

	tests := []struct {
		meaning string
		want    []string
	}{
		{meaning: "bright", want: []string{"brilliant", "luminous"}},
		{meaning: "look", want: []string{"see", "watch"}},
		{meaning: "rest", want: []string{"relax"}},
		{meaning: "flame", want: nil},
		{meaning: "pour", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.meaning, func(t *testing.T) {
			got := data.AlternateMeanings(tt.meaning)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AlternateMeanings(%q) mismatch (-want +got):\n%s", tt.meaning, diff)
			}
		})
	}
}

func TestAlternateMeaningsReturnsCopy(t *testing.T) {
	data := Default()
	alts := data.AlternateMeanings("bright")
	alts[0] = "mutated"
	assert.Equal(t, "brilliant", data.AlternateMeanings("bright")[0])
}

func TestRadicalMeaning(t *testing.T) {
	data := Default()
	assert.Equal(t, "wood", data.RadicalMeaning("木"))
	assert.Equal(t, "water", data.RadicalMeaning("氵"))
	assert.Equal(t, "outstanding", data.RadicalMeaning("卓"))
	assert.Equal(t, UnknownRadical, data.RadicalMeaning("龍"))
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "no characters", content: "characters: []\n"},
		{name: "missing meaning", content: "characters:\n  - character: 森\n    difficulty: 1\n"},
		{name: "zero difficulty", content: "characters:\n  - character: 森\n    meaning: forest\n"},
		{name: "duplicate", content: "characters:\n  - {character: 森, meaning: forest, difficulty: 1}\n  - {character: 森, meaning: woods, difficulty: 1}\n"},
		{name: "not yaml", content: "characters: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `
characters:
  - {character: 林, pronunciation: lín, meaning: grove, radicals: [木, 木], story: Two trees, difficulty: 1, category: nature}
radicals:
  木: tree
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	data, err := Load(path)
	require.NoError(t, err)
	require.Len(t, data.Characters, 1)
	assert.Equal(t, "tree", data.RadicalMeaning("木"))
	assert.Nil(t, data.AlternateMeanings("grove"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	data := Default()
	c, ok := data.Lookup("听")
	require.True(t, ok)
	assert.Equal(t, "listen", c.Meaning)

	_, ok = data.Lookup("龍")
	assert.False(t, ok)
}
