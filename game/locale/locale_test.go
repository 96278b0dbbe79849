package locale

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonLocale = `{
  "team_battle": "Team fight",
  "civilizations": {"Britons": "Britanos", "Franks": "Francos"},
  "map_sizes": {"Tiny (2 players)": "Diminuto", "Small (3 players)": "Pequeño", "Normal": "Normal"},
  "difficulties": {"Hard": "Difícil"},
  "reveal_map": {"Normal": "Normal"},
  "game_speeds": {"Normal": "Normal"},
  "map_names": {"Arabia": "Arabia"},
  "unused": {"x": "y"}
}`

const yamlLocale = `
civilizations:
  Britons: Britons
map_sizes:
  Small: Small map
  Tiny: Tiny map
difficulties:
  Hard: Hard
reveal_map:
  Normal: Normal
game_speeds:
  Fast: Fast
`

func writeLocale(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestParseJSONPreservesOrder(t *testing.T) {
	loc, err := ParseJSON("test", []byte(jsonLocale))
	require.NoError(t, err)

	assert.Equal(t, []string{"Tiny (2 players)", "Small (3 players)", "Normal"}, loc.Keys(MapSizes))
	assert.Equal(t, "Team fight", loc.TeamBattleLabel())
	assert.NoError(t, loc.Validate())

	v, err := loc.Lookup(Civilizations, "Franks")
	require.NoError(t, err)
	assert.Equal(t, "Francos", v)
}

func TestParseYAML(t *testing.T) {
	loc, err := ParseYAML("en", []byte(yamlLocale))
	require.NoError(t, err)

	assert.Equal(t, []string{"Small", "Tiny"}, loc.Keys(MapSizes))
	assert.Equal(t, DefaultTeamBattleLabel, loc.TeamBattleLabel())
	assert.Equal(t, 0, loc.Len(MapNames))
	assert.NoError(t, loc.Validate())

	_, err = ParseYAML("bad", []byte("- a\n- b\n"))
	assert.Error(t, err)
}

func TestLookupMissing(t *testing.T) {
	loc := New("es")
	require.NoError(t, loc.Set(Difficulties, "Hard", "Difícil"))

	_, err := loc.Lookup(Difficulties, "Easiest")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingEntry)

	var lookupErr *LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, Difficulties, lookupErr.Category)
	assert.Equal(t, "Easiest", lookupErr.Key)

	_, err = loc.Lookup("colors", "Blue")
	assert.ErrorIs(t, err, ErrMissingEntry)

	assert.Equal(t, "Arabia", loc.LookupOrRaw(MapNames, "Arabia"))
	assert.ErrorIs(t, loc.Set("colors", "Blue", "Azul"), ErrUnknownCategory)
}

func TestValidateEmptyCategories(t *testing.T) {
	loc := New("partial")
	require.NoError(t, loc.Set(Civilizations, "Britons", "Britanos"))

	err := loc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), MapSizes)
	assert.NotContains(t, err.Error(), MapNames)
}

func TestManager(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "es.json", jsonLocale)
	writeLocale(t, dir, "en.yaml", yamlLocale)
	writeLocale(t, dir, "broken.json", `{"civilizations": {}}`)
	writeLocale(t, dir, "notes.txt", "ignored")

	m, err := NewManager(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "es", m.GetDefault().Name)

	en, err := m.Load("en")
	require.NoError(t, err)
	again, err := m.Load("en.yaml")
	require.NoError(t, err)
	assert.Same(t, en, again)

	_, err = m.Load("fr")
	assert.ErrorIs(t, err, ErrLocaleNotFound)

	_, err = m.Load("broken")
	assert.ErrorIs(t, err, ErrInvalidLocale)

	infos, err := m.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "en", infos[0].Name)
	assert.Equal(t, "es", infos[1].Name)
	assert.Equal(t, 3, infos[1].Entries[MapSizes])

	require.NoError(t, m.SetDefault("en"))
	assert.Equal(t, "en", m.GetDefault().Name)

	require.NoError(t, m.RefreshCache())
	assert.Equal(t, "en", m.GetDefault().Name)
	assert.NotSame(t, en, m.GetDefault())
}

func TestNewManagerErrors(t *testing.T) {
	_, err := NewManager(filepath.Join(t.TempDir(), "missing"), "es")
	assert.Error(t, err)

	_, err = NewManager(t.TempDir(), "es")
	assert.ErrorIs(t, err, ErrLocaleNotFound)
}

func TestShippedLocale(t *testing.T) {
	m, err := NewManager(filepath.Join("..", "..", "locales"), DefaultLocale)
	require.NoError(t, err)

	loc := m.GetDefault()
	require.NoError(t, loc.Validate())
	assert.Equal(t, "Batalla de equipos", loc.TeamBattleLabel())

	civ, err := loc.Lookup(Civilizations, "Britons")
	require.NoError(t, err)
	assert.Equal(t, "Britanos", civ)
	assert.Equal(t, "Tiny (2 players)", loc.Keys(MapSizes)[0])
}
