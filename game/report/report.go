package report

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wricardo/mcp-training/recminimap/game/locale"
	"github.com/wricardo/mcp-training/recminimap/game/replay"
)

// Victory codes of PlayerEntry.Victory.
const (
	Victor    = 0
	NonVictor = 1
)

// MatchReport is the localized summary of one recorded game.
type MatchReport struct {
	FileName    string `json:"nombre_archivo" jsonschema:"description=Recorded game file name"`
	Duration    string `json:"duracion_partida" jsonschema:"description=Match length as HH:MM:SS"`
	PointOfView string `json:"punto_de_vista" jsonschema:"description=Name of the player who recorded the game"`
	MapReveal   string `json:"mapa_revelado"`
	Speed       string `json:"velocidad"`
	Population  int    `json:"poblacion"`
	Diplomacy   string `json:"diplomacia"`
	TeamSize    string `json:"teams" jsonschema:"description=Team size for team battles, empty otherwise"`
	MapName     string `json:"nombre_mapa"`
	MapSize     string `json:"tamano_mapa"`
	LockTeams   int    `json:"bloqueo_diplomacia_equipos" jsonschema:"enum=0,enum=1"`
	Difficulty  string `json:"dificultad"`
	Teams       []Team `json:"equipos"`
}

// Team is one team of the match, numbered from 1 in recorded order.
type Team struct {
	Index   int           `json:"indice"`
	Players []PlayerEntry `json:"jugadores"`
}

// PlayerEntry is one player of a team.
type PlayerEntry struct {
	Number    int    `json:"numero" jsonschema:"description=1-based player number"`
	Nickname  string `json:"nickname"`
	CivCode   string `json:"civ_cod"`
	Civ       string `json:"civ"`
	Victory   int    `json:"victoria" jsonschema:"enum=0,enum=1,description=0 for winners and 1 for everyone else"`
	ColorCode string `json:"color_cod"`
	Color     string `json:"color"`
}

// Builder turns replay summaries into match reports.
type Builder struct {
	locale *locale.Locale
}

// NewBuilder creates a builder that resolves names through loc.
func NewBuilder(loc *locale.Locale) *Builder {
	return &Builder{locale: loc}
}

// Locale returns the locale the builder was created with.
func (b *Builder) Locale() *locale.Locale {
	return b.locale
}

// Build assembles the report for the recorded game source.
func (b *Builder) Build(source string, s *replay.Summary) (*MatchReport, error) {
	owner, err := s.Player(s.Owner)
	if err != nil {
		return nil, fmt.Errorf("point of view: %w", err)
	}

	r := &MatchReport{
		FileName:    filepath.Base(source),
		Duration:    FormatDuration(s.Duration),
		PointOfView: owner.Name,
		Population:  s.Settings.PopulationLimit,
		Diplomacy:   s.Diplomacy.Type,
		MapName:     b.locale.LookupOrRaw(locale.MapNames, s.Map.Name),
		MapSize:     b.mapSize(s.Map.Size),
	}
	if s.Settings.LockTeams {
		r.LockTeams = 1
	}

	settings := []struct {
		category string
		setting  replay.Setting
		dst      *string
	}{
		{locale.RevealMap, s.Settings.MapReveal, &r.MapReveal},
		{locale.GameSpeeds, s.Settings.Speed, &r.Speed},
		{locale.Difficulties, s.Settings.Difficulty, &r.Difficulty},
	}
	for _, st := range settings {
		v, err := b.locale.Lookup(st.category, Capitalize(st.setting.Name))
		if err != nil {
			return nil, err
		}
		*st.dst = v
	}

	if s.Diplomacy.IsTeamGame() {
		r.TeamSize = s.Diplomacy.TeamSize
		r.Diplomacy = b.locale.TeamBattleLabel()
	}

	teams, err := b.teams(s)
	if err != nil {
		return nil, err
	}
	r.Teams = teams

	return r, nil
}

// mapSize buckets the capitalized size name into the first map_sizes label
// whose key contains it, or that it contains. Unmatched sizes are kept.
func (b *Builder) mapSize(raw string) string {
	size := Capitalize(raw)
	if key, ok := b.mapSizeKey(size); ok {
		return b.locale.LookupOrRaw(locale.MapSizes, key)
	}
	return size
}

// ResolvesMapSize reports whether a raw map size matches a map_sizes entry.
func (b *Builder) ResolvesMapSize(raw string) bool {
	_, ok := b.mapSizeKey(Capitalize(raw))
	return ok
}

// mapSizeKey returns the first non-blank map_sizes key sharing a substring
// with size.
func (b *Builder) mapSizeKey(size string) (string, bool) {
	if size == "" {
		return "", false
	}
	for _, key := range b.locale.Keys(locale.MapSizes) {
		if strings.TrimSpace(key) == "" {
			continue
		}
		if strings.Contains(key, size) || strings.Contains(size, key) {
			return key, true
		}
	}
	return "", false
}

func (b *Builder) teams(s *replay.Summary) ([]Team, error) {
	teams := make([]Team, 0, len(s.Teams))
	for i, members := range s.Teams {
		team := Team{Index: i + 1, Players: make([]PlayerEntry, 0, len(members))}
		for _, number := range members {
			entry, err := b.player(s, number)
			if err != nil {
				return nil, fmt.Errorf("team %d: %w", team.Index, err)
			}
			team.Players = append(team.Players, entry)
		}
		teams = append(teams, team)
	}
	return teams, nil
}

func (b *Builder) player(s *replay.Summary, number int) (PlayerEntry, error) {
	p, err := s.Player(number)
	if err != nil {
		return PlayerEntry{}, err
	}

	civName, err := s.CivilizationName(p.Civilization)
	if err != nil {
		return PlayerEntry{}, fmt.Errorf("player %q: %w", p.Name, err)
	}
	civ, err := b.locale.Lookup(locale.Civilizations, civName)
	if err != nil {
		return PlayerEntry{}, fmt.Errorf("player %q: %w", p.Name, err)
	}
	color, err := replay.ColorName(p.ColorID)
	if err != nil {
		return PlayerEntry{}, fmt.Errorf("player %q: %w", p.Name, err)
	}

	victory := NonVictor
	if p.Winner {
		victory = Victor
	}

	return PlayerEntry{
		Number:    number,
		Nickname:  p.Name,
		CivCode:   strconv.Itoa(p.Civilization),
		Civ:       civ,
		Victory:   victory,
		ColorCode: strconv.Itoa(p.ColorID),
		Color:     color,
	}, nil
}

// FormatDuration renders milliseconds as HH:MM:SS.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	secs := ms / 1000
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[n:])
}
