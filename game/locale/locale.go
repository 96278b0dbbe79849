package locale

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Table categories.
const (
	Civilizations = "civilizations"
	MapSizes      = "map_sizes"
	Difficulties  = "difficulties"
	RevealMap     = "reveal_map"
	GameSpeeds    = "game_speeds"
	MapNames      = "map_names"
)

// Categories lists every table category a locale may carry.
var Categories = []string{Civilizations, MapSizes, Difficulties, RevealMap, GameSpeeds, MapNames}

// DefaultTeamBattleLabel is used when a locale does not define "team_battle".
const DefaultTeamBattleLabel = "Batalla de equipos"

const teamBattleKey = "team_battle"

var (
	ErrMissingEntry    = errors.New("missing locale entry")
	ErrUnknownCategory = errors.New("unknown locale category")
)

// LookupError reports a key absent from a locale table.
type LookupError struct {
	Locale   string
	Category string
	Key      string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("locale %q: no %s entry for %q", e.Locale, e.Category, e.Key)
}

func (e *LookupError) Unwrap() error {
	return ErrMissingEntry
}

// Table is an insertion-ordered dictionary.
type Table = orderedmap.OrderedMap[string, string]

// Locale is a set of ordered dictionaries.
type Locale struct {
	Name       string
	teamBattle string
	tables     map[string]*Table
}

// New creates an empty locale.
func New(name string) *Locale {
	l := &Locale{
		Name:   name,
		tables: make(map[string]*Table, len(Categories)),
	}
	for _, c := range Categories {
		l.tables[c] = orderedmap.New[string, string]()
	}
	return l
}

func isCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Set adds or replaces an entry. New keys are appended to the table order.
func (l *Locale) Set(category, key, value string) error {
	t, ok := l.tables[category]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	t.Set(key, value)
	return nil
}

// SetTeamBattleLabel overrides the team battle label.
func (l *Locale) SetTeamBattleLabel(label string) {
	l.teamBattle = label
}

// TeamBattleLabel returns the label for team games.
func (l *Locale) TeamBattleLabel() string {
	if l.teamBattle == "" {
		return DefaultTeamBattleLabel
	}
	return l.teamBattle
}

// Lookup returns the value stored under key.
func (l *Locale) Lookup(category, key string) (string, error) {
	if t, ok := l.tables[category]; ok {
		if v, ok := t.Get(key); ok {
			return v, nil
		}
	}
	return "", &LookupError{Locale: l.Name, Category: category, Key: key}
}

// LookupOrRaw returns the value stored under key, or key itself.
func (l *Locale) LookupOrRaw(category, key string) string {
	if v, err := l.Lookup(category, key); err == nil {
		return v
	}
	return key
}

// Keys returns the keys of a table in file order.
func (l *Locale) Keys(category string) []string {
	t, ok := l.tables[category]
	if !ok {
		return nil
	}
	keys := make([]string, 0, t.Len())
	for pair := t.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of entries of a table.
func (l *Locale) Len(category string) int {
	if t, ok := l.tables[category]; ok {
		return t.Len()
	}
	return 0
}

// Validate checks that every category except map_names has entries.
func (l *Locale) Validate() error {
	var missing []string
	for _, c := range Categories {
		if c == MapNames {
			continue
		}
		if l.Len(c) == 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("locale %q has empty categories: %s", l.Name, strings.Join(missing, ", "))
	}
	return nil
}

// ParseJSON reads a locale document in JSON form.
func ParseJSON(name string, data []byte) (*Locale, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse locale %s: %w", name, err)
	}

	l := New(name)
	for key, raw := range doc {
		if key == teamBattleKey {
			if err := json.Unmarshal(raw, &l.teamBattle); err != nil {
				return nil, fmt.Errorf("locale %s: %s: %w", name, key, err)
			}
			continue
		}
		if !isCategory(key) {
			continue
		}
		t := orderedmap.New[string, string]()
		if err := json.Unmarshal(raw, t); err != nil {
			return nil, fmt.Errorf("locale %s: %s: %w", name, key, err)
		}
		l.tables[key] = t
	}
	return l, nil
}

// ParseYAML reads a locale document in YAML form.
func ParseYAML(name string, data []byte) (*Locale, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse locale %s: %w", name, err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("locale %s: top level must be a mapping", name)
	}

	l := New(name)
	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i].Value, root.Content[i+1]
		if key == teamBattleKey {
			l.teamBattle = value.Value
			continue
		}
		if !isCategory(key) {
			continue
		}
		if value.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("locale %s: %s must be a mapping", name, key)
		}
		for j := 0; j+1 < len(value.Content); j += 2 {
			l.tables[key].Set(value.Content[j].Value, value.Content[j+1].Value)
		}
	}
	return l, nil
}
