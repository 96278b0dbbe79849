package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

var (
	ErrUnknownPlayer       = errors.New("unknown player")
	ErrUnknownCivilization = errors.New("unknown civilization")
	ErrUnknownPlayerColor  = errors.New("unknown player color")
)

// Summary is the parsed content of one recorded game.
type Summary struct {
	Map       MapInfo    `json:"map"`
	Players   []Player   `json:"players"`
	Resources []Object   `json:"resources"` // gaia objects of the initial state
	Objects   []Object   `json:"objects"`
	Teams     [][]int    `json:"teams"` // 1-based player numbers
	Settings  Settings   `json:"settings"`
	Diplomacy Diplomacy  `json:"diplomacy"`
	Duration  int64      `json:"duration"` // milliseconds
	Owner     int        `json:"owner"`    // 1-based point of view player
	Reference *Reference `json:"reference,omitempty"`
}

// MapInfo describes the map of a recorded game.
type MapInfo struct {
	Name  string `json:"name"`
	Size  string `json:"size"`
	Tiles []Tile `json:"tiles"`
}

// Tile is one cell of the square map grid.
type Tile struct {
	X         int `json:"x"`
	Y         int `json:"y"`
	TerrainID int `json:"terrain_id"`
}

// Player is one participant of the recorded game.
type Player struct {
	Number       int      `json:"number"`
	Name         string   `json:"name"`
	ColorID      int      `json:"color_id"`
	Civilization int      `json:"civilization"`
	Winner       bool     `json:"winner"`
	Position     Position `json:"position"`
}

// Position is a map coordinate in tiles.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// UnmarshalJSON accepts both [x, y] and {"x": x, "y": y}.
func (p *Position) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var pair []interface{}
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("position must have 2 coordinates, got %d", len(pair))
		}
		x, err := cast.ToFloat64E(pair[0])
		if err != nil {
			return fmt.Errorf("position x: %w", err)
		}
		y, err := cast.ToFloat64E(pair[1])
		if err != nil {
			return fmt.Errorf("position y: %w", err)
		}
		p.X, p.Y = x, y
		return nil
	}

	type plain Position
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Position(v)
	return nil
}

// Tile returns the grid cell containing the position.
func (p Position) Tile() (int, int) {
	return int(p.X), int(p.Y)
}

// Object is a placed entity: a resource, a wall segment, a unit.
type Object struct {
	Type         int     `json:"object_id"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	PlayerNumber int     `json:"player_number"`
}

// UnmarshalJSON reads the type code from "object_id" or, failing that,
// "object_type".
func (o *Object) UnmarshalJSON(data []byte) error {
	var raw struct {
		ObjectID     *int    `json:"object_id"`
		ObjectType   *int    `json:"object_type"`
		X            float64 `json:"x"`
		Y            float64 `json:"y"`
		PlayerNumber int     `json:"player_number"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.ObjectID != nil:
		o.Type = *raw.ObjectID
	case raw.ObjectType != nil:
		o.Type = *raw.ObjectType
	default:
		return fmt.Errorf("object has neither object_id nor object_type")
	}
	o.X, o.Y, o.PlayerNumber = raw.X, raw.Y, raw.PlayerNumber
	return nil
}

// Tile returns the grid cell containing the object.
func (o Object) Tile() (int, int) {
	return int(o.X), int(o.Y)
}

// Settings are the lobby settings of the recorded game.
type Settings struct {
	PopulationLimit int     `json:"population_limit"`
	Speed           Setting `json:"speed"`
	Difficulty      Setting `json:"difficulty"`
	MapReveal       Setting `json:"map_reveal_choice"`
	LockTeams       bool    `json:"lock_teams"`
}

// Setting is an enumerated lobby setting: its numeric id and its name.
type Setting struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts [id, "name"], {"id": id, "name": "name"} or a bare
// "name".
func (s *Setting) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case []interface{}:
		if len(val) != 2 {
			return fmt.Errorf("setting pair must have 2 elements, got %d", len(val))
		}
		id, err := cast.ToIntE(val[0])
		if err != nil {
			return fmt.Errorf("setting id: %w", err)
		}
		s.ID, s.Name = id, cast.ToString(val[1])
	case map[string]interface{}:
		s.ID = cast.ToInt(val["id"])
		s.Name = cast.ToString(val["name"])
	case string:
		s.Name = val
	case nil:
		*s = Setting{}
	default:
		return fmt.Errorf("unsupported setting value %v", val)
	}
	return nil
}

// Diplomacy describes the team structure of the match.
type Diplomacy struct {
	Type     string `json:"type"` // "TG" for team games, "1v1", "FFA", ...
	TeamSize string `json:"team_size,omitempty"`
}

// IsTeamGame reports whether the match was played as a team game.
func (d Diplomacy) IsTeamGame() bool {
	return strings.EqualFold(d.Type, "TG")
}

// Player returns the player with the given 1-based number.
func (s *Summary) Player(number int) (*Player, error) {
	if number < 1 || number > len(s.Players) {
		return nil, fmt.Errorf("%w: number %d (%d players)", ErrUnknownPlayer, number, len(s.Players))
	}
	return &s.Players[number-1], nil
}

// MapSize resolves the map size name of the summary.
func (s *Summary) MapSize() (MapSize, error) {
	return LookupMapSize(s.Map.Size)
}

// CivilizationName resolves a civilization code to its internal English name,
// preferring the summary's own reference table.
func (s *Summary) CivilizationName(code int) (string, error) {
	key := cast.ToString(code)
	if s.Reference != nil {
		if civ, ok := s.Reference.Civilizations[key]; ok && civ.Name != "" {
			return civ.Name, nil
		}
	}
	if name, ok := civilizationNames[code]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: code %d", ErrUnknownCivilization, code)
}

// Reference carries the lookup tables shipped with the recorded game.
type Reference struct {
	Civilizations map[string]CivilizationRef `json:"civilizations"`
}

// CivilizationRef is one entry of the civilization reference table.
type CivilizationRef struct {
	Name string `json:"name"`
}
