package palette

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var (
	ErrInvalidColorCode = errors.New("invalid color code")
	ErrUnknownTerrain   = errors.New("unknown terrain id")
	ErrUnknownColorSlot = errors.New("unknown player color slot")
)

// PlayerSlots is the number of entries in the player palette.
const PlayerSlots = 8

// ColorCode is a six digit hexadecimal color without the leading '#'.
type ColorCode string

// RGB is the decoded form of a ColorCode.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ParseColorCode validates s (an optional leading '#' is accepted) and returns
// it normalized to upper case.
func ParseColorCode(s string) (ColorCode, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return "", fmt.Errorf("%w: %q must have 6 hex digits", ErrInvalidColorCode, s)
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return "", fmt.Errorf("%w: %q contains non-hex digit %q", ErrInvalidColorCode, s, r)
		}
	}
	return ColorCode(strings.ToUpper(s)), nil
}

// MustParseColorCode is ParseColorCode for table literals.
func MustParseColorCode(s string) ColorCode {
	c, err := ParseColorCode(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ToRGB decodes a hex color string into its three channels.
func ToRGB(s string) (RGB, error) {
	c, err := ParseColorCode(s)
	if err != nil {
		return RGB{}, err
	}
	v, err := strconv.ParseUint(string(c), 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %v", ErrInvalidColorCode, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// RGB decodes the code.
func (c ColorCode) RGB() (RGB, error) {
	return ToRGB(string(c))
}

// NRGBA decodes the code into an opaque color.
func (c ColorCode) NRGBA() (color.NRGBA, error) {
	rgb, err := c.RGB()
	if err != nil {
		return color.NRGBA{}, err
	}
	return rgb.NRGBA(), nil
}

// Hex re-encodes the channels as an upper case, zero padded ColorCode.
func (c RGB) Hex() ColorCode {
	return ColorCode(fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B))
}

// NRGBA returns the opaque color.
func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Table groups every color the minimap renderer paints with.
type Table struct {
	Terrains []ColorCode
	Players  [PlayerSlots]ColorCode
	Food     ColorCode
	Stone    ColorCode
	Gold     ColorCode
	Relic    ColorCode
}

// Terrain returns the color of a terrain id.
func (t *Table) Terrain(id int) (ColorCode, error) {
	if id < 0 || id >= len(t.Terrains) {
		return "", fmt.Errorf("%w: %d (table has %d entries)", ErrUnknownTerrain, id, len(t.Terrains))
	}
	return t.Terrains[id], nil
}

// Player returns the color of a player color slot.
func (t *Table) Player(slot int) (ColorCode, error) {
	if slot < 0 || slot >= PlayerSlots {
		return "", fmt.Errorf("%w: %d", ErrUnknownColorSlot, slot)
	}
	return t.Players[slot], nil
}

// TerrainColor is Terrain decoded for drawing.
func (t *Table) TerrainColor(id int) (color.NRGBA, error) {
	c, err := t.Terrain(id)
	if err != nil {
		return color.NRGBA{}, err
	}
	return c.NRGBA()
}

// PlayerColor is Player decoded for drawing.
func (t *Table) PlayerColor(slot int) (color.NRGBA, error) {
	c, err := t.Player(slot)
	if err != nil {
		return color.NRGBA{}, err
	}
	return c.NRGBA()
}

// Validate checks that every entry of the table decodes.
func (t *Table) Validate() error {
	if len(t.Terrains) == 0 {
		return fmt.Errorf("palette validation: terrain table is empty")
	}
	for i, c := range t.Terrains {
		if _, err := c.RGB(); err != nil {
			return fmt.Errorf("palette validation: terrain %d: %w", i, err)
		}
	}
	for i, c := range t.Players {
		if _, err := c.RGB(); err != nil {
			return fmt.Errorf("palette validation: player slot %d: %w", i, err)
		}
	}
	resources := []struct {
		name string
		code ColorCode
	}{
		{"food", t.Food},
		{"stone", t.Stone},
		{"gold", t.Gold},
		{"relic", t.Relic},
	}
	for _, r := range resources {
		if _, err := r.code.RGB(); err != nil {
			return fmt.Errorf("palette validation: %s: %w", r.name, err)
		}
	}
	return nil
}
