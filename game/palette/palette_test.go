package palette

import (
	"fmt"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRGB(t *testing.T) {
	tests := []struct {
		in   string
		want RGB
	}{
		{"339727", RGB{0x33, 0x97, 0x27}},
		{"#0000DD", RGB{0x00, 0x00, 0xdd}},
		{"ff8201", RGB{0xff, 0x82, 0x01}},
		{"000000", RGB{}},
		{"FFFFFF", RGB{0xff, 0xff, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ToRGB(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToRGB_RoundTrip(t *testing.T) {
	// Walk a spread of codes with mixed case and leading zeros.
	for v := 0; v <= 0xffffff; v += 0x0a3f17 {
		s := fmt.Sprintf("%06x", v)
		rgb, err := ToRGB(s)
		require.NoError(t, err)
		assert.Equal(t, ColorCode(strings.ToUpper(s)), rgb.Hex())
	}
}

func TestParseColorCode_Invalid(t *testing.T) {
	for _, in := range []string{"", "12345", "1234567", "gg0000", "#12 456"} {
		_, err := ParseColorCode(in)
		assert.ErrorIs(t, err, ErrInvalidColorCode, "input %q", in)
	}
}

func TestDefaultTable(t *testing.T) {
	table := Default()
	require.NoError(t, table.Validate())

	assert.Len(t, table.Terrains, 41)

	grass, err := table.Terrain(0)
	require.NoError(t, err)
	assert.Equal(t, ColorCode("339727"), grass)

	last, err := table.Terrain(40)
	require.NoError(t, err)
	assert.Equal(t, ColorCode("E4A252"), last)

	blue, err := table.PlayerColor(0)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0, G: 0, B: 0xdd, A: 0xff}, blue)

	orange, err := table.Player(7)
	require.NoError(t, err)
	assert.Equal(t, ColorCode("FF8201"), orange)
}

func TestTable_LookupFailures(t *testing.T) {
	table := Default()

	_, err := table.Terrain(41)
	assert.ErrorIs(t, err, ErrUnknownTerrain)
	_, err = table.Terrain(-1)
	assert.ErrorIs(t, err, ErrUnknownTerrain)

	_, err = table.Player(8)
	assert.ErrorIs(t, err, ErrUnknownColorSlot)
	_, err = table.PlayerColor(-1)
	assert.ErrorIs(t, err, ErrUnknownColorSlot)
}

func TestDefault_ReturnsIndependentCopies(t *testing.T) {
	a := Default()
	b := Default()
	a.Terrains[0] = "000000"
	a.Players[0] = "000000"

	assert.Equal(t, ColorCode("339727"), b.Terrains[0])
	assert.Equal(t, ColorCode("0000DD"), b.Players[0])
}

func TestTable_ValidateReportsFirstBadEntry(t *testing.T) {
	table := Default()
	table.Stone = "zz"
	table.Gold = "12"
	table.Relic = ""

	for i := 0; i < 20; i++ {
		err := table.Validate()
		require.ErrorIs(t, err, ErrInvalidColorCode)
		assert.Contains(t, err.Error(), "palette validation: stone:")
	}

	table.Stone = "A9A9A9"
	assert.Contains(t, table.Validate().Error(), "palette validation: gold:")

	table = Default()
	table.Players[3] = "nope"
	table.Relic = "nope"
	assert.Contains(t, table.Validate().Error(), "player slot 3")
}
