package palette

// terrainColors is indexed by terrain id.
var terrainColors = []string{
	"339727", "305db6", "e8b478", "e4a252", "5492b0",
	"339727", "e4a252", "82884d", "82884d", "339727",
	"157615", "e4a252", "339727", "157615", "e8b478",
	"305db6", "339727", "157615", "157615", "157615",
	"157615", "157615", "004aa1", "004abb", "e4a252",
	"e4a252", "ffec49", "e4a252", "305db6", "82884d",
	"82884d", "82884d", "c8d8ff", "c8d8ff", "c8d8ff",
	"98c0f0", "c8d8ff", "98c0f0", "c8d8ff", "c8d8ff",
	"e4a252",
}

// playerColors is indexed by color slot: blue, red, green, yellow, cyan,
// magenta, grey, orange.
var playerColors = [PlayerSlots]string{
	"0000DD", "ff0000", "00ff00", "ffff00", "00ffff", "ff00ff", "E9E9E9", "ff8201",
}

// Default returns a fresh copy of the stock color table.
func Default() *Table {
	t := &Table{
		Terrains: make([]ColorCode, len(terrainColors)),
		Food:     MustParseColorCode("A5C46C"),
		Stone:    MustParseColorCode("919191"),
		Gold:     MustParseColorCode("FFC700"),
		Relic:    MustParseColorCode("FFFFFF"),
	}
	for i, c := range terrainColors {
		t.Terrains[i] = MustParseColorCode(c)
	}
	for i, c := range playerColors {
		t.Players[i] = MustParseColorCode(c)
	}
	return t
}
