package replay

import (
	"fmt"
	"sort"
)

// civilizationNames is the stock civilization code table.
var civilizationNames = map[int]string{
	1:  "Britons",
	2:  "Franks",
	3:  "Goths",
	4:  "Teutons",
	5:  "Japanese",
	6:  "Chinese",
	7:  "Byzantines",
	8:  "Persians",
	9:  "Saracens",
	10: "Turks",
	11: "Vikings",
	12: "Mongols",
	13: "Celts",
	14: "Spanish",
	15: "Aztecs",
	16: "Mayans",
	17: "Huns",
	18: "Koreans",
	19: "Italians",
	20: "Indians",
	21: "Incas",
	22: "Magyars",
	23: "Slavs",
	24: "Portuguese",
	25: "Ethiopians",
	26: "Malians",
	27: "Berbers",
	28: "Khmer",
	29: "Malay",
	30: "Burmese",
	31: "Vietnamese",
	32: "Bulgarians",
	33: "Tatars",
	34: "Cumans",
	35: "Lithuanians",
	36: "Burgundians",
	37: "Sicilians",
	38: "Poles",
	39: "Bohemians",
}

// colorNames names the eight player color slots.
var colorNames = [...]string{
	"Blue",
	"Red",
	"Green",
	"Yellow",
	"Aqua",
	"Purple",
	"Grey",
	"Orange",
}

// ColorName returns the display name of a player color slot.
func ColorName(id int) (string, error) {
	if id < 0 || id >= len(colorNames) {
		return "", fmt.Errorf("%w: slot %d", ErrUnknownPlayerColor, id)
	}
	return colorNames[id], nil
}

// CivilizationNames returns the built-in civilization names ordered by code.
func CivilizationNames() []string {
	codes := make([]int, 0, len(civilizationNames))
	for code := range civilizationNames {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	names := make([]string, len(codes))
	for i, code := range codes {
		names[i] = civilizationNames[code]
	}
	return names
}
