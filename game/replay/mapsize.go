package replay

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownMapSize = errors.New("unknown map size")

// MapSize is a named square map dimension.
type MapSize struct {
	Name string
	Edge int
}

// MapSizes lists the supported map sizes, smallest first.
var MapSizes = []MapSize{
	{Name: "tiny", Edge: 120},
	{Name: "small", Edge: 144},
	{Name: "medium", Edge: 168},
	{Name: "normal", Edge: 200},
	{Name: "large", Edge: 220},
	{Name: "giant", Edge: 240},
	{Name: "ludicrous", Edge: 480},
}

// LookupMapSize finds a map size by name, ignoring case.
func LookupMapSize(name string) (MapSize, error) {
	for _, size := range MapSizes {
		if strings.EqualFold(size.Name, strings.TrimSpace(name)) {
			return size, nil
		}
	}
	return MapSize{}, fmt.Errorf("%w: %q", ErrUnknownMapSize, name)
}

// TileCount is the number of tiles of the grid.
func (m MapSize) TileCount() int {
	return m.Edge * m.Edge
}

// Contains reports whether (x, y) is a cell of the grid.
func (m MapSize) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Edge && y < m.Edge
}
