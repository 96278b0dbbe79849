// Package palette holds the fixed color tables used to paint a minimap.
//
// Colors are stored as ColorCode values: six hexadecimal digits without the
// leading '#', exactly as they appear in the recorded game tooling. A Table
// groups the terrain colors (indexed by terrain id), the eight player color
// slots and the resource category colors.
//
// Usage:
//
//	table := palette.Default()
//
//	grass, err := table.Terrain(0)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(grass.RGBA()) // {51 151 39 255}
//
//	blue, _ := table.Player(0) // "0000DD"
//
// Lookups never fall back to a default color: an unknown terrain id or a
// color slot outside 0..7 is reported as an error so the caller can abort the
// render.
package palette
