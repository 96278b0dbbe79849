// Package minimap paints a recorded game's map and renders it to the fixed
// 300×200 image shown next to match reports.
//
// Drawing happens in four passes over a square canvas whose edge is the map
// size, each pass overwriting the previous one:
//
//  1. terrain: one pixel per tile, colored by terrain id
//  2. resources: food, stone and gold piles as single pixels, relics as a
//     five pixel plus (neighbors outside the grid are skipped)
//  3. players: a filled disc with an outer ring at each start position
//  4. walls: one pixel per wall or gate, in its owner's color
//
// The canvas is then rotated 45° counter-clockwise with bicubic resampling,
// scaled to 300×200 and written as minimap_<name>.png.
//
// Usage:
//
//	r := minimap.NewRenderer(minimap.Options{OutputDir: "static"})
//	result, err := r.Render(summary, "arabia_1v1.mgz")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Path) // static/minimap_arabia_1v1.png
//
// Color and object code tables are injected through Options; the zero
// value uses palette.Default and classify.Default.
package minimap
