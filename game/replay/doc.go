// Package replay describes the parsed recorded game that the minimap renderer
// and the match report builder consume.
//
// The binary replay format is decoded by an external tool; this package only
// models its output (Summary) and knows how to find recorded games on disk
// and load their exported summaries.
//
// Recorded Games:
//
// A recorded game is any file with one of the Extensions (.mgl, .mgx, .mgz,
// .aoe2record). Discover lists them in a directory, sorted by name, and
// returns ErrNoReplays when there are none.
//
// Summaries:
//
// JSONParser loads the summary the external parser writes next to each
// recorded game, named after the replay with a ".json" suffix:
//
//	games/
//	  arabia_1v1.mgz
//	  arabia_1v1.mgz.json
//
// Settings recorded as [id, "name"] pairs are accepted as well as plain
// names, and object entries may carry their type code under either
// "object_id" or "object_type".
//
// Usage:
//
//	files, err := replay.Discover("games")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	var parser replay.JSONParser
//	summary, err := parser.Parse(files[0])
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	size, err := summary.MapSize()
//	fmt.Println(size.Edge, size.TileCount())
package replay
