// Command analyze prints quick, human-readable statistics about the replay
// summaries of a replay directory. It summarizes map coverage, resource
// counts, walls per player and the distance from each start position to the
// nearest gold and stone, and highlights data the minimap renderer would
// reject (unknown terrain ids, out-of-map coordinates, unknown wall owners).
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/recminimap/game/classify"
	"github.com/wricardo/mcp-training/recminimap/game/palette"
	"github.com/wricardo/mcp-training/recminimap/game/replay"
)

// AnalysisPoint denotes a tile coordinate used during analysis output.
type AnalysisPoint struct {
	X, Y int
}

// PlayerAnalysis holds per-player statistics.
type PlayerAnalysis struct {
	Number       int
	Name         string
	Start        AnalysisPoint
	Walls        int
	NearestGold  int // -1 when the map has no gold
	NearestStone int // -1 when the map has no stone
}

// Analysis is the result of analyzing one replay summary.
type Analysis struct {
	Replay         string
	MapName        string
	MapSize        string
	Edge           int
	Tiles          int
	Resources      map[classify.Category]int
	Players        []PlayerAnalysis
	UnknownTerrain []int
	OutOfBounds    []AnalysisPoint
	UnknownOwners  []int
}

// Renderable reports whether no problem was found.
func (a *Analysis) Renderable() bool {
	return a.Edge > 0 && len(a.UnknownTerrain) == 0 && len(a.OutOfBounds) == 0 && len(a.UnknownOwners) == 0
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "print statistics about recorded game summaries",
		ArgsUsage: "[replay dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.Args().First()
			if dir == "" {
				dir = "recs"
			}
			return analyzeDir(dir, cmd.Root().Writer)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func analyzeDir(dir string, w io.Writer) error {
	files, err := replay.Discover(dir)
	if err != nil {
		return err
	}

	for _, path := range files {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", filepath.Base(path))
		summary, err := replay.JSONParser{}.Parse(path)
		if err != nil {
			fmt.Fprintf(w, "Error reading summary: %v\n", err)
			continue
		}
		printAnalysis(w, analyze(filepath.Base(path), summary))
	}
	return nil
}

func analyze(name string, s *replay.Summary) *Analysis {
	a := &Analysis{
		Replay:    name,
		MapName:   s.Map.Name,
		MapSize:   s.Map.Size,
		Tiles:     len(s.Map.Tiles),
		Resources: make(map[classify.Category]int),
	}
	if size, err := s.MapSize(); err == nil {
		a.Edge = size.Edge
	}

	colors := palette.Default()
	seenTerrain := make(map[int]bool)
	for _, tile := range s.Map.Tiles {
		if _, err := colors.Terrain(tile.TerrainID); err != nil && !seenTerrain[tile.TerrainID] {
			seenTerrain[tile.TerrainID] = true
			a.UnknownTerrain = append(a.UnknownTerrain, tile.TerrainID)
		}
		a.checkBounds(tile.X, tile.Y)
	}

	classifier := classify.Default()
	var gold, stone []AnalysisPoint
	for _, obj := range s.Resources {
		category := classifier.Classify(obj.Type)
		if !category.IsResource() {
			continue
		}
		a.Resources[category]++
		p := AnalysisPoint{int(obj.X), int(obj.Y)}
		a.checkBounds(p.X, p.Y)
		switch category {
		case classify.CategoryGold:
			gold = append(gold, p)
		case classify.CategoryStone:
			stone = append(stone, p)
		}
	}

	walls := make(map[int]int)
	for _, obj := range s.Objects {
		if classifier.Classify(obj.Type) != classify.CategoryWall {
			continue
		}
		if _, err := s.Player(obj.PlayerNumber); err != nil {
			a.UnknownOwners = append(a.UnknownOwners, obj.PlayerNumber)
			continue
		}
		walls[obj.PlayerNumber]++
		a.checkBounds(int(obj.X), int(obj.Y))
	}

	for _, p := range s.Players {
		x, y := p.Position.Tile()
		start := AnalysisPoint{x, y}
		a.Players = append(a.Players, PlayerAnalysis{
			Number:       p.Number,
			Name:         p.Name,
			Start:        start,
			Walls:        walls[p.Number],
			NearestGold:  nearest(start, gold),
			NearestStone: nearest(start, stone),
		})
	}
	return a
}

func (a *Analysis) checkBounds(x, y int) {
	if a.Edge == 0 {
		return
	}
	if x < 0 || y < 0 || x >= a.Edge || y >= a.Edge {
		a.OutOfBounds = append(a.OutOfBounds, AnalysisPoint{x, y})
	}
}

// nearest returns the Manhattan distance to the closest point, or -1.
func nearest(from AnalysisPoint, points []AnalysisPoint) int {
	best := -1
	for _, p := range points {
		dist := abs(from.X-p.X) + abs(from.Y-p.Y)
		if best < 0 || dist < best {
			best = dist
		}
	}
	return best
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Map: %s (%s)\n", a.MapName, a.MapSize)
	if a.Edge == 0 {
		fmt.Fprintf(w, "⚠️  WARNING: unknown map size %q\n", a.MapSize)
	} else {
		fmt.Fprintf(w, "Tiles: %d of %d\n", a.Tiles, a.Edge*a.Edge)
	}
	fmt.Fprintf(w, "Food: %d, Stone: %d, Gold: %d, Relics: %d\n",
		a.Resources[classify.CategoryFood], a.Resources[classify.CategoryStone], a.Resources[classify.CategoryGold], a.Resources[classify.CategoryRelic])

	for _, p := range a.Players {
		fmt.Fprintf(w, "Player %d %s: start (%d, %d), %d walls, nearest gold %s, nearest stone %s\n",
			p.Number, p.Name, p.Start.X, p.Start.Y, p.Walls, distance(p.NearestGold), distance(p.NearestStone))
	}

	if len(a.UnknownTerrain) > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: unknown terrain ids %v\n", a.UnknownTerrain)
	}
	if len(a.UnknownOwners) > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: walls owned by unknown players %v\n", a.UnknownOwners)
	}
	if len(a.OutOfBounds) > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: %d coordinates are outside the map!\n", len(a.OutOfBounds))
		for i, p := range a.OutOfBounds {
			if i < 5 { // Show first 5 points
				fmt.Fprintf(w, "   Outside: (%d, %d)\n", p.X, p.Y)
			}
		}
		if len(a.OutOfBounds) > 5 {
			fmt.Fprintf(w, "   ... and %d more\n", len(a.OutOfBounds)-5)
		}
	}

	if a.Renderable() {
		fmt.Fprintf(w, "✅ Summary can be rendered\n")
	}
}

func distance(d int) string {
	if d < 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d", d)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
