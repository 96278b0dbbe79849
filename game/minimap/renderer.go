package minimap

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/recminimap/game/canvas"
	"github.com/wricardo/mcp-training/recminimap/game/classify"
	"github.com/wricardo/mcp-training/recminimap/game/palette"
	"github.com/wricardo/mcp-training/recminimap/game/replay"
)

var ErrUnknownOwner = errors.New("wall owner is not a player")

// Output defaults.
const (
	DefaultAngle  = 45.0
	DefaultWidth  = 300
	DefaultHeight = 200
)

// Options configures a Renderer. Zero fields take their defaults.
type Options struct {
	Palette    *palette.Table
	Classifier *classify.Classifier
	OutputDir  string
	Angle      float64
	Width      int
	Height     int
	Logger     logrus.FieldLogger
}

// Renderer draws and exports minimaps.
type Renderer struct {
	palette    *palette.Table
	classifier *classify.Classifier
	outputDir  string
	angle      float64
	width      int
	height     int
	log        logrus.FieldLogger
}

// Result describes one exported minimap.
type Result struct {
	Path     string          `json:"path"`
	Edge     int             `json:"edge"`
	Geometry canvas.Geometry `json:"geometry"`
	Image    *image.RGBA     `json:"-"`
}

// NewRenderer creates a renderer from opts.
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{
		palette:    opts.Palette,
		classifier: opts.Classifier,
		outputDir:  opts.OutputDir,
		angle:      opts.Angle,
		width:      opts.Width,
		height:     opts.Height,
		log:        opts.Logger,
	}
	if r.palette == nil {
		r.palette = palette.Default()
	}
	if r.classifier == nil {
		r.classifier = classify.Default()
	}
	if r.outputDir == "" {
		r.outputDir = "."
	}
	if r.angle == 0 {
		r.angle = DefaultAngle
	}
	if r.width <= 0 {
		r.width = DefaultWidth
	}
	if r.height <= 0 {
		r.height = DefaultHeight
	}
	if r.log == nil {
		r.log = logrus.StandardLogger()
	}
	return r
}

// OutputName is the image file name for a recorded game.
func OutputName(source string) string {
	return "minimap_" + replay.Stem(source) + ".png"
}

// Render draws the summary, finalizes the canvas and writes the PNG into the
// output directory.
func (r *Renderer) Render(summary *replay.Summary, source string) (*Result, error) {
	start := time.Now()
	log := r.log.WithField("replay", filepath.Base(source))

	c, err := r.Draw(summary)
	if err != nil {
		return nil, err
	}

	final, err := c.Finalize(r.angle, r.width, r.height)
	if err != nil {
		return nil, fmt.Errorf("finalize: %w", err)
	}

	path := filepath.Join(r.outputDir, OutputName(source))
	img, err := final.Export(path, r.width, r.height)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	log.WithFields(logrus.Fields{
		"path":     path,
		"edge":     c.Width(),
		"duration": time.Since(start),
	}).Debug("minimap rendered")

	return &Result{
		Path:     path,
		Edge:     c.Width(),
		Geometry: r.Geometry(c.Width()),
		Image:    img,
	}, nil
}

// Geometry is the rotate and resize mapping applied to an edge×edge canvas.
func (r *Renderer) Geometry(edge int) canvas.Geometry {
	return canvas.NewGeometry(edge, edge, r.angle, r.width, r.height)
}

// Draw runs the four drawing passes and returns the unfinalized canvas.
func (r *Renderer) Draw(summary *replay.Summary) (*canvas.Canvas, error) {
	size, err := summary.MapSize()
	if err != nil {
		return nil, err
	}
	c, err := canvas.New(size.Edge)
	if err != nil {
		return nil, err
	}

	passes := []struct {
		stage string
		draw  func(*canvas.Canvas, *replay.Summary) error
	}{
		{"terrain", r.drawTerrain},
		{"resources", r.drawResources},
		{"players", r.drawPlayers},
		{"walls", r.drawWalls},
	}
	for _, p := range passes {
		if err := p.draw(c, summary); err != nil {
			return nil, fmt.Errorf("%s: %w", p.stage, err)
		}
	}
	return c, nil
}

func (r *Renderer) drawTerrain(c *canvas.Canvas, summary *replay.Summary) error {
	for _, tile := range summary.Map.Tiles {
		col, err := r.palette.TerrainColor(tile.TerrainID)
		if err != nil {
			return err
		}
		if err := c.Set(tile.X, tile.Y, col); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawResources(c *canvas.Canvas, summary *replay.Summary) error {
	for _, obj := range summary.Resources {
		category := r.classifier.Classify(obj.Type)
		if !category.IsResource() {
			continue
		}
		code := r.resourceColor(category)
		col, err := code.NRGBA()
		if err != nil {
			return err
		}

		x, y := obj.Tile()
		if err := c.Set(x, y, col); err != nil {
			return err
		}
		if category == classify.CategoryRelic {
			drawRelicArms(c, x, y, col)
		}
	}
	return nil
}

func (r *Renderer) resourceColor(category classify.Category) palette.ColorCode {
	switch category {
	case classify.CategoryFood:
		return r.palette.Food
	case classify.CategoryStone:
		return r.palette.Stone
	case classify.CategoryGold:
		return r.palette.Gold
	default:
		return r.palette.Relic
	}
}

// drawRelicArms paints the four neighbors of a relic, skipping any that fall
// off the grid.
func drawRelicArms(c *canvas.Canvas, x, y int, col color.Color) {
	for _, d := range [4][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}} {
		nx, ny := x+d[0], y+d[1]
		if c.InBounds(nx, ny) {
			_ = c.Set(nx, ny, col)
		}
	}
}

func (r *Renderer) drawPlayers(c *canvas.Canvas, summary *replay.Summary) error {
	for _, p := range summary.Players {
		col, err := r.palette.PlayerColor(p.ColorID)
		if err != nil {
			return fmt.Errorf("player %q: %w", p.Name, err)
		}
		x, y := p.Position.Tile()
		if err := c.DrawMarker(x, y, col); err != nil {
			return fmt.Errorf("player %q: %w", p.Name, err)
		}
	}
	return nil
}

func (r *Renderer) drawWalls(c *canvas.Canvas, summary *replay.Summary) error {
	for _, obj := range summary.Objects {
		if r.classifier.Classify(obj.Type) != classify.CategoryWall {
			continue
		}
		owner, err := summary.Player(obj.PlayerNumber)
		if err != nil {
			return fmt.Errorf("%w: object %d at (%v,%v) has player_number %d",
				ErrUnknownOwner, obj.Type, obj.X, obj.Y, obj.PlayerNumber)
		}
		col, err := r.palette.PlayerColor(owner.ColorID)
		if err != nil {
			return err
		}
		x, y := obj.Tile()
		if err := c.Set(x, y, col); err != nil {
			return err
		}
	}
	return nil
}
