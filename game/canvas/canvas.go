// Package canvas owns the pixel buffer a minimap is painted on.
//
// A Canvas is created square and transparent, mutated in place by the
// drawing passes, then turned into a fixed-size image by Finalize (rotate
// with bicubic resampling and bounding-box expansion, then resize) and
// written out by Export. A finalized canvas is read-only.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

var (
	ErrOutOfBounds = errors.New("coordinate out of range")
	ErrFinalized   = errors.New("canvas is finalized")
	ErrInvalidSize = errors.New("invalid canvas size")
)

// Marker geometry for player start positions.
const (
	MarkerRadius      = 5
	MarkerRingOffset  = 6
	MarkerRingWidth   = 3
	markerOuterRadius = MarkerRadius + MarkerRingOffset
	markerInnerRadius = markerOuterRadius - MarkerRingWidth
)

// CoordinateError reports a pixel write outside the canvas.
type CoordinateError struct {
	X, Y          int
	Width, Height int
}

func (e *CoordinateError) Error() string {
	return fmt.Sprintf("%v: (%d,%d) outside %dx%d canvas", ErrOutOfBounds, e.X, e.Y, e.Width, e.Height)
}

func (e *CoordinateError) Unwrap() error { return ErrOutOfBounds }

// Canvas is an RGBA pixel buffer.
type Canvas struct {
	img       *image.RGBA
	finalized bool
}

// New allocates a transparent edge×edge canvas.
func New(edge int) (*Canvas, error) {
	if edge <= 0 {
		return nil, fmt.Errorf("%w: edge %d", ErrInvalidSize, edge)
	}
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, edge, edge))}, nil
}

// Width of the canvas in pixels.
func (c *Canvas) Width() int { return c.img.Rect.Dx() }

// Height of the canvas in pixels.
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

// Image exposes the underlying buffer for reading.
func (c *Canvas) Image() image.Image { return c.img }

// Finalized reports whether the canvas has been through Finalize.
func (c *Canvas) Finalized() bool { return c.finalized }

// InBounds reports whether (x, y) addresses a pixel of the canvas.
func (c *Canvas) InBounds(x, y int) bool {
	return image.Pt(x, y).In(c.img.Rect)
}

// At returns the pixel at (x, y); out of range pixels read as transparent.
func (c *Canvas) At(x, y int) color.RGBA {
	return c.img.RGBAAt(x, y)
}

// Set overwrites one pixel. There is no blending: the last write wins.
func (c *Canvas) Set(x, y int, col color.Color) error {
	if c.finalized {
		return ErrFinalized
	}
	if !c.InBounds(x, y) {
		return &CoordinateError{X: x, Y: y, Width: c.Width(), Height: c.Height()}
	}
	c.img.SetRGBA(x, y, color.RGBAModel.Convert(col).(color.RGBA))
	return nil
}

// DrawMarker paints a filled disc of MarkerRadius centered on (x, y) and a
// ring of outer radius MarkerRadius+MarkerRingOffset and width
// MarkerRingWidth, both in col. Pixels falling outside the canvas are
// clipped.
func (c *Canvas) DrawMarker(x, y int, col color.Color) error {
	if c.finalized {
		return ErrFinalized
	}
	rgba := color.RGBAModel.Convert(col).(color.RGBA)
	const (
		fill  = MarkerRadius * MarkerRadius
		inner = markerInnerRadius * markerInnerRadius
		outer = markerOuterRadius * markerOuterRadius
	)
	for dy := -markerOuterRadius; dy <= markerOuterRadius; dy++ {
		for dx := -markerOuterRadius; dx <= markerOuterRadius; dx++ {
			d2 := dx*dx + dy*dy
			if d2 > fill && (d2 <= inner || d2 > outer) {
				continue
			}
			if c.InBounds(x+dx, y+dy) {
				c.img.SetRGBA(x+dx, y+dy, rgba)
			}
		}
	}
	return nil
}

// Finalize rotates the canvas counter-clockwise by angle degrees, growing the
// frame so no corner is clipped, then scales the result to width×height. The
// returned canvas is read-only; the receiver is left untouched.
func (c *Canvas) Finalize(angle float64, width, height int) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: output %dx%d", ErrInvalidSize, width, height)
	}
	g := NewGeometry(c.Width(), c.Height(), angle, width, height)

	rotated := image.NewRGBA(image.Rect(0, 0, g.RotatedWidth, g.RotatedHeight))
	draw.CatmullRom.Transform(rotated, g.rotation(), c.img, c.img.Bounds(), draw.Src, nil)

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(out, out.Bounds(), rotated, rotated.Bounds(), draw.Src, nil)

	return &Canvas{img: out, finalized: true}, nil
}

// Composite pastes the canvas onto a transparent width×height background at
// offset (0,0), alpha compositing over the background.
func (c *Canvas) Composite(width, height int) *image.RGBA {
	bg := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(bg, c.img.Bounds(), c.img, image.Point{}, draw.Over)
	return bg
}

// Export composites the canvas onto a transparent width×height background and
// writes it as a PNG to path, creating parent directories. The composite is
// returned.
func (c *Canvas) Export(path string, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: output %dx%d", ErrInvalidSize, width, height)
	}
	final := c.Composite(width, height)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create image file: %w", err)
	}
	if err := png.Encode(f, final); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close image file: %w", err)
	}
	return final, nil
}
