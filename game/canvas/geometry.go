package canvas

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Geometry describes the rotate-then-resize mapping applied by Finalize.
type Geometry struct {
	SourceWidth, SourceHeight   int
	Angle                       float64
	RotatedWidth, RotatedHeight int
	OutputWidth, OutputHeight   int
}

// NewGeometry computes the expanded frame of a w×h image rotated by angle
// degrees and scaled to outW×outH.
func NewGeometry(w, h int, angle float64, outW, outH int) Geometry {
	sin, cos := math.Sincos(angle * math.Pi / 180)
	sin, cos = math.Abs(sin), math.Abs(cos)
	// Trim float noise so 0° and 90° keep their exact size.
	rw := math.Ceil(float64(w)*cos + float64(h)*sin - 1e-9)
	rh := math.Ceil(float64(w)*sin + float64(h)*cos - 1e-9)
	return Geometry{
		SourceWidth:   w,
		SourceHeight:  h,
		Angle:         angle,
		RotatedWidth:  int(rw),
		RotatedHeight: int(rh),
		OutputWidth:   outW,
		OutputHeight:  outH,
	}
}

// rotation is the source-to-rotated-frame affine transform. Positive angles
// turn the image counter-clockwise as seen on screen.
func (g Geometry) rotation() f64.Aff3 {
	sin, cos := math.Sincos(g.Angle * math.Pi / 180)
	cx, cy := float64(g.SourceWidth)/2, float64(g.SourceHeight)/2
	rx, ry := float64(g.RotatedWidth)/2, float64(g.RotatedHeight)/2
	return f64.Aff3{
		cos, sin, rx - cos*cx - sin*cy,
		-sin, cos, ry + sin*cx - cos*cy,
	}
}

// MapPoint returns the output pixel that the center of source pixel (x, y)
// lands on.
func (g Geometry) MapPoint(x, y int) (int, int) {
	m := g.rotation()
	px, py := float64(x)+0.5, float64(y)+0.5
	rx := m[0]*px + m[1]*py + m[2]
	ry := m[3]*px + m[4]*py + m[5]
	ox := rx * float64(g.OutputWidth) / float64(g.RotatedWidth)
	oy := ry * float64(g.OutputHeight) / float64(g.RotatedHeight)
	return int(math.Floor(ox)), int(math.Floor(oy))
}
