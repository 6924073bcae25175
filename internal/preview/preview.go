// Package preview renders figures as PNG images.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"figtrace/pkg/trace"
)

// ErrEmptyFigure is returned for a figure without edges.
var ErrEmptyFigure = errors.New("preview: figure has no edges")

// Options controls the rendered image.
type Options struct {
	// Size is the width and height of the output in pixels.
	Size int
	// Supersample draws at Size*Supersample and downscales for smoother lines.
	Supersample int
	// Labels draws each edge's index and direction next to it.
	Labels bool
}

// DefaultOptions returns a 256px labelled preview.
func DefaultOptions() Options {
	return Options{Size: 256, Supersample: 2, Labels: true}
}

var (
	fontOnce sync.Once
	fontTTF  *truetype.Font
	fontErr  error
)

func face(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		fontTTF, fontErr = truetype.Parse(gomono.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("failed to parse font: %w", fontErr)
	}
	return truetype.NewFace(fontTTF, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// EdgeColor returns the colour of edge i of n. Hues are spread evenly around
// the wheel so neighbouring edges are easy to tell apart.
func EdgeColor(i, n int) color.Color {
	if n < 1 {
		n = 1
	}
	return colorful.Hsv(float64(i)*360/float64(n), 0.7, 0.85).Clamped()
}

// Render draws the figure described by records. Figures are drawn as stored,
// so invalid ones can be inspected too.
func Render(records []trace.EdgeRecord, opts Options) (image.Image, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFigure
	}
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	size := opts.Size * opts.Supersample
	scale := float64(opts.Supersample)

	edges := make([]*trace.Edge, len(records))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i, r := range records {
		e := trace.EdgeFromRecord(r)
		edges[i] = e
		for _, p := range []trace.Point{e.Start(), e.End()} {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}

	padding := float64(size) * 0.12
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	k := (float64(size) - 2*padding) / span
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	// Figure space is y-up, image space is y-down.
	toPx := func(p trace.Point) (float64, float64) {
		return float64(size)/2 + (p.X-cx)*k, float64(size)/2 - (p.Y-cy)*k
	}

	dc := gg.NewContext(size, size)
	dc.SetColor(color.White)
	dc.Clear()

	if opts.Labels {
		f, err := face(11 * scale)
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(f)
	}

	for i, e := range edges {
		x1, y1 := toPx(e.Start())
		x2, y2 := toPx(e.End())
		dc.SetColor(EdgeColor(i, len(edges)))
		dc.SetLineWidth(3 * scale)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
		drawArrow(dc, x1, y1, x2, y2, 7*scale)

		if opts.Labels {
			// Offset the label to the outside of a counter-clockwise figure.
			dx, dy := x2-x1, y2-y1
			l := math.Hypot(dx, dy)
			if l == 0 {
				l = 1
			}
			off := 14 * scale
			lx := (x1+x2)/2 + dy/l*off
			ly := (y1+y2)/2 - dx/l*off
			dc.SetColor(color.Black)
			dc.DrawStringAnchored(fmt.Sprintf("%d:%.0f", i, e.Angle()), lx, ly, 0.5, 0.5)
		}
	}

	dc.SetColor(color.Black)
	x0, y0 := toPx(edges[0].Start())
	dc.DrawCircle(x0, y0, 3*scale)
	dc.Fill()

	img := dc.Image()
	if opts.Supersample > 1 {
		return imaging.Resize(img, opts.Size, opts.Size, imaging.Lanczos), nil
	}
	return img, nil
}

// drawArrow draws an arrow head at the midpoint of the segment pointing from
// (x1,y1) towards (x2,y2).
func drawArrow(dc *gg.Context, x1, y1, x2, y2, size float64) {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length
	tipX := (x1+x2)/2 + dx*size/2
	tipY := (y1+y2)/2 + dy*size/2
	const spread = 0.5
	dc.MoveTo(tipX, tipY)
	dc.LineTo(tipX-size*dx+size*dy*spread, tipY-size*dy-size*dx*spread)
	dc.LineTo(tipX-size*dx-size*dy*spread, tipY-size*dy+size*dx*spread)
	dc.ClosePath()
	dc.Fill()
}

// WritePNG renders records and encodes the result as PNG.
func WritePNG(w io.Writer, records []trace.EdgeRecord, opts Options) error {
	img, err := Render(records, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
