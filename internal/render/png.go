package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/hailam/wideboard/internal/bitboard"
	"github.com/hailam/wideboard/internal/board"
)

// PNG writes the diagram as a PNG image. The board is rasterized from the
// same SVG that SVG writes; labels are drawn with the Go font.
func PNG(w io.Writer, g *board.Geometry, attacks bitboard.Bitboard, opts Options) error {
	img, err := Image(g, attacks, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// Image renders the diagram to an RGBA image.
func Image(g *board.Geometry, attacks bitboard.Bitboard, opts Options) (*image.RGBA, error) {
	opts = opts.withDefaults()

	var buf bytes.Buffer
	l := writeSVG(&buf, g, attacks, opts, false)

	icon, err := oksvg.ReadIconStream(&buf, oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse diagram: %w", err)
	}
	icon.SetTarget(0, 0, float64(l.width), float64(l.height))

	rgba := image.NewRGBA(image.Rect(0, 0, l.width, l.height))
	scanner := rasterx.NewScannerGV(l.width, l.height, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(l.width, l.height, scanner)
	icon.Draw(raster, 1.0)

	if opts.Labels {
		if err := drawLabels(rgba, l); err != nil {
			return nil, err
		}
	}

	return rgba, nil
}

func drawLabels(dst *image.RGBA, l layout) error {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(max(l.margin*3/4, 6)),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.RGBA{0x33, 0x33, 0x33, 0xff}),
		Face: face,
	}

	// centered at (x, baseline)
	draw := func(s string, x, baseline int) {
		adv := d.MeasureString(s)
		d.Dot = fixed.Point26_6{X: fixed.I(x) - adv/2, Y: fixed.I(baseline)}
		d.DrawString(s)
	}

	for i := 0; i < l.size; i++ {
		draw(string(rune('a'+i)), l.margin+i*l.cell+l.cell/2, l.height-l.margin/4)
		draw(fmt.Sprint(i+1), l.margin/2, (l.size-1-i)*l.cell+l.cell/2+l.margin/4)
	}
	return nil
}
