// Package frame streams an 8-bit indexed framebuffer to a panel.
//
// Every frame the palette is converted to wire-order RGB565 once, then each
// source row is expanded into a scan line buffer and blitted to the panel,
// centered when the panel is larger than the frame.
package frame

import (
	"errors"
	"fmt"
	"image"

	"periph.io/x/devices/v3/st7789/image565"
)

// Panel is the part of a display the blitter writes to.
type Panel interface {
	Bounds() image.Rectangle
	BlitBuffer(buf []byte, x, y, w, h int) error
}

// Opts holds the blitter configuration.
type Opts struct {
	// CellPixels is the number of panel pixels (and source index bytes) per
	// logical frame column. Boards that store two index bytes per 16-bit
	// framebuffer cell use 2. Default: 1.
	CellPixels int
}

// Blitter converts indexed frames and writes them to a Panel.
type Blitter struct {
	p    Panel
	cell int
	pal  image565.Palette
	row  []byte
}

// NewBlitter returns a Blitter writing to p. opts can be nil.
func NewBlitter(p Panel, opts *Opts) (*Blitter, error) {
	if p == nil {
		return nil, errors.New("frame: panel is required")
	}
	cell := 1
	if opts != nil && opts.CellPixels != 0 {
		cell = opts.CellPixels
	}
	if cell != 1 && cell != 2 {
		return nil, fmt.Errorf("frame: unsupported cell width %d", cell)
	}
	return &Blitter{
		p:    p,
		cell: cell,
		row:  make([]byte, 2*p.Bounds().Dx()),
	}, nil
}

// CellPixels returns the configured cell width.
func (b *Blitter) CellPixels() int {
	return b.cell
}

// Origin returns the panel position of the top left pixel of a
// width×height frame.
func (b *Blitter) Origin(width, height int) image.Point {
	r := b.p.Bounds()
	return image.Pt((r.Dx()-width*b.cell)/2, (r.Dy()-height)/2)
}

// Palette returns the palette converted by the last FinishUpdate.
func (b *Blitter) Palette() *image565.Palette {
	return &b.pal
}

// FinishUpdate converts the 256 entry RGB24 palette, then writes the
// width×height indexed frame in src to the panel one row at a time. Rows of
// the panel outside the frame are left untouched.
func (b *Blitter) FinishUpdate(src, palette []byte, width, height int) error {
	if err := b.pal.Load(palette); err != nil {
		return fmt.Errorf("frame: %w", err)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("frame: invalid frame size %dx%d", width, height)
	}
	n := width * b.cell
	r := b.p.Bounds()
	if n > r.Dx() || height > r.Dy() {
		return fmt.Errorf("frame: %dx%d frame does not fit %dx%d panel", n, height, r.Dx(), r.Dy())
	}
	if len(src) < n*height {
		return fmt.Errorf("frame: source holds %d bytes, need %d", len(src), n*height)
	}
	o := b.Origin(width, height)
	line := b.row[:2*n]
	for j := 0; j < height; j++ {
		b.pal.Expand(line, src[j*n:(j+1)*n])
		if err := b.p.BlitBuffer(line, o.X, o.Y+j, n, 1); err != nil {
			return err
		}
	}
	return nil
}
