package image565

import (
	"encoding/binary"
	"errors"
	"image/color"
)

// PaletteSize is the number of entries in an indexed palette.
const PaletteSize = 256

// ErrPaletteSize is returned when a palette does not hold 256 RGB triples.
var ErrPaletteSize = errors.New("image565: palette must hold 256 RGB triples")

// Palette maps 8-bit indexes to RGB565 pixels. Entries are stored
// byte-swapped relative to Color, so that a little-endian store of an entry
// lays the pixel out in wire order.
type Palette [PaletteSize]uint16

// Load converts a packed RGB24 palette (R, G, B per entry) into p.
func (p *Palette) Load(rgb []byte) error {
	if len(rgb) < 3*PaletteSize {
		return ErrPaletteSize
	}
	for i := range p {
		c := Pack(rgb[3*i], rgb[3*i+1], rgb[3*i+2])
		p[i] = Swap(uint16(c))
	}
	return nil
}

// LoadColors converts a color.Palette into p. Missing entries are black.
func (p *Palette) LoadColors(pal color.Palette) {
	for i := range p {
		if i >= len(pal) {
			p[i] = 0
			continue
		}
		p[i] = Swap(uint16(Model.Convert(pal[i]).(Color)))
	}
}

// Color returns the natural-order color stored at index i.
func (p *Palette) Color(i uint8) Color {
	return Color(Swap(p[i]))
}

// Expand looks up every index in src and writes the wire-order pixels to dst,
// which must hold at least 2*len(src) bytes.
func (p *Palette) Expand(dst, src []byte) {
	if len(src) == 0 {
		return
	}
	_ = dst[2*len(src)-1]
	for i, idx := range src {
		binary.LittleEndian.PutUint16(dst[2*i:], p[idx])
	}
}
