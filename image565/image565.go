// Package image565 provides the RGB565 image format written to the ST7789.
//
// Pixels are packed 5-6-5 and stored big-endian, two bytes per pixel, which
// is the order the controller consumes them during a memory write.
package image565

import (
	"image"
	"image/color"
)

// Color is a packed RGB565 value in natural (host) order.
type Color uint16

// Common colors.
const (
	Black   Color = 0x0000
	Blue    Color = 0x001F
	Red     Color = 0xF800
	Green   Color = 0x07E0
	Cyan    Color = 0x07FF
	Magenta Color = 0xF81F
	Yellow  Color = 0xFFE0
	White   Color = 0xFFFF
)

// Pack packs 8-bit red, green and blue channels into RGB565, keeping the top
// 5, 6 and 5 bits respectively.
func Pack(r, g, b uint8) Color {
	return Color(uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b)>>3)
}

// Swap exchanges the two bytes of v.
func Swap(v uint16) uint16 {
	return v>>8 | v<<8
}

// RGB returns the channels expanded back to 8 bits. The low bits are filled
// by replicating the high bits so that 0x1F maps to 0xFF.
func (c Color) RGB() (r, g, b uint8) {
	r5 := uint8(c>>11) & 0x1F
	g6 := uint8(c>>5) & 0x3F
	b5 := uint8(c) & 0x1F
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// RGBA implements color.Color. RGB565 has no alpha; it is always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r8, g8, b8 := c.RGB()
	r = uint32(r8) * 0x101
	g = uint32(g8) * 0x101
	b = uint32(b8) * 0x101
	return r, g, b, 0xFFFF
}

func toColor(c color.Color) color.Color {
	if v, ok := c.(Color); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return Pack(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// Model converts colors to Color.
var Model = color.ModelFunc(toColor)

// Image is an RGB565 image in wire order: each pixel is two bytes, high byte
// first.
type Image struct {
	Pix    []byte          // Pixel data (2 bytes per pixel)
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewImage creates a new Image with the specified bounds.
func NewImage(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &Image{Rect: r}
	}
	return &Image{
		Pix:    make([]byte, 2*w*h),
		Stride: 2 * w,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (p *Image) ColorModel() color.Model {
	return Model
}

// Bounds returns the image bounds.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the color of the pixel at (x, y).
func (p *Image) At(x, y int) color.Color {
	return p.Color565At(x, y)
}

// Color565At returns the packed color of the pixel at (x, y).
func (p *Image) Color565At(x, y int) Color {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return 0
	}
	i := p.PixOffset(x, y)
	return Color(uint16(p.Pix[i])<<8 | uint16(p.Pix[i+1]))
}

// Set sets the color of the pixel at (x, y).
func (p *Image) Set(x, y int, c color.Color) {
	p.SetColor565(x, y, Model.Convert(c).(Color))
}

// SetColor565 sets the packed color of the pixel at (x, y) without going
// through the color model.
func (p *Image) SetColor565(x, y int, c Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	p.Pix[i] = byte(c >> 8)
	p.Pix[i+1] = byte(c)
}

// PixOffset returns the index of the first byte of the pixel at (x, y).
func (p *Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}

// ExpandBitmap expands a 1-bit-per-pixel bitmap into wire-order pixels.
//
// Bits are read most significant first. Every row of width pixels starts on a
// fresh byte of bits. dst must hold 2*width*rows bytes, where rows is the
// number of complete rows in bits. It returns the number of bytes written.
func ExpandBitmap(dst, bits []byte, width int, fg, bg Color) int {
	if width <= 0 {
		return 0
	}
	n := 0
	col := 0
	for _, v := range bits {
		for bit := 7; bit >= 0; bit-- {
			c := bg
			if v&(1<<uint(bit)) != 0 {
				c = fg
			}
			if n+2 > len(dst) {
				return n
			}
			dst[n] = byte(c >> 8)
			dst[n+1] = byte(c)
			n += 2
			col++
			if col >= width {
				col = 0
				break
			}
		}
	}
	return n
}
