package drawscript

import (
	"errors"
	"image"
	"image/color"

	"tinygo.org/x/drivers"

	"periph.io/x/devices/v3/st7789/image565"
)

// Displayer adapts a TinyGo display driver into a Canvas. Every primitive is
// turned into SetPixel calls followed by Display, so buffered drivers show
// each command as soon as it completes.
//
// SetBacklight is forwarded when the driver has a
// SetBacklight(uint8) error method.
type Displayer struct {
	d drivers.Displayer
}

// NewDisplayer returns a Canvas drawing through d.
func NewDisplayer(d drivers.Displayer) *Displayer {
	return &Displayer{d: d}
}

// Bounds returns the driver's size with the origin at (0, 0).
func (p *Displayer) Bounds() image.Rectangle {
	w, h := p.d.Size()
	return image.Rect(0, 0, int(w), int(h))
}

func (p *Displayer) Fill(c image565.Color) error {
	return p.FillRect(0, 0, p.Bounds().Dx(), p.Bounds().Dy(), c)
}

func (p *Displayer) DrawPixel(x, y int, c image565.Color) error {
	p.set(x, y, rgba(c))
	return p.d.Display()
}

func (p *Displayer) HLine(x, y, w int, c image565.Color) error {
	return p.FillRect(x, y, w, 1, c)
}

func (p *Displayer) VLine(x, y, h int, c image565.Color) error {
	return p.FillRect(x, y, 1, h, c)
}

func (p *Displayer) FillRect(x, y, w, h int, c image565.Color) error {
	r := image.Rect(x, y, x+w, y+h).Intersect(p.Bounds())
	v := rgba(c)
	for j := r.Min.Y; j < r.Max.Y; j++ {
		for i := r.Min.X; i < r.Max.X; i++ {
			p.d.SetPixel(int16(i), int16(j), v)
		}
	}
	return p.d.Display()
}

func (p *Displayer) Rect(x, y, w, h int, c image565.Color) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	v := rgba(c)
	for i := x; i < x+w; i++ {
		p.set(i, y, v)
		p.set(i, y+h-1, v)
	}
	for j := y; j < y+h; j++ {
		p.set(x, j, v)
		p.set(x+w-1, j, v)
	}
	return p.d.Display()
}

// Line plots a Bresenham line one pixel at a time.
func (p *Displayer) Line(x0, y0, x1, y1 int, c image565.Color) error {
	v := rgba(c)
	dx, dy := x1-x0, y1-y0
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	for {
		p.set(x0, y0, v)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
	return p.d.Display()
}

func (p *Displayer) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	r := dst.Intersect(p.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			s := sp.Add(image.Pt(x, y).Sub(dst.Min))
			p.d.SetPixel(int16(x), int16(y), rgba(image565.Model.Convert(src.At(s.X, s.Y)).(image565.Color)))
		}
	}
	return p.d.Display()
}

func (p *Displayer) SetBacklight(level uint8) error {
	if bl, ok := p.d.(interface{ SetBacklight(uint8) error }); ok {
		return bl.SetBacklight(level)
	}
	return errors.New("drawscript: display has no backlight control")
}

func (p *Displayer) set(x, y int, c color.RGBA) {
	if image.Pt(x, y).In(p.Bounds()) {
		p.d.SetPixel(int16(x), int16(y), c)
	}
}

func rgba(c image565.Color) color.RGBA {
	r, g, b := c.RGB()
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

var _ Canvas = &Displayer{}
