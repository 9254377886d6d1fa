package st7789

import (
	"errors"
	"image/color"

	"periph.io/x/devices/v3/st7789/image565"
	"tinygo.org/x/drivers"
)

// DrawPixel sets the pixel at (x, y).
func (d *Dev) DrawPixel(x, y int, c image565.Color) error {
	if d.halted {
		return errors.New("st7789: halted")
	}
	return d.drawPixel(x, y, c)
}

func (d *Dev) drawPixel(x, y int, c image565.Color) error {
	ok, err := d.setWindow(x, y, x, y)
	if err != nil || !ok {
		return err
	}
	px := [2]byte{byte(c >> 8), byte(c)}
	return d.writePixels(px[:])
}

// HLine draws a horizontal run of w pixels starting at (x, y).
func (d *Dev) HLine(x, y, w int, c image565.Color) error {
	if d.halted {
		return errors.New("st7789: halted")
	}
	return d.hline(x, y, w, c)
}

func (d *Dev) hline(x, y, w int, c image565.Color) error {
	ok, err := d.setWindow(x, y, x+w-1, y)
	if err != nil || !ok {
		return err
	}
	return d.fillColor(c, w)
}

// VLine draws a vertical run of h pixels starting at (x, y).
func (d *Dev) VLine(x, y, h int, c image565.Color) error {
	if d.halted {
		return errors.New("st7789: halted")
	}
	return d.vline(x, y, h, c)
}

func (d *Dev) vline(x, y, h int, c image565.Color) error {
	ok, err := d.setWindow(x, y, x, y+h-1)
	if err != nil || !ok {
		return err
	}
	return d.fillColor(c, h)
}

// FillRect fills the w×h rectangle at (x, y) in one windowed write.
func (d *Dev) FillRect(x, y, w, h int, c image565.Color) error {
	if d.halted {
		return errors.New("st7789: halted")
	}
	return d.fillRect(x, y, w, h, c)
}

func (d *Dev) fillRect(x, y, w, h int, c image565.Color) error {
	ok, err := d.setWindow(x, y, x+w-1, y+h-1)
	if err != nil || !ok {
		return err
	}
	return d.fillColor(c, w*h)
}

// Fill fills the whole panel with c.
func (d *Dev) Fill(c image565.Color) error {
	return d.FillRect(0, 0, d.rect.Dx(), d.rect.Dy(), c)
}

// Rect draws the outline of the w×h rectangle at (x, y).
func (d *Dev) Rect(x, y, w, h int, c image565.Color) error {
	if d.halted {
		return errors.New("st7789: halted")
	}
	if err := d.hline(x, y, w, c); err != nil {
		return err
	}
	if err := d.vline(x, y, h, c); err != nil {
		return err
	}
	if err := d.hline(x, y+h-1, w, c); err != nil {
		return err
	}
	return d.vline(x+w-1, y, h, c)
}

// Line draws a line from (x0, y0) to (x1, y1) with Bresenham's algorithm.
//
// Consecutive pixels on the same row (or column, for steep lines) are sent as
// one run so that every run costs a single window command.
func (d *Dev) Line(x0, y0, x1, y1 int, c image565.Color) error {
	if d.halted {
		return errors.New("st7789: halted")
	}

	steep := abs(y1-y0) > abs(x1-x0)
	if steep {
		x0, y0 = y0, x0
		x1, y1 = y1, x1
	}
	if x0 > x1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
	}

	dx, dy := x1-x0, abs(y1-y0)
	err := dx >> 1
	ystep := -1
	if y0 < y1 {
		ystep = 1
	}

	// run emits dlen pixels starting at xs on row y0 of the transposed
	// coordinate space.
	run := func(xs, y, dlen int) error {
		switch {
		case dlen == 1 && steep:
			return d.drawPixel(y, xs, c)
		case dlen == 1:
			return d.drawPixel(xs, y, c)
		case steep:
			return d.vline(y, xs, dlen, c)
		default:
			return d.hline(xs, y, dlen, c)
		}
	}

	xs, dlen := x0, 0
	for ; x0 <= x1; x0++ {
		dlen++
		err -= dy
		if err < 0 {
			err += dx
			if e := run(xs, y0, dlen); e != nil {
				return e
			}
			dlen = 0
			y0 += ystep
			xs = x0 + 1
		}
	}
	if dlen > 0 {
		// The trailing run always goes out as a line, even for one pixel.
		if steep {
			return d.vline(y0, xs, dlen, c)
		}
		return d.hline(xs, y0, dlen, c)
	}
	return nil
}

// Bitmap draws a 1 bit per pixel bitmap of w×h pixels at (x, y). Bits are
// read most significant first and every row starts on a new byte. Set bits
// are drawn in fg, clear bits in bg.
func (d *Dev) Bitmap(bits []byte, x, y, w, h int, fg, bg image565.Color) error {
	if d.halted {
		return errors.New("st7789: halted")
	}
	if w <= 0 || h <= 0 {
		return nil
	}
	if len(bits) < (w+7)/8*h {
		return errors.New("st7789: bitmap smaller than its dimensions")
	}
	buf := make([]byte, 2*w*h)
	image565.ExpandBitmap(buf, bits, w, fg, bg)
	return d.BlitBuffer(buf, x, y, w, h)
}

// Size implements drivers.Displayer.
func (d *Dev) Size() (x, y int16) {
	return int16(d.rect.Dx()), int16(d.rect.Dy())
}

// SetPixel implements drivers.Displayer. Errors are dropped, as the
// interface has no way to report them.
func (d *Dev) SetPixel(x, y int16, c color.RGBA) {
	_ = d.DrawPixel(int(x), int(y), image565.Pack(c.R, c.G, c.B))
}

// Display implements drivers.Displayer. Pixels are written immediately, so
// there is nothing to flush.
func (d *Dev) Display() error {
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

var _ drivers.Displayer = &Dev{}
