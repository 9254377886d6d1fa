// Package drawscript runs small line-oriented drawing scripts against a
// display.
//
// Each line is one command followed by its arguments, split with shell
// quoting rules. Blank lines and lines starting with # are skipped.
//
//	fill black
//	rect 10 10 100 40 white
//	line 0 0 239 239 "#ff8000"
//	text 12 30 "Hello, world" yellow
//	label 12 50 "Score 100" black white
//	backlight 200
//
// Colors are RGB565 names (black, red, ...), any name from the SVG color
// set, #RRGGBB, or a raw 0xRRRR RGB565 value.
package drawscript

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"periph.io/x/devices/v3/st7789/image565"
)

// Canvas is the drawing surface a script targets. *st7789.Dev implements it.
type Canvas interface {
	Bounds() image.Rectangle
	Fill(c image565.Color) error
	DrawPixel(x, y int, c image565.Color) error
	HLine(x, y, w int, c image565.Color) error
	VLine(x, y, h int, c image565.Color) error
	FillRect(x, y, w, h int, c image565.Color) error
	Rect(x, y, w, h int, c image565.Color) error
	Line(x0, y0, x1, y1 int, c image565.Color) error
	Draw(dst image.Rectangle, src image.Image, sp image.Point) error
	SetBacklight(level uint8) error
}

// Error reports the script line a command failed on.
type Error struct {
	Line int
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("drawscript: line %d: %v", e.Line, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var named = map[string]image565.Color{
	"black":   image565.Black,
	"blue":    image565.Blue,
	"red":     image565.Red,
	"green":   image565.Green,
	"cyan":    image565.Cyan,
	"magenta": image565.Magenta,
	"yellow":  image565.Yellow,
	"white":   image565.White,
}

// ParseColor parses a color argument.
func ParseColor(s string) (image565.Color, error) {
	l := strings.ToLower(s)
	if c, ok := named[l]; ok {
		return c, nil
	}
	if c, ok := colornames.Map[l]; ok {
		return image565.Pack(c.R, c.G, c.B), nil
	}
	switch {
	case strings.HasPrefix(l, "#") && len(l) == 7:
		v, err := strconv.ParseUint(l[1:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("bad color %q", s)
		}
		return image565.Pack(uint8(v>>16), uint8(v>>8), uint8(v)), nil
	case strings.HasPrefix(l, "0x"):
		v, err := strconv.ParseUint(l[2:], 16, 16)
		if err != nil {
			return 0, fmt.Errorf("bad color %q", s)
		}
		return image565.Color(v), nil
	}
	return 0, fmt.Errorf("unknown color %q", s)
}

// command describes one script verb: the number of integer arguments, whether
// a trailing color follows, and what to do with them.
type command struct {
	ints  int
	color bool
	run   func(c Canvas, n []int, col image565.Color) error
}

var commands = map[string]command{
	"fill": {0, true, func(c Canvas, n []int, col image565.Color) error {
		return c.Fill(col)
	}},
	"pixel": {2, true, func(c Canvas, n []int, col image565.Color) error {
		return c.DrawPixel(n[0], n[1], col)
	}},
	"hline": {3, true, func(c Canvas, n []int, col image565.Color) error {
		return c.HLine(n[0], n[1], n[2], col)
	}},
	"vline": {3, true, func(c Canvas, n []int, col image565.Color) error {
		return c.VLine(n[0], n[1], n[2], col)
	}},
	"fillrect": {4, true, func(c Canvas, n []int, col image565.Color) error {
		return c.FillRect(n[0], n[1], n[2], n[3], col)
	}},
	"rect": {4, true, func(c Canvas, n []int, col image565.Color) error {
		return c.Rect(n[0], n[1], n[2], n[3], col)
	}},
	"line": {4, true, func(c Canvas, n []int, col image565.Color) error {
		return c.Line(n[0], n[1], n[2], n[3], col)
	}},
	"backlight": {1, false, func(c Canvas, n []int, col image565.Color) error {
		if n[0] < 0 || n[0] > 255 {
			return fmt.Errorf("backlight %d out of range", n[0])
		}
		return c.SetBacklight(uint8(n[0]))
	}},
}

// Exec runs a single command line.
func Exec(c Canvas, line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return err
	}
	if len(args) == 0 || strings.HasPrefix(args[0], "#") {
		return nil
	}
	verb := strings.ToLower(args[0])
	switch verb {
	case "text":
		return execText(c, args[1:])
	case "label":
		return execLabel(c, args[1:])
	}
	cmd, ok := commands[verb]
	if !ok {
		return fmt.Errorf("unknown command %q", args[0])
	}
	want := cmd.ints
	if cmd.color {
		want++
	}
	if len(args)-1 != want {
		return fmt.Errorf("%s takes %d arguments, got %d", verb, want, len(args)-1)
	}
	n, err := ints(args[1 : 1+cmd.ints])
	if err != nil {
		return err
	}
	var col image565.Color
	if cmd.color {
		if col, err = ParseColor(args[len(args)-1]); err != nil {
			return err
		}
	}
	return cmd.run(c, n, col)
}

// Run executes every line read from r, stopping at the first failure.
func Run(c Canvas, r io.Reader) error {
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		if err := Exec(c, sc.Text()); err != nil {
			return &Error{Line: line, Err: err}
		}
	}
	return sc.Err()
}

// execText renders "text X Y STRING COLOR" with the 7×13 basic font. Only
// the set pixels of the glyphs are drawn; the canvas behind them shows
// through.
func execText(c Canvas, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("text takes 4 arguments, got %d", len(args))
	}
	n, err := ints(args[:2])
	if err != nil {
		return err
	}
	col, err := ParseColor(args[3])
	if err != nil {
		return err
	}
	face := basicfont.Face7x13
	w := font.MeasureString(face, args[2]).Ceil()
	h := face.Metrics().Height.Ceil()
	if w == 0 {
		return nil
	}
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(args[2])

	// Glyph pixels are sent as horizontal runs.
	for y := 0; y < h; y++ {
		for x := 0; x < w; {
			if mask.AlphaAt(x, y).A < 0x80 {
				x++
				continue
			}
			start := x
			for x < w && mask.AlphaAt(x, y).A >= 0x80 {
				x++
			}
			if err := c.HLine(n[0]+start, n[1]+y, x-start, col); err != nil {
				return err
			}
		}
	}
	return nil
}

// execLabel renders "label X Y STRING FG BG" on a solid background and sends
// it in one write.
func execLabel(c Canvas, args []string) error {
	if len(args) != 5 {
		return fmt.Errorf("label takes 5 arguments, got %d", len(args))
	}
	n, err := ints(args[:2])
	if err != nil {
		return err
	}
	fg, err := ParseColor(args[3])
	if err != nil {
		return err
	}
	bg, err := ParseColor(args[4])
	if err != nil {
		return err
	}
	img := Label(args[2], fg, bg)
	r := img.Bounds().Add(image.Pt(n[0], n[1]))
	return c.Draw(r, img, image.Point{})
}

// Label draws s onto a new RGB565 image with a solid background.
func Label(s string, fg, bg image565.Color) *image565.Image {
	face := basicfont.Face7x13
	w := font.MeasureString(face, s).Ceil()
	h := face.Metrics().Height.Ceil()
	img := image565.NewImage(image.Rect(0, 0, w, h))
	for i := 0; i+1 < len(img.Pix); i += 2 {
		img.Pix[i], img.Pix[i+1] = byte(bg>>8), byte(bg)
	}
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
	return img
}

func ints(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", a)
		}
		out[i] = v
	}
	return out, nil
}
