package drawscript

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"testing"

	"periph.io/x/devices/v3/st7789"
	"periph.io/x/devices/v3/st7789/image565"
)

var _ Canvas = &st7789.Dev{}

// recCanvas records every call as a string and paints HLine runs into img.
type recCanvas struct {
	calls []string
	img   *image565.Image
}

func newRecCanvas() *recCanvas {
	return &recCanvas{img: image565.NewImage(image.Rect(0, 0, 64, 32))}
}

func (r *recCanvas) log(format string, args ...any) error {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
	return nil
}

func (r *recCanvas) Bounds() image.Rectangle { return r.img.Rect }
func (r *recCanvas) Fill(c image565.Color) error {
	return r.log("fill %04x", uint16(c))
}
func (r *recCanvas) DrawPixel(x, y int, c image565.Color) error {
	return r.log("pixel %d %d %04x", x, y, uint16(c))
}
func (r *recCanvas) HLine(x, y, w int, c image565.Color) error {
	for i := 0; i < w; i++ {
		r.img.SetColor565(x+i, y, c)
	}
	return r.log("hline %d %d %d %04x", x, y, w, uint16(c))
}
func (r *recCanvas) VLine(x, y, h int, c image565.Color) error {
	return r.log("vline %d %d %d %04x", x, y, h, uint16(c))
}
func (r *recCanvas) FillRect(x, y, w, h int, c image565.Color) error {
	return r.log("fillrect %d %d %d %d %04x", x, y, w, h, uint16(c))
}
func (r *recCanvas) Rect(x, y, w, h int, c image565.Color) error {
	return r.log("rect %d %d %d %d %04x", x, y, w, h, uint16(c))
}
func (r *recCanvas) Line(x0, y0, x1, y1 int, c image565.Color) error {
	return r.log("line %d %d %d %d %04x", x0, y0, x1, y1, uint16(c))
}
func (r *recCanvas) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	return r.log("draw %v %v", dst, src.Bounds())
}
func (r *recCanvas) SetBacklight(level uint8) error {
	return r.log("backlight %d", level)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    image565.Color
		wantErr bool
	}{
		{"black", image565.Black, false},
		{"RED", image565.Red, false},
		{"white", image565.White, false},
		{"orange", image565.Pack(0xFF, 0xA5, 0x00), false},
		{"#ff8000", image565.Pack(0xFF, 0x80, 0x00), false},
		{"0xF81F", image565.Magenta, false},
		{"#12", 0, true},
		{"#gg0000", 0, true},
		{"0x1FFFF", 0, true},
		{"nocolor", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %#04x, want %#04x", tt.in, got, tt.want)
			}
		})
	}
}

func TestExec(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"fill blue", "fill 001f"},
		{"pixel 3 4 red", "pixel 3 4 f800"},
		{"hline 1 2 30 green", "hline 1 2 30 07e0"},
		{"vline 5 6 7 white", "vline 5 6 7 ffff"},
		{"fillrect 1 2 3 4 0x0001", "fillrect 1 2 3 4 0001"},
		{"rect 0 0 10 10 '#0000ff'", "rect 0 0 10 10 001f"},
		{"LINE 0 0 4 2 yellow", "line 0 0 4 2 ffe0"},
		{"backlight 200", "backlight 200"},
		{"label 2 3 \"hi\" black white", "draw (2,3)-(16,16) (0,0)-(14,13)"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			c := newRecCanvas()
			if err := Exec(c, tt.line); err != nil {
				t.Fatalf("Exec(%q) error = %v", tt.line, err)
			}
			if len(c.calls) != 1 || c.calls[0] != tt.want {
				t.Errorf("Exec(%q) calls = %q, want %q", tt.line, c.calls, tt.want)
			}
		})
	}
}

func TestExecErrors(t *testing.T) {
	for _, line := range []string{
		"explode 1 2",
		"pixel 1 red",
		"pixel a 2 red",
		"pixel 1 2 mauvish",
		"backlight 300",
		"fill",
		"text 1 2 hi",
		"label 1 2 hi red",
		`line 0 0 "unterminated`,
	} {
		if err := Exec(newRecCanvas(), line); err == nil {
			t.Errorf("Exec(%q) should fail", line)
		}
	}
}

func TestExecSkips(t *testing.T) {
	c := newRecCanvas()
	for _, line := range []string{"", "   ", "# a comment", "#fill red"} {
		if err := Exec(c, line); err != nil {
			t.Errorf("Exec(%q) error = %v", line, err)
		}
	}
	if len(c.calls) != 0 {
		t.Errorf("skipped lines produced calls %q", c.calls)
	}
}

func TestRun(t *testing.T) {
	script := `
# frame
fill black
rect 0 0 240 240 white
line 0 0 239 239 red
`
	c := newRecCanvas()
	if err := Run(c, strings.NewReader(script)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []string{"fill 0000", "rect 0 0 240 240 ffff", "line 0 0 239 239 f800"}
	if strings.Join(c.calls, "|") != strings.Join(want, "|") {
		t.Errorf("calls = %q, want %q", c.calls, want)
	}
}

func TestRunReportsLine(t *testing.T) {
	c := newRecCanvas()
	err := Run(c, strings.NewReader("fill black\n\nbogus\nfill red\n"))
	var se *Error
	if !errors.As(err, &se) {
		t.Fatalf("Run() error = %v, want *Error", err)
	}
	if se.Line != 3 {
		t.Errorf("Line = %d, want 3", se.Line)
	}
	if len(c.calls) != 1 {
		t.Errorf("Run() kept going after the failure: %q", c.calls)
	}
}

func TestText(t *testing.T) {
	c := newRecCanvas()
	if err := Exec(c, `text 2 1 "I" white`); err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if len(c.calls) == 0 {
		t.Fatal("text drew nothing")
	}
	for _, call := range c.calls {
		if !strings.HasPrefix(call, "hline ") {
			t.Errorf("text call %q, want only horizontal runs", call)
		}
	}
	lit := 0
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			if c.img.Color565At(x, y) == image565.White {
				if x < 2 || x >= 9 || y < 1 || y >= 14 {
					t.Errorf("glyph pixel (%d,%d) outside its 7x13 cell", x, y)
				}
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("no glyph pixels set")
	}
}

func TestLabel(t *testing.T) {
	img := Label("ab", image565.White, image565.Blue)
	if got := img.Bounds(); got != image.Rect(0, 0, 14, 13) {
		t.Fatalf("Bounds() = %v, want 14x13", got)
	}
	var fg, bg int
	for y := 0; y < 13; y++ {
		for x := 0; x < 14; x++ {
			switch img.Color565At(x, y) {
			case image565.White:
				fg++
			case image565.Blue:
				bg++
			}
		}
	}
	if fg == 0 || bg == 0 || fg+bg != 14*13 {
		t.Errorf("label pixels fg=%d bg=%d, want a two color image", fg, bg)
	}
}
