package image565

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func TestPack(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    Color
	}{
		{"black", 0, 0, 0, Black},
		{"white", 0xFF, 0xFF, 0xFF, White},
		{"red", 0xFF, 0, 0, Red},
		{"green", 0, 0xFF, 0, Green},
		{"blue", 0, 0, 0xFF, Blue},
		{"orange", 0xFF, 0x80, 0x00, 0xFC00},
		{"low bits dropped", 0x07, 0x03, 0x07, Black},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pack(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("Pack(%#x, %#x, %#x) = %#04x, want %#04x", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestSwap(t *testing.T) {
	if got := Swap(0x1234); got != 0x3412 {
		t.Errorf("Swap(0x1234) = %#04x, want 0x3412", got)
	}
	if got := Swap(Swap(0xBEEF)); got != 0xBEEF {
		t.Errorf("Swap(Swap(0xBEEF)) = %#04x, want 0xBEEF", got)
	}
}

func TestColorRGBA(t *testing.T) {
	tests := []struct {
		name    string
		c       Color
		r, g, b uint32
	}{
		{"black", Black, 0, 0, 0},
		{"white", White, 0xFFFF, 0xFFFF, 0xFFFF},
		{"red", Red, 0xFFFF, 0, 0},
		{"green", Green, 0, 0xFFFF, 0},
		{"blue", Blue, 0, 0, 0xFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.c.RGBA()
			if r != tt.r || g != tt.g || b != tt.b || a != 0xFFFF {
				t.Errorf("RGBA() = (%x, %x, %x, %x), want (%x, %x, %x, ffff)", r, g, b, a, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestModelConvert(t *testing.T) {
	tests := []struct {
		name  string
		input color.Color
		want  Color
	}{
		{"passthrough", Color(0x1234), 0x1234},
		{"black", color.Black, Black},
		{"white", color.White, White},
		{"rgba", color.RGBA{R: 0xFF, G: 0x80, B: 0x00, A: 0xFF}, 0xFC00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Model.Convert(tt.input).(Color); got != tt.want {
				t.Errorf("Model.Convert(%v) = %#04x, want %#04x", tt.input, got, tt.want)
			}
		})
	}
}

func TestImageSetAt(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 4, 2))
	if len(img.Pix) != 16 || img.Stride != 8 {
		t.Fatalf("NewImage: len(Pix) = %d, Stride = %d, want 16, 8", len(img.Pix), img.Stride)
	}

	img.SetColor565(1, 0, 0xABCD)
	if img.Pix[2] != 0xAB || img.Pix[3] != 0xCD {
		t.Errorf("Pix[2:4] = %#02x %#02x, want 0xab 0xcd", img.Pix[2], img.Pix[3])
	}
	if got := img.Color565At(1, 0); got != 0xABCD {
		t.Errorf("Color565At(1, 0) = %#04x, want 0xabcd", got)
	}

	img.Set(3, 1, color.White)
	if got := img.Color565At(3, 1); got != White {
		t.Errorf("Color565At(3, 1) = %#04x, want White", got)
	}

	// Out of bounds access is ignored.
	img.SetColor565(4, 0, White)
	img.SetColor565(-1, 0, White)
	if got := img.Color565At(10, 10); got != 0 {
		t.Errorf("Color565At out of bounds = %#04x, want 0", got)
	}
}

func TestImageOffsetRect(t *testing.T) {
	img := NewImage(image.Rect(10, 20, 12, 22))
	img.SetColor565(11, 21, Red)
	if got := img.PixOffset(11, 21); got != 6 {
		t.Errorf("PixOffset(11, 21) = %d, want 6", got)
	}
	if img.Pix[6] != 0xF8 || img.Pix[7] != 0x00 {
		t.Errorf("Pix[6:8] = %#02x %#02x, want 0xf8 0x00", img.Pix[6], img.Pix[7])
	}
}

func TestImageDraw(t *testing.T) {
	img := NewImage(image.Rect(0, 0, 3, 3))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{B: 0xFF, A: 0xFF}), image.Point{}, draw.Src)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if got := img.Color565At(x, y); got != Blue {
				t.Fatalf("Color565At(%d, %d) = %#04x, want Blue", x, y, got)
			}
		}
	}
}

func TestExpandBitmap(t *testing.T) {
	// Two rows of 3 pixels: 101 / 010, each row padded to a byte.
	bits := []byte{0b1010_0000, 0b0100_0000}
	dst := make([]byte, 2*3*2)
	n := ExpandBitmap(dst, bits, 3, White, Black)
	if n != len(dst) {
		t.Fatalf("ExpandBitmap() = %d, want %d", n, len(dst))
	}
	want := []byte{
		0xFF, 0xFF, 0x00, 0x00, 0xFF, 0xFF,
		0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00,
	}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst[%d] = %#02x, want %#02x", i, dst[i], want[i])
		}
	}
}

func TestExpandBitmapShortDst(t *testing.T) {
	dst := make([]byte, 4)
	if n := ExpandBitmap(dst, []byte{0xFF}, 8, White, Black); n != 4 {
		t.Errorf("ExpandBitmap() = %d, want 4", n)
	}
	if n := ExpandBitmap(dst, []byte{0xFF}, 0, White, Black); n != 0 {
		t.Errorf("ExpandBitmap(width 0) = %d, want 0", n)
	}
}
