package st7789

import (
	"fmt"
	"image"
)

// Panel is the capability set every board variant provides: the serial and
// parallel ST7789 devices, and Null for boards without a panel.
type Panel interface {
	Init() error
	SetWindow(x0, y0, x1, y1 int) error
	Write(pixels []byte) (int, error)
	SetBacklight(level uint8) error
	BlitBuffer(buf []byte, x, y, w, h int) error
	Bounds() image.Rectangle
	Halt() error
}

// Null is a panel that discards everything. It stands in on boards without a
// display.
type Null struct {
	rect  image.Rectangle
	duty  uint16
	bytes int
}

// NewNull returns a w×h panel that writes nowhere.
func NewNull(w, h int) *Null {
	return &Null{rect: image.Rect(0, 0, w, h)}
}

// Init implements Panel.
func (n *Null) Init() error { return nil }

// SetWindow implements Panel.
func (n *Null) SetWindow(x0, y0, x1, y1 int) error { return nil }

// Write implements Panel. The data is counted and dropped.
func (n *Null) Write(pixels []byte) (int, error) {
	n.bytes += len(pixels)
	return len(pixels), nil
}

// SetBacklight implements Panel.
func (n *Null) SetBacklight(level uint8) error {
	n.duty = BacklightDuty(level)
	return nil
}

// BlitBuffer implements Panel.
func (n *Null) BlitBuffer(buf []byte, x, y, w, h int) error {
	n.bytes += 2 * w * h
	return nil
}

// Bounds implements Panel.
func (n *Null) Bounds() image.Rectangle { return n.rect }

// Halt implements Panel.
func (n *Null) Halt() error { return nil }

// Discarded returns the number of pixel bytes dropped so far.
func (n *Null) Discarded() int { return n.bytes }

func (n *Null) String() string {
	return fmt.Sprintf("st7789.Null{%dx%d}", n.rect.Dx(), n.rect.Dy())
}

var (
	_ Panel = &Dev{}
	_ Panel = &Null{}
)
