// Package platform is the video and input layer a game engine runs on: it owns
// the panel, the framebuffers and the keypad scanner.
package platform

import (
	"errors"
	"fmt"
	"log"

	"periph.io/x/devices/v3/st7789"
	"periph.io/x/devices/v3/st7789/frame"
	"periph.io/x/devices/v3/st7789/keypad"
	"periph.io/x/devices/v3/st7789/settings"
)

// Opts holds the platform configuration.
type Opts struct {
	// Logical frame size in cells (default: the panel size divided by
	// CellPixels horizontally).
	FrameWidth, FrameHeight int
	// Buffering selects single or double buffered frames (default: Single).
	Buffering frame.Mode
	// CellPixels is passed to the blitter (default: 1).
	CellPixels int
	// Backlight applied by CreateWindow (default: 255).
	Backlight *uint8
}

// FromSettings returns Opts carrying the stored board settings.
func FromSettings(s settings.Settings) Opts {
	level := s.Backlight
	return Opts{
		Buffering:  s.Buffering,
		CellPixels: int(s.CellPixels),
		Backlight:  &level,
	}
}

// Platform connects the engine to one panel and an optional keypad.
type Platform struct {
	panel     st7789.Panel
	keys      *keypad.Scanner
	bufs      *frame.Buffers
	blit      *frame.Blitter
	backlight uint8
}

// New returns a Platform drawing to panel. keys can be nil on boards without
// a keypad. opts can be nil.
func New(panel st7789.Panel, keys *keypad.Scanner, opts *Opts) (*Platform, error) {
	if panel == nil {
		return nil, errors.New("platform: panel is required")
	}
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	b, err := frame.NewBlitter(panel, &frame.Opts{CellPixels: o.CellPixels})
	if err != nil {
		return nil, err
	}
	r := panel.Bounds()
	if o.FrameWidth == 0 {
		o.FrameWidth = r.Dx() / b.CellPixels()
	}
	if o.FrameHeight == 0 {
		o.FrameHeight = r.Dy()
	}
	if o.FrameWidth < 0 || o.FrameHeight < 0 {
		return nil, fmt.Errorf("platform: invalid frame size %dx%d", o.FrameWidth, o.FrameHeight)
	}
	level := uint8(255)
	if o.Backlight != nil {
		level = *o.Backlight
	}
	return &Platform{
		panel:     panel,
		keys:      keys,
		bufs:      frame.NewBuffers(o.FrameWidth, o.FrameHeight, o.Buffering),
		blit:      b,
		backlight: level,
	}, nil
}

// CreateWindow turns the backlight on and clears the panel one row at a time.
func (p *Platform) CreateWindow() error {
	if err := p.panel.SetBacklight(p.backlight); err != nil {
		return err
	}
	r := p.panel.Bounds()
	line := make([]byte, 2*r.Dx())
	for y := 0; y < r.Dy(); y++ {
		if err := p.panel.BlitBuffer(line, 0, y, r.Dx(), 1); err != nil {
			return err
		}
	}
	return nil
}

// CreateBackBuffer prepares the display for drawing.
func (p *Platform) CreateBackBuffer() error {
	return p.CreateWindow()
}

// BackBuffer returns the buffer the engine renders the next frame into.
func (p *Platform) BackBuffer() []byte {
	return p.bufs.Back()
}

// FrontBuffer returns the buffer of the frame on screen. It is the back
// buffer unless double buffering is enabled.
func (p *Platform) FrontBuffer() []byte {
	return p.bufs.Front()
}

// Buffers returns the framebuffer store.
func (p *Platform) Buffers() *frame.Buffers {
	return p.bufs
}

// FinishUpdate blits the indexed frame in src with palette, then swaps the
// framebuffers.
func (p *Platform) FinishUpdate(src, palette []byte, width, height int) error {
	if err := p.blit.FinishUpdate(src, palette, width, height); err != nil {
		return err
	}
	p.bufs.Swap()
	return nil
}

// ProcessKeyEvents polls the keypad once and posts the changes to sink.
func (p *Platform) ProcessKeyEvents(sink keypad.Sink) error {
	if p.keys == nil {
		return nil
	}
	return p.keys.Poll(sink)
}

// Close halts the keypad strobes and the panel.
func (p *Platform) Close() error {
	if p.keys != nil {
		if err := p.keys.Halt(); err != nil {
			return err
		}
	}
	return p.panel.Halt()
}

// Errorf reports an engine error. It only logs; the program keeps running.
func Errorf(format string, args ...any) {
	log.Printf(format, args...)
}
