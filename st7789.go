package st7789

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/st7789/image565"
)

// Commands.
const (
	NOP     = 0x00
	SWRESET = 0x01
	RDDID   = 0x04
	RDDST   = 0x09
	SLPIN   = 0x10
	SLPOUT  = 0x11
	PTLON   = 0x12
	NORON   = 0x13
	INVOFF  = 0x20
	INVON   = 0x21
	DISPOFF = 0x28
	DISPON  = 0x29
	CASET   = 0x2A
	RASET   = 0x2B
	RAMWR   = 0x2C
	RAMRD   = 0x2E
	PTLAR   = 0x30
	MADCTL  = 0x36
	COLMOD  = 0x3A
)

// MADCTL bits.
const (
	MADCTLMY  = 0x80 // Page address order
	MADCTLMX  = 0x40 // Column address order
	MADCTLMV  = 0x20 // Page/column order
	MADCTLML  = 0x10 // Line address order
	MADCTLMH  = 0x04 // Display data latch order
	MADCTLRGB = 0x00
	MADCTLBGR = 0x08
)

// Color modes for COLMOD.
const (
	ColorMode65K   = 0x50
	ColorMode262K  = 0x60
	ColorMode12Bit = 0x03
	ColorMode16Bit = 0x05
	ColorMode18Bit = 0x06
	ColorMode16M   = 0x07
)

// Rotation selects the memory access order for the mounted orientation.
type Rotation uint8

const (
	NoRotation Rotation = iota
	Rotation90
	Rotation180
	Rotation270
)

var rotationBits = [...]byte{
	NoRotation:  0,
	Rotation90:  MADCTLMX | MADCTLMV,
	Rotation180: MADCTLMX | MADCTLMY,
	Rotation270: MADCTLMY | MADCTLMV,
}

// Known panel geometries and their offset into controller RAM.
var origins = map[image.Point]image.Point{
	{240, 240}: {0, 0},
	{135, 240}: {52, 40},
	{240, 135}: {40, 53},
	{240, 320}: {0, 0},
	{320, 240}: {0, 0},
}

// fillChunk is the number of pixels staged per write by the fill routines.
const fillChunk = 128

// sleep is replaced in tests.
var sleep = time.Sleep

// Opts is the configuration for the ST7789 display.
type Opts struct {
	// Panel dimensions in pixels (default: 240x240).
	W int
	H int

	// Offset of the visible area in controller RAM. When nil it is looked
	// up from the panel dimensions.
	Offset *image.Point

	// Memory access order.
	Rotation Rotation
	BGR      bool

	// SPI clock (default: 40MHz) and mode (default: Mode0).
	Hz   physic.Frequency
	Mode spi.Mode

	// Optional pins, nil if not wired.
	CS  gpio.PinOut // Chip select driven by the driver
	RST gpio.PinOut // Hardware reset
	BL  gpio.PinOut // Backlight, PWM capable for SetBacklight

	// Backlight PWM frequency (default: 1kHz).
	BacklightHz physic.Frequency
}

// Dev is the device handle for the ST7789 display.
type Dev struct {
	// Communication
	bus bus
	dc  gpio.PinOut
	cs  gpio.PinOut
	rst gpio.PinOut
	bl  gpio.PinOut

	// Geometry
	rect           image.Rectangle
	xstart, ystart int
	madctl         byte

	// serial panels arm memory write as part of the window command,
	// parallel panels issue it with the first pixel write.
	armOnWindow bool
	armed       bool

	// Staging for fills, bounded to fillChunk pixels.
	fill  [2 * fillChunk]byte
	param [1]byte

	// Backlight
	blHz physic.Frequency
	duty uint16

	halted bool
}

// NewSPI creates a new ST7789 device connected via SPI and runs the
// initialization sequence.
//
// The dc (Data/Command) GPIO pin must be provided. opts can be nil to use
// defaults (240x240 panel).
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	opts, err := checkOpts(dc, opts)
	if err != nil {
		return nil, err
	}
	c, err := p.Connect(opts.Hz, opts.Mode, 8)
	if err != nil {
		return nil, fmt.Errorf("st7789: %w", err)
	}
	d := newDev(newSPIBus(c), dc, opts)
	d.armOnWindow = true
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewParallel creates a new ST7789 device on an 8-bit parallel bus and runs
// the initialization sequence.
func NewParallel(pins *ParallelPins, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if pins == nil {
		return nil, errors.New("st7789: parallel pins are required")
	}
	opts, err := checkOpts(dc, opts)
	if err != nil {
		return nil, err
	}
	// WR rises to its idle level below; that edge must not latch a command.
	if err := dc.Out(gpio.High); err != nil {
		return nil, err
	}
	if opts.CS != nil {
		if err := opts.CS.Out(gpio.High); err != nil {
			return nil, err
		}
	}
	b, err := newParallelBus(pins)
	if err != nil {
		return nil, err
	}
	d := newDev(b, dc, opts)
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

func checkOpts(dc gpio.PinOut, opts *Opts) (*Opts, error) {
	if dc == nil {
		return nil, errors.New("st7789: dc pin is required")
	}
	o := Opts{W: 240, H: 240}
	if opts != nil {
		o = *opts
	}
	if o.W <= 0 || o.W > 320 {
		return nil, errors.New("st7789: width must be between 1 and 320")
	}
	if o.H <= 0 || o.H > 320 {
		return nil, errors.New("st7789: height must be between 1 and 320")
	}
	if int(o.Rotation) >= len(rotationBits) {
		return nil, errors.New("st7789: invalid rotation")
	}
	if o.Hz == 0 {
		o.Hz = 40 * physic.MegaHertz
	}
	if o.BacklightHz == 0 {
		o.BacklightHz = physic.KiloHertz
	}
	return &o, nil
}

func newDev(b bus, dc gpio.PinOut, opts *Opts) *Dev {
	d := &Dev{
		bus:  b,
		dc:   dc,
		cs:   opts.CS,
		rst:  opts.RST,
		bl:   opts.BL,
		rect: image.Rect(0, 0, opts.W, opts.H),
		blHz: opts.BacklightHz,
	}
	switch o, ok := origins[image.Pt(opts.W, opts.H)]; {
	case opts.Offset != nil:
		d.xstart, d.ystart = opts.Offset.X, opts.Offset.Y
	case ok:
		d.xstart, d.ystart = o.X, o.Y
	default:
		log.Printf("st7789: unsupported display %dx%d, only 240x240, 135x240, 240x135, 240x320 and 320x240 are supported without an explicit offset", opts.W, opts.H)
	}
	d.madctl = MADCTLML | rotationBits[opts.Rotation]
	if opts.BGR {
		d.madctl |= MADCTLBGR
	}
	return d
}

// Init resets the controller and sends the initialization sequence. It ends
// with a black panel and the display turned on.
func (d *Dev) Init() error {
	if err := d.hardReset(); err != nil {
		return err
	}

	// Soft reset
	if err := d.writeCmd(SWRESET, nil); err != nil {
		return err
	}
	sleep(150 * time.Millisecond)

	if err := d.writeCmd(SLPOUT, nil); err != nil {
		return err
	}

	d.param[0] = ColorMode65K | ColorMode16Bit
	if err := d.writeCmd(COLMOD, d.param[:]); err != nil {
		return err
	}
	sleep(10 * time.Millisecond)

	d.param[0] = d.madctl
	if err := d.writeCmd(MADCTL, d.param[:]); err != nil {
		return err
	}

	// Inversion is needed for correct colors on these panels.
	if err := d.writeCmd(INVON, nil); err != nil {
		return err
	}
	sleep(10 * time.Millisecond)

	if err := d.writeCmd(NORON, nil); err != nil {
		return err
	}
	sleep(10 * time.Millisecond)

	if err := d.fillRect(0, 0, d.rect.Dx(), d.rect.Dy(), image565.Black); err != nil {
		return err
	}

	if err := d.writeCmd(DISPON, nil); err != nil {
		return err
	}
	sleep(100 * time.Millisecond)

	d.halted = false
	return nil
}

// hardReset pulses RST with chip select held low, if both are wired.
func (d *Dev) hardReset() error {
	if d.rst == nil {
		return nil
	}
	if err := d.csOut(gpio.Low); err != nil {
		return err
	}
	steps := []struct {
		l gpio.Level
		t time.Duration
	}{
		{gpio.High, 50 * time.Millisecond},
		{gpio.Low, 50 * time.Millisecond},
		{gpio.High, 150 * time.Millisecond},
	}
	for _, s := range steps {
		if err := d.rst.Out(s.l); err != nil {
			return fmt.Errorf("st7789: failed to drive RST: %w", err)
		}
		sleep(s.t)
	}
	return d.csOut(gpio.High)
}

func (d *Dev) csOut(l gpio.Level) error {
	if d.cs == nil {
		return nil
	}
	return d.cs.Out(l)
}

// writeCmd sends cmd with DC low, then data with DC high, inside one chip
// select frame. A NOP cmd sends only the data.
func (d *Dev) writeCmd(cmd byte, data []byte) error {
	if err := d.csOut(gpio.Low); err != nil {
		return err
	}
	if cmd != NOP {
		if err := d.dc.Out(gpio.Low); err != nil {
			return err
		}
		b := [1]byte{cmd}
		if err := d.bus.tx(b[:]); err != nil {
			return err
		}
		d.armed = cmd == RAMWR
	}
	if len(data) > 0 {
		if err := d.dc.Out(gpio.High); err != nil {
			return err
		}
		if err := d.bus.tx(data); err != nil {
			return err
		}
	}
	return d.csOut(gpio.High)
}

// setWindow programs the address window. It reports false and sends nothing
// when the window is empty or falls outside the panel.
func (d *Dev) setWindow(x0, y0, x1, y1 int) (bool, error) {
	if x0 < 0 || x0 > x1 || x1 >= d.rect.Dx() {
		return false, nil
	}
	if y0 < 0 || y0 > y1 || y1 >= d.rect.Dy() {
		return false, nil
	}
	x0, x1 = x0+d.xstart, x1+d.xstart
	y0, y1 = y0+d.ystart, y1+d.ystart
	bufx := [4]byte{byte(x0 >> 8), byte(x0), byte(x1 >> 8), byte(x1)}
	bufy := [4]byte{byte(y0 >> 8), byte(y0), byte(y1 >> 8), byte(y1)}
	if err := d.writeCmd(CASET, bufx[:]); err != nil {
		return false, err
	}
	if err := d.writeCmd(RASET, bufy[:]); err != nil {
		return false, err
	}
	if d.armOnWindow {
		if err := d.writeCmd(RAMWR, nil); err != nil {
			return false, err
		}
	}
	return true, nil
}

// writePixels sends wire-order pixel data into the current window.
func (d *Dev) writePixels(p []byte) error {
	if !d.armed {
		return d.writeCmd(RAMWR, p)
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	if err := d.csOut(gpio.Low); err != nil {
		return err
	}
	if err := d.bus.tx(p); err != nil {
		return err
	}
	return d.csOut(gpio.High)
}

// fillColor streams n pixels of c through the staging buffer: full chunks
// first, then the remainder.
func (d *Dev) fillColor(c image565.Color, n int) error {
	hi, lo := byte(c>>8), byte(c)
	for i := 0; i < n && i < fillChunk; i++ {
		d.fill[2*i] = hi
		d.fill[2*i+1] = lo
	}
	for j := 0; j < n/fillChunk; j++ {
		if err := d.writePixels(d.fill[:]); err != nil {
			return err
		}
	}
	if rest := n % fillChunk; rest > 0 {
		return d.writePixels(d.fill[:2*rest])
	}
	return nil
}

// SetWindow restricts the following Write calls to the inclusive rectangle
// (x0, y0)-(x1, y1). Invalid windows are ignored.
func (d *Dev) SetWindow(x0, y0, x1, y1 int) error {
	if d.halted {
		return errors.New("st7789: halted")
	}
	_, err := d.setWindow(x0, y0, x1, y1)
	return err
}

// Write writes raw wire-order RGB565 pixel data into the current window.
func (d *Dev) Write(pixels []byte) (int, error) {
	if d.halted {
		return 0, errors.New("st7789: halted")
	}
	if len(pixels)%2 != 0 {
		return 0, errors.New("st7789: pixel data must be whole RGB565 pixels")
	}
	if len(pixels) == 0 {
		return 0, nil
	}
	if err := d.writePixels(pixels); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// BlitBuffer writes wire-order pixel data to the w×h rectangle at (x, y).
func (d *Dev) BlitBuffer(buf []byte, x, y, w, h int) error {
	if d.halted {
		return errors.New("st7789: halted")
	}
	if len(buf) < 2*w*h {
		return errors.New("st7789: buffer smaller than the blit rectangle")
	}
	ok, err := d.setWindow(x, y, x+w-1, y+h-1)
	if err != nil || !ok {
		return err
	}
	return d.writePixels(buf[:2*w*h])
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return image565.Model
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw converts the src region to RGB565 and writes it in one windowed write.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errors.New("st7789: halted")
	}
	r := dst.Intersect(d.rect)
	if r.Empty() {
		return nil
	}
	sp = sp.Add(r.Min.Sub(dst.Min))

	// Fast path: the source is already wire-order and exactly covers r.
	if img, ok := src.(*image565.Image); ok && sp == img.Rect.Min && img.Rect.Size() == r.Size() &&
		img.Stride == 2*img.Rect.Dx() {
		return d.BlitBuffer(img.Pix, r.Min.X, r.Min.Y, r.Dx(), r.Dy())
	}

	img := image565.NewImage(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(img, img.Rect, src, sp, draw.Src)
	return d.BlitBuffer(img.Pix, r.Min.X, r.Min.Y, r.Dx(), r.Dy())
}

// BacklightDuty maps a perceptual brightness (0-255) to a 16-bit PWM duty
// cycle using a gamma of 2.8.
func BacklightDuty(level uint8) uint16 {
	return uint16(math.Round(math.Pow(float64(level)/255, 2.8) * 65535))
}

// SetBacklight drives the backlight with the gamma corrected duty cycle for
// level. It is a no-op when no backlight pin is wired.
func (d *Dev) SetBacklight(level uint8) error {
	d.duty = BacklightDuty(level)
	if d.bl == nil {
		return nil
	}
	duty := gpio.Duty(uint64(d.duty) * uint64(gpio.DutyMax) / 0xFFFF)
	if err := d.bl.PWM(duty, d.blHz); err != nil {
		return fmt.Errorf("st7789: backlight: %w", err)
	}
	return nil
}

// Backlight returns the duty cycle set by the last SetBacklight, On or Off.
func (d *Dev) Backlight() uint16 {
	return d.duty
}

// On turns the backlight fully on.
func (d *Dev) On() error {
	return d.backlightOut(gpio.High, 0xFFFF)
}

// Off turns the backlight off.
func (d *Dev) Off() error {
	return d.backlightOut(gpio.Low, 0)
}

func (d *Dev) backlightOut(l gpio.Level, duty uint16) error {
	d.duty = duty
	if d.bl == nil {
		return nil
	}
	if err := d.bl.Out(l); err != nil {
		return err
	}
	sleep(10 * time.Millisecond)
	return nil
}

// Invert enables or disables display inversion.
func (d *Dev) Invert(invert bool) error {
	if d.halted {
		return errors.New("st7789: halted")
	}
	if invert {
		return d.writeCmd(INVON, nil)
	}
	return d.writeCmd(INVOFF, nil)
}

// Sleep enters or leaves sleep mode.
func (d *Dev) Sleep(enable bool) error {
	if d.halted {
		return errors.New("st7789: halted")
	}
	if enable {
		return d.writeCmd(SLPIN, nil)
	}
	return d.writeCmd(SLPOUT, nil)
}

// Halt turns the display and the backlight off.
// After calling Halt, the display will not respond to further commands
// until Init is called again.
func (d *Dev) Halt() error {
	d.halted = true
	if err := d.writeCmd(DISPOFF, nil); err != nil {
		return err
	}
	return d.Off()
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("st7789.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}

var _ display.Drawer = &Dev{}
