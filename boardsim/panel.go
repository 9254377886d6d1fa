// Package boardsim simulates the hardware around a handheld console board: an
// ST7789 panel that decodes the command protocol into pixel memory, and a
// strobed 2×5 key matrix.
//
// The panel implements spi.Port and spi.Conn, so it can be handed to the
// driver in place of a real bus. The parallel data pins and WR strobe feed
// the same decoder one byte per rising edge.
package boardsim

import (
	"fmt"
	"image"
	"image/color"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/st7789/image565"
)

// Controller commands understood by the decoder.
const (
	cmdSWRESET = 0x01
	cmdSLPIN   = 0x10
	cmdSLPOUT  = 0x11
	cmdNORON   = 0x13
	cmdINVOFF  = 0x20
	cmdINVON   = 0x21
	cmdDISPOFF = 0x28
	cmdDISPON  = 0x29
	cmdCASET   = 0x2A
	cmdRASET   = 0x2B
	cmdRAMWR   = 0x2C
	cmdMADCTL  = 0x36
	cmdCOLMOD  = 0x3A
)

// Op is one decoded command together with its payload.
type Op struct {
	Cmd    byte
	Params []byte // Parameter bytes, for every command except memory write
	Pixels int    // Pixels stored, for memory write
}

// Panel is a simulated ST7789 with w×h pixels of controller RAM.
type Panel struct {
	DC, CS, RST, BL *Pin
	Data            [8]*Pin
	WR, RD          *Pin

	// Ops is the decoded command log.
	Ops []Op
	// Writes holds the length of every Tx call.
	Writes []int
	// Blocks holds, for every TxPackets call, the size of each packet.
	Blocks [][]int
	// Strobes counts bytes latched through the parallel bus while selected.
	Strobes int
	// Resets counts hardware resets seen on RST.
	Resets int
	// Dropped counts bytes received while chip select was high.
	Dropped int

	// Connection parameters from the last Connect call.
	Freq physic.Frequency
	Mode spi.Mode
	Bits int

	ColMod   byte
	MADCTL   byte
	Inverted bool
	On       bool
	Sleeping bool

	w, h  int
	maxTx int
	mem   []uint16

	cmd                    byte
	col0, col1, row0, row1 int
	cx, cy                 int
	pend                   byte
	havePend               bool
}

// New returns a w×h panel with a 4096 byte transfer limit.
func New(w, h int) *Panel {
	p := &Panel{
		DC:       NewPin("DC", 1),
		CS:       NewPin("CS", 2),
		RST:      NewPin("RST", 3),
		BL:       NewPin("BL", 4),
		WR:       NewPin("WR", 5),
		RD:       NewPin("RD", 6),
		w:        w,
		h:        h,
		maxTx:    4096,
		mem:      make([]uint16, w*h),
		Sleeping: true,
		col1:     w - 1,
		row1:     h - 1,
	}
	for i := range p.Data {
		p.Data[i] = NewPin(fmt.Sprintf("D%d", i), 10+i)
	}
	p.WR.onOut = p.strobe
	p.RST.onOut = p.reset
	return p
}

// SetMaxTxSize changes the limit reported through conn.Limits.
func (p *Panel) SetMaxTxSize(n int) {
	p.maxTx = n
}

// String implements conn.Resource.
func (p *Panel) String() string {
	return fmt.Sprintf("boardsim.Panel{%dx%d}", p.w, p.h)
}

// Connect implements spi.Port.
func (p *Panel) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	p.Freq = f
	p.Mode = mode
	p.Bits = bits
	return p, nil
}

// LimitSpeed implements spi.Port.
func (p *Panel) LimitSpeed(f physic.Frequency) error {
	return nil
}

// Halt implements conn.Resource.
func (p *Panel) Halt() error {
	return nil
}

// Close implements spi.PortCloser.
func (p *Panel) Close() error {
	return nil
}

// Duplex implements conn.Conn.
func (p *Panel) Duplex() conn.Duplex {
	return conn.Half
}

// MaxTxSize implements conn.Limits.
func (p *Panel) MaxTxSize() int {
	return p.maxTx
}

// Tx implements conn.Conn.
func (p *Panel) Tx(w, r []byte) error {
	p.Writes = append(p.Writes, len(w))
	p.feed(w)
	return nil
}

// TxPackets implements spi.Conn.
func (p *Panel) TxPackets(pkts []spi.Packet) error {
	sizes := make([]int, 0, len(pkts))
	for _, pkt := range pkts {
		if len(pkt.W) > p.maxTx {
			return fmt.Errorf("boardsim: packet of %d bytes exceeds limit %d", len(pkt.W), p.maxTx)
		}
		sizes = append(sizes, len(pkt.W))
		p.feed(pkt.W)
	}
	p.Blocks = append(p.Blocks, sizes)
	return nil
}

// strobe latches the data pins on a WR rising edge. Edges seen while chip
// select is high count as dropped.
func (p *Panel) strobe(prev, l gpio.Level) {
	if prev != gpio.Low || l != gpio.High {
		return
	}
	if !p.selected() {
		p.Dropped++
		return
	}
	var b byte
	for i, d := range p.Data {
		if d.Read() == gpio.High {
			b |= 1 << uint(i)
		}
	}
	p.Strobes++
	p.feed([]byte{b})
}

// reset handles a RST rising edge.
func (p *Panel) reset(prev, l gpio.Level) {
	if prev != gpio.Low || l != gpio.High {
		return
	}
	p.Resets++
	p.softReset()
}

func (p *Panel) softReset() {
	p.cmd = 0
	p.havePend = false
	p.Sleeping = true
	p.On = false
	p.Inverted = false
	p.col0, p.col1, p.row0, p.row1 = 0, p.w-1, 0, p.h-1
}

func (p *Panel) selected() bool {
	return !p.CS.Driven() || p.CS.Read() == gpio.Low
}

func (p *Panel) feed(b []byte) {
	if !p.selected() {
		p.Dropped += len(b)
		return
	}
	if p.DC.Read() == gpio.Low {
		for _, c := range b {
			p.command(c)
		}
		return
	}
	for _, c := range b {
		p.data(c)
	}
}

func (p *Panel) command(c byte) {
	p.cmd = c
	p.havePend = false
	p.Ops = append(p.Ops, Op{Cmd: c})
	switch c {
	case cmdSWRESET:
		p.softReset()
		p.cmd = c
	case cmdSLPIN:
		p.Sleeping = true
	case cmdSLPOUT:
		p.Sleeping = false
	case cmdINVON:
		p.Inverted = true
	case cmdINVOFF:
		p.Inverted = false
	case cmdDISPON:
		p.On = true
	case cmdDISPOFF:
		p.On = false
	case cmdRAMWR:
		p.cx, p.cy = p.col0, p.row0
	}
}

func (p *Panel) data(c byte) {
	if len(p.Ops) == 0 {
		return
	}
	op := &p.Ops[len(p.Ops)-1]
	if p.cmd == cmdRAMWR {
		if !p.havePend {
			p.pend = c
			p.havePend = true
			return
		}
		p.havePend = false
		p.store(uint16(p.pend)<<8 | uint16(c))
		op.Pixels++
		return
	}
	op.Params = append(op.Params, c)
	switch {
	case p.cmd == cmdCASET && len(op.Params) == 4:
		p.col0 = int(op.Params[0])<<8 | int(op.Params[1])
		p.col1 = int(op.Params[2])<<8 | int(op.Params[3])
	case p.cmd == cmdRASET && len(op.Params) == 4:
		p.row0 = int(op.Params[0])<<8 | int(op.Params[1])
		p.row1 = int(op.Params[2])<<8 | int(op.Params[3])
	case p.cmd == cmdCOLMOD && len(op.Params) == 1:
		p.ColMod = c
	case p.cmd == cmdMADCTL && len(op.Params) == 1:
		p.MADCTL = c
	}
}

func (p *Panel) store(v uint16) {
	if p.cx >= 0 && p.cx < p.w && p.cy >= 0 && p.cy < p.h {
		p.mem[p.cy*p.w+p.cx] = v
	}
	p.cx++
	if p.cx > p.col1 {
		p.cx = p.col0
		p.cy++
		if p.cy > p.row1 {
			p.cy = p.row0
		}
	}
}

// Pixel returns the RAM contents at (x, y) in controller coordinates.
func (p *Panel) Pixel(x, y int) image565.Color {
	if x < 0 || x >= p.w || y < 0 || y >= p.h {
		return 0
	}
	return image565.Color(p.mem[y*p.w+x])
}

// Fill sets every RAM cell to c.
func (p *Panel) Fill(c image565.Color) {
	for i := range p.mem {
		p.mem[i] = uint16(c)
	}
}

// Window returns the address window last programmed, max exclusive.
func (p *Panel) Window() image.Rectangle {
	return image.Rect(p.col0, p.row0, p.col1+1, p.row1+1)
}

// Commands returns the command bytes in the order they were received.
func (p *Panel) Commands() []byte {
	out := make([]byte, len(p.Ops))
	for i, op := range p.Ops {
		out[i] = op.Cmd
	}
	return out
}

// Find returns every logged op for cmd.
func (p *Panel) Find(cmd byte) []Op {
	var out []Op
	for _, op := range p.Ops {
		if op.Cmd == cmd {
			out = append(out, op)
		}
	}
	return out
}

// ClearLog forgets decoded commands and transfer sizes, keeping RAM.
func (p *Panel) ClearLog() {
	p.Ops = nil
	p.Writes = nil
	p.Blocks = nil
	p.Strobes = 0
	p.Dropped = 0
	p.DC.Reset()
	p.CS.Reset()
}

// RGBA renders controller RAM as an RGBA image.
func (p *Panel) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.w, p.h))
	p.CopyTo(img)
	return img
}

// CopyTo renders controller RAM into img, which must be at least w×h.
func (p *Panel) CopyTo(img *image.RGBA) {
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			r, g, b := image565.Color(p.mem[y*p.w+x]).RGB()
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 0xFF})
		}
	}
}

var (
	_ spi.PortCloser = &Panel{}
	_ spi.Conn       = &Panel{}
	_ conn.Limits    = &Panel{}
)
