package st7789

import (
	"errors"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

// BlockThreshold is the transfer size above which writes go through the
// block-transfer path instead of the byte-clocked or strobed path.
const BlockThreshold = 32 * 1024

// defaultMaxTx is used when the connection does not report conn.Limits.
const defaultMaxTx = 4096

// bus is the blocking write primitive under the command layer. Every call
// returns only after the whole buffer went out.
type bus interface {
	tx(p []byte) error
}

// spiBus clocks bytes over a SPI connection. Large buffers are queued as a
// single packet list so the host driver can stream them without returning
// to the caller between chunks.
type spiBus struct {
	c     spi.Conn
	maxTx int
}

func newSPIBus(c spi.Conn) *spiBus {
	maxTx := defaultMaxTx
	if l, ok := c.(conn.Limits); ok && l.MaxTxSize() > 0 {
		maxTx = l.MaxTxSize()
	}
	return &spiBus{c: c, maxTx: maxTx}
}

func (b *spiBus) tx(p []byte) error {
	if len(p) > BlockThreshold {
		return b.txBlock(p)
	}
	return b.c.Tx(p, nil)
}

func (b *spiBus) txBlock(p []byte) error {
	pkts := make([]spi.Packet, 0, (len(p)+b.maxTx-1)/b.maxTx)
	for len(p) > 0 {
		n := min(len(p), b.maxTx)
		pkts = append(pkts, spi.Packet{W: p[:n], KeepCS: n < len(p)})
		p = p[n:]
	}
	return b.c.TxPackets(pkts)
}

// ParallelPins are the 8080-style parallel bus lines.
type ParallelPins struct {
	Data [8]gpio.PinOut // D0..D7
	WR   gpio.PinOut    // Write strobe, data latched on the rising edge
	RD   gpio.PinOut    // Read strobe, held high (optional)

	// Stream is an optional block-transfer engine wired to the same bus
	// (for example a PIO or DMA backed connection). When set, writes above
	// BlockThreshold are handed to it.
	Stream conn.Conn
}

// parallelBus bit-bangs bytes onto the data lines and pulses WR.
type parallelBus struct {
	data   [8]gpio.PinOut
	wr     gpio.PinOut
	stream conn.Conn

	last   byte
	primed bool
}

func newParallelBus(pins *ParallelPins) (*parallelBus, error) {
	for _, d := range pins.Data {
		if d == nil {
			return nil, errors.New("st7789: all 8 parallel data pins are required")
		}
	}
	if pins.WR == nil {
		return nil, errors.New("st7789: parallel WR pin is required")
	}
	if err := pins.WR.Out(gpio.High); err != nil {
		return nil, err
	}
	if pins.RD != nil {
		if err := pins.RD.Out(gpio.High); err != nil {
			return nil, err
		}
	}
	return &parallelBus{data: pins.Data, wr: pins.WR, stream: pins.Stream}, nil
}

func (b *parallelBus) tx(p []byte) error {
	if len(p) > BlockThreshold && b.stream != nil {
		return b.stream.Tx(p, nil)
	}
	for _, v := range p {
		if err := b.put(v); err != nil {
			return err
		}
		if err := b.wr.Out(gpio.Low); err != nil {
			return err
		}
		if err := b.wr.Out(gpio.High); err != nil {
			return err
		}
	}
	return nil
}

// put drives the data lines to v, touching only lines that changed.
func (b *parallelBus) put(v byte) error {
	for i, d := range b.data {
		bit := byte(1) << uint(i)
		if b.primed && (b.last^v)&bit == 0 {
			continue
		}
		if err := d.Out(gpio.Level(v&bit != 0)); err != nil {
			return err
		}
	}
	b.last = v
	b.primed = true
	return nil
}
