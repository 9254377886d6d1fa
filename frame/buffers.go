package frame

import "fmt"

// Mode selects how the back and front buffers relate.
type Mode int

const (
	// Single uses one array for both roles.
	Single Mode = iota
	// Double keeps two arrays that trade roles on Swap.
	Double
)

func (m Mode) String() string {
	switch m {
	case Single:
		return "single"
	case Double:
		return "double"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Buffers is the framebuffer store handed to the engine. Each buffer holds
// w×h 16-bit cells.
type Buffers struct {
	mode   Mode
	w, h   int
	planes [2][]byte
	back   int
}

// NewBuffers allocates the framebuffers for a w×h frame.
func NewBuffers(w, h int, mode Mode) *Buffers {
	b := &Buffers{mode: mode, w: w, h: h}
	b.planes[0] = make([]byte, 2*w*h)
	if mode == Double {
		b.planes[1] = make([]byte, 2*w*h)
	} else {
		b.planes[1] = b.planes[0]
	}
	return b
}

// Mode returns the buffering mode.
func (b *Buffers) Mode() Mode {
	return b.mode
}

// Size returns the frame dimensions in cells.
func (b *Buffers) Size() (w, h int) {
	return b.w, b.h
}

// Back returns the buffer the engine draws into.
func (b *Buffers) Back() []byte {
	return b.planes[b.back]
}

// Front returns the buffer last presented. In Single mode it is the back
// buffer.
func (b *Buffers) Front() []byte {
	return b.planes[1-b.back]
}

// Swap exchanges the back and front roles. It does nothing in Single mode.
func (b *Buffers) Swap() {
	if b.mode == Double {
		b.back = 1 - b.back
	}
}
