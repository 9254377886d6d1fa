package boardsim

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// Matrix is a 2×5 key matrix: two strobe outputs, five inputs. An input reads
// high while the strobe of a phase it is pressed in is high.
type Matrix struct {
	Strobes [2]*Pin
	Inputs  [5]*Input

	keys [2][5]bool
}

// Input is one matrix input line.
type Input struct {
	gpiotest.Pin

	// Reads counts samples taken.
	Reads int
	// Pulls holds every pull requested through In.
	Pulls []gpio.Pull

	m   *Matrix
	idx int
}

// NewMatrix returns a matrix with every key released.
func NewMatrix() *Matrix {
	m := &Matrix{
		Strobes: [2]*Pin{NewPin("STROBE1", 16), NewPin("STROBE2", 17)},
	}
	for i := range m.Inputs {
		m.Inputs[i] = &Input{
			Pin: gpiotest.Pin{N: fmt.Sprintf("SCAN%d", i), Num: 22 - i},
			m:   m,
			idx: i,
		}
	}
	return m
}

// Set presses or releases the key at input idx of phase (0 or 1).
func (m *Matrix) Set(phase, idx int, down bool) {
	m.keys[phase][idx] = down
}

// Pressed reports whether the key at input idx of phase is held.
func (m *Matrix) Pressed(phase, idx int) bool {
	return m.keys[phase][idx]
}

// InputPins returns the inputs as gpio.PinIn.
func (m *Matrix) InputPins() []gpio.PinIn {
	out := make([]gpio.PinIn, len(m.Inputs))
	for i, in := range m.Inputs {
		out[i] = in
	}
	return out
}

// In implements gpio.PinIn.
func (in *Input) In(pull gpio.Pull, edge gpio.Edge) error {
	in.Pulls = append(in.Pulls, pull)
	return nil
}

// Read implements gpio.PinIn.
func (in *Input) Read() gpio.Level {
	in.Reads++
	for phase, s := range in.m.Strobes {
		if s.Read() == gpio.High && in.m.keys[phase][in.idx] {
			return gpio.High
		}
	}
	return gpio.Low
}

// WaitForEdge implements gpio.PinIn. The matrix has no edge detection.
func (in *Input) WaitForEdge(timeout time.Duration) bool {
	return false
}

var _ gpio.PinIn = &Input{}
