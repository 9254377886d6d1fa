// Package keypad scans a strobed 2×5 button matrix.
//
// Two strobe outputs select which half of the matrix is readable; up to five
// pulled-down inputs are sampled per half. Only one strobe is high while
// sampling, so pressing keys of both halves at once does not ghost. Events
// are posted on level changes only.
package keypad

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// MaxInputs is the number of input lines per strobe phase.
const MaxInputs = 5

// Default key layout, indexed by input line.
var (
	DefaultPhase1 = []Key{Select, Up, Right, Down, Left}
	DefaultPhase2 = []Key{Start, A, R, B, L}
)

var sleep = time.Sleep

// Opts holds the scanner configuration.
type Opts struct {
	// Key codes per input line for each strobe phase. Defaults:
	// DefaultPhase1 and DefaultPhase2.
	Phase1, Phase2 []Key
	// Time for the inputs to settle after a strobe change (default: 1µs).
	Settle time.Duration
}

// Scanner polls the matrix and remembers the state of every key.
type Scanner struct {
	strobes [2]gpio.PinOut
	inputs  []gpio.PinIn
	keys    [2][]Key
	pressed [2][MaxInputs]bool
	settle  time.Duration
	ready   bool
}

// New returns a Scanner driving strobes a (phase 1) and b (phase 2) and
// sampling inputs. opts can be nil.
//
// The pins are configured on the first Poll.
func New(a, b gpio.PinOut, inputs []gpio.PinIn, opts *Opts) (*Scanner, error) {
	if a == nil || b == nil {
		return nil, errors.New("keypad: both strobe pins are required")
	}
	if len(inputs) == 0 || len(inputs) > MaxInputs {
		return nil, fmt.Errorf("keypad: need 1 to %d inputs, got %d", MaxInputs, len(inputs))
	}
	for i, in := range inputs {
		if in == nil {
			return nil, fmt.Errorf("keypad: input %d is nil", i)
		}
	}
	o := Opts{Phase1: DefaultPhase1, Phase2: DefaultPhase2, Settle: time.Microsecond}
	if opts != nil {
		if opts.Phase1 != nil {
			o.Phase1 = opts.Phase1
		}
		if opts.Phase2 != nil {
			o.Phase2 = opts.Phase2
		}
		if opts.Settle != 0 {
			o.Settle = opts.Settle
		}
	}
	if len(o.Phase1) < len(inputs) || len(o.Phase2) < len(inputs) {
		return nil, errors.New("keypad: key map shorter than the input list")
	}
	return &Scanner{
		strobes: [2]gpio.PinOut{a, b},
		inputs:  append([]gpio.PinIn(nil), inputs...),
		keys:    [2][]Key{o.Phase1, o.Phase2},
		settle:  o.Settle,
	}, nil
}

func (s *Scanner) init() error {
	for _, p := range s.strobes {
		if err := p.Out(gpio.Low); err != nil {
			return fmt.Errorf("keypad: %w", err)
		}
	}
	for _, in := range s.inputs {
		if err := in.In(gpio.PullDown, gpio.NoEdge); err != nil {
			return fmt.Errorf("keypad: %w", err)
		}
	}
	s.ready = true
	return nil
}

// Poll scans both halves of the matrix once and posts an event to sink for
// every key whose level changed since the previous Poll.
func (s *Scanner) Poll(sink Sink) error {
	if !s.ready {
		if err := s.init(); err != nil {
			return err
		}
	}
	for phase := range s.strobes {
		on, off := s.strobes[phase], s.strobes[1-phase]
		if err := on.Out(gpio.High); err != nil {
			return err
		}
		if err := off.Out(gpio.Low); err != nil {
			return err
		}
		sleep(s.settle)
		s.sample(phase, sink)
	}
	return s.strobes[1].Out(gpio.Low)
}

func (s *Scanner) sample(phase int, sink Sink) {
	for i, in := range s.inputs {
		down := in.Read() == gpio.High
		if down == s.pressed[phase][i] {
			continue
		}
		s.pressed[phase][i] = down
		e := Event{Type: KeyUp, Key: s.keys[phase][i]}
		if down {
			e.Type = KeyDown
		}
		if sink != nil {
			sink.Post(e)
		}
	}
}

// Pressed reports whether k was held at the last Poll.
func (s *Scanner) Pressed(k Key) bool {
	for phase := range s.keys {
		for i := range s.inputs {
			if s.keys[phase][i] == k && s.pressed[phase][i] {
				return true
			}
		}
	}
	return false
}

// Halt drives both strobes low.
func (s *Scanner) Halt() error {
	for _, p := range s.strobes {
		if err := p.Out(gpio.Low); err != nil {
			return err
		}
	}
	return nil
}
