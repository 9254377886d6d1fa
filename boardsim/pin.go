package boardsim

import (
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
)

// Pin is an output pin that remembers every level it was driven to.
type Pin struct {
	gpiotest.Pin

	// History holds every level passed to Out, oldest first.
	History []gpio.Level
	// Duty and Freq hold the last PWM request.
	Duty gpio.Duty
	Freq physic.Frequency

	onOut func(prev, l gpio.Level)
}

// NewPin returns a low output pin.
func NewPin(name string, num int) *Pin {
	return &Pin{Pin: gpiotest.Pin{N: name, Num: num, L: gpio.Low}}
}

// Out implements gpio.PinOut.
func (p *Pin) Out(l gpio.Level) error {
	prev := p.Read()
	if err := p.Pin.Out(l); err != nil {
		return err
	}
	p.History = append(p.History, l)
	if p.onOut != nil {
		p.onOut(prev, l)
	}
	return nil
}

// PWM implements gpio.PinOut.
func (p *Pin) PWM(duty gpio.Duty, f physic.Frequency) error {
	p.Duty = duty
	p.Freq = f
	return nil
}

// Driven reports whether Out was ever called.
func (p *Pin) Driven() bool {
	return len(p.History) > 0
}

// Reset forgets the recorded history.
func (p *Pin) Reset() {
	p.History = p.History[:0]
}

var _ gpio.PinIO = &Pin{}
