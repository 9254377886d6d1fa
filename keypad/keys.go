package keypad

import "fmt"

// Key identifies a console button.
type Key uint8

// Buttons of the console: the directional pad, two shoulder buttons,
// select/start and three face buttons.
const (
	None Key = iota
	Up
	Down
	Left
	Right
	L
	R
	Select
	Start
	A
	B
	C
)

var keyNames = [...]string{
	None:   "None",
	Up:     "Up",
	Down:   "Down",
	Left:   "Left",
	Right:  "Right",
	L:      "L",
	R:      "R",
	Select: "Select",
	Start:  "Start",
	A:      "A",
	B:      "B",
	C:      "C",
}

func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", uint8(k))
}

// EventType is the kind of key event.
type EventType uint8

const (
	KeyDown EventType = iota
	KeyUp
)

func (t EventType) String() string {
	switch t {
	case KeyDown:
		return "KeyDown"
	case KeyUp:
		return "KeyUp"
	}
	return fmt.Sprintf("EventType(%d)", uint8(t))
}

// Event is a press or release of one key.
type Event struct {
	Type EventType
	Key  Key
}

func (e Event) String() string {
	return e.Type.String() + " " + e.Key.String()
}

// Sink receives key events, typically the engine's event queue.
type Sink interface {
	Post(e Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(e Event)

// Post implements Sink.
func (f SinkFunc) Post(e Event) {
	f(e)
}
