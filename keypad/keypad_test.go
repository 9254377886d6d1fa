package keypad

import (
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/st7789/boardsim"
)

type recorder struct {
	events []Event
}

func (r *recorder) Post(e Event) {
	r.events = append(r.events, e)
}

func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var got []time.Duration
	old := sleep
	sleep = func(d time.Duration) { got = append(got, d) }
	t.Cleanup(func() { sleep = old })
	return &got
}

func newTestScanner(t *testing.T, m *boardsim.Matrix, opts *Opts) *Scanner {
	t.Helper()
	s, err := New(m.Strobes[0], m.Strobes[1], m.InputPins(), opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	m := boardsim.NewMatrix()
	in := m.InputPins()
	tests := []struct {
		name    string
		a, b    gpio.PinOut
		inputs  []gpio.PinIn
		opts    *Opts
		wantErr bool
	}{
		{"defaults", m.Strobes[0], m.Strobes[1], in, nil, false},
		{"three inputs", m.Strobes[0], m.Strobes[1], in[:3], nil, false},
		{"missing strobe", nil, m.Strobes[1], in, nil, true},
		{"no inputs", m.Strobes[0], m.Strobes[1], nil, nil, true},
		{"too many inputs", m.Strobes[0], m.Strobes[1], append(in, in[0]), nil, true},
		{"nil input", m.Strobes[0], m.Strobes[1], []gpio.PinIn{in[0], nil}, nil, true},
		{"short map", m.Strobes[0], m.Strobes[1], in, &Opts{Phase1: []Key{A, B}}, true},
		{"custom map", m.Strobes[0], m.Strobes[1], in[:2], &Opts{Phase1: []Key{A, B}, Phase2: []Key{C, L}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.a, tt.b, tt.inputs, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPollEdges(t *testing.T) {
	noSleep(t)
	m := boardsim.NewMatrix()
	s := newTestScanner(t, m, nil)

	levels := []bool{false, true, true, false}
	var perPoll [][]Event
	for _, down := range levels {
		m.Set(0, 2, down)
		r := &recorder{}
		if err := s.Poll(r); err != nil {
			t.Fatalf("Poll() error = %v", err)
		}
		perPoll = append(perPoll, r.events)
	}

	want := [][]Event{
		nil,
		{{Type: KeyDown, Key: Right}},
		nil,
		{{Type: KeyUp, Key: Right}},
	}
	for i := range want {
		if len(perPoll[i]) != len(want[i]) {
			t.Fatalf("poll %d events = %v, want %v", i+1, perPoll[i], want[i])
		}
		for j := range want[i] {
			if perPoll[i][j] != want[i][j] {
				t.Errorf("poll %d event %d = %v, want %v", i+1, j, perPoll[i][j], want[i][j])
			}
		}
	}
}

func TestPollMapping(t *testing.T) {
	noSleep(t)
	for phase, keys := range [][]Key{DefaultPhase1, DefaultPhase2} {
		for idx, k := range keys {
			m := boardsim.NewMatrix()
			s := newTestScanner(t, m, nil)
			m.Set(phase, idx, true)

			r := &recorder{}
			if err := s.Poll(r); err != nil {
				t.Fatal(err)
			}
			if len(r.events) != 1 || r.events[0] != (Event{KeyDown, k}) {
				t.Errorf("phase %d input %d events = %v, want KeyDown %v", phase, idx, r.events, k)
			}
			if !s.Pressed(k) {
				t.Errorf("Pressed(%v) = false after press", k)
			}
		}
	}
}

func TestPollNoGhosting(t *testing.T) {
	noSleep(t)
	m := boardsim.NewMatrix()
	s := newTestScanner(t, m, nil)
	m.Set(0, 1, true) // Up
	m.Set(1, 1, true) // A

	r := &recorder{}
	if err := s.Poll(r); err != nil {
		t.Fatal(err)
	}
	want := []Event{{KeyDown, Up}, {KeyDown, A}}
	if len(r.events) != 2 || r.events[0] != want[0] || r.events[1] != want[1] {
		t.Errorf("events = %v, want %v", r.events, want)
	}
	if s.Pressed(Select) || s.Pressed(Start) {
		t.Error("keys sharing an input line should not read as pressed")
	}
}

func TestPollStrobeSequence(t *testing.T) {
	delays := noSleep(t)
	m := boardsim.NewMatrix()
	s := newTestScanner(t, m, nil)

	if err := s.Poll(nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Poll(nil); err != nil {
		t.Fatal(err)
	}

	l, h := gpio.Low, gpio.High
	wantA := []gpio.Level{l, h, l, h, l}
	wantB := []gpio.Level{l, l, h, l, l, h, l}
	check := func(name string, got, want []gpio.Level) {
		if len(got) != len(want) {
			t.Errorf("%s history = %v, want %v", name, got, want)
			return
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s history = %v, want %v", name, got, want)
				return
			}
		}
	}
	check("strobe A", m.Strobes[0].History, wantA)
	check("strobe B", m.Strobes[1].History, wantB)

	if len(*delays) != 4 {
		t.Fatalf("settle delays = %v, want 4", *delays)
	}
	for _, d := range *delays {
		if d != time.Microsecond {
			t.Errorf("settle delay = %v, want 1µs", d)
		}
	}
}

func TestPollInitOnce(t *testing.T) {
	noSleep(t)
	m := boardsim.NewMatrix()
	s := newTestScanner(t, m, nil)

	for i := 0; i < 3; i++ {
		if err := s.Poll(nil); err != nil {
			t.Fatal(err)
		}
	}
	for i, in := range m.Inputs {
		if len(in.Pulls) != 1 || in.Pulls[0] != gpio.PullDown {
			t.Errorf("input %d pulls = %v, want one PullDown", i, in.Pulls)
		}
		if in.Reads != 6 {
			t.Errorf("input %d reads = %d, want 6", i, in.Reads)
		}
	}
}

func TestPollPartialInputs(t *testing.T) {
	noSleep(t)
	m := boardsim.NewMatrix()
	s, err := New(m.Strobes[0], m.Strobes[1], m.InputPins()[:2], nil)
	if err != nil {
		t.Fatal(err)
	}
	m.Set(0, 4, true)
	m.Set(1, 0, true)

	var got []Event
	if err := s.Poll(SinkFunc(func(e Event) { got = append(got, e) })); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != (Event{KeyDown, Start}) {
		t.Errorf("events = %v, want only KeyDown Start", got)
	}
	if m.Inputs[4].Reads != 0 {
		t.Error("unused input was sampled")
	}
}

func TestHalt(t *testing.T) {
	m := boardsim.NewMatrix()
	s := newTestScanner(t, m, nil)
	m.Strobes[0].Out(gpio.High)
	if err := s.Halt(); err != nil {
		t.Fatal(err)
	}
	if m.Strobes[0].Read() != gpio.Low || m.Strobes[1].Read() != gpio.Low {
		t.Error("Halt should leave both strobes low")
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{Up.String(), "Up"},
		{Select.String(), "Select"},
		{C.String(), "C"},
		{Key(200).String(), "Key(200)"},
		{KeyDown.String(), "KeyDown"},
		{EventType(7).String(), "EventType(7)"},
		{Event{KeyUp, B}.String(), "KeyUp B"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}
