package settings

import (
	"errors"
	"testing"

	"periph.io/x/devices/v3/st7789"
	"periph.io/x/devices/v3/st7789/frame"
)

func TestMarshalBinary(t *testing.T) {
	s := Settings{
		Version:    CurrentVersion,
		Backlight:  128,
		Buffering:  frame.Double,
		CellPixels: 2,
		Rotation:   st7789.Rotation180,
	}
	got, err := s.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}
	want := []byte{0x01, 0x00, 128, 1, 2, 2, 0, 0}
	if string(got) != string(want) {
		t.Errorf("MarshalBinary() = % x, want % x", got, want)
	}

	var back Settings
	if err := back.UnmarshalBinary(got); err != nil {
		t.Fatalf("UnmarshalBinary() error = %v", err)
	}
	if back != s {
		t.Errorf("UnmarshalBinary() = %+v, want %+v", back, s)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"buffering", func(s *Settings) { s.Buffering = 2 }},
		{"zero cell width", func(s *Settings) { s.CellPixels = 0 }},
		{"wide cell", func(s *Settings) { s.CellPixels = 3 }},
		{"rotation", func(s *Settings) { s.Rotation = 4 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.modify(&s)
			if err := s.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error = %v, want ErrInvalid", err)
			}
			if _, err := s.MarshalBinary(); err == nil {
				t.Error("MarshalBinary() should reject invalid settings")
			}
		})
	}

	d := Default()
	if err := d.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestUnmarshalBinaryErrors(t *testing.T) {
	var s Settings
	if err := s.UnmarshalBinary(make([]byte, 7)); err != ErrInvalidSize {
		t.Errorf("short record error = %v, want ErrInvalidSize", err)
	}
	if err := s.UnmarshalBinary([]byte{1, 0, 0, 0, 9, 0, 0, 0}); !errors.Is(err, ErrInvalid) {
		t.Errorf("bad cell width error = %v, want ErrInvalid", err)
	}
	if s != (Settings{}) {
		t.Errorf("failed UnmarshalBinary modified the receiver: %+v", s)
	}
}
