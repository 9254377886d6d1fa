// Package settings persists the board configuration on a LittleFS volume.
package settings

import (
	"encoding/binary"
	"errors"
	"fmt"

	"periph.io/x/devices/v3/st7789"
	"periph.io/x/devices/v3/st7789/frame"
)

// CurrentVersion is the record format version. Records with another version
// are discarded.
const CurrentVersion uint16 = 1

// Size is the encoded record size.
const Size = 8

var (
	ErrInvalidSize = errors.New("settings: invalid record size")
	ErrInvalid     = errors.New("settings: invalid record")
)

// Settings is the board configuration.
// Layout:
//
//	[0-1]: Version (uint16)
//	[2]:   Backlight (uint8)
//	[3]:   Buffering (uint8)
//	[4]:   CellPixels (uint8)
//	[5]:   Rotation (uint8)
//	[6-7]: Reserved
type Settings struct {
	Version    uint16
	Backlight  uint8           // Brightness 0-255
	Buffering  frame.Mode      // Single or double buffered frames
	CellPixels uint8           // Panel pixels per frame column, 1 or 2
	Rotation   st7789.Rotation // Mounted orientation
}

// Default returns the settings used when none are stored.
func Default() Settings {
	return Settings{
		Version:    CurrentVersion,
		Backlight:  255,
		Buffering:  frame.Single,
		CellPixels: 1,
		Rotation:   st7789.NoRotation,
	}
}

// Validate checks every field is in range.
func (s *Settings) Validate() error {
	if s.Buffering != frame.Single && s.Buffering != frame.Double {
		return fmt.Errorf("%w: buffering %d", ErrInvalid, s.Buffering)
	}
	if s.CellPixels != 1 && s.CellPixels != 2 {
		return fmt.Errorf("%w: cell width %d", ErrInvalid, s.CellPixels)
	}
	if s.Rotation > st7789.Rotation270 {
		return fmt.Errorf("%w: rotation %d", ErrInvalid, s.Rotation)
	}
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s *Settings) MarshalBinary() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, Size)
	binary.LittleEndian.PutUint16(buf[0:], s.Version)
	buf[2] = s.Backlight
	buf[3] = byte(s.Buffering)
	buf[4] = s.CellPixels
	buf[5] = byte(s.Rotation)
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Settings) UnmarshalBinary(data []byte) error {
	if len(data) != Size {
		return ErrInvalidSize
	}
	v := Settings{
		Version:    binary.LittleEndian.Uint16(data[0:]),
		Backlight:  data[2],
		Buffering:  frame.Mode(data[3]),
		CellPixels: data[4],
		Rotation:   st7789.Rotation(data[5]),
	}
	if err := v.Validate(); err != nil {
		return err
	}
	*s = v
	return nil
}
