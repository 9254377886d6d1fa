// Package image565 provides the 16-bit RGB565 pixel format used by the ST7789
// display controller.
//
// Each pixel packs 5 bits of red, 6 bits of green and 5 bits of blue into a
// 16-bit word. On the wire the ST7789 expects that word big-endian:
//
//	Color:  R=0xFF G=0x80 B=0x00
//	Packed: 0xFC00  (11111 100000 00000)
//	Wire:   0xFC 0x00
//
// This package provides:
//
// - Color: a packed RGB565 value implementing color.Color
// - Model: a color model converting standard Go colors to Color
// - Image: an image.Image whose Pix holds wire-order pixel pairs
// - Palette: a 256-entry lookup from 8-bit indexes to wire-order pixels
//
// Example usage:
//
//	// Convert an engine palette once per frame
//	var pal image565.Palette
//	if err := pal.Load(rgb24); err != nil {
//		return err
//	}
//
//	// Expand one row of indexes into wire bytes
//	row := make([]byte, 2*len(indexes))
//	pal.Expand(row, indexes)
package image565
