// Package st7789 controls an ST7789 TFT display over SPI or an 8-bit
// parallel bus.
//
// The ST7789 is a 262K color TFT controller with 240×320 pixels of RAM. This
// driver runs it in 16-bit RGB565 mode and implements the display.Drawer
// interface from periph.io.
//
// # Display Characteristics
//
// - 16-bit RGB565 color, big-endian on the wire
// - Window addressing: pixel data lands in the last programmed rectangle
// - Rotation through the memory access control register
// - Display inversion, sleep mode and a PWM backlight
// - Panels smaller than the controller RAM sit at a fixed origin offset
//
// # Hardware Connection
//
// Connect the display to your system via SPI:
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	SCL         → SPI Clock (SCLK)
//	SDA         → SPI Data (MOSI)
//	DC          → GPIO (any available pin)
//	CS          → SPI Chip Select, or a GPIO passed as Opts.CS
//	RES         → Optional: GPIO for hardware reset
//	BLK         → Optional: PWM capable GPIO for the backlight
//
// Boards with the 8080-style parallel interface wire D0..D7, WR and RD to GPIOs
// and use NewParallel instead.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/devices/v3/st7789"
//		"periph.io/x/devices/v3/st7789/image565"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		host.Init()
//
//		spiBus, _ := spireg.Open("")
//		dcPin := gpioreg.ByName("GPIO25")
//
//		dev, _ := st7789.NewSPI(spiBus, dcPin, &st7789.Opts{
//			W:   240,
//			H:   240,
//			RST: gpioreg.ByName("GPIO27"),
//			BL:  gpioreg.ByName("GPIO18"),
//		})
//		defer dev.Halt()
//
//		dev.SetBacklight(255)
//		dev.Fill(image565.Blue)
//		dev.Line(0, 0, 239, 239, image565.White)
//	}
//
// # Hardware Reset Pin (Optional)
//
// When Opts.RST is set, initialization pulls RST high for 50ms, low for 50ms
// and high again for 150ms with chip select held low. Without it the driver
// relies on the software reset command alone.
//
// # Panel Origin
//
// A 135×240 panel occupies columns 52..186 and rows 40..279 of controller RAM.
// The driver knows the origin of the common panels:
//
//	Opts{W: 240, H: 240} // origin (0, 0)
//	Opts{W: 135, H: 240} // origin (52, 40)
//	Opts{W: 240, H: 135} // origin (40, 53)
//	Opts{W: 240, H: 320} // origin (0, 0)
//	Opts{W: 320, H: 240} // origin (0, 0)
//
// Other sizes need Opts.Offset; without it a diagnostic is logged and the
// origin stays at (0, 0).
//
// # Drawing
//
// Every primitive is a windowed write: the address window is set to the
// affected rectangle and the pixels follow in one memory write. Windows that
// fall outside the panel are ignored. Runs are filled through a 128 pixel
// staging buffer, and Line sends each horizontal or vertical run of its
// Bresenham rasterization as one write.
//
//	dev.FillRect(10, 10, 50, 20, image565.Red)
//	dev.Rect(5, 5, 60, 30, image565.White)
//	dev.BlitBuffer(pixels, 0, 0, 240, 1) // one wire-order scan line
//
// Any image.Image can be drawn through Draw, which converts it to RGB565.
//
// # Transfers
//
// Writes larger than BlockThreshold are handed to the block-transfer path: a
// single TxPackets call on SPI, or ParallelPins.Stream on the parallel bus.
package st7789
