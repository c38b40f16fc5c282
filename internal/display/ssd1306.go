package display

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

const (
	panelWidth  = 128
	panelHeight = 64
	lineHeight  = 13 // basicfont.Face7x13 glyph height
)

// SSD1306Sink drives the 128x64 OLED panel over I2C.
type SSD1306Sink struct {
	dev  *ssd1306.Dev
	face font.Face
}

func NewSSD1306(bus i2c.Bus) (*SSD1306Sink, error) {
	dev, err := ssd1306.NewI2C(bus, &ssd1306.Opts{W: panelWidth, H: panelHeight})
	if err != nil {
		return nil, fmt.Errorf("ssd1306: %w", err)
	}
	return &SSD1306Sink{
		dev:  dev,
		face: basicfont.Face7x13,
	}, nil
}

// Render draws the lines onto a fresh frame and pushes it to the panel.
// Lines that do not fit the panel height are dropped.
func (s *SSD1306Sink) Render(lines []string) error {
	img := image1bit.NewVerticalLSB(s.dev.Bounds())
	drawer := font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: image1bit.On},
		Face: s.face,
	}

	for i, line := range lines {
		baseline := lineHeight - 2 + i*lineHeight
		if baseline >= panelHeight {
			break
		}
		drawer.Dot = fixed.P(0, baseline)
		drawer.DrawString(line)
	}

	if err := s.dev.Draw(s.dev.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("ssd1306 draw: %w", err)
	}
	return nil
}

func (s *SSD1306Sink) Close() error {
	return s.dev.Halt()
}
