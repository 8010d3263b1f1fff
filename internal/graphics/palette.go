package graphics

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gochip8/internal/display"
)

// Palette maps lit and unlit pixels to host colors
type Palette struct {
	Foreground color.RGBA
	Background color.RGBA
}

// DefaultPalette matches the reference encoding: white on black
func DefaultPalette() Palette {
	return Palette{
		Foreground: color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		Background: color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF},
	}
}

// ParsePalette builds a palette from two "#RRGGBB" strings
func ParsePalette(foreground, background string) (Palette, error) {
	fg, err := ParseColor(foreground)
	if err != nil {
		return Palette{}, fmt.Errorf("foreground: %w", err)
	}
	bg, err := ParseColor(background)
	if err != nil {
		return Palette{}, fmt.Errorf("background: %w", err)
	}
	return Palette{Foreground: fg, Background: bg}, nil
}

// ParseColor parses an opaque "#RRGGBB" color
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q, expected #RRGGBB", s)
	}
	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(value >> 16),
		G: uint8(value >> 8),
		B: uint8(value),
		A: 0xFF,
	}, nil
}

// Color returns the host color of one pixel in the reference encoding
func (p Palette) Color(pixel uint32) color.RGBA {
	if pixel == display.PixelOn {
		return p.Foreground
	}
	return p.Background
}

// WriteRGBA writes the frame as packed RGBA bytes into dst, which must hold
// at least 4*display.PixelCount bytes.
func (p Palette) WriteRGBA(frame *display.Frame, dst []byte) {
	for i, pixel := range frame {
		c := p.Color(pixel)
		o := i * 4
		dst[o] = c.R
		dst[o+1] = c.G
		dst[o+2] = c.B
		dst[o+3] = c.A
	}
}

// Image renders the frame into a new image, each pixel scaled to a
// scale x scale block.
func (p Palette) Image(frame *display.Frame, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, display.Width*scale, display.Height*scale))
	for y := 0; y < display.Height; y++ {
		for x := 0; x < display.Width; x++ {
			c := p.Color(frame[y*display.Width+x])
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.SetRGBA(x*scale+dx, y*scale+dy, c)
				}
			}
		}
	}
	return img
}

// SavePNG writes the frame as a PNG file, creating parent directories
func (p Palette) SavePNG(frame *display.Frame, scale int, filename string) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filename, err)
	}
	defer file.Close()

	if err := png.Encode(file, p.Image(frame, scale)); err != nil {
		return fmt.Errorf("encoding %s: %w", filename, err)
	}
	return nil
}
