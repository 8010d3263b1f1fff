// Package display implements the 64x32 monochrome frame buffer of the CHIP-8.
package display

// Screen geometry
const (
	Width      = 64
	Height     = 32
	PixelCount = Width * Height
	// SpriteWidth is the fixed width of every sprite row in pixels
	SpriteWidth = 8
)

// Reference pixel encoding (RGBA, alpha always opaque)
const (
	PixelOn  uint32 = 0xFFFFFFFF
	PixelOff uint32 = 0x000000FF
)

// Frame is an exported frame in RGBA pixel encoding
type Frame [PixelCount]uint32

// FrameBuffer holds the lit/unlit state of every pixel and the redraw flag
type FrameBuffer struct {
	cells  [PixelCount]uint8
	redraw bool
}

// New creates a cleared frame buffer
func New() *FrameBuffer {
	return &FrameBuffer{}
}

// Clear turns every pixel off and requests a redraw
func (fb *FrameBuffer) Clear() {
	fb.cells = [PixelCount]uint8{}
	fb.redraw = true
}

// DrawSprite XORs an 8-pixel-wide sprite onto the buffer with its top-left
// corner at (x mod 64, y mod 32). Pixels past the right or bottom edge are
// clipped, not wrapped. It returns true if any lit pixel was turned off.
func (fb *FrameBuffer) DrawSprite(x, y uint8, sprite []uint8) bool {
	originX := int(x) % Width
	originY := int(y) % Height
	collision := false

	for row, bits := range sprite {
		py := originY + row
		if py >= Height {
			break
		}
		for col := 0; col < SpriteWidth; col++ {
			px := originX + col
			if px >= Width {
				continue
			}
			if bits&(0x80>>col) == 0 {
				continue
			}
			idx := py*Width + px
			if fb.cells[idx] != 0 {
				collision = true
			}
			fb.cells[idx] ^= 1
		}
	}

	fb.redraw = true
	return collision
}

// VisibleRows returns how many of height sprite rows starting at y would be
// drawn before the bottom edge clips the rest.
func VisibleRows(y uint8, height int) int {
	remaining := Height - int(y)%Height
	if height < remaining {
		return height
	}
	return remaining
}

// Pixel reports whether the pixel at (x, y) is lit. Out of range is unlit.
func (fb *FrameBuffer) Pixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return fb.cells[y*Width+x] != 0
}

// NeedsRedraw reports whether the buffer changed since the last export
func (fb *FrameBuffer) NeedsRedraw() bool {
	return fb.redraw
}

// Cells returns a copy of the raw 0/1 cells
func (fb *FrameBuffer) Cells() [PixelCount]uint8 {
	return fb.cells
}

// SetCells replaces the raw cells, normalising every non-zero value to 1,
// and requests a redraw.
func (fb *FrameBuffer) SetCells(cells []uint8) {
	for i := range fb.cells {
		if i < len(cells) && cells[i] != 0 {
			fb.cells[i] = 1
		} else {
			fb.cells[i] = 0
		}
	}
	fb.redraw = true
}

// Export converts every cell with convert into dst and clears the redraw
// flag. If no redraw is pending it does nothing and returns false.
func Export[P any](fb *FrameBuffer, dst *[PixelCount]P, convert func(lit bool) P) bool {
	if !fb.redraw {
		return false
	}
	for i, cell := range fb.cells {
		dst[i] = convert(cell != 0)
	}
	fb.redraw = false
	return true
}

// ExportFrame exports the buffer in the reference RGBA encoding
func (fb *FrameBuffer) ExportFrame(dst *Frame) bool {
	return Export(fb, (*[PixelCount]uint32)(dst), func(lit bool) uint32 {
		if lit {
			return PixelOn
		}
		return PixelOff
	})
}
