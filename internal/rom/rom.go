// Package rom implements loading of raw CHIP-8 program images.
package rom

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gochip8/internal/memory"
)

// ErrTooLarge is returned for images that do not fit above the program start
var ErrTooLarge = errors.New("ROM exceeds available program memory")

// ROM represents a loaded program image
type ROM struct {
	name     string
	data     []uint8
	checksum string
}

// LoadFromFile loads a ROM image from disk
func LoadFromFile(filename string) (*ROM, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rom, err := LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", filename, err)
	}
	rom.name = filepath.Base(filename)
	return rom, nil
}

// LoadFromReader loads a ROM image from an io.Reader. The image is taken
// verbatim, there is no header.
func LoadFromReader(r io.Reader) (*ROM, error) {
	data, err := io.ReadAll(io.LimitReader(r, memory.MaxProgramSize+1))
	if err != nil {
		return nil, err
	}
	return New("", data)
}

// New wraps an in-memory image
func New(name string, data []uint8) (*ROM, error) {
	if len(data) > memory.MaxProgramSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, memory.MaxProgramSize)
	}
	image := make([]uint8, len(data))
	copy(image, data)

	sum := sha256.Sum256(image)
	return &ROM{
		name:     name,
		data:     image,
		checksum: hex.EncodeToString(sum[:]),
	}, nil
}

// Empty returns a zero-length ROM
func Empty() *ROM {
	rom, _ := New("", nil)
	return rom
}

// Name returns the file name the ROM was loaded from, if any
func (r *ROM) Name() string {
	return r.name
}

// Data returns a copy of the image
func (r *ROM) Data() []uint8 {
	out := make([]uint8, len(r.data))
	copy(out, r.data)
	return out
}

// Size returns the image length in bytes
func (r *ROM) Size() int {
	return len(r.data)
}

// IsEmpty reports whether the image has no content
func (r *ROM) IsEmpty() bool {
	return len(r.data) == 0
}

// Checksum returns the hex SHA-256 of the image, used to match save states
func (r *ROM) Checksum() string {
	return r.checksum
}

// LoadInto places the image at the program start of mem
func (r *ROM) LoadInto(mem *memory.Memory) error {
	return mem.LoadProgram(r.data)
}
