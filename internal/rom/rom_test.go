package rom

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"gochip8/internal/memory"
)

// createTestROM writes a ROM image into a temporary directory
func createTestROM(t *testing.T, name string, data []uint8) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	data := []uint8{0x00, 0xE0, 0xA2, 0x2A, 0x60, 0x0C}
	path := createTestROM(t, "ibm.ch8", data)

	rom, err := LoadFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "ibm.ch8", rom.Name())
	assert.Equal(t, len(data), rom.Size())
	assert.True(t, bytes.Equal(data, rom.Data()))
	assert.False(t, rom.IsEmpty())
	assert.Equal(t, 64, len(rom.Checksum()))
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.ch8"))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadFromReader_SizeLimit(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"empty", 0, false},
		{"maximum", memory.MaxProgramSize, false},
		{"one byte too large", memory.MaxProgramSize + 1, true},
		{"far too large", memory.Size * 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rom, err := LoadFromReader(bytes.NewReader(make([]uint8, tt.size)))
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrTooLarge))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.size, rom.Size())
		})
	}
}

func TestChecksum_IdentifiesContent(t *testing.T) {
	a, err := New("a", []uint8{1, 2, 3})
	assert.NoError(t, err)
	b, err := New("b", []uint8{1, 2, 3})
	assert.NoError(t, err)
	c, err := New("c", []uint8{1, 2, 4})
	assert.NoError(t, err)

	assert.Equal(t, a.Checksum(), b.Checksum())
	assert.True(t, a.Checksum() != c.Checksum())
}

func TestData_IsACopy(t *testing.T) {
	source := []uint8{0x12, 0x00}
	rom, err := New("jump", source)
	assert.NoError(t, err)

	source[0] = 0xFF
	data := rom.Data()
	data[1] = 0xFF
	assert.True(t, bytes.Equal([]uint8{0x12, 0x00}, rom.Data()))
}

func TestLoadInto(t *testing.T) {
	mem := memory.New()
	rom, err := New("", []uint8{0xAB, 0xCD})
	assert.NoError(t, err)
	assert.NoError(t, rom.LoadInto(mem))

	word, err := mem.ReadWord(memory.ProgramStart)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xABCD), word)

	assert.True(t, Empty().IsEmpty())
	assert.NoError(t, Empty().LoadInto(mem))
}
