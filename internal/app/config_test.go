package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// writeConfig writes a config file whose paths point into dir
func writeConfig(t *testing.T, dir, sections string) string {
	t.Helper()
	path := filepath.Join(dir, "gochip8.json")
	paths := fmt.Sprintf(`"paths": {"roms": %q, "save_states": %q, "screenshots": %q}`,
		filepath.Join(dir, "roms"), filepath.Join(dir, "states"), filepath.Join(dir, "shots"))
	content := "{" + paths
	if sections != "" {
		content += ", " + sections
	}
	content += "}"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewConfig_Defaults(t *testing.T) {
	config := NewConfig()

	assert.Equal(t, 10, config.Window.Scale)
	assert.Equal(t, 10, config.Emulation.CyclesPerFrame)
	assert.Equal(t, 60, config.Emulation.FrameRate)
	assert.False(t, config.Emulation.FixKeyWait)
	assert.True(t, config.Emulation.HaltOnFault)
	assert.Equal(t, "ebitengine", config.Video.Backend)
	assert.Equal(t, 16, len(config.Input.Keymap))

	width, height := config.GetWindowResolution()
	assert.Equal(t, 640, width)
	assert.Equal(t, 320, height)

	keymap, err := config.Keymap()
	assert.NoError(t, err)
	key, ok := keymap.Lookup("v")
	assert.True(t, ok)
	assert.Equal(t, uint8(0xF), key)
}

func TestConfig_LoadFromFileCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "gochip8.json")
	config := NewConfig()

	assert.NoError(t, config.LoadFromFile(path))
	assert.Equal(t, path, config.GetConfigPath())
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestConfig_LoadFromFileRepairsValues(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
		"window": {"scale": -3},
		"video": {"backend": "opengl", "filter": "bicubic"},
		"emulation": {"cycles_per_frame": 0, "frame_rate": 5000, "fix_key_wait": true},
		"debug": {"log_level": "LOUD"}`)

	config := NewConfig()
	assert.NoError(t, config.LoadFromFile(path))

	assert.True(t, config.IsLoaded())
	assert.Equal(t, DefaultScale, config.Window.Scale)
	assert.Equal(t, "ebitengine", config.Video.Backend)
	assert.Equal(t, "nearest", config.Video.Filter)
	assert.Equal(t, DefaultCyclesPerFrame, config.Emulation.CyclesPerFrame)
	assert.Equal(t, DefaultFrameRate, config.Emulation.FrameRate)
	assert.True(t, config.Emulation.FixKeyWait)
	assert.Equal(t, "info", config.Debug.LogLevel)
	assert.Equal(t, 16, len(config.Input.Keymap))

	_, err := os.Stat(filepath.Join(dir, "states"))
	assert.NoError(t, err)
}

func TestConfig_KeymapFromFileReplacesDefault(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `"input": {"keymap": {"k": "5", "UP": "0x2"}}`)

	config := NewConfig()
	assert.NoError(t, config.LoadFromFile(path))
	assert.Equal(t, 2, len(config.Input.Keymap))

	keymap, err := config.Keymap()
	assert.NoError(t, err)
	key, ok := keymap.Lookup("K")
	assert.True(t, ok)
	assert.Equal(t, uint8(5), key)
	_, ok = keymap.Lookup("Q")
	assert.False(t, ok)
}

func TestConfig_LoadFromFileRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		sections string
		field    string
	}{
		{"keypad key out of range", `"input": {"keymap": {"Q": "1F"}}`, "input.keymap"},
		{"keypad key not hex", `"input": {"keymap": {"Q": "G"}}`, "input.keymap"},
		{"bad foreground", `"video": {"foreground": "#12"}`, "video.foreground"},
		{"bad background", `"video": {"background": "black"}`, "video.background"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.sections)

			err := NewConfig().LoadFromFile(path)
			var configErr *ConfigError
			assert.True(t, errors.As(err, &configErr))
			assert.Equal(t, tt.field, configErr.Field)
		})
	}
}

func TestConfig_LoadFromFileRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{"window": `), 0644))

	assert.ErrorContains(t, NewConfig().LoadFromFile(path), "failed to parse")
}

func TestConfig_SaveAndReload(t *testing.T) {
	dir := t.TempDir()
	config := NewConfig()
	config.Paths = PathsConfig{SaveStates: filepath.Join(dir, "states")}
	config.UpdateEmulation(20, 30, true)
	config.Video.Foreground = "#33FF66"

	path := filepath.Join(dir, "saved.json")
	assert.NoError(t, config.SaveToFile(path))

	loaded := NewConfig()
	assert.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, 20, loaded.Emulation.CyclesPerFrame)
	assert.Equal(t, 30, loaded.Emulation.FrameRate)
	assert.True(t, loaded.Emulation.FixKeyWait)

	palette, err := loaded.Palette()
	assert.NoError(t, err)
	assert.Equal(t, uint8(0x33), palette.Foreground.R)
}

func TestConfig_Save(t *testing.T) {
	config := NewConfig()
	assert.Error(t, config.Save())

	path := filepath.Join(t.TempDir(), "cfg.json")
	config.Paths = PathsConfig{}
	assert.NoError(t, config.SaveToFile(path))
	assert.NoError(t, config.Save())
}

func TestConfig_CloneIsIndependent(t *testing.T) {
	config := NewConfig()
	clone := config.Clone()

	clone.Input.Keymap["Q"] = "0"
	clone.Window.Scale = 3

	assert.Equal(t, "4", config.Input.Keymap["Q"])
	assert.Equal(t, DefaultScale, config.Window.Scale)
}
