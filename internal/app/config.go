// Package app wires the CHIP-8 machine to a graphics backend and manages
// configuration, frame pacing and save states.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gochip8/internal/display"
	"gochip8/internal/graphics"
	"gochip8/internal/input"
)

// Config holds all application configuration
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Input     InputConfig     `json:"input"`
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	// Internal state
	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration
type WindowConfig struct {
	Scale      int  `json:"scale"`
	Fullscreen bool `json:"fullscreen"`
	Resizable  bool `json:"resizable"`
}

// VideoConfig contains video rendering configuration
type VideoConfig struct {
	Backend    string `json:"backend"` // "ebitengine", "headless", "terminal"
	VSync      bool   `json:"vsync"`
	Filter     string `json:"filter"` // "nearest", "linear"
	Foreground string `json:"foreground"`
	Background string `json:"background"`
}

// InputConfig maps host key names to keypad keys given as hex digits
type InputConfig struct {
	Keymap map[string]string `json:"keymap"`
}

// EmulationConfig contains emulation timing and behavior configuration
type EmulationConfig struct {
	CyclesPerFrame int    `json:"cycles_per_frame"`
	FrameRate      int    `json:"frame_rate"`
	FixKeyWait     bool   `json:"fix_key_wait"`
	RandomSeed     uint64 `json:"random_seed"`   // 0 seeds from the runtime
	HaltOnFault    bool   `json:"halt_on_fault"` // fetch faults halt regardless
}

// DebugConfig contains debugging configuration
type DebugConfig struct {
	LogLevel   string `json:"log_level"`
	CPUTracing bool   `json:"cpu_tracing"`
}

// PathsConfig contains file path configuration
type PathsConfig struct {
	ROMs        string `json:"roms"`
	SaveStates  string `json:"save_states"`
	Screenshots string `json:"screenshots"`
}

// Configuration defaults
const (
	DefaultScale          = 10
	DefaultCyclesPerFrame = 10
	DefaultFrameRate      = 60
	DefaultLogLevel       = "info"

	maxScale          = 40
	maxCyclesPerFrame = 10000
	maxFrameRate      = 1000
)

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Scale:      DefaultScale,
			Fullscreen: false,
			Resizable:  true,
		},
		Video: VideoConfig{
			Backend:    string(graphics.BackendEbitengine),
			VSync:      true,
			Filter:     "nearest",
			Foreground: "#FFFFFF",
			Background: "#000000",
		},
		Input: InputConfig{
			Keymap: input.DefaultKeymapConfig(),
		},
		Emulation: EmulationConfig{
			CyclesPerFrame: DefaultCyclesPerFrame,
			FrameRate:      DefaultFrameRate,
			FixKeyWait:     false,
			RandomSeed:     0,
			HaltOnFault:    true,
		},
		Debug: DebugConfig{
			LogLevel:   DefaultLogLevel,
			CPUTracing: false,
		},
		Paths: PathsConfig{
			ROMs:        "./roms",
			SaveStates:  "./states",
			Screenshots: "./screenshots",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. A missing file is
// created with the current values.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// a keymap in the file replaces the default one instead of merging into it
	c.Input.Keymap = nil
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := c.createDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	c.configPath = path
	return nil
}

// Save saves the configuration to the current config file
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config file path set")
	}

	return c.SaveToFile(c.configPath)
}

// validate repairs out-of-range values and rejects values that cannot be
// repaired.
func (c *Config) validate() error {
	if c.Window.Scale <= 0 || c.Window.Scale > maxScale {
		c.Window.Scale = DefaultScale
	}

	switch graphics.BackendType(c.Video.Backend) {
	case graphics.BackendEbitengine, graphics.BackendHeadless, graphics.BackendTerminal:
	default:
		c.Video.Backend = string(graphics.BackendEbitengine)
	}

	if c.Video.Filter != "nearest" && c.Video.Filter != "linear" {
		c.Video.Filter = "nearest"
	}

	if c.Video.Foreground == "" {
		c.Video.Foreground = "#FFFFFF"
	}
	if c.Video.Background == "" {
		c.Video.Background = "#000000"
	}
	if _, err := graphics.ParseColor(c.Video.Foreground); err != nil {
		return &ConfigError{Field: "video.foreground", Value: c.Video.Foreground, Err: err}
	}
	if _, err := graphics.ParseColor(c.Video.Background); err != nil {
		return &ConfigError{Field: "video.background", Value: c.Video.Background, Err: err}
	}

	if len(c.Input.Keymap) == 0 {
		c.Input.Keymap = input.DefaultKeymapConfig()
	}
	if _, err := input.ParseKeymap(c.Input.Keymap); err != nil {
		return &ConfigError{Field: "input.keymap", Value: c.Input.Keymap, Err: err}
	}

	if c.Emulation.CyclesPerFrame <= 0 || c.Emulation.CyclesPerFrame > maxCyclesPerFrame {
		c.Emulation.CyclesPerFrame = DefaultCyclesPerFrame
	}

	if c.Emulation.FrameRate <= 0 || c.Emulation.FrameRate > maxFrameRate {
		c.Emulation.FrameRate = DefaultFrameRate
	}

	c.Debug.LogLevel = strings.ToLower(strings.TrimSpace(c.Debug.LogLevel))
	switch c.Debug.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.Debug.LogLevel = DefaultLogLevel
	}

	return nil
}

// createDirectories creates required directories
func (c *Config) createDirectories() error {
	dirs := []string{
		c.Paths.ROMs,
		c.Paths.SaveStates,
		c.Paths.Screenshots,
	}

	for _, dir := range dirs {
		if dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

// GetWindowResolution returns the window resolution based on scale
func (c *Config) GetWindowResolution() (int, int) {
	return display.Width * c.Window.Scale, display.Height * c.Window.Scale
}

// Keymap returns the parsed host key map
func (c *Config) Keymap() (input.Keymap, error) {
	keymap, err := input.ParseKeymap(c.Input.Keymap)
	if err != nil {
		return nil, &ConfigError{Field: "input.keymap", Value: c.Input.Keymap, Err: err}
	}
	return keymap, nil
}

// Palette returns the parsed display colors
func (c *Config) Palette() (graphics.Palette, error) {
	palette, err := graphics.ParsePalette(c.Video.Foreground, c.Video.Background)
	if err != nil {
		return graphics.Palette{}, &ConfigError{Field: "video", Value: c.Video.Foreground + "/" + c.Video.Background, Err: err}
	}
	return palette, nil
}

// IsLoaded returns whether the configuration was loaded from file
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// GetConfigPath returns the path to the config file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	data, err := json.Marshal(c)
	if err != nil {
		return NewConfig()
	}

	clone := &Config{}
	if err := json.Unmarshal(data, clone); err != nil {
		return NewConfig()
	}

	clone.configPath = c.configPath
	clone.loaded = c.loaded

	return clone
}

// UpdateEmulation updates emulation configuration
func (c *Config) UpdateEmulation(cyclesPerFrame, frameRate int, fixKeyWait bool) {
	c.Emulation.CyclesPerFrame = cyclesPerFrame
	c.Emulation.FrameRate = frameRate
	c.Emulation.FixKeyWait = fixKeyWait
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return "./config/gochip8.json"
}

// GetDefaultConfigDir returns the default configuration directory
func GetDefaultConfigDir() string {
	return "./config"
}

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value any
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s' with value '%v': %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
