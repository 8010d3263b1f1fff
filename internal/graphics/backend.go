// Package graphics provides an abstraction layer for different rendering backends
package graphics

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/log"

	"gochip8/internal/display"
)

// ErrQuit is returned by an update function to stop a backend's run loop
var ErrQuit = errors.New("quit requested")

// Backend represents a graphics rendering backend (Ebitengine, terminal, headless)
type Backend interface {
	// Initialize initializes the graphics backend
	Initialize(config Config) error

	// CreateWindow creates a window for rendering
	CreateWindow(title string, width, height int) (Window, error)

	// Cleanup releases all resources
	Cleanup() error

	// IsHeadless returns true if running in headless mode
	IsHeadless() bool

	// GetName returns the backend name for identification
	GetName() string
}

// Window represents a rendering window
type Window interface {
	// SetTitle sets the window title
	SetTitle(title string)

	// GetSize returns window dimensions
	GetSize() (width, height int)

	// ShouldClose returns true if window should close
	ShouldClose() bool

	// PollEvents returns the input events gathered since the last call
	PollEvents() []InputEvent

	// RenderFrame presents an exported 64x32 frame
	RenderFrame(frame *display.Frame) error

	// Run drives update once per frame until the window closes or update
	// returns an error. ErrQuit ends the loop without error.
	Run(update func() error) error

	// Cleanup releases window resources
	Cleanup() error
}

// Config contains configuration for graphics backends
type Config struct {
	// Window configuration
	WindowTitle  string
	WindowWidth  int
	WindowHeight int
	Fullscreen   bool
	Resizable    bool
	VSync        bool

	// Rendering configuration
	Filter    string // "nearest", "linear"
	Palette   Palette
	FrameRate int

	// Headless frame dumps
	OutputDir string
	DumpEvery int
	MaxFrames int

	// Backend-specific options
	Headless bool
	Debug    bool
	Logger   *log.Logger
}

// InputEvent represents an input event from the window
type InputEvent struct {
	Type    InputEventType
	Key     Key
	Pressed bool
}

// InputEventType represents the type of input event
type InputEventType int

const (
	InputEventTypeKey InputEventType = iota
	InputEventTypeQuit
)

// BackendType represents different graphics backend types
type BackendType string

const (
	BackendEbitengine BackendType = "ebitengine"
	BackendHeadless   BackendType = "headless"
	BackendTerminal   BackendType = "terminal"
)

// CreateBackend creates a graphics backend of the specified type
func CreateBackend(backendType BackendType) (Backend, error) {
	switch backendType {
	case BackendEbitengine, "":
		return NewEbitengineBackend(), nil
	case BackendHeadless:
		return NewHeadlessBackend(), nil
	case BackendTerminal:
		return NewTerminalBackend(), nil
	default:
		return nil, fmt.Errorf("unknown graphics backend %q", backendType)
	}
}

// AsEbitengineWindow tries to cast a Window to EbitengineWindow
func AsEbitengineWindow(window Window) (*EbitengineWindow, bool) {
	if ebitengineWindow, ok := window.(*EbitengineWindow); ok {
		return ebitengineWindow, true
	}
	return nil, false
}

// AsHeadlessWindow tries to cast a Window to HeadlessWindow
func AsHeadlessWindow(window Window) (*HeadlessWindow, bool) {
	if headlessWindow, ok := window.(*HeadlessWindow); ok {
		return headlessWindow, true
	}
	return nil, false
}

// logger returns the configured logger or a discarding default
func (c Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	cfg := log.DefaultConfig()
	cfg.Level = log.ErrorLevel
	return log.NewWithConfig(cfg)
}

// palette returns the configured palette or the default one
func (c Config) palette() Palette {
	if c.Palette == (Palette{}) {
		return DefaultPalette()
	}
	return c.Palette
}
