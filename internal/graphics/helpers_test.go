package graphics

import (
	"testing"

	"gochip8/internal/display"
)

// newTestFrame builds an exported frame with the given pixel indices lit
func newTestFrame(lit ...int) *display.Frame {
	var frame display.Frame
	for i := range frame {
		frame[i] = display.PixelOff
	}
	for _, i := range lit {
		frame[i] = display.PixelOn
	}
	return &frame
}

// newTestWindow initializes a backend of the given type and opens a window
func newTestWindow(t *testing.T, backendType BackendType, config Config) Window {
	t.Helper()
	backend, err := CreateBackend(backendType)
	if err != nil {
		t.Fatalf("CreateBackend(%s) failed: %v", backendType, err)
	}
	if err := backend.Initialize(config); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	window, err := backend.CreateWindow("test", 640, 320)
	if err != nil {
		t.Fatalf("CreateWindow failed: %v", err)
	}
	t.Cleanup(func() {
		_ = window.Cleanup()
		_ = backend.Cleanup()
	})
	return window
}
