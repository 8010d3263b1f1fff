package graphics

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/retroenv/retrogolib/log"

	"gochip8/internal/display"
)

// HeadlessBackend implements the Backend interface for headless operation
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow implements the Window interface for headless operation.
// Frames can be dumped to PNG files and input can be scripted.
type HeadlessWindow struct {
	title      string
	width      int
	height     int
	running    bool
	frameCount int
	outputPath string
	dumpEvery  int
	maxFrames  int
	palette    Palette
	lastFrame  display.Frame
	events     []InputEvent
	logger     *log.Logger
}

// NewHeadlessBackend creates a new headless graphics backend
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

// Initialize initializes the headless backend
func (b *HeadlessBackend) Initialize(config Config) error {
	if b.initialized {
		return errors.New("headless backend already initialized")
	}

	b.config = config
	b.initialized = true
	return nil
}

// CreateWindow creates a headless "window" (no actual window)
func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, errors.New("backend not initialized")
	}

	outputPath := b.config.OutputDir
	if outputPath == "" {
		outputPath = "frame_output"
	}

	return &HeadlessWindow{
		title:      title,
		width:      width,
		height:     height,
		running:    true,
		outputPath: outputPath,
		dumpEvery:  b.config.DumpEvery,
		maxFrames:  b.config.MaxFrames,
		palette:    b.config.palette(),
		logger:     b.config.logger(),
	}, nil
}

// Cleanup releases all headless resources
func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true (this is a headless backend)
func (b *HeadlessBackend) IsHeadless() bool {
	return true
}

// GetName returns the backend name
func (b *HeadlessBackend) GetName() string {
	return "Headless"
}

// SetTitle sets the window title (for logging purposes)
func (w *HeadlessWindow) SetTitle(title string) {
	w.title = title
}

// GetSize returns window dimensions
func (w *HeadlessWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *HeadlessWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents returns queued scripted events
func (w *HeadlessWindow) PollEvents() []InputEvent {
	events := w.events
	w.events = nil
	return events
}

// QueueEvent schedules an input event for the next PollEvents call
func (w *HeadlessWindow) QueueEvent(event InputEvent) {
	w.events = append(w.events, event)
}

// RenderFrame keeps the frame and dumps it to disk every dumpEvery frames
func (w *HeadlessWindow) RenderFrame(frame *display.Frame) error {
	w.frameCount++
	w.lastFrame = *frame

	if w.dumpEvery > 0 && w.frameCount%w.dumpEvery == 0 {
		filename := filepath.Join(w.outputPath, fmt.Sprintf("frame_%05d.png", w.frameCount))
		if err := w.palette.SavePNG(frame, 1, filename); err != nil {
			return err
		}
		w.logger.Debug("Frame dumped", log.String("file", filename))
	}
	return nil
}

// Run calls update until it fails, the window is closed or the configured
// number of frames has elapsed.
func (w *HeadlessWindow) Run(update func() error) error {
	for frame := 0; w.running; frame++ {
		if w.maxFrames > 0 && frame >= w.maxFrames {
			break
		}
		if err := update(); err != nil {
			if errors.Is(err, ErrQuit) {
				break
			}
			return err
		}
	}
	w.running = false
	return nil
}

// Cleanup releases window resources
func (w *HeadlessWindow) Cleanup() error {
	w.running = false
	return nil
}

// SetOutputPath sets the output path for frame dumps
func (w *HeadlessWindow) SetOutputPath(path string) {
	w.outputPath = path
}

// GetFrameCount returns the number of rendered frames
func (w *HeadlessWindow) GetFrameCount() int {
	return w.frameCount
}

// LastFrame returns the most recently rendered frame
func (w *HeadlessWindow) LastFrame() display.Frame {
	return w.lastFrame
}
