package graphics

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/retroenv/retrogolib/log"

	"gochip8/internal/display"
)

// defaultHoldPolls is how many polls a terminal key stays pressed after its
// last byte arrived. Terminals report no key releases.
const defaultHoldPolls = 6

// TerminalBackend implements the Backend interface for terminal-based rendering
type TerminalBackend struct {
	initialized bool
	config      Config
}

// TerminalWindow renders frames with ANSI half blocks, two pixel rows per
// text line, and reads keys from a raw terminal.
type TerminalWindow struct {
	title     string
	width     int
	height    int
	running   bool
	palette   Palette
	frameRate int
	logger    *log.Logger

	in        io.Reader
	out       io.Writer
	bytes     chan byte
	startOnce sync.Once
	restore   func() error

	held      map[Key]int
	holdPolls int
}

// NewTerminalBackend creates a new terminal graphics backend
func NewTerminalBackend() Backend {
	return &TerminalBackend{}
}

// Initialize initializes the terminal backend
func (b *TerminalBackend) Initialize(config Config) error {
	if b.initialized {
		return errors.New("terminal backend already initialized")
	}

	b.config = config
	b.initialized = true
	return nil
}

// CreateWindow creates a terminal "window"
func (b *TerminalBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, errors.New("backend not initialized")
	}

	frameRate := b.config.FrameRate
	if frameRate <= 0 {
		frameRate = 60
	}

	return &TerminalWindow{
		title:     title,
		width:     width,
		height:    height,
		running:   true,
		palette:   b.config.palette(),
		frameRate: frameRate,
		logger:    b.config.logger(),
		in:        os.Stdin,
		out:       os.Stdout,
		bytes:     make(chan byte, 256),
		held:      make(map[Key]int),
		holdPolls: defaultHoldPolls,
	}, nil
}

// Cleanup releases all terminal resources
func (b *TerminalBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns false (terminal has basic output)
func (b *TerminalBackend) IsHeadless() bool {
	return false
}

// GetName returns the backend name
func (b *TerminalBackend) GetName() string {
	return "Terminal"
}

// SetIO replaces the input and output streams. It must be called before the
// first PollEvents.
func (w *TerminalWindow) SetIO(in io.Reader, out io.Writer) {
	w.in = in
	w.out = out
}

// SetTitle sets the terminal title
func (w *TerminalWindow) SetTitle(title string) {
	w.title = title
	fmt.Fprintf(w.out, "\033]0;%s\007", title)
}

// GetSize returns window dimensions
func (w *TerminalWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *TerminalWindow) ShouldClose() bool {
	return !w.running
}

// startInput switches stdin to raw mode if possible and starts the reader
func (w *TerminalWindow) startInput() {
	if file, ok := w.in.(*os.File); ok {
		restore, err := makeRaw(int(file.Fd()))
		if err != nil {
			w.logger.Debug("Terminal raw mode unavailable", log.Err(err))
		} else {
			w.restore = restore
		}
	}

	go func() {
		buf := make([]byte, 64)
		for {
			n, err := w.in.Read(buf)
			for _, b := range buf[:n] {
				w.bytes <- b
			}
			if err != nil {
				return
			}
		}
	}()
}

// PollEvents converts bytes typed since the last call into key events.
// Keys are released after holdPolls polls without a repeat.
func (w *TerminalWindow) PollEvents() []InputEvent {
	w.startOnce.Do(w.startInput)

	var events []InputEvent
	seen := make(map[Key]bool)
	skip := 0
	prevEscape := false

drain:
	for {
		select {
		case b := <-w.bytes:
			if skip > 0 {
				skip--
				continue
			}
			// ESC [ x and ESC O x are cursor and function key sequences
			if prevEscape && (b == '[' || b == 'O') {
				prevEscape = false
				delete(seen, KeyEscape)
				skip = 1
				continue
			}
			key := keyFromByte(b)
			prevEscape = key == KeyEscape
			if key != KeyUnknown {
				seen[key] = true
			}
		default:
			break drain
		}
	}

	for key := range seen {
		if _, held := w.held[key]; !held {
			events = append(events, InputEvent{Type: InputEventTypeKey, Key: key, Pressed: true})
		}
		w.held[key] = w.holdPolls
	}
	for key, remaining := range w.held {
		if seen[key] {
			continue
		}
		if remaining <= 1 {
			delete(w.held, key)
			events = append(events, InputEvent{Type: InputEventTypeKey, Key: key, Pressed: false})
			continue
		}
		w.held[key] = remaining - 1
	}
	return events
}

// RenderFrame draws the frame with 24-bit ANSI colors
func (w *TerminalWindow) RenderFrame(frame *display.Frame) error {
	var sb strings.Builder
	sb.Grow(display.PixelCount * 24)
	sb.WriteString("\033[H")

	for y := 0; y < display.Height; y += 2 {
		for x := 0; x < display.Width; x++ {
			top := w.palette.Color(frame[y*display.Width+x])
			bottom := w.palette.Color(frame[(y+1)*display.Width+x])
			fmt.Fprintf(&sb, "\033[38;2;%d;%d;%dm\033[48;2;%d;%d;%dm▀",
				top.R, top.G, top.B, bottom.R, bottom.G, bottom.B)
		}
		sb.WriteString("\033[0m\r\n")
	}

	_, err := io.WriteString(w.out, sb.String())
	return err
}

// Run calls update at the configured frame rate until it returns an error
// or the window is closed.
func (w *TerminalWindow) Run(update func() error) error {
	fmt.Fprint(w.out, "\033[2J\033[?25l")
	defer fmt.Fprint(w.out, "\033[0m\033[?25h")

	ticker := time.NewTicker(time.Second / time.Duration(w.frameRate))
	defer ticker.Stop()

	for w.running {
		if err := update(); err != nil {
			if errors.Is(err, ErrQuit) {
				break
			}
			return err
		}
		<-ticker.C
	}
	w.running = false
	return nil
}

// Cleanup restores the terminal mode
func (w *TerminalWindow) Cleanup() error {
	w.running = false
	if w.restore != nil {
		restore := w.restore
		w.restore = nil
		return restore()
	}
	return nil
}
