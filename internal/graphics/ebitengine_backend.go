//go:build !headless

package graphics

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/retrogolib/log"

	"gochip8/internal/display"
)

// ebitenKeys maps the Ebitengine keys we listen to onto host keys
var ebitenKeys = map[ebiten.Key]Key{
	ebiten.Key0: Key0, ebiten.Key1: Key1, ebiten.Key2: Key2, ebiten.Key3: Key3, ebiten.Key4: Key4,
	ebiten.Key5: Key5, ebiten.Key6: Key6, ebiten.Key7: Key7, ebiten.Key8: Key8, ebiten.Key9: Key9,
	ebiten.KeyA: KeyA, ebiten.KeyB: KeyB, ebiten.KeyC: KeyC, ebiten.KeyD: KeyD, ebiten.KeyE: KeyE,
	ebiten.KeyF: KeyF, ebiten.KeyG: KeyG, ebiten.KeyH: KeyH, ebiten.KeyI: KeyI, ebiten.KeyJ: KeyJ,
	ebiten.KeyK: KeyK, ebiten.KeyL: KeyL, ebiten.KeyM: KeyM, ebiten.KeyN: KeyN, ebiten.KeyO: KeyO,
	ebiten.KeyP: KeyP, ebiten.KeyQ: KeyQ, ebiten.KeyR: KeyR, ebiten.KeyS: KeyS, ebiten.KeyT: KeyT,
	ebiten.KeyU: KeyU, ebiten.KeyV: KeyV, ebiten.KeyW: KeyW, ebiten.KeyX: KeyX, ebiten.KeyY: KeyY,
	ebiten.KeyZ:          KeyZ,
	ebiten.KeyEscape:     KeyEscape,
	ebiten.KeyEnter:      KeyEnter,
	ebiten.KeySpace:      KeySpace,
	ebiten.KeyBackspace:  KeyBackspace,
	ebiten.KeyTab:        KeyTab,
	ebiten.KeyArrowUp:    KeyUp,
	ebiten.KeyArrowDown:  KeyDown,
	ebiten.KeyArrowLeft:  KeyLeft,
	ebiten.KeyArrowRight: KeyRight,
	ebiten.KeyF1:         KeyF1,
	ebiten.KeyF2:         KeyF2,
	ebiten.KeyF3:         KeyF3,
	ebiten.KeyF4:         KeyF4,
	ebiten.KeyF5:         KeyF5,
	ebiten.KeyF6:         KeyF6,
	ebiten.KeyF7:         KeyF7,
	ebiten.KeyF8:         KeyF8,
	ebiten.KeyF9:         KeyF9,
	ebiten.KeyF10:        KeyF10,
	ebiten.KeyF11:        KeyF11,
	ebiten.KeyF12:        KeyF12,
}

// EbitengineBackend implements the Backend interface using Ebitengine
type EbitengineBackend struct {
	initialized bool
	config      Config
	game        *EbitengineGame
}

// EbitengineWindow implements the Window interface for Ebitengine
type EbitengineWindow struct {
	backend *EbitengineBackend
	title   string
	width   int
	height  int
	game    *EbitengineGame
	running bool
	events  []InputEvent
	update  func() error
}

// EbitengineGame implements ebiten.Game for the emulator
type EbitengineGame struct {
	window       *EbitengineWindow
	frameImage   *ebiten.Image
	pixels       []byte
	palette      Palette
	filter       ebiten.Filter
	windowWidth  int
	windowHeight int
	logger       *log.Logger
}

// NewEbitengineBackend creates a new Ebitengine graphics backend
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

// Initialize initializes the Ebitengine backend
func (b *EbitengineBackend) Initialize(config Config) error {
	if b.initialized {
		return errors.New("ebitengine backend already initialized")
	}

	b.config = config
	b.initialized = true
	return nil
}

// CreateWindow creates an Ebitengine window
func (b *EbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, errors.New("backend not initialized")
	}
	if b.config.Headless {
		return nil, errors.New("cannot create window in headless mode")
	}

	filter := ebiten.FilterNearest
	if b.config.Filter == "linear" {
		filter = ebiten.FilterLinear
	}

	game := &EbitengineGame{
		frameImage:   ebiten.NewImage(display.Width, display.Height),
		pixels:       make([]byte, display.PixelCount*4),
		palette:      b.config.palette(),
		filter:       filter,
		windowWidth:  width,
		windowHeight: height,
		logger:       b.config.logger(),
	}

	window := &EbitengineWindow{
		backend: b,
		title:   title,
		width:   width,
		height:  height,
		game:    game,
		running: true,
	}
	game.window = window
	b.game = game

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowClosingHandled(true)
	if b.config.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	} else {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	}
	ebiten.SetVsyncEnabled(b.config.VSync)
	if b.config.FrameRate > 0 {
		ebiten.SetTPS(b.config.FrameRate)
	}
	if b.config.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	// blank until the first frame is exported
	var blank display.Frame
	for i := range blank {
		blank[i] = display.PixelOff
	}
	if err := window.RenderFrame(&blank); err != nil {
		return nil, err
	}

	return window, nil
}

// Cleanup releases all Ebitengine resources
func (b *EbitengineBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true if running in headless mode
func (b *EbitengineBackend) IsHeadless() bool {
	return b.config.Headless
}

// GetName returns the backend name
func (b *EbitengineBackend) GetName() string {
	return "Ebitengine"
}

// SetTitle sets the window title
func (w *EbitengineWindow) SetTitle(title string) {
	w.title = title
	ebiten.SetWindowTitle(title)
}

// GetSize returns window dimensions
func (w *EbitengineWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *EbitengineWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents returns the events gathered by the last Update
func (w *EbitengineWindow) PollEvents() []InputEvent {
	events := w.events
	w.events = nil
	return events
}

// RenderFrame uploads an exported frame to the GPU image
func (w *EbitengineWindow) RenderFrame(frame *display.Frame) error {
	if w.game == nil {
		return errors.New("game not initialized")
	}
	w.game.palette.WriteRGBA(frame, w.game.pixels)
	w.game.frameImage.WritePixels(w.game.pixels)
	return nil
}

// Run starts the Ebitengine game loop. It blocks until the window is closed
// or update returns an error.
func (w *EbitengineWindow) Run(update func() error) error {
	if w.game == nil {
		return errors.New("game not initialized")
	}
	w.update = update

	err := ebiten.RunGame(w.game)
	w.running = false
	if err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("running game loop: %w", err)
	}
	return nil
}

// Cleanup releases window resources
func (w *EbitengineWindow) Cleanup() error {
	w.running = false
	return nil
}

// Update implements ebiten.Game.Update
func (g *EbitengineGame) Update() error {
	if g.window == nil {
		return nil
	}
	g.processInput()

	if g.window.update == nil {
		return nil
	}
	if err := g.window.update(); err != nil {
		if errors.Is(err, ErrQuit) {
			return ebiten.Termination
		}
		g.logger.Error("Emulator update failed", log.Err(err))
		return err
	}
	return nil
}

// Draw implements ebiten.Game.Draw
func (g *EbitengineGame) Draw(screen *ebiten.Image) {
	screen.Fill(g.palette.Background)

	// Fit the 2:1 frame into the window, keeping the aspect ratio
	scaleX := float64(g.windowWidth) / float64(display.Width)
	scaleY := float64(g.windowHeight) / float64(display.Height)
	scale := min(scaleX, scaleY)

	offsetX := (float64(g.windowWidth) - float64(display.Width)*scale) / 2
	offsetY := (float64(g.windowHeight) - float64(display.Height)*scale) / 2

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	op.Filter = g.filter
	screen.DrawImage(g.frameImage, op)
}

// Layout implements ebiten.Game.Layout
func (g *EbitengineGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	g.windowWidth = outsideWidth
	g.windowHeight = outsideHeight
	return outsideWidth, outsideHeight
}

// processInput converts key transitions since the last tick into events
func (g *EbitengineGame) processInput() {
	var events []InputEvent
	for ebitenKey, key := range ebitenKeys {
		if inpututil.IsKeyJustPressed(ebitenKey) {
			events = append(events, InputEvent{Type: InputEventTypeKey, Key: key, Pressed: true})
		} else if inpututil.IsKeyJustReleased(ebitenKey) {
			events = append(events, InputEvent{Type: InputEventTypeKey, Key: key, Pressed: false})
		}
	}
	if ebiten.IsWindowBeingClosed() {
		events = append(events, InputEvent{Type: InputEventTypeQuit, Pressed: true})
	}
	g.window.events = append(g.window.events, events...)
}
