package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/retroenv/retrogolib/log"

	"gochip8/internal/graphics"
	"gochip8/internal/input"
)

// Options override configuration for a single run
type Options struct {
	Headless  bool   // force the headless backend
	Backend   string // backend name overriding video.backend
	MaxFrames int    // stop after this many frames, 0 runs until closed
	DumpEvery int    // headless: write every Nth frame as PNG, 0 disables
	OutputDir string // headless: frame dump directory
	Debug     bool   // force debug logging
	Logger    *log.Logger
}

// Application represents the main emulator application
type Application struct {
	graphicsBackend graphics.Backend
	window          graphics.Window

	config   *Config
	logger   *log.Logger
	emulator *Emulator
	states   *StateManager
	keymap   input.Keymap
	palette  graphics.Palette

	// Control flags
	running     bool
	paused      bool
	initialized bool
	headless    bool

	frameCount uint64
	startTime  time.Time
	romPath    string
}

// ApplicationError represents application-specific errors
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

// NewApplication loads the configuration file and creates an application.
// An unusable configuration file is reported and replaced by defaults.
func NewApplication(configPath string, opts Options) (*Application, error) {
	config := NewConfig()
	var configErr error
	if configPath != "" {
		if err := config.LoadFromFile(configPath); err != nil {
			configErr = err
			config = NewConfig()
		}
	}

	if opts.Logger == nil {
		opts.Logger = CreateLogger(config.Debug.LogLevel, opts.Debug)
	}
	if configErr != nil {
		opts.Logger.Warn("Could not load config, using defaults",
			log.String("path", configPath), log.Err(configErr))
	}

	return NewApplicationWithConfig(config, opts)
}

// NewApplicationWithConfig creates an application from an existing configuration
func NewApplicationWithConfig(config *Config, opts Options) (*Application, error) {
	logger := opts.Logger
	if logger == nil {
		logger = CreateLogger(config.Debug.LogLevel, opts.Debug)
	}

	app := &Application{
		config:    config,
		logger:    logger,
		headless:  opts.Headless,
		startTime: time.Now(),
	}

	if err := app.initializeComponents(opts); err != nil {
		return nil, &ApplicationError{
			Component: "initialization",
			Operation: "component setup",
			Err:       err,
		}
	}

	return app, nil
}

// initializeComponents initializes all application components
func (app *Application) initializeComponents(opts Options) error {
	keymap, err := app.config.Keymap()
	if err != nil {
		return err
	}
	app.keymap = keymap

	palette, err := app.config.Palette()
	if err != nil {
		return err
	}
	app.palette = palette

	if err := app.initializeGraphicsBackend(opts); err != nil {
		return fmt.Errorf("failed to initialize graphics backend: %w", err)
	}

	app.emulator = NewEmulator(app.config, app.logger)
	app.states = NewStateManager(app.config.Paths.SaveStates, app.logger)

	app.initialized = true
	return nil
}

// initializeGraphicsBackend creates the backend and its window, falling back
// to headless operation if no GUI is available.
func (app *Application) initializeGraphicsBackend(opts Options) error {
	backendType := graphics.BackendType(app.config.Video.Backend)
	if opts.Backend != "" {
		backendType = graphics.BackendType(opts.Backend)
	}
	if opts.Headless {
		backendType = graphics.BackendHeadless
	}

	width, height := app.config.GetWindowResolution()
	graphicsConfig := graphics.Config{
		WindowTitle:  "gochip8",
		WindowWidth:  width,
		WindowHeight: height,
		Fullscreen:   app.config.Window.Fullscreen,
		Resizable:    app.config.Window.Resizable,
		VSync:        app.config.Video.VSync,
		Filter:       app.config.Video.Filter,
		Palette:      app.palette,
		FrameRate:    app.config.Emulation.FrameRate,
		OutputDir:    opts.OutputDir,
		DumpEvery:    opts.DumpEvery,
		MaxFrames:    opts.MaxFrames,
		Headless:     backendType == graphics.BackendHeadless,
		Debug:        app.config.Debug.LogLevel == "debug",
		Logger:       app.logger,
	}

	err := app.createWindow(backendType, graphicsConfig)
	if err != nil && backendType == graphics.BackendEbitengine {
		app.logger.Warn("Ebitengine backend failed, falling back to headless mode", log.Err(err))
		app.headless = true
		graphicsConfig.Headless = true
		err = app.createWindow(graphics.BackendHeadless, graphicsConfig)
	}
	if err != nil {
		return err
	}

	app.logger.Debug("Graphics backend ready", log.String("backend", app.graphicsBackend.GetName()))
	return nil
}

// createWindow initializes a backend of the given type and opens its window
func (app *Application) createWindow(backendType graphics.BackendType, config graphics.Config) error {
	backend, err := graphics.CreateBackend(backendType)
	if err != nil {
		return err
	}
	if err := backend.Initialize(config); err != nil {
		return err
	}

	window, err := backend.CreateWindow(config.WindowTitle, config.WindowWidth, config.WindowHeight)
	if err != nil {
		_ = backend.Cleanup()
		return fmt.Errorf("failed to create window: %w", err)
	}

	app.graphicsBackend = backend
	app.window = window
	return nil
}

// LoadROM loads a ROM file into the emulator. A ROM that cannot be read is
// reported and the machine runs an empty program instead.
func (app *Application) LoadROM(romPath string) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	if err := app.emulator.LoadROMFile(romPath); err != nil {
		app.romPath = ""
		app.window.SetTitle("gochip8")
		return nil
	}

	app.romPath = romPath
	app.window.SetTitle(fmt.Sprintf("gochip8 - %s", filepath.Base(romPath)))
	return nil
}

// Run drives the window loop until the window closes, the user quits, the
// configured number of frames elapses or ctx is cancelled.
func (app *Application) Run(ctx context.Context) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	app.running = true
	app.startTime = time.Now()
	app.emulator.Start()

	app.logger.Info("Starting emulator",
		log.String("backend", app.graphicsBackend.GetName()),
		log.Int("cycles_per_frame", app.config.Emulation.CyclesPerFrame),
		log.Int("frame_rate", app.config.Emulation.FrameRate))

	err := app.window.Run(func() error {
		return app.update(ctx)
	})

	app.running = false
	app.emulator.Stop()
	app.logger.Debug("Emulator main loop ended", log.Int("frames", int(app.frameCount)))

	if err != nil {
		return &ApplicationError{Component: "window", Operation: "run", Err: err}
	}
	return nil
}

// update runs one iteration of the frame loop
func (app *Application) update(ctx context.Context) error {
	if ctx.Err() != nil {
		app.Stop()
	}

	app.processInput()

	if !app.running {
		return graphics.ErrQuit
	}

	if !app.paused {
		if err := app.emulator.Update(); err != nil {
			return err
		}
	}

	app.frameCount++
	return app.render()
}

// processInput routes window events to the keypad and the hotkeys
func (app *Application) processInput() {
	for _, event := range app.window.PollEvents() {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			app.Stop()

		case graphics.InputEventTypeKey:
			if key, ok := app.keymap.Lookup(event.Key.String()); ok {
				app.emulator.SetKey(key, event.Pressed)
				continue
			}
			if event.Pressed {
				app.handleSpecialInput(event.Key)
			}
		}
	}
}

// handleSpecialInput handles emulator hotkeys. Keys bound in the keymap
// never reach it.
func (app *Application) handleSpecialInput(key graphics.Key) bool {
	switch key {
	case graphics.KeyEscape:
		app.logger.Info("Shutting down emulator")
		app.Stop()

	case graphics.KeyP:
		app.TogglePause()
		if app.paused {
			app.logger.Info("Emulator paused")
		} else {
			app.logger.Info("Emulator resumed")
		}

	case graphics.KeyBackspace:
		if err := app.Reset(); err != nil {
			app.logger.Error("Reset failed", log.Err(err))
		}

	case graphics.KeyF5:
		if err := app.SaveState(0); err != nil {
			app.logger.Error("Failed to save state", log.Err(err))
		}

	case graphics.KeyF9:
		if err := app.LoadState(0); err != nil {
			app.logger.Error("Failed to load state", log.Err(err))
		}

	case graphics.KeyF10:
		if app.paused {
			if err := app.StepInstruction(); err != nil {
				app.logger.Warn("Step failed", log.Err(err))
			}
		}

	case graphics.KeyF12:
		if _, err := app.Screenshot(); err != nil {
			app.logger.Error("Screenshot failed", log.Err(err))
		}

	default:
		return false
	}
	return true
}

// render presents the current frame
func (app *Application) render() error {
	if err := app.window.RenderFrame(app.emulator.Frame()); err != nil {
		return fmt.Errorf("failed to render frame: %w", err)
	}
	return nil
}

// Screenshot writes the current frame as PNG into the screenshot directory
func (app *Application) Screenshot() (string, error) {
	filename := filepath.Join(app.config.Paths.Screenshots,
		fmt.Sprintf("gochip8_%s.png", time.Now().Format("20060102_150405.000")))
	if err := app.palette.SavePNG(app.emulator.Frame(), app.config.Window.Scale, filename); err != nil {
		return "", err
	}
	app.logger.Info("Screenshot saved", log.String("file", filename))
	return filename, nil
}

// Stop stops the application
func (app *Application) Stop() {
	app.running = false
}

// Pause pauses the emulator
func (app *Application) Pause() {
	app.paused = true
}

// Resume resumes the emulator
func (app *Application) Resume() {
	app.paused = false
}

// TogglePause toggles pause state
func (app *Application) TogglePause() {
	app.paused = !app.paused
}

// StepInstruction executes a single instruction while paused
func (app *Application) StepInstruction() error {
	return app.emulator.StepInstruction()
}

// SaveState saves the current machine state
func (app *Application) SaveState(slot int) error {
	return app.states.SaveState(app.emulator, slot)
}

// LoadState loads a saved machine state
func (app *Application) LoadState(slot int) error {
	return app.states.LoadState(app.emulator, slot)
}

// Reset restarts the current ROM
func (app *Application) Reset() error {
	app.logger.Info("Resetting machine")
	return app.emulator.Reset()
}

// IsRunning returns whether the application is running
func (app *Application) IsRunning() bool {
	return app.running
}

// IsPaused returns whether the emulator is paused
func (app *Application) IsPaused() bool {
	return app.paused
}

// IsHeadless returns whether the application runs without a GUI
func (app *Application) IsHeadless() bool {
	return app.headless || app.graphicsBackend.IsHeadless()
}

// GetFrameCount returns the total frame count
func (app *Application) GetFrameCount() uint64 {
	return app.frameCount
}

// GetUptime returns the application uptime
func (app *Application) GetUptime() time.Duration {
	return time.Since(app.startTime)
}

// GetROMPath returns the currently loaded ROM path
func (app *Application) GetROMPath() string {
	return app.romPath
}

// GetConfig returns the application configuration
func (app *Application) GetConfig() *Config {
	return app.config
}

// GetEmulator returns the emulator
func (app *Application) GetEmulator() *Emulator {
	return app.emulator
}

// GetWindow returns the active window
func (app *Application) GetWindow() graphics.Window {
	return app.window
}

// Cleanup releases all resources and shuts down the application
func (app *Application) Cleanup() error {
	var errs []error

	if app.states != nil {
		errs = append(errs, app.states.Cleanup())
	}
	if app.emulator != nil {
		errs = append(errs, app.emulator.Cleanup())
	}
	if app.window != nil {
		errs = append(errs, app.window.Cleanup())
	}
	if app.graphicsBackend != nil {
		errs = append(errs, app.graphicsBackend.Cleanup())
	}

	app.initialized = false
	return errors.Join(errs...)
}
