package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/retroenv/retrogolib/log"

	"gochip8/internal/cpu"
	"gochip8/internal/display"
	"gochip8/internal/memory"
)

const saveStateVersion = "1.0"

// ErrNoSaveState is returned when a slot holds no save state
var ErrNoSaveState = errors.New("save state not found")

// StateManager manages save states
type StateManager struct {
	saveDirectory string
	maxSlots      int
	initialized   bool
	logger        *log.Logger
}

// SaveState is a complete snapshot of the machine
type SaveState struct {
	// Metadata
	Version     string    `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
	ROMName     string    `json:"rom_name"`
	ROMChecksum string    `json:"rom_checksum"`
	SlotNumber  int       `json:"slot_number"`
	Description string    `json:"description"`

	// Machine state
	CPUState cpu.State `json:"cpu_state"`
	Memory   []uint8   `json:"memory"`
	Display  []uint8   `json:"display"`

	FrameCount uint64 `json:"frame_count"`
}

// StateSlotInfo contains information about a save state slot
type StateSlotInfo struct {
	SlotNumber  int       `json:"slot_number"`
	Used        bool      `json:"used"`
	Timestamp   time.Time `json:"timestamp"`
	ROMName     string    `json:"rom_name"`
	Description string    `json:"description"`
	FilePath    string    `json:"file_path"`
	FileSize    int64     `json:"file_size"`
}

// NewStateManager creates a new state manager
func NewStateManager(saveDirectory string, logger *log.Logger) *StateManager {
	manager := &StateManager{
		saveDirectory: saveDirectory,
		maxSlots:      10,
		logger:        logger,
	}

	if err := manager.initialize(); err != nil {
		logger.Warn("State manager initialization failed", log.Err(err))
	}

	return manager
}

// initialize creates the save directory
func (sm *StateManager) initialize() error {
	if err := os.MkdirAll(sm.saveDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create save directory: %w", err)
	}

	sm.initialized = true
	return nil
}

// SaveState saves the current machine state to a slot
func (sm *StateManager) SaveState(emu *Emulator, slot int) error {
	if err := sm.checkSlot(slot); err != nil {
		return err
	}
	if emu == nil {
		return errors.New("emulator cannot be nil")
	}

	state := sm.capture(emu, slot, fmt.Sprintf("Slot %d %s", slot, time.Now().Format("2006-01-02 15:04:05")))
	filePath := sm.getSlotFilePath(slot, emu)
	if err := sm.saveToFile(state, filePath); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	sm.logger.Info("State saved", log.Int("slot", slot), log.String("path", filePath))
	return nil
}

// LoadState restores the machine from a slot
func (sm *StateManager) LoadState(emu *Emulator, slot int) error {
	if err := sm.checkSlot(slot); err != nil {
		return err
	}
	if emu == nil {
		return errors.New("emulator cannot be nil")
	}

	filePath := sm.getSlotFilePath(slot, emu)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("%w in slot %d", ErrNoSaveState, slot)
	}

	state, err := sm.loadFromFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	if err := sm.restoreState(emu, state); err != nil {
		return err
	}

	sm.logger.Info("State loaded", log.Int("slot", slot), log.String("path", filePath))
	return nil
}

// checkSlot validates the manager and slot number
func (sm *StateManager) checkSlot(slot int) error {
	if !sm.initialized {
		return errors.New("state manager not initialized")
	}
	if slot < 0 || slot >= sm.maxSlots {
		return fmt.Errorf("invalid save slot: %d (must be 0-%d)", slot, sm.maxSlots-1)
	}
	return nil
}

// capture snapshots the whole machine
func (sm *StateManager) capture(emu *Emulator, slot int, description string) *SaveState {
	cells := emu.display.Cells()
	return &SaveState{
		Version:     saveStateVersion,
		Timestamp:   time.Now(),
		ROMName:     emu.rom.Name(),
		ROMChecksum: emu.rom.Checksum(),
		SlotNumber:  slot,
		Description: description,
		CPUState:    emu.cpu.State(),
		Memory:      emu.memory.Dump(),
		Display:     cells[:],
		FrameCount:  emu.frameCount,
	}
}

// saveToFile saves a state to a file
func (sm *StateManager) saveToFile(state *SaveState, filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// loadFromFile loads a state from a file
func (sm *StateManager) loadFromFile(filePath string) (*SaveState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var state SaveState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	return &state, nil
}

// validateSaveState checks a loaded state against the running ROM
func (sm *StateManager) validateSaveState(state *SaveState, emu *Emulator) error {
	if state.Version == "" {
		return errors.New("missing version information")
	}
	if state.Version != saveStateVersion {
		return fmt.Errorf("unsupported save state version %s", state.Version)
	}
	if state.ROMChecksum != emu.rom.Checksum() {
		return errors.New("save state is for a different ROM")
	}
	if len(state.Memory) != memory.Size {
		return fmt.Errorf("memory image is %d bytes, expected %d", len(state.Memory), memory.Size)
	}
	if len(state.Display) != display.PixelCount {
		return fmt.Errorf("display image is %d cells, expected %d", len(state.Display), display.PixelCount)
	}
	return nil
}

// restoreState validates a state and then loads it into the machine. The
// machine is left untouched if validation fails.
func (sm *StateManager) restoreState(emu *Emulator, state *SaveState) error {
	if err := sm.validateSaveState(state, emu); err != nil {
		return fmt.Errorf("invalid save state: %w", err)
	}
	if err := emu.cpu.Restore(state.CPUState); err != nil {
		return fmt.Errorf("invalid save state: %w", err)
	}
	if err := emu.memory.Restore(state.Memory); err != nil {
		return fmt.Errorf("failed to restore memory: %w", err)
	}
	emu.display.SetCells(state.Display)
	emu.frameCount = state.FrameCount
	emu.halted = false
	emu.fault = nil
	return nil
}

// getSlotFilePath generates the file path for a save slot of the loaded ROM
func (sm *StateManager) getSlotFilePath(slot int, emu *Emulator) string {
	base := strings.TrimSuffix(emu.rom.Name(), filepath.Ext(emu.rom.Name()))
	if base == "" {
		base = emu.rom.Checksum()[:12]
	}
	fileName := fmt.Sprintf("%s_slot_%d.state", base, slot)
	return filepath.Join(sm.saveDirectory, fileName)
}

// GetSlotInfo returns information about all save slots of the loaded ROM
func (sm *StateManager) GetSlotInfo(emu *Emulator) []StateSlotInfo {
	slots := make([]StateSlotInfo, sm.maxSlots)

	for i := range sm.maxSlots {
		slotInfo := StateSlotInfo{SlotNumber: i}

		filePath := sm.getSlotFilePath(i, emu)
		if stat, err := os.Stat(filePath); err == nil {
			slotInfo.Used = true
			slotInfo.FilePath = filePath
			slotInfo.FileSize = stat.Size()
			slotInfo.Timestamp = stat.ModTime()

			if state, err := sm.loadFromFile(filePath); err == nil {
				slotInfo.ROMName = state.ROMName
				slotInfo.Description = state.Description
				slotInfo.Timestamp = state.Timestamp
			}
		}

		slots[i] = slotInfo
	}

	return slots
}

// DeleteState deletes a save state from a slot
func (sm *StateManager) DeleteState(emu *Emulator, slot int) error {
	if err := sm.checkSlot(slot); err != nil {
		return err
	}

	filePath := sm.getSlotFilePath(slot, emu)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("%w in slot %d", ErrNoSaveState, slot)
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete save state: %w", err)
	}

	return nil
}

// HasSaveState checks if a save state exists in a slot
func (sm *StateManager) HasSaveState(emu *Emulator, slot int) bool {
	if slot < 0 || slot >= sm.maxSlots {
		return false
	}

	_, err := os.Stat(sm.getSlotFilePath(slot, emu))
	return err == nil
}

// GetMaxSlots returns the maximum number of save slots
func (sm *StateManager) GetMaxSlots() int {
	return sm.maxSlots
}

// SetMaxSlots sets the maximum number of save slots
func (sm *StateManager) SetMaxSlots(slots int) {
	if slots > 0 {
		sm.maxSlots = slots
	}
}

// GetSaveDirectory returns the save directory path
func (sm *StateManager) GetSaveDirectory() string {
	return sm.saveDirectory
}

// ExportState writes a snapshot to an arbitrary file
func (sm *StateManager) ExportState(emu *Emulator, filePath string) error {
	state := sm.capture(emu, -1, fmt.Sprintf("Export %s", time.Now().Format("2006-01-02 15:04:05")))
	return sm.saveToFile(state, filePath)
}

// ImportState restores a snapshot from an arbitrary file
func (sm *StateManager) ImportState(emu *Emulator, filePath string) error {
	state, err := sm.loadFromFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to import state: %w", err)
	}

	return sm.restoreState(emu, state)
}

// Cleanup cleans up state manager resources
func (sm *StateManager) Cleanup() error {
	sm.initialized = false
	return nil
}
