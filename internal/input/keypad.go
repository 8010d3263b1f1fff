// Package input implements the 16-key hexadecimal keypad of the CHIP-8.
package input

import (
	"github.com/retroenv/retrogolib/log"
)

// KeyCount is the number of keys on the keypad (0x0-0xF)
const KeyCount = 16

// Keypad holds the pressed state of every key as a bit mask
type Keypad struct {
	keys uint16

	logger       *log.Logger
	debugEnabled bool
}

// New creates a keypad with no keys pressed
func New() *Keypad {
	return &Keypad{}
}

// SetKey sets the state of a single key. Keys outside 0x0-0xF are ignored.
func (k *Keypad) SetKey(key uint8, pressed bool) {
	if key >= KeyCount {
		return
	}
	old := k.keys

	if pressed {
		k.keys |= 1 << key
	} else {
		k.keys &^= 1 << key
	}

	if k.debugEnabled && k.logger != nil && old != k.keys {
		k.logger.Debug("Key state changed",
			log.Hex("key", key),
			log.String("pressed", boolString(pressed)),
			log.Hex("keys", k.keys))
	}
}

// SetKeys replaces the state of all keys at once
func (k *Keypad) SetKeys(keys [KeyCount]bool) {
	var mask uint16
	for i, pressed := range keys {
		if pressed {
			mask |= 1 << i
		}
	}
	k.keys = mask
}

// IsPressed returns true if key is held. Keys outside 0x0-0xF are never pressed.
func (k *Keypad) IsPressed(key uint8) bool {
	if key >= KeyCount {
		return false
	}
	return k.keys&(1<<key) != 0
}

// State returns the pressed state of all keys
func (k *Keypad) State() [KeyCount]bool {
	var state [KeyCount]bool
	for i := range state {
		state[i] = k.keys&(1<<i) != 0
	}
	return state
}

// Reset releases all keys
func (k *Keypad) Reset() {
	k.keys = 0
}

// EnableDebug enables debug logging of key changes
func (k *Keypad) EnableDebug(logger *log.Logger, enable bool) {
	k.logger = logger
	k.debugEnabled = enable
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
