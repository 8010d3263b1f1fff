package input

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestNew_ShouldCreateKeypadWithNoKeysPressed(t *testing.T) {
	keypad := New()

	assert.NotNil(t, keypad)
	for key := uint8(0); key < KeyCount; key++ {
		assert.False(t, keypad.IsPressed(key))
	}
}

func TestSetKey_ShouldUpdateOnlyThatKey(t *testing.T) {
	keypad := New()

	for key := uint8(0); key < KeyCount; key++ {
		keypad.SetKey(key, true)
		assert.True(t, keypad.IsPressed(key))
		assert.Equal(t, uint16(1)<<key, keypad.keys)

		keypad.SetKey(key, false)
		assert.False(t, keypad.IsPressed(key))
	}
}

func TestSetKey_OutOfRangeIsIgnored(t *testing.T) {
	keypad := New()
	keypad.SetKey(0x10, true)

	assert.Equal(t, uint16(0), keypad.keys)
	assert.False(t, keypad.IsPressed(0x10))
	assert.False(t, keypad.IsPressed(0xFF))
}

func TestSetKeys_ReplacesState(t *testing.T) {
	keypad := New()
	keypad.SetKey(0x3, true)

	var keys [KeyCount]bool
	keys[0x0] = true
	keys[0xF] = true
	keypad.SetKeys(keys)

	assert.True(t, keypad.IsPressed(0x0))
	assert.True(t, keypad.IsPressed(0xF))
	assert.False(t, keypad.IsPressed(0x3))
	assert.Equal(t, keys, keypad.State())
}

func TestReset_ReleasesAllKeys(t *testing.T) {
	keypad := New()
	keypad.SetKey(0x1, true)
	keypad.SetKey(0xA, true)

	keypad.Reset()
	assert.Equal(t, [KeyCount]bool{}, keypad.State())
}

func TestEnableDebug_LogsChanges(t *testing.T) {
	keypad := New()
	keypad.EnableDebug(log.NewTestLogger(t), true)

	keypad.SetKey(0x5, true)
	keypad.SetKey(0x5, true)
	assert.True(t, keypad.IsPressed(0x5))
}
