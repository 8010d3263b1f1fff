package input

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDefaultKeymap_ReferenceLayout(t *testing.T) {
	keymap := DefaultKeymap()

	tests := []struct {
		host string
		key  uint8
	}{
		{"1", 0x1}, {"2", 0x2}, {"3", 0x3}, {"4", 0xC},
		{"Q", 0x4}, {"W", 0x5}, {"E", 0x6}, {"R", 0xD},
		{"A", 0x7}, {"S", 0x8}, {"D", 0x9}, {"F", 0xE},
		{"Z", 0xA}, {"X", 0x0}, {"C", 0xB}, {"V", 0xF},
	}

	assert.Equal(t, len(tests), len(keymap))
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			key, ok := keymap.Lookup(tt.host)
			assert.True(t, ok)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestLookup_IsCaseInsensitive(t *testing.T) {
	key, ok := DefaultKeymap().Lookup("q")
	assert.True(t, ok)
	assert.Equal(t, uint8(0x4), key)

	_, ok = DefaultKeymap().Lookup("P")
	assert.False(t, ok)
}

func TestParseKeymap(t *testing.T) {
	tests := []struct {
		name    string
		config  map[string]string
		wantErr bool
		host    string
		key     uint8
	}{
		{"hex digit", map[string]string{"q": "c"}, false, "Q", 0xC},
		{"0x prefix", map[string]string{"Space": "0xF"}, false, "SPACE", 0xF},
		{"out of range", map[string]string{"Q": "10"}, true, "", 0},
		{"not hex", map[string]string{"Q": "G"}, true, "", 0},
		{"empty host", map[string]string{" ": "1"}, true, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keymap, err := ParseKeymap(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			key, ok := keymap.Lookup(tt.host)
			assert.True(t, ok)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestDefaultKeymapConfig_RoundTrips(t *testing.T) {
	keymap, err := ParseKeymap(DefaultKeymapConfig())
	assert.NoError(t, err)

	for host, key := range DefaultKeymap() {
		got, ok := keymap.Lookup(host)
		assert.True(t, ok)
		assert.Equal(t, key, got)
	}
	assert.Equal(t, 16, len(keymap.HostKeys()))
	assert.Equal(t, "1", keymap.HostKeys()[0])
}
