package input

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Keymap maps host key names (upper case, e.g. "Q", "1") to keypad keys
type Keymap map[string]uint8

// DefaultKeymap returns the reference layout:
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
func DefaultKeymap() Keymap {
	return Keymap{
		"1": 0x1, "2": 0x2, "3": 0x3, "4": 0xC,
		"Q": 0x4, "W": 0x5, "E": 0x6, "R": 0xD,
		"A": 0x7, "S": 0x8, "D": 0x9, "F": 0xE,
		"Z": 0xA, "X": 0x0, "C": 0xB, "V": 0xF,
	}
}

// DefaultKeymapConfig returns the default layout in its configuration form
func DefaultKeymapConfig() map[string]string {
	out := make(map[string]string, KeyCount)
	for host, key := range DefaultKeymap() {
		out[host] = fmt.Sprintf("%X", key)
	}
	return out
}

// ParseKeymap converts a configuration keymap of host key name to hex digit
func ParseKeymap(config map[string]string) (Keymap, error) {
	keymap := make(Keymap, len(config))
	for host, digit := range config {
		name := strings.ToUpper(strings.TrimSpace(host))
		if name == "" {
			return nil, fmt.Errorf("empty host key name for keypad key %q", digit)
		}

		value, err := strconv.ParseUint(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(digit)), "0X"), 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid keypad key %q for host key %s: %w", digit, name, err)
		}
		if value >= KeyCount {
			return nil, fmt.Errorf("keypad key 0x%X for host key %s is out of range 0x0-0xF", value, name)
		}
		keymap[name] = uint8(value)
	}
	return keymap, nil
}

// Lookup returns the keypad key bound to a host key name
func (m Keymap) Lookup(host string) (uint8, bool) {
	key, ok := m[strings.ToUpper(host)]
	return key, ok
}

// HostKeys returns the bound host key names in sorted order
func (m Keymap) HostKeys() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
