package graphics

import "strings"

// Key represents a host keyboard key
type Key int

const (
	KeyUnknown Key = iota
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeyEscape
	KeyEnter
	KeySpace
	KeyBackspace
	KeyTab
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	keyCount
)

var keyNames = [keyCount]string{
	KeyUnknown: "UNKNOWN",
	Key0:       "0", Key1: "1", Key2: "2", Key3: "3", Key4: "4",
	Key5: "5", Key6: "6", Key7: "7", Key8: "8", Key9: "9",
	KeyA: "A", KeyB: "B", KeyC: "C", KeyD: "D", KeyE: "E", KeyF: "F",
	KeyG: "G", KeyH: "H", KeyI: "I", KeyJ: "J", KeyK: "K", KeyL: "L",
	KeyM: "M", KeyN: "N", KeyO: "O", KeyP: "P", KeyQ: "Q", KeyR: "R",
	KeyS: "S", KeyT: "T", KeyU: "U", KeyV: "V", KeyW: "W", KeyX: "X",
	KeyY: "Y", KeyZ: "Z",
	KeyEscape:    "ESCAPE",
	KeyEnter:     "ENTER",
	KeySpace:     "SPACE",
	KeyBackspace: "BACKSPACE",
	KeyTab:       "TAB",
	KeyUp:        "UP",
	KeyDown:      "DOWN",
	KeyLeft:      "LEFT",
	KeyRight:     "RIGHT",
	KeyF1:        "F1", KeyF2: "F2", KeyF3: "F3", KeyF4: "F4",
	KeyF5: "F5", KeyF6: "F6", KeyF7: "F7", KeyF8: "F8",
	KeyF9: "F9", KeyF10: "F10", KeyF11: "F11", KeyF12: "F12",
}

// String returns the key name used in keymap configuration
func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return keyNames[KeyUnknown]
	}
	return keyNames[k]
}

// KeyFromName looks a key up by its configuration name, case-insensitive
func KeyFromName(name string) Key {
	name = strings.ToUpper(strings.TrimSpace(name))
	for k := KeyUnknown + 1; k < keyCount; k++ {
		if keyNames[k] == name {
			return k
		}
	}
	return KeyUnknown
}

// keyFromByte maps a byte read from a raw terminal to a key
func keyFromByte(b byte) Key {
	switch {
	case b >= '0' && b <= '9':
		return Key0 + Key(b-'0')
	case b >= 'a' && b <= 'z':
		return KeyA + Key(b-'a')
	case b >= 'A' && b <= 'Z':
		return KeyA + Key(b-'A')
	}
	switch b {
	case 0x1B:
		return KeyEscape
	case '\r', '\n':
		return KeyEnter
	case ' ':
		return KeySpace
	case 0x7F, 0x08:
		return KeyBackspace
	case '\t':
		return KeyTab
	}
	return KeyUnknown
}
