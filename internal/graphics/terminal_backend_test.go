package graphics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// newTestTerminal returns a terminal window writing into a buffer, with
// input fed directly through feed instead of a reader goroutine.
func newTestTerminal(t *testing.T) (*TerminalWindow, *bytes.Buffer) {
	t.Helper()
	window := newTestWindow(t, BackendTerminal, Config{})
	terminal := window.(*TerminalWindow)

	out := &bytes.Buffer{}
	terminal.SetIO(strings.NewReader(""), out)
	terminal.startOnce.Do(func() {})
	return terminal, out
}

func feed(w *TerminalWindow, data string) {
	for i := 0; i < len(data); i++ {
		w.bytes <- data[i]
	}
}

func TestTerminalWindow_RenderFrame(t *testing.T) {
	terminal, out := newTestTerminal(t)

	assert.NoError(t, terminal.RenderFrame(newTestFrame(0)))

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "\033[H"))
	assert.Equal(t, 16, strings.Count(text, "\r\n"))
	assert.Equal(t, 64*16, strings.Count(text, "▀"))
	// first cell: lit top pixel over an unlit bottom pixel
	assert.True(t, strings.Contains(text, "\033[38;2;255;255;255m\033[48;2;0;0;0m▀"))
}

func TestTerminalWindow_KeyPressAndRelease(t *testing.T) {
	terminal, _ := newTestTerminal(t)
	terminal.holdPolls = 2

	feed(terminal, "q")
	events := terminal.PollEvents()
	assert.Equal(t, 1, len(events))
	assert.Equal(t, KeyQ, events[0].Key)
	assert.True(t, events[0].Pressed)

	// key repeat keeps it held without a second press event
	feed(terminal, "q")
	assert.Equal(t, 0, len(terminal.PollEvents()))

	assert.Equal(t, 0, len(terminal.PollEvents()))
	events = terminal.PollEvents()
	assert.Equal(t, 1, len(events))
	assert.Equal(t, KeyQ, events[0].Key)
	assert.False(t, events[0].Pressed)
}

func TestTerminalWindow_EscapeSequencesAreNotEscape(t *testing.T) {
	terminal, _ := newTestTerminal(t)

	feed(terminal, "\033[A")
	assert.Equal(t, 0, len(terminal.PollEvents()))

	feed(terminal, "\033")
	events := terminal.PollEvents()
	assert.Equal(t, 1, len(events))
	assert.Equal(t, KeyEscape, events[0].Key)
}

func TestTerminalWindow_RunStopsOnQuit(t *testing.T) {
	terminal, out := newTestTerminal(t)
	terminal.frameRate = 1000

	calls := 0
	err := terminal.Run(func() error {
		calls++
		if calls == 2 {
			return ErrQuit
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, strings.HasSuffix(out.String(), "\033[?25h"))
}
