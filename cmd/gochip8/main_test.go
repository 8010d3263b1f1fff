package main

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestParseFlags(t *testing.T) {
	opts, _, err := parseFlags([]string{"-nogui", "-frames", "30", "-dump", "10", "game.ch8"}, io.Discard)
	assert.NoError(t, err)

	assert.True(t, opts.nogui)
	assert.Equal(t, 30, opts.frames)
	assert.Equal(t, 10, opts.dumpEvery)
	assert.Equal(t, "game.ch8", opts.romFile)
	assert.Equal(t, "frame_output", opts.outputDir)
}

func TestParseFlags_Errors(t *testing.T) {
	_, _, err := parseFlags([]string{"-h"}, io.Discard)
	assert.True(t, errors.Is(err, flag.ErrHelp))

	_, _, err = parseFlags([]string{"-frames", "many"}, io.Discard)
	assert.Error(t, err)
}

func TestPrintDisassembly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.ch8")
	assert.NoError(t, os.WriteFile(path, []byte{0x00, 0xE0, 0x12, 0x00}, 0644))

	var out bytes.Buffer
	assert.NoError(t, printDisassembly(&out, path))

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "; prog.ch8, 4 bytes"))
	assert.True(t, strings.Contains(text, "0x200: 00E0  cls"))
	assert.True(t, strings.Contains(text, "0x202: 1200  jp $200"))

	assert.Error(t, printDisassembly(&out, ""))
	assert.Error(t, printDisassembly(&out, filepath.Join(t.TempDir(), "missing.ch8")))
}

func TestRun_HeadlessRequiresROM(t *testing.T) {
	err := run(t.Context(), options{nogui: true})
	assert.ErrorContains(t, err, "ROM file required")
}
