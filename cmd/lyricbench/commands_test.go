package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		orPrevious = false
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestQueryCommand(t *testing.T) {
	lrc := filepath.Join(t.TempDir(), "song.lrc")
	require.NoError(t, os.WriteFile(lrc, []byte("[00:01.00]one\n[00:02.00]two\n"), 0o644))

	out := execute(t, "query", lrc, "500", "1500", "2000")
	assert.Contains(t, out, "500\t-\n")
	assert.Contains(t, out, "1500\t")
	assert.Contains(t, out, "one")
	// 2000 is both the end of "one" and the start of "two".
	assert.Contains(t, out, "2000\t")
	assert.Contains(t, out, "two")
}

func TestScenariosCommand(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "missing.toml")
	t.Cleanup(func() { configPath = "" })

	out := execute(t, "scenarios")
	assert.Contains(t, out, "continuous")
	assert.Contains(t, out, "Continuous playback")
	assert.Contains(t, out, "0.35")
}

func TestFormatMillis(t *testing.T) {
	assert.Equal(t, "01:02.345", formatMillis(62_345))
	assert.Equal(t, "00:00.000", formatMillis(0))
}
