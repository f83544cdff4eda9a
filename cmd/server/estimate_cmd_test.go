package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	color.NoColor = true
	t.Setenv("PAINT_LOG_LEVEL", "error")
	t.Setenv("PAINT_CATALOG_PATH", "")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestEstimateCommand(t *testing.T) {
	data, err := json.Marshal(kitchenLayout(t))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "layout.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	out, err := runCLI(t, "estimate", "--layout", path, "--validate")
	require.NoError(t, err, out)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3, out)
	assert.Contains(t, lines[1], "paint-1")
	assert.Contains(t, lines[1], "Benjamin Moore Regal Select")
	assert.Contains(t, lines[1], "80.00")
	assert.Contains(t, lines[1], "0.5")
	assert.True(t, strings.HasPrefix(lines[2], "TOTAL"))
	assert.True(t, strings.HasSuffix(lines[2], "9.25"))
}

func TestEstimateCommandWithoutPaintedWalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("floors: []\n"), 0o600))

	out, err := runCLI(t, "estimate", "-l", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No painted walls.")
}

func TestEstimateCommandRejectsInvalidLayout(t *testing.T) {
	layout := kitchenLayout(t)
	layout.Floors[0].Rooms[0].Walls = layout.Floors[0].Rooms[0].Walls[:2]
	data, err := json.Marshal(layout)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "layout.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err = runCLI(t, "estimate", "--layout", path, "--validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid layout")
}
