package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smbxsheet.yaml")
	data := `
input_dirs: [npc, block]
space: 2
resize: 200
layout: spritesheet
spritesheet_width: 4
image_width: 32
image_height: 32
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"npc", "block"}, cfg.InputDirs)
	assert.Equal(t, 2, cfg.Space)
	assert.Equal(t, 200, cfg.Resize)
	assert.Equal(t, "spritesheet", cfg.Layout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "nearest", cfg.Filter)
	require.NoError(t, cfg.CheckGrid())
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("space: [1"), 0o644))

	_, err := Load(path)
	require.ErrorContains(t, err, "bad.yaml")
}

func TestApplyActionDefaults(t *testing.T) {
	cases := []struct {
		action  Action
		in, out string
		name    string
	}{
		{ActionJoin, "./edit", ".", "joinedImages"},
		{ActionSeparate, ".", "./output", "image"},
		{ActionResize, "./edit", "./output", "noname"},
		{ActionPalette, "./edit", "./output", "noname"},
		{ActionRecolor, "./edit", "./output", "noname"},
	}
	for _, c := range cases {
		t.Run(string(c.action), func(t *testing.T) {
			cfg := Default()
			cfg.ApplyActionDefaults(c.action)
			assert.Equal(t, []string{c.in}, cfg.InputDirs)
			assert.Equal(t, c.out, cfg.OutputDir)
			assert.Equal(t, c.name, cfg.OutputName)
		})
	}

	cfg := Default()
	cfg.OutputDir = "elsewhere"
	cfg.ApplyActionDefaults(ActionJoin)
	assert.Equal(t, "elsewhere", cfg.OutputDir)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	bg, err := cfg.BackgroundColor()
	require.NoError(t, err)
	require.Equal(t, color.NRGBA{R: 255, G: 120, B: 255, A: 255}, bg)

	bad := Default()
	bad.Space = -1
	require.Error(t, bad.Validate())

	bad = Default()
	bad.Resize = 0
	require.Error(t, bad.Validate())

	bad = Default()
	bad.Background = "#zz"
	require.Error(t, bad.Validate())

	bad = Default()
	bad.PaletteFormat = "gpl"
	require.Error(t, bad.Validate())
}

func TestCheckGrid(t *testing.T) {
	cfg := Default()
	require.ErrorContains(t, cfg.CheckGrid(), "--spritesheet-width")

	cfg.Columns, cfg.ImageWidth = 2, 16
	require.ErrorContains(t, cfg.CheckGrid(), "--image-height")

	cfg.ImageHeight = 16
	require.NoError(t, cfg.CheckGrid())

	cfg.Rows = -1
	require.ErrorContains(t, cfg.CheckGrid(), "--spritesheet-height")
}

func TestReplacements(t *testing.T) {
	cfg := Default()
	cfg.Replace = []string{"#ff0000=#0000ff", "000=#ffffff00"}

	got, err := cfg.Replacements()
	require.NoError(t, err)
	require.Equal(t, []Replacement{
		{From: color.NRGBA{R: 255, A: 255}, To: color.NRGBA{B: 255, A: 255}},
		{From: color.NRGBA{A: 255}, To: color.NRGBA{R: 255, G: 255, B: 255}},
	}, got)

	for _, bad := range []string{"#ff0000", "#ff0000=blue", "nope=#000"} {
		cfg.Replace = []string{bad}
		_, err := cfg.Replacements()
		require.ErrorContains(t, err, "--replace", bad)
		require.Error(t, cfg.Validate(), bad)
	}
}
