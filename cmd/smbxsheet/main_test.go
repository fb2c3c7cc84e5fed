package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func writeSprite(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, A: 255})
	require.NoError(t, imaging.Save(img, path))
}

func TestRun_JoinThenSeparate(t *testing.T) {
	// --- Arrange ---
	in, joined, out := t.TempDir(), t.TempDir(), t.TempDir()
	writeSprite(t, filepath.Join(in, "block-1.png"), 32, 32)
	writeSprite(t, filepath.Join(in, "block-2.png"), 16, 32)
	var stdout, stderr bytes.Buffer

	// --- Act ---
	err := run(context.Background(), &stdout, &stderr, []string{
		"smbxsheet", "--log-level", "debug",
		"join", "-idir", in, "-odir", joined, "-on", "blocks", "-sp", "2",
	})

	// --- Assert ---
	require.NoError(t, err, stderr.String())
	require.FileExists(t, filepath.Join(joined, "blocks.png"))
	cfg, err := os.ReadFile(filepath.Join(joined, "blocks.cfg"))
	require.NoError(t, err)
	require.Equal(t, "block-1.png|32|32|0|0\nblock-2.png|16|32|34|0\n50|32|2|0|1", string(cfg))
	require.Contains(t, stderr.String(), "pasting")

	// --- Act ---
	err = run(context.Background(), &stdout, &stderr, []string{
		"smbxsheet", "separate", "--input-dir", joined, "--output-dir", out, "--resize", "200",
	})

	// --- Assert ---
	require.NoError(t, err, stderr.String())
	img, err := imaging.Open(filepath.Join(out, "block-2.png"))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 32, 64), img.Bounds())
}

func TestRun_ConfigFile(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeSprite(t, filepath.Join(in, "a.png"), 8, 8)
	writeSprite(t, filepath.Join(in, "b.png"), 8, 8)

	cfgPath := filepath.Join(t.TempDir(), "smbxsheet.yaml")
	data := "input_dirs: [" + in + "]\noutput_dir: " + out + "\nlayout: spritesheet\n" +
		"spritesheet_width: 1\nimage_width: 8\nimage_height: 8\nseparate_palette: true\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(data), 0o644))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), &stdout, &stderr, []string{"smbxsheet", "--config", cfgPath, "join", "--resize", "50"})
	require.NoError(t, err, stderr.String())

	img, err := imaging.Open(filepath.Join(out, "joinedImages.png"))
	require.NoError(t, err)
	// two 8x8 cells stacked, each holding a halved sprite
	require.Equal(t, image.Rect(0, 0, 8, 16), img.Bounds())
	require.FileExists(t, filepath.Join(out, "joinedImagesPalette.png"))
}

func TestRun_Errors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), &stdout, &stderr, []string{
		"smbxsheet", "join", "-idir", t.TempDir(), "-odir", filepath.Join(t.TempDir(), "missing"),
	})
	require.ErrorContains(t, err, "output directory not found")

	err = run(context.Background(), &stdout, &stderr, []string{
		"smbxsheet", "join", "-idir", t.TempDir(), "-odir", t.TempDir(), "--layout", "spritesheet",
	})
	require.ErrorContains(t, err, "--spritesheet-width")

	err = run(context.Background(), &stdout, &stderr, []string{"smbxsheet", "--log-level", "loud", "resize"})
	require.ErrorContains(t, err, "log level")

	err = run(context.Background(), &stdout, &stderr, []string{"smbxsheet", "join", "--no-such-flag"})
	require.Error(t, err)
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), &stdout, &stderr, []string{"smbxsheet", "--help"}))
	require.Contains(t, stdout.String(), "separate")
}

func TestRun_Recolor(t *testing.T) {
	// --- Arrange ---
	in, out := t.TempDir(), t.TempDir()
	writeSprite(t, filepath.Join(in, "npc-1.png"), 4, 4)
	var stdout, stderr bytes.Buffer

	// --- Act ---
	err := run(context.Background(), &stdout, &stderr, []string{
		"smbxsheet", "recolor", "-idir", in, "-odir", out,
		"--replace", "#0a0000=#00ff00", "--replace", "#ffffff=#000000",
	})

	// --- Assert ---
	require.NoError(t, err, stderr.String())
	img, err := imaging.Open(filepath.Join(out, "npc-1.png"))
	require.NoError(t, err)
	nrgba := imaging.Clone(img)
	require.Equal(t, color.NRGBA{G: 255, A: 255}, nrgba.NRGBAAt(0, 0))
	require.Equal(t, color.NRGBA{A: 255}, nrgba.NRGBAAt(3, 3))
}
