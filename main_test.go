package main

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"img2svg/config"
	vtypes "img2svg/type"
)

func TestWriteSplitFiles(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "out", "video")
	lines := []string{"aaaa", "bbbb", "cccc", strings.Repeat("x", 20), "dd"}

	files, err := writeSplitFiles(lines, prefix, 10)
	require.NoError(t, err)
	require.Equal(t, []string{prefix + "_0.bas", prefix + "_1.bas", prefix + "_2.bas", prefix + "_3.bas"}, files)

	want := []string{"aaaa\nbbbb\n", "cccc\n", strings.Repeat("x", 20) + "\n", "dd\n"}
	for i, f := range files {
		data, err := os.ReadFile(f)
		require.NoError(t, err)
		require.Equal(t, want[i], string(data))
	}

	files, err = writeSplitFiles(nil, prefix+"-empty", 10)
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestOverrideSettings(t *testing.T) {
	base := vtypes.DefaultSettings()
	require.Equal(t, base, overrideSettings(base, -1, -1, -1))
	require.Equal(t, vtypes.Settings{Complexity: 0, ColorSimplification: 0.5, PathSmoothing: 1},
		overrideSettings(base, 0, -1, 1))
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 5, 5))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 255, 255
	}
	in := filepath.Join(dir, "in.png")
	f, err := os.Create(in)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	out := filepath.Join(dir, "out.svg")
	cfg := config.Default()
	require.NoError(t, convertFile(context.Background(), cfg, in, out, "", cfg.Defaults))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(data), `viewBox="0 0 5 5"`)
	require.Contains(t, string(data), `fill="#ff0000"`)

	require.Error(t, convertFile(context.Background(), cfg, filepath.Join(dir, "missing.png"), out, "", cfg.Defaults))
	require.Error(t, convertFile(context.Background(), cfg, in, out, "bogus", cfg.Defaults))
}
