package main

import (
	"context"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Noofbiz/srdata/datasets"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// writeHR writes n HR images of size x size under root.
func writeHR(t *testing.T, root string, n, size int) {
	t.Helper()
	rel, err := datasets.TrackDir(datasets.TrackHR, datasets.SplitTrain, 1)
	require.NoError(t, err)
	dir := filepath.Join(root, "DIV2K", rel)
	require.NoError(t, os.MkdirAll(dir, 0755))
	for i := range n {
		img := imaging.New(size, size, color.NRGBA{R: uint8(40 * i), G: 90, A: 255})
		require.NoError(t, imaging.Save(img, filepath.Join(dir, string(rune('a'+i))+".png")))
	}
}

func TestConfigMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mode": "random", "scale_max": 3, "bins": 7}`), 0644))

	cfg := defaultConfig()
	require.NoError(t, loadConfigFile(path, &cfg))
	assert.Equal(t, modeRandom, cfg.Mode)
	assert.Equal(t, 3.0, cfg.ScaleMax)
	assert.Equal(t, 1.0, cfg.ScaleMin)

	fromFlags := defaultConfig()
	fromFlags.Bins = 12
	fromFlags.Out = "ignored"
	applyFlags(&cfg, fromFlags, map[string]bool{"bins": true})
	assert.Equal(t, 12, cfg.Bins)
	assert.Equal(t, "output", cfg.Out)

	require.Error(t, loadConfigFile(filepath.Join(t.TempDir(), "missing.json"), &cfg))
}

func TestConfigValidate(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.validate())

	cfg.Mode = "train"
	assert.Error(t, cfg.validate())

	cfg = defaultConfig()
	cfg.Mode = modeRandom
	cfg.Draws = 0
	assert.Error(t, cfg.validate())
}

func TestParseScalesAndTracks(t *testing.T) {
	scales, err := parseScales("2, 4,")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, scales)

	scales, err = parseScales("")
	require.NoError(t, err)
	assert.NotNil(t, scales)
	assert.Empty(t, scales)

	_, err = parseScales("x2")
	assert.Error(t, err)

	assert.Equal(t, []datasets.Track{datasets.TrackBicubic, datasets.TrackUnknown}, parseTracks("bicubic,unknown"))
	assert.Nil(t, parseTracks(""))
}

func TestRunFixed(t *testing.T) {
	root := t.TempDir()
	writeHR(t, root, 3, 32)
	out := filepath.Join(t.TempDir(), "pairs")

	cfg := defaultConfig()
	cfg.Root = root
	cfg.Mode = modeFixed
	cfg.Scale = 4
	cfg.N = 2
	cfg.Out = out
	require.NoError(t, run(context.Background(), cfg, quietLogger()))

	for _, name := range []string{"0_hr.png", "0_lr.png", "1_hr.png", "1_lr.png"} {
		assert.FileExists(t, filepath.Join(out, name))
	}
	assert.NoFileExists(t, filepath.Join(out, "2_hr.png"))

	lr, err := imaging.Open(filepath.Join(out, "1_lr.png"))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(8, 8), lr.Bounds().Size())
}

func TestRunRandom(t *testing.T) {
	root := t.TempDir()
	writeHR(t, root, 2, 64)
	out := t.TempDir()

	cfg := defaultConfig()
	cfg.Root = root
	cfg.Mode = modeRandom
	cfg.ScaleMin = 1
	cfg.ScaleMax = 2
	cfg.Crop = 16
	cfg.Draws = 500
	cfg.Bins = 5
	cfg.Out = out
	require.NoError(t, run(context.Background(), cfg, quietLogger()))

	lr, err := imaging.Open(filepath.Join(out, "0_lr.png"))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(16, 16), lr.Bounds().Size())
	assert.FileExists(t, filepath.Join(out, "scale_hist.png"))
}

func TestRunIndex(t *testing.T) {
	root := t.TempDir()
	writeHR(t, root, 2, 16)

	cfg := defaultConfig()
	cfg.Root = root
	cfg.Scales = ""
	require.NoError(t, run(context.Background(), cfg, quietLogger()))

	// The bicubic X2 track is missing.
	cfg.Scales = "2"
	assert.Error(t, run(context.Background(), cfg, quietLogger()))
}

func TestWritePairsRejectsSingleImages(t *testing.T) {
	root := t.TempDir()
	writeHR(t, root, 1, 8)
	hr, err := datasets.NewDIV2K(context.Background(), root, datasets.Config{Scales: []int{}})
	require.NoError(t, err)

	_, err = writePairs(hr, 1, t.TempDir(), false, quietLogger())
	assert.Error(t, err)
}
