package datasets

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

// newImage returns a width x height image filled with c.
func newImage(width, height int, c color.NRGBA) *image.NRGBA {
	return imaging.New(width, height, c)
}

// writePNG writes a width x height PNG filled with c to path, creating
// parent directories as needed.
func writePNG(t *testing.T, path string, width, height int, c color.NRGBA) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := imaging.Save(newImage(width, height, c), path); err != nil {
		t.Fatalf("failed to write png %s: %v", path, err)
	}
}

// writeTrack writes one PNG per name into the directory of (track, split,
// scale) under root/DIV2K. The images are 16/scale pixels wide.
func writeTrack(t *testing.T, root string, track Track, split Split, scale int, names ...string) string {
	t.Helper()
	rel, err := TrackDir(track, split, scale)
	if err != nil {
		t.Fatalf("TrackDir(%s, %s, %d): %v", track, split, scale, err)
	}
	dir := filepath.Join(root, div2kSubdir, rel)
	size := max(16/scale, 1)
	for i, name := range names {
		writePNG(t, filepath.Join(dir, name), size, size, color.NRGBA{R: uint8(i * 40), G: uint8(scale), A: 255})
	}
	return dir
}

// memDataset is an in-memory Dataset holding one image per item.
type memDataset struct {
	images []image.Image
}

func (m *memDataset) Len() int { return len(m.images) }

func (m *memDataset) Item(index int) ([]image.Image, error) {
	if err := checkIndex(index, len(m.images)); err != nil {
		return nil, err
	}
	return []image.Image{m.images[index]}, nil
}

func newMemDataset(n, width, height int) *memDataset {
	m := &memDataset{}
	for i := range n {
		m.images = append(m.images, newImage(width, height, color.NRGBA{R: uint8(i), A: 255}))
	}
	return m
}
