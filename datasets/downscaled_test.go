package datasets

import (
	"image"
	"image/color"
	"math"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownscaled(t *testing.T) {
	src := newMemDataset(3, 32, 24)
	ds, err := NewDownscaled(src, 2, BilinearDownscaler{})
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 2.0, ds.Scale())

	pair, err := ds.Item(1)
	require.NoError(t, err)
	require.Len(t, pair, 2)
	assert.Same(t, src.images[1], pair[0])
	assert.Equal(t, image.Pt(16, 12), pair[1].Bounds().Size())

	_, err = ds.Item(3)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestDownscaled_CropAndTransform(t *testing.T) {
	src := newMemDataset(1, 32, 32)
	calls := 0
	ds, err := NewDownscaled(src, 3, BoxDownscaler{}, WithCropSize(8), WithTransform(
		func(images []image.Image) ([]image.Image, error) {
			calls++
			return images[1:], nil
		}))
	require.NoError(t, err)

	out, err := ds.Item(0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, image.Pt(8, 8), out[0].Bounds().Size())
	assert.Equal(t, 1, calls)
}

func TestDownscaled_Errors(t *testing.T) {
	src := newMemDataset(1, 8, 8)
	for _, scale := range []float64{0.5, 0, -1, math.NaN(), math.Inf(1)} {
		_, err := NewDownscaled(src, scale, BoxDownscaler{})
		assert.True(t, errors.Is(err, ErrConfig), "scale %v: got %v", scale, err)
	}
	_, err := NewDownscaled(nil, 2, BoxDownscaler{})
	assert.True(t, errors.Is(err, ErrConfig))
	_, err = NewDownscaled(src, 2, BoxDownscaler{}, WithCropSize(-1))
	assert.True(t, errors.Is(err, ErrConfig))

	// Wrapping a multi-image dataset fails at access time.
	multi, err := NewFolder("", [][]string{{"a", "b"}}, Config{
		Loader: func(string) (image.Image, error) { return newImage(4, 4, color.NRGBA{A: 255}), nil },
	})
	require.NoError(t, err)
	ds, err := NewDownscaled(multi, 2, BoxDownscaler{})
	require.NoError(t, err)
	_, err = ds.Item(0)
	assert.True(t, errors.Is(err, ErrInputShape), "got %v", err)
}

func TestRandomDownscaled_ScaleRange(t *testing.T) {
	src := newMemDataset(1, 8, 8)
	for _, r := range [][2]float64{{2, 1}, {2, 2}, {0, 2}, {-1, 2}, {1, math.Inf(1)}} {
		_, err := NewRandomDownscaled(src, r[0], r[1], BoxDownscaler{})
		require.Error(t, err, "range %v", r)
		assert.True(t, errors.Is(err, ErrScaleRange), "range %v: got %v", r, err)
		assert.True(t, errors.Is(err, ErrConfig), "range %v: got %v", r, err)
	}

	ds, err := NewRandomDownscaled(src, 1, 4, BoxDownscaler{})
	require.NoError(t, err)
	minScale, maxScale := ds.ScaleRange()
	assert.Equal(t, 1.0, minScale)
	assert.Equal(t, 4.0, maxScale)
}

func TestRandomDownscaled_LogUniform(t *testing.T) {
	ds, err := NewRandomDownscaled(newMemDataset(1, 8, 8), 1, 4, BoxDownscaler{})
	require.NoError(t, err)

	const draws = 1000
	var sumLog float64
	var below2 int
	for range draws {
		s := ds.SampleScale()
		require.GreaterOrEqual(t, s, 1.0)
		require.LessOrEqual(t, s, 4.0)
		sumLog += math.Log(s)
		if s < 2 {
			below2++
		}
	}
	// log(scale) ~ U(0, log 4): mean log(2), standard error ~0.013.
	assert.InDelta(t, math.Log(2), sumLog/draws, 0.06)
	// [1, 2) and [2, 4] are equally likely.
	assert.InDelta(t, 0.5, float64(below2)/draws, 0.08)
}

func TestRandomDownscaled_Item(t *testing.T) {
	ds, err := NewRandomDownscaled(newMemDataset(2, 200, 200), 1, 4, LanczosDownscaler{})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())

	scales := make(map[float64]bool)
	for range 20 {
		pair, scale, err := ds.ItemWithScale(1)
		require.NoError(t, err)
		require.Len(t, pair, 2)
		edge := int(math.RoundToEven(scale * DefaultRandomCropSize))
		assert.Equal(t, image.Pt(edge, edge), pair[0].Bounds().Size())
		assert.Equal(t, image.Pt(DefaultRandomCropSize, DefaultRandomCropSize), pair[1].Bounds().Size())
		scales[scale] = true
	}
	// A fresh scale is drawn on every access.
	assert.Greater(t, len(scales), 1)

	pair, err := ds.Item(0)
	require.NoError(t, err)
	assert.Len(t, pair, 2)
}

func TestRandomDownscaled_CropTooLarge(t *testing.T) {
	// 3*48 = 144 does not fit in 100x100 for any draw.
	ds, err := NewRandomDownscaled(newMemDataset(1, 100, 100), 3, 4, BoxDownscaler{})
	require.NoError(t, err)
	_, err = ds.Item(0)
	assert.True(t, errors.Is(err, ErrCropBounds), "got %v", err)

	ds, err = NewRandomDownscaled(newMemDataset(1, 100, 100), 3, 4, BoxDownscaler{}, WithCropSize(10))
	require.NoError(t, err)
	pair, err := ds.Item(0)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(10, 10), pair[1].Bounds().Size())
}

func TestRandomDownscaled_Concurrent(t *testing.T) {
	ds, err := NewRandomDownscaled(newMemDataset(4, 64, 64), 1, 2, BilinearDownscaler{}, WithCropSize(16))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 4 {
				pair, err := ds.Item((w + i) % ds.Len())
				if err != nil {
					errs <- err
					return
				}
				if pair[1].Bounds().Size() != image.Pt(16, 16) {
					errs <- errors.Errorf("unexpected lr size %v", pair[1].Bounds().Size())
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
