package datasets

import (
	"fmt"
	"image"
	"math"
	"math/rand/v2"
)

// DefaultRandomCropSize is the low-resolution crop edge used by
// RandomDownscaled unless WithCropSize is given.
const DefaultRandomCropSize = 48

// Option configures Downscaled and RandomDownscaled.
type Option func(*wrapperOptions)

type wrapperOptions struct {
	cropSize  int
	transform Transform
}

// WithCropSize crops a random square from the source image so that the
// low-resolution image is size pixels wide. Zero disables cropping.
func WithCropSize(size int) Option {
	return func(o *wrapperOptions) { o.cropSize = size }
}

// WithTransform applies t to every [hr, lr] pair.
func WithTransform(t Transform) Option {
	return func(o *wrapperOptions) { o.transform = t }
}

func applyOptions(o wrapperOptions, opts []Option) wrapperOptions {
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Downscaled wraps a dataset of single images and synthesizes the
// low-resolution image at a fixed scale.
type Downscaled struct {
	dataset    Dataset
	scale      float64
	downscaler Downscaler
	cropSize   int
	transform  Transform
}

// NewDownscaled wraps ds. Items of ds must hold exactly one image. scale
// must be at least 1.
func NewDownscaled(ds Dataset, scale float64, downscaler Downscaler, opts ...Option) (*Downscaled, error) {
	if ds == nil || downscaler == nil {
		return nil, newConfigError(ErrConfig, "dataset and downscaler are required")
	}
	if !(scale >= 1) || math.IsInf(scale, 0) {
		return nil, newConfigError(ErrConfig, "scale must be >= 1, got %v", scale)
	}
	o := applyOptions(wrapperOptions{}, opts)
	if o.cropSize < 0 {
		return nil, newConfigError(ErrConfig, "crop size must be >= 0, got %d", o.cropSize)
	}
	return &Downscaled{
		dataset:    ds,
		scale:      scale,
		downscaler: downscaler,
		cropSize:   o.cropSize,
		transform:  o.transform,
	}, nil
}

// Len returns the length of the wrapped dataset.
func (d *Downscaled) Len() int { return d.dataset.Len() }

// Scale returns the fixed downscaling ratio.
func (d *Downscaled) Scale() float64 { return d.scale }

// Item returns [hr, lr] for the image at index.
func (d *Downscaled) Item(index int) ([]image.Image, error) {
	images, err := d.dataset.Item(index)
	if err != nil {
		return nil, err
	}
	pair, err := RescaleImages(images, d.scale, d.downscaler, d.cropSize)
	if err != nil {
		return nil, err
	}
	if d.transform == nil {
		return pair, nil
	}
	return d.transform(pair)
}

// String implements fmt.Stringer.
func (d *Downscaled) String() string {
	return fmt.Sprintf("Downscaled(X%g, %s, crop=%d)", d.scale, d.downscaler.Name(), d.cropSize)
}

// RandomDownscaled wraps a dataset of single images and synthesizes the
// low-resolution image at a scale drawn on every access.
//
// Scales are drawn uniformly in log space, so [1, 2] and [2, 4] are equally
// likely. Reading the same index twice gives different pairs.
type RandomDownscaled struct {
	dataset            Dataset
	minLog, maxLog     float64
	minScale, maxScale float64
	downscaler         Downscaler
	cropSize           int
	transform          Transform
}

// NewRandomDownscaled wraps ds, drawing scales from [minScale, maxScale].
// minScale must be positive and strictly smaller than maxScale. Unless
// WithCropSize is given, the low-resolution images are
// DefaultRandomCropSize pixels wide.
func NewRandomDownscaled(ds Dataset, minScale, maxScale float64, downscaler Downscaler, opts ...Option) (*RandomDownscaled, error) {
	if ds == nil || downscaler == nil {
		return nil, newConfigError(ErrConfig, "dataset and downscaler are required")
	}
	if !(minScale > 0) || !(minScale < maxScale) || math.IsInf(maxScale, 0) {
		return nil, newConfigError(ErrScaleRange, "expected an ordered scale range, got (%v, %v)", minScale, maxScale)
	}
	o := applyOptions(wrapperOptions{cropSize: DefaultRandomCropSize}, opts)
	if o.cropSize < 0 {
		return nil, newConfigError(ErrConfig, "crop size must be >= 0, got %d", o.cropSize)
	}
	return &RandomDownscaled{
		dataset:    ds,
		minLog:     math.Log(minScale),
		maxLog:     math.Log(maxScale),
		minScale:   minScale,
		maxScale:   maxScale,
		downscaler: downscaler,
		cropSize:   o.cropSize,
		transform:  o.transform,
	}, nil
}

// Len returns the length of the wrapped dataset.
func (d *RandomDownscaled) Len() int { return d.dataset.Len() }

// ScaleRange returns the bounds scales are drawn from.
func (d *RandomDownscaled) ScaleRange() (minScale, maxScale float64) {
	return d.minScale, d.maxScale
}

// SampleScale draws a scale log-uniformly from the scale range. It is safe
// for concurrent use.
func (d *RandomDownscaled) SampleScale() float64 {
	return math.Exp(d.minLog + rand.Float64()*(d.maxLog-d.minLog))
}

// Item returns [hr, lr] for the image at index, at a freshly drawn scale.
func (d *RandomDownscaled) Item(index int) ([]image.Image, error) {
	images, _, err := d.ItemWithScale(index)
	return images, err
}

// ItemWithScale is like Item but also returns the scale that was drawn.
func (d *RandomDownscaled) ItemWithScale(index int) ([]image.Image, float64, error) {
	scale := d.SampleScale()
	images, err := d.dataset.Item(index)
	if err != nil {
		return nil, scale, err
	}
	pair, err := RescaleImages(images, scale, d.downscaler, d.cropSize)
	if err != nil {
		return nil, scale, err
	}
	if d.transform != nil {
		pair, err = d.transform(pair)
	}
	return pair, scale, err
}

// String implements fmt.Stringer.
func (d *RandomDownscaled) String() string {
	return fmt.Sprintf("RandomDownscaled(X%g-X%g, %s, crop=%d)", d.minScale, d.maxScale, d.downscaler.Name(), d.cropSize)
}
