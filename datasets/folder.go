package datasets

import (
	"image"
	"slices"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Folder is a dataset of image tuples stored as files. Each sample is a list
// of paths, decoded in order when the sample is read.
//
// The sample list is built once, at construction, and never changes.
type Folder struct {
	// Root is the directory the samples were listed from.
	Root string

	// Scales holds the scale of each low-resolution track, in the order the
	// images appear in an item after the high-resolution one.
	Scales []int

	// Tracks holds the downscaling method of each low-resolution image.
	Tracks []Track

	Split Split

	samples   [][]string
	loader    Loader
	transform Transform
	logger    logrus.FieldLogger
}

// NewFolder creates a Folder over explicit samples. All samples must have
// the same number of paths.
//
// Only the Loader, Transform and Logger fields of cfg are used.
func NewFolder(root string, samples [][]string, cfg Config) (*Folder, error) {
	for i, s := range samples {
		if len(s) == 0 {
			return nil, newConfigError(ErrInputShape, "sample %d is empty", i)
		}
		if len(s) != len(samples[0]) {
			return nil, newConfigError(ErrInputShape, "sample %d has %d paths, sample 0 has %d",
				i, len(s), len(samples[0]))
		}
	}
	f := &Folder{
		Root:      root,
		samples:   samples,
		loader:    cfg.Loader,
		transform: cfg.Transform,
		logger:    cfg.Logger,
	}
	f.setDefaults()
	return f, nil
}

func (f *Folder) setDefaults() {
	if f.loader == nil {
		f.loader = DefaultLoader
	}
	if f.logger == nil {
		f.logger = discardLogger()
	}
}

// Len returns the number of samples.
func (f *Folder) Len() int {
	return len(f.samples)
}

// Sample returns the paths of sample index: the high-resolution path first,
// then one path per low-resolution track.
func (f *Folder) Sample(index int) ([]string, error) {
	if err := checkIndex(index, len(f.samples)); err != nil {
		return nil, err
	}
	return slices.Clone(f.samples[index]), nil
}

// Samples returns a copy of all samples.
func (f *Folder) Samples() [][]string {
	out := make([][]string, len(f.samples))
	for i, s := range f.samples {
		out[i] = slices.Clone(s)
	}
	return out
}

// Item decodes every image of sample index, in order, and applies the
// transform, if any.
func (f *Folder) Item(index int) ([]image.Image, error) {
	if err := checkIndex(index, len(f.samples)); err != nil {
		return nil, err
	}
	paths := f.samples[index]
	images := make([]image.Image, len(paths))
	for i, path := range paths {
		img, err := f.loader(path)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to load image %q of sample %d", path, index)
		}
		images[i] = img
	}
	if f.transform == nil {
		return images, nil
	}
	return f.transform(images)
}

// DefaultLoader opens the image at path and converts it to RGB, dropping any
// alpha channel.
func DefaultLoader(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	return toRGB(img), nil
}

// toRGB returns an opaque copy of img.
func toRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
