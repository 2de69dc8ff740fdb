package datasets

import (
	"fmt"
	"image"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// This file provides the building blocks shared by the super-resolution
// datasets in this package.
//
// Datasets are lazy: they store file paths and only decode images when an
// item is requested. Every dataset, including the downscaling wrappers,
// implements Dataset so they can be composed:
//
//	DIV2K index (Folder) -> Downscaled / RandomDownscaled -> Transform -> TrainDataset
//
// Items are ordered lists of images. For a Folder built from DIV2K the first
// image is always the high-resolution one, followed by one low-resolution
// image per requested track. The downscaling wrappers always return
// [hr, lr].
//
// Nothing in this package keeps mutable state across Item calls, so a single
// dataset can be read from many goroutines at once.
type Dataset interface {
	Len() int
	Item(index int) ([]image.Image, error)
}

// Transform post-processes the whole list of images of one item.
type Transform func(images []image.Image) ([]image.Image, error)

// Loader decodes the image stored at path.
type Loader func(path string) (image.Image, error)

var (
	// ErrConfig is the parent of every error raised because a dataset was
	// constructed with invalid arguments.
	ErrConfig = errors.New("invalid dataset configuration")

	ErrUnknownTrack     = errors.New("unknown track")
	ErrUnknownSplit     = errors.New("unknown split")
	ErrUnsupportedScale = errors.New("track does not include scale")
	ErrScaleRange       = errors.New("invalid scale range")

	// ErrTrackCountMismatch is returned when a low-resolution track does not
	// hold as many files as the high-resolution track.
	ErrTrackCountMismatch = errors.New("track file count does not match HR")

	// ErrInputShape is returned when the rescale primitive receives anything
	// other than exactly one image.
	ErrInputShape = errors.New("expecting a single image to downscale")

	// ErrCropBounds is returned when a crop does not fit in the source image.
	ErrCropBounds = errors.New("crop does not fit in image")

	ErrIndexOutOfRange = errors.New("index out of range")
)

// configError wraps one of the configuration sentinels so that callers can
// match both the specific cause and ErrConfig.
type configError struct {
	kind error
	msg  string
}

func (e *configError) Error() string { return e.msg }

func (e *configError) Is(target error) bool {
	return target == ErrConfig || target == e.kind
}

func (e *configError) Unwrap() error { return e.kind }

func newConfigError(kind error, format string, args ...any) error {
	return errors.WithStack(&configError{kind: kind, msg: fmt.Sprintf(format, args...)})
}

func checkIndex(index, length int) error {
	if index < 0 || index >= length {
		return errors.Wrapf(ErrIndexOutOfRange, "index %d out of range [0, %d)", index, length)
	}
	return nil
}

// discardLogger is used when the caller does not provide a logger.
func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
