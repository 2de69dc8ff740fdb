package datasets

import (
	"image"
	"math"
	"math/rand/v2"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// RandomCrop cuts a square of size x size pixels at a uniformly random
// position fully inside img.
func RandomCrop(img image.Image, size int) (image.Image, error) {
	bounds := img.Bounds()
	if size <= 0 || size > bounds.Dx() || size > bounds.Dy() {
		return nil, errors.Wrapf(ErrCropBounds, "cannot crop %dx%d from a %dx%d image",
			size, size, bounds.Dx(), bounds.Dy())
	}
	x := bounds.Min.X + rand.IntN(bounds.Dx()-size+1)
	y := bounds.Min.Y + rand.IntN(bounds.Dy()-size+1)
	return imaging.Crop(img, image.Rect(x, y, x+size, y+size)), nil
}

// RescaleImage pairs img with a version downscaled by scale.
//
// If cropSize > 0 a random square of round(scale*cropSize) pixels is cut
// from img first, so the low-resolution image is cropSize pixels wide. The
// low-resolution size is (round(w/scale), round(h/scale)); width and height
// are rounded independently, halves to even, so the aspect ratio may drift
// slightly at extreme scales.
//
// It returns [hr, lr].
func RescaleImage(img image.Image, scale float64, downscaler Downscaler, cropSize int) ([]image.Image, error) {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, newConfigError(ErrConfig, "scale must be a positive number, got %v", scale)
	}
	hr := img
	if cropSize > 0 {
		var err error
		hr, err = RandomCrop(img, int(math.RoundToEven(scale*float64(cropSize))))
		if err != nil {
			return nil, err
		}
	}
	width := int(math.RoundToEven(float64(hr.Bounds().Dx()) / scale))
	height := int(math.RoundToEven(float64(hr.Bounds().Dy()) / scale))
	if width < 1 || height < 1 {
		return nil, errors.Errorf("a %dx%d image is too small to downscale by %v",
			hr.Bounds().Dx(), hr.Bounds().Dy(), scale)
	}
	lr := downscaler.Resize(hr, width, height)
	return []image.Image{hr, lr}, nil
}

// RescaleImages is RescaleImage for the output of a Dataset: images must
// hold exactly one image.
func RescaleImages(images []image.Image, scale float64, downscaler Downscaler, cropSize int) ([]image.Image, error) {
	if len(images) != 1 {
		return nil, errors.Wrapf(ErrInputShape, "got %d images", len(images))
	}
	return RescaleImage(images[0], scale, downscaler, cropSize)
}
