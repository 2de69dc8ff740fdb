package datasets

import (
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// Downscaler resizes an image to exactly width x height pixels.
type Downscaler interface {
	Resize(img image.Image, width, height int) image.Image
	Name() string
}

// BoxDownscaler averages the source pixels covered by each target pixel.
type BoxDownscaler struct{}

func (BoxDownscaler) Resize(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.Box)
}

func (BoxDownscaler) Name() string { return "box" }

// BilinearDownscaler uses a triangle filter.
type BilinearDownscaler struct{}

func (BilinearDownscaler) Resize(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.Linear)
}

func (BilinearDownscaler) Name() string { return "bilinear" }

// BicubicDownscaler uses the Catmull-Rom cubic filter.
type BicubicDownscaler struct{}

func (BicubicDownscaler) Resize(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.CatmullRom)
}

func (BicubicDownscaler) Name() string { return "bicubic" }

// LanczosDownscaler uses a 3-lobe Lanczos filter.
type LanczosDownscaler struct{}

func (LanczosDownscaler) Resize(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

func (LanczosDownscaler) Name() string { return "lanczos" }

// DownscalerByName returns the downscaler called name: box, bilinear,
// bicubic or lanczos. Matching is case-insensitive.
func DownscalerByName(name string) (Downscaler, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "box":
		return BoxDownscaler{}, nil
	case "bilinear", "linear":
		return BilinearDownscaler{}, nil
	case "bicubic", "cubic":
		return BicubicDownscaler{}, nil
	case "lanczos":
		return LanczosDownscaler{}, nil
	}
	return nil, newConfigError(ErrConfig, "unknown downscaler %q, use one of [box, bilinear, bicubic, lanczos]", name)
}
