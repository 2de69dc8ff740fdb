package datasets

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// div2kSubdir is the directory created under the root by the DIV2K archives.
const div2kSubdir = "DIV2K"

// Fetcher downloads an archive and extracts it into destDir. Implementations
// must be idempotent: nothing is done if the archive is already present and
// its checksum matches.
type Fetcher interface {
	FetchAndExtract(ctx context.Context, url, destDir, md5 string) error
}

// Config holds the options of a DIV2K dataset. Zero values select the
// defaults noted on each field.
type Config struct {
	// Scales lists the downscaling ratio of each low-resolution track: 2, 3,
	// 4 or 8. Default (nil): []int{2}. A non-nil empty slice selects the
	// high-resolution images only.
	Scales []int

	// Tracks lists the downscaling method of each scale. A nil or single
	// element slice is repeated for every scale. Default: bicubic.
	Tracks []Track

	// Split is the dataset split. Default: train.
	Split Split

	// Transform, if set, is applied to the list of images of each item.
	Transform Transform

	// Loader decodes image files. Default: DefaultLoader.
	Loader Loader

	// Download fetches every DIV2K archive with Fetcher before the index is
	// built.
	Download bool
	Fetcher  Fetcher

	// Logger receives debug information while the index is built. Default:
	// discard.
	Logger logrus.FieldLogger
}

// normalize fills the defaults and broadcasts tracks over scales.
func (c Config) normalize() (Config, error) {
	if c.Scales == nil {
		c.Scales = []int{2}
	}
	switch len(c.Tracks) {
	case 0:
		c.Tracks = repeatTrack(TrackBicubic, len(c.Scales))
	case 1:
		c.Tracks = repeatTrack(c.Tracks[0], len(c.Scales))
	}
	if len(c.Tracks) != len(c.Scales) {
		return c, newConfigError(ErrConfig, "the number of scales (%d) and of tracks (%d) must be the same",
			len(c.Scales), len(c.Tracks))
	}
	if c.Split == "" {
		c.Split = SplitTrain
	}
	return c, nil
}

func repeatTrack(track Track, n int) []Track {
	tracks := make([]Track, n)
	for i := range tracks {
		tracks[i] = track
	}
	return tracks
}

// NewDIV2K creates the DIV2K super-resolution dataset rooted at root/DIV2K.
//
// Each item holds the high-resolution image followed by one low-resolution
// image per (track, scale) pair of cfg. Every directory is listed and sorted
// here: an invalid (track, split, scale) combination, or a low-resolution
// track with a different number of files than the high-resolution one, fails
// construction.
func NewDIV2K(ctx context.Context, root string, cfg Config) (*Folder, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	root, err = expandRoot(root)
	if err != nil {
		return nil, err
	}
	f := &Folder{
		Root:      filepath.Join(root, div2kSubdir),
		Scales:    cfg.Scales,
		Tracks:    cfg.Tracks,
		Split:     cfg.Split,
		loader:    cfg.Loader,
		transform: cfg.Transform,
		logger:    cfg.Logger,
	}
	f.setDefaults()

	if cfg.Download {
		if err := f.download(ctx, cfg.Fetcher); err != nil {
			return nil, err
		}
	}
	if err := f.initSamples(); err != nil {
		return nil, err
	}
	return f, nil
}

// download fetches every archive. They are all fetched since the X4/X8
// archives are small.
func (f *Folder) download(ctx context.Context, fetcher Fetcher) error {
	if fetcher == nil {
		return newConfigError(ErrConfig, "download requested but no fetcher configured")
	}
	for _, archive := range archives {
		if err := ctx.Err(); err != nil {
			return err
		}
		f.logger.WithField("url", archive.URL).Debug("fetching archive")
		if err := fetcher.FetchAndExtract(ctx, archive.URL, f.Root, archive.MD5); err != nil {
			return errors.WithMessagef(err, "failed to fetch %q", archive.URL)
		}
	}
	return nil
}

// trackDir resolves the absolute directory of track at the folder's split.
func (f *Folder) trackDir(track Track, scale int) (string, error) {
	rel, err := TrackDir(track, f.Split, scale)
	if err != nil {
		return "", err
	}
	return filepath.Join(f.Root, rel), nil
}

// initSamples lists the HR directory and one directory per (track, scale),
// and zips them into samples.
func (f *Folder) initSamples() error {
	tracks := append([]Track{TrackHR}, f.Tracks...)
	scales := append([]int{1}, f.Scales...)

	// Resolve every directory first so configuration errors are reported
	// before any I/O.
	dirs := make([]string, len(tracks))
	for i := range tracks {
		dir, err := f.trackDir(tracks[i], scales[i])
		if err != nil {
			return err
		}
		dirs[i] = dir
	}

	listings := make([][]string, len(tracks))
	for i, dir := range dirs {
		files, err := listSortedFiles(dir)
		if err != nil {
			return err
		}
		f.logger.WithFields(logrus.Fields{
			"track": tracks[i],
			"scale": scales[i],
			"dir":   dir,
			"files": len(files),
		}).Debug("listed track")
		listings[i] = files
	}

	numHR := len(listings[0])
	for i, files := range listings[1:] {
		if len(files) != numHR {
			return errors.Wrapf(ErrTrackCountMismatch, "number of files for %sX%d does not match HR (%d != %d)",
				f.Tracks[i], f.Scales[i], len(files), numHR)
		}
	}

	f.samples = make([][]string, numHR)
	for i := range numHR {
		sample := make([]string, len(listings))
		for j, files := range listings {
			sample[j] = files[i]
		}
		f.samples[i] = sample
	}
	f.logger.WithField("samples", numHR).Debug("DIV2K index built")
	return nil
}
