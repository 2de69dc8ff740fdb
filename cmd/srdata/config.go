package main

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Noofbiz/srdata/datasets"
)

// Run modes.
const (
	modeIndex  = "index"
	modeFixed  = "fixed"
	modeRandom = "random"
)

// cliConfig is the effective configuration of a run. It is filled from the
// defaults, then the optional JSON file, then the flags given explicitly on
// the command line.
type cliConfig struct {
	Root       string  `json:"root"`
	Split      string  `json:"split"`
	Tracks     string  `json:"tracks"`
	Scales     string  `json:"scales"`
	Mode       string  `json:"mode"`
	Scale      float64 `json:"scale"`
	ScaleMin   float64 `json:"scale_min"`
	ScaleMax   float64 `json:"scale_max"`
	Crop       int     `json:"crop"`
	Downscaler string  `json:"downscaler"`
	N          int     `json:"n"`
	Out        string  `json:"out"`
	Draws      int     `json:"draws"`
	Bins       int     `json:"bins"`
	Workers    int     `json:"workers"`
}

func defaultConfig() cliConfig {
	return cliConfig{
		Root:       "~/data",
		Split:      string(datasets.SplitTrain),
		Tracks:     string(datasets.TrackBicubic),
		Scales:     "2",
		Mode:       modeIndex,
		Scale:      2,
		ScaleMin:   1,
		ScaleMax:   4,
		Crop:       -1,
		Downscaler: "bicubic",
		N:          8,
		Out:        "output",
		Draws:      10000,
		Bins:       20,
	}
}

// loadConfigFile overlays the values present in the JSON file at path on
// cfg. Keys missing from the file keep their current value.
func loadConfigFile(path string, cfg *cliConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config %q", path)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "failed to parse config %q", path)
	}
	return nil
}

// applyFlags copies into cfg the fields of fromFlags whose flag was set
// explicitly.
func applyFlags(cfg *cliConfig, fromFlags cliConfig, set map[string]bool) {
	if set["root"] {
		cfg.Root = fromFlags.Root
	}
	if set["split"] {
		cfg.Split = fromFlags.Split
	}
	if set["tracks"] {
		cfg.Tracks = fromFlags.Tracks
	}
	if set["scales"] {
		cfg.Scales = fromFlags.Scales
	}
	if set["mode"] {
		cfg.Mode = fromFlags.Mode
	}
	if set["scale"] {
		cfg.Scale = fromFlags.Scale
	}
	if set["scale-min"] {
		cfg.ScaleMin = fromFlags.ScaleMin
	}
	if set["scale-max"] {
		cfg.ScaleMax = fromFlags.ScaleMax
	}
	if set["crop"] {
		cfg.Crop = fromFlags.Crop
	}
	if set["downscaler"] {
		cfg.Downscaler = fromFlags.Downscaler
	}
	if set["n"] {
		cfg.N = fromFlags.N
	}
	if set["out"] {
		cfg.Out = fromFlags.Out
	}
	if set["draws"] {
		cfg.Draws = fromFlags.Draws
	}
	if set["bins"] {
		cfg.Bins = fromFlags.Bins
	}
	if set["workers"] {
		cfg.Workers = fromFlags.Workers
	}
}

func (c cliConfig) validate() error {
	switch c.Mode {
	case modeIndex, modeFixed, modeRandom:
	default:
		return errors.Errorf("unknown mode %q, use one of index, fixed or random", c.Mode)
	}
	if c.N < 0 {
		return errors.Errorf("n must be >= 0, got %d", c.N)
	}
	if c.Mode == modeRandom {
		if c.Draws <= 0 {
			return errors.Errorf("draws must be > 0, got %d", c.Draws)
		}
		if c.Bins <= 0 {
			return errors.Errorf("bins must be > 0, got %d", c.Bins)
		}
	}
	return nil
}

// div2kConfig builds the dataset configuration of the index mode.
func (c cliConfig) div2kConfig() (datasets.Config, error) {
	scales, err := parseScales(c.Scales)
	if err != nil {
		return datasets.Config{}, err
	}
	return datasets.Config{
		Scales: scales,
		Tracks: parseTracks(c.Tracks),
		Split:  datasets.Split(c.Split),
	}, nil
}

// parseScales parses a comma separated list of integers. An empty list
// selects the high-resolution images only.
func parseScales(s string) ([]int, error) {
	scales := []int{}
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		scale, err := strconv.Atoi(field)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid scale %q", field)
		}
		scales = append(scales, scale)
	}
	return scales, nil
}

func parseTracks(s string) []datasets.Track {
	var tracks []datasets.Track
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		tracks = append(tracks, datasets.Track(field))
	}
	return tracks
}

// wrapperOptions returns the crop option, if any. A negative crop keeps the
// wrapper's default.
func (c cliConfig) wrapperOptions() []datasets.Option {
	if c.Crop < 0 {
		return nil
	}
	return []datasets.Option{datasets.WithCropSize(c.Crop)}
}
