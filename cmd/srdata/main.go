// Command srdata builds DIV2K super-resolution indexes, materializes (hr, lr)
// pairs to disk and checks the distribution of randomly sampled scales.
//
// Usage:
//
//	srdata -root ~/data -mode index -tracks bicubic,unknown -scales 2,4
//	srdata -root ~/data -mode fixed -scale 3 -crop 64 -n 16 -out pairs
//	srdata -root ~/data -mode random -scale-min 1 -scale-max 4 -draws 20000
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Noofbiz/srdata/datasets"
	"github.com/Noofbiz/srdata/monte"
)

func main() {
	def := defaultConfig()
	var fromFlags cliConfig
	flag.StringVar(&fromFlags.Root, "root", def.Root, "directory holding the DIV2K subdirectory")
	flag.StringVar(&fromFlags.Split, "split", def.Split, "dataset split: train or val")
	flag.StringVar(&fromFlags.Tracks, "tracks", def.Tracks, "comma-separated low-resolution tracks of the index mode")
	flag.StringVar(&fromFlags.Scales, "scales", def.Scales, "comma-separated scales of the index mode (empty for HR only)")
	flag.StringVar(&fromFlags.Mode, "mode", def.Mode, "run mode: index, fixed or random")
	flag.Float64Var(&fromFlags.Scale, "scale", def.Scale, "downscaling ratio of the fixed mode")
	flag.Float64Var(&fromFlags.ScaleMin, "scale-min", def.ScaleMin, "lower bound of the random mode scale range")
	flag.Float64Var(&fromFlags.ScaleMax, "scale-max", def.ScaleMax, "upper bound of the random mode scale range")
	flag.IntVar(&fromFlags.Crop, "crop", def.Crop, "low-resolution crop size (0 = no crop, -1 = wrapper default)")
	flag.StringVar(&fromFlags.Downscaler, "downscaler", def.Downscaler, "downscaling filter: box, bilinear, bicubic or lanczos")
	flag.IntVar(&fromFlags.N, "n", def.N, "number of samples to report or pairs to write")
	flag.StringVar(&fromFlags.Out, "out", def.Out, "output directory for pairs and plots")
	flag.IntVar(&fromFlags.Draws, "draws", def.Draws, "number of scale draws of the random mode estimate")
	flag.IntVar(&fromFlags.Bins, "bins", def.Bins, "number of histogram bins")
	flag.IntVar(&fromFlags.Workers, "workers", def.Workers, "number of estimate workers (0 = NumCPU)")
	configPath := flag.String("config", "", "path to a JSON config file (explicit flags override it)")
	printEffectiveConfig := flag.Bool("print-effective-config", false, "print the effective (JSON+CLI merged) configuration and exit")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger := initLogger(*debug)

	cfg := def
	if strings.TrimSpace(*configPath) != "" {
		if err := loadConfigFile(*configPath, &cfg); err != nil {
			logger.WithError(err).Fatal("failed to load config")
		}
		logger.WithField("path", *configPath).Debug("loaded config file")
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	applyFlags(&cfg, fromFlags, set)

	if *printEffectiveConfig {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			logger.WithError(err).Fatal("failed to print config")
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("srdata failed")
	}
}

// initLogger initializes the logger with appropriate level
func initLogger(debugMode bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if debugMode {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		logger.Debug("Debug logging enabled")
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return logger
}

func run(ctx context.Context, cfg cliConfig, logger *logrus.Logger) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if cfg.Mode == modeIndex {
		return runIndex(ctx, cfg, logger)
	}

	// The fixed and random modes synthesize the low-resolution image from
	// the high-resolution one.
	hr, err := datasets.NewDIV2K(ctx, cfg.Root, datasets.Config{
		Scales: []int{},
		Split:  datasets.Split(cfg.Split),
		Logger: logger,
	})
	if err != nil {
		return err
	}
	downscaler, err := datasets.DownscalerByName(cfg.Downscaler)
	if err != nil {
		return err
	}
	showProgress := !logger.IsLevelEnabled(logrus.DebugLevel)

	if cfg.Mode == modeFixed {
		ds, err := datasets.NewDownscaled(hr, cfg.Scale, downscaler, cfg.wrapperOptions()...)
		if err != nil {
			return err
		}
		logger.WithField("dataset", ds.String()).Info("writing fixed-scale pairs")
		_, err = writePairs(ds, cfg.N, cfg.Out, showProgress, logger)
		return err
	}

	ds, err := datasets.NewRandomDownscaled(hr, cfg.ScaleMin, cfg.ScaleMax, downscaler, cfg.wrapperOptions()...)
	if err != nil {
		return err
	}
	logger.WithField("dataset", ds.String()).Info("writing random-scale pairs")
	if _, err := writePairs(ds, cfg.N, cfg.Out, showProgress, logger); err != nil {
		return err
	}
	return estimateScales(ds, cfg, logger)
}

func runIndex(ctx context.Context, cfg cliConfig, logger *logrus.Logger) error {
	dsCfg, err := cfg.div2kConfig()
	if err != nil {
		return err
	}
	dsCfg.Logger = logger
	ds, err := datasets.NewDIV2K(ctx, cfg.Root, dsCfg)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"root":    ds.Root,
		"split":   ds.Split,
		"tracks":  ds.Tracks,
		"scales":  ds.Scales,
		"samples": ds.Len(),
	}).Info("DIV2K index built")
	for i := range min(cfg.N, ds.Len()) {
		sample, err := ds.Sample(i)
		if err != nil {
			return err
		}
		logger.WithField("index", i).Info(strings.Join(sample, ", "))
	}
	return nil
}

func estimateScales(ds *datasets.RandomDownscaled, cfg cliConfig, logger *logrus.Logger) error {
	m, err := monte.NewMonte(ds, cfg.Workers)
	if err != nil {
		return errors.WithStack(err)
	}
	res, err := m.Estimate(cfg.Draws)
	if err != nil {
		return errors.WithStack(err)
	}
	minScale, maxScale := ds.ScaleRange()
	logger.WithFields(logrus.Fields{
		"draws":           cfg.Draws,
		"log_mean":        res.LogMean,
		"log_std":         res.LogStdDev,
		"log_mean_wanted": monte.ExpectedLogMean(minScale, maxScale),
		"log_std_wanted":  monte.ExpectedLogStdDev(minScale, maxScale),
		"min":             res.Min,
		"max":             res.Max,
	}).Info("scale distribution")

	dividers, counts, err := res.Histogram(cfg.Bins)
	if err != nil {
		return errors.WithStack(err)
	}
	for i, c := range counts {
		logger.WithFields(logrus.Fields{
			"from":  dividers[i],
			"to":    dividers[i+1],
			"draws": c,
		}).Debug("histogram bin")
	}

	path, err := plotScaleHistogram(cfg.Out, res, cfg.Bins, minScale, maxScale)
	if err != nil {
		return errors.Wrap(err, "failed to plot scale histogram")
	}
	logger.WithField("path", path).Info("wrote scale histogram")
	return nil
}
