package main

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Noofbiz/srdata/datasets"
	"github.com/Noofbiz/srdata/monte"
)

// writePairs saves the first n [hr, lr] pairs of ds under outDir as
// <i>_hr.png and <i>_lr.png. It returns the number of bytes written.
func writePairs(ds datasets.Dataset, n int, outDir string, showProgress bool, logger logrus.FieldLogger) (uint64, error) {
	n = min(n, ds.Len())
	if err := ensureDir(outDir); err != nil {
		return 0, err
	}
	var pBar *progressbar.ProgressBar
	if showProgress {
		pBar = progressbar.NewOptions(n,
			progressbar.OptionSetDescription("Writing pairs"),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("pairs"),
			progressbar.OptionSetTheme(progressbar.ThemeUnicode),
		)
	}

	var total uint64
	for i := range n {
		pair, err := ds.Item(i)
		if err != nil {
			return total, errors.WithMessagef(err, "failed to read pair %d", i)
		}
		if len(pair) != 2 {
			return total, errors.Errorf("item %d holds %d images, expected an [hr, lr] pair", i, len(pair))
		}
		for j, suffix := range []string{"hr", "lr"} {
			path := filepath.Join(outDir, fmt.Sprintf("%d_%s.png", i, suffix))
			if err := imaging.Save(pair[j], path); err != nil {
				return total, errors.Wrapf(err, "failed to save %q", path)
			}
			info, err := os.Stat(path)
			if err != nil {
				return total, errors.WithStack(err)
			}
			total += uint64(info.Size())
		}
		logger.WithFields(logrus.Fields{
			"index": i,
			"hr":    pair[0].Bounds().Size(),
			"lr":    pair[1].Bounds().Size(),
		}).Debug("pair written")
		if pBar != nil {
			_ = pBar.Add(1)
		}
	}
	if pBar != nil {
		_ = pBar.Finish()
	}
	logger.WithField("bytes", humanize.Bytes(total)).Infof("wrote %d pairs to %s", n, outDir)
	return total, nil
}

// plotScaleHistogram writes a PNG histogram of the sampled log scales. The
// dashed line is the count per bin expected from a log-uniform draw over
// [minScale, maxScale].
func plotScaleHistogram(outDir string, res *monte.Result, bins int, minScale, maxScale float64) (string, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("log(scale) over %d draws, mean %.3f (expected %.3f)",
		len(res.LogScales), res.LogMean, monte.ExpectedLogMean(minScale, maxScale))
	p.X.Label.Text = "log(scale)"
	p.Y.Label.Text = "draws"

	hist, err := plotter.NewHist(plotter.Values(res.LogScales), bins)
	if err != nil {
		return "", err
	}
	hist.FillColor = color.RGBA{R: 20, G: 80, B: 200, A: 180}
	p.Add(hist)
	p.Legend.Add("sampled", hist)

	lo, hi := math.Log(minScale), math.Log(maxScale)
	perBin := float64(len(res.LogScales)) / float64(bins)
	expected, err := plotter.NewLine(plotter.XYs{{X: lo, Y: perBin}, {X: hi, Y: perBin}})
	if err != nil {
		return "", err
	}
	expected.Color = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	expected.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	expected.Width = vg.Points(1.2)
	p.Add(expected)
	p.Legend.Add("log-uniform", expected)
	p.Add(plotter.NewGrid())

	if err := ensureDir(outDir); err != nil {
		return "", err
	}
	outPath := filepath.Join(outDir, "scale_hist.png")
	if err := p.Save(8*vg.Inch, 6*vg.Inch, outPath); err != nil {
		return "", err
	}
	return outPath, nil
}

func ensureDir(path string) error {
	if path == "" {
		return nil
	}
	return errors.WithStack(os.MkdirAll(path, 0755))
}
