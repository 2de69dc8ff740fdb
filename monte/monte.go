// Package monte runs Monte Carlo draws against a randomly downscaled dataset
// to check the distribution of the sampled scales and the geometry of the
// pairs produced at those scales.
package monte

import (
	"errors"
	"fmt"
	"image"
	"math"
	"runtime"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Sampler draws downscaling ratios. It matches
// datasets.RandomDownscaled.SampleScale, and must be safe for concurrent
// use.
type Sampler interface {
	SampleScale() float64
}

// PairSource is a dataset that reports the scale used to build each pair.
// It matches datasets.RandomDownscaled.ItemWithScale.
type PairSource interface {
	Len() int
	ItemWithScale(index int) ([]image.Image, float64, error)
}

// Monte runs draws in parallel over a pool of workers.
type Monte struct {
	S Sampler

	// Workers is the number of goroutines used. If zero runtime.NumCPU() is
	// used.
	Workers int
}

// NewMonte creates a new Monte object. s must be non-nil.
func NewMonte(s Sampler, workers int) (*Monte, error) {
	if s == nil {
		return nil, errors.New("sampler cannot be nil")
	}
	if workers < 0 {
		return nil, fmt.Errorf("workers must be >= 0, got %d", workers)
	}
	return &Monte{S: s, Workers: workers}, nil
}

// Result summarizes a set of sampled scales.
type Result struct {
	// Scales holds every draw, in the order the workers produced them.
	Scales []float64

	// LogScales holds log(scale) of every draw, sorted ascending.
	LogScales []float64

	LogMean, LogStdDev float64
	Min, Max           float64
}

// workerCount returns the pool size for n jobs.
func (m *Monte) workerCount(n int) int {
	workers := m.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	return max(workers, 1)
}

// Estimate draws numDraws scales and summarizes them.
func (m *Monte) Estimate(numDraws int) (*Result, error) {
	if m == nil || m.S == nil {
		return nil, errors.New("Monte object is nil or has no sampler")
	}
	if numDraws <= 0 {
		return nil, fmt.Errorf("numDraws must be > 0, got %d", numDraws)
	}

	scales := make([]float64, numDraws)
	jobs := make(chan int, numDraws)
	for i := range numDraws {
		jobs <- i
	}
	close(jobs)

	workers := m.workerCount(numDraws)
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for pos := range jobs {
				// Each worker writes a distinct position.
				scales[pos] = m.S.SampleScale()
			}
		}()
	}
	wg.Wait()

	return Summarize(scales)
}

// Summarize computes the statistics of an arbitrary set of scales. All
// scales must be positive.
func Summarize(scales []float64) (*Result, error) {
	if len(scales) == 0 {
		return nil, errors.New("no scales to summarize")
	}
	logs := make([]float64, len(scales))
	for i, s := range scales {
		if !(s > 0) {
			return nil, fmt.Errorf("scale %d is not positive: %v", i, s)
		}
		logs[i] = math.Log(s)
	}
	sort.Float64s(logs)
	mean, std := stat.MeanStdDev(logs, nil)
	if len(logs) == 1 {
		std = 0
	}
	return &Result{
		Scales:    scales,
		LogScales: logs,
		LogMean:   mean,
		LogStdDev: std,
		Min:       floats.Min(scales),
		Max:       floats.Max(scales),
	}, nil
}

// Histogram counts log(scale) in bins equal-width bins spanning the sampled
// range. It returns the bin dividers (len bins+1) and the counts.
func (r *Result) Histogram(bins int) (dividers, counts []float64, err error) {
	if bins <= 0 {
		return nil, nil, fmt.Errorf("bins must be > 0, got %d", bins)
	}
	lo := r.LogScales[0]
	// The highest divider must be strictly above the largest value.
	hi := math.Nextafter(r.LogScales[len(r.LogScales)-1], math.Inf(1))
	dividers = floats.Span(make([]float64, bins+1), lo, hi)
	counts = stat.Histogram(nil, dividers, r.LogScales, nil)
	return dividers, counts, nil
}

// ExpectedLogMean is the mean of log(scale) for scales drawn log-uniformly
// from [minScale, maxScale].
func ExpectedLogMean(minScale, maxScale float64) float64 {
	return (math.Log(minScale) + math.Log(maxScale)) / 2
}

// ExpectedLogStdDev is the standard deviation of log(scale) for scales drawn
// log-uniformly from [minScale, maxScale].
func ExpectedLogStdDev(minScale, maxScale float64) float64 {
	return (math.Log(maxScale) - math.Log(minScale)) / math.Sqrt(12)
}

// PairSample describes one pair drawn from a PairSource.
type PairSample struct {
	Scale  float64
	HRSize image.Point
	LRSize image.Point
}

// EffectiveScale is the width ratio actually obtained after rounding.
func (p PairSample) EffectiveScale() float64 {
	if p.LRSize.X == 0 {
		return 0
	}
	return float64(p.HRSize.X) / float64(p.LRSize.X)
}

// SimulatePairs reads item index numDraws times from src, in parallel, and
// records the scale and sizes of every pair. The first error stops the
// simulation.
func (m *Monte) SimulatePairs(src PairSource, index, numDraws int) ([]PairSample, error) {
	if src == nil {
		return nil, errors.New("pair source cannot be nil")
	}
	if numDraws <= 0 {
		return nil, fmt.Errorf("numDraws must be > 0, got %d", numDraws)
	}
	if index < 0 || index >= src.Len() {
		return nil, fmt.Errorf("index %d out of range [0, %d)", index, src.Len())
	}

	samples := make([]PairSample, numDraws)
	jobs := make(chan int, numDraws)
	for i := range numDraws {
		jobs <- i
	}
	close(jobs)

	workers := m.workerCount(numDraws)
	errCh := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for pos := range jobs {
				pair, scale, err := src.ItemWithScale(index)
				if err != nil {
					errCh <- fmt.Errorf("draw %d of item %d: %w", pos, index, err)
					return
				}
				if len(pair) != 2 {
					errCh <- fmt.Errorf("draw %d of item %d: expected 2 images, got %d", pos, index, len(pair))
					return
				}
				samples[pos] = PairSample{
					Scale:  scale,
					HRSize: pair[0].Bounds().Size(),
					LRSize: pair[1].Bounds().Size(),
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return nil, err
	}
	return samples, nil
}
