package datasets

import (
	"fmt"
	"image"
	"io"
	"math/rand"
	"sync"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	timage "github.com/gomlx/gomlx/pkg/core/tensors/images"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// TrainDataset adapts a Dataset to gomlx's train.Dataset, so pairs can be fed
// to a train.Loop.
//
// Each Yield reads a batch of items and returns:
//
//   - inputs: one tensor per low-resolution position of the items, shaped
//     [batch, height, width, 3].
//   - labels: the high-resolution images, shaped [batch, height, width, 3].
//
// Images at the same position must have the same size across a batch: use a
// crop (WithCropSize) or a transform that resizes when the sources vary.
type TrainDataset struct {
	name     string
	dataset  Dataset
	toTensor *timage.ToTensorConfig

	batchSize int
	infinite  bool

	// mu protects next, order and shuffle.
	mu      sync.Mutex
	next    int
	order   []int
	shuffle *rand.Rand
}

var _ train.Dataset = (*TrainDataset)(nil)

// NewTrainDataset creates a TrainDataset over ds yielding batches of
// batchSize items converted to dtype.
func NewTrainDataset(name string, ds Dataset, batchSize int, dtype dtypes.DType) (*TrainDataset, error) {
	if ds == nil {
		return nil, newConfigError(ErrConfig, "dataset is required")
	}
	if batchSize <= 0 {
		return nil, newConfigError(ErrConfig, "batch size must be > 0, got %d", batchSize)
	}
	td := &TrainDataset{
		name:      name,
		dataset:   ds,
		toTensor:  timage.ToTensor(dtype),
		batchSize: batchSize,
	}
	td.Reset()
	return td, nil
}

// WithShuffle shuffles the order of the items at every epoch using rng.
// A nil rng disables shuffling.
//
// Returns itself, to allow chain of method calls.
func (td *TrainDataset) WithShuffle(rng *rand.Rand) *TrainDataset {
	td.mu.Lock()
	td.shuffle = rng
	td.mu.Unlock()
	td.Reset()
	return td
}

// WithInfinite makes the dataset loop over epochs forever instead of
// returning io.EOF.
//
// Returns itself, to allow chain of method calls.
func (td *TrainDataset) WithInfinite(infinite bool) *TrainDataset {
	td.mu.Lock()
	td.infinite = infinite
	td.mu.Unlock()
	return td
}

// Name implements train.Dataset.
func (td *TrainDataset) Name() string { return td.name }

// Reset implements train.Dataset. It restarts the epoch and reshuffles, if
// shuffling is enabled.
func (td *TrainDataset) Reset() {
	td.mu.Lock()
	defer td.mu.Unlock()
	td.resetLocked()
}

func (td *TrainDataset) resetLocked() {
	td.next = 0
	n := td.dataset.Len()
	if len(td.order) != n {
		td.order = make([]int, n)
	}
	for i := range td.order {
		td.order[i] = i
	}
	if td.shuffle != nil {
		td.shuffle.Shuffle(n, func(i, j int) {
			td.order[i], td.order[j] = td.order[j], td.order[i]
		})
	}
}

// nextIndices returns the indices of the next batch. The last batch of a
// finite epoch may be smaller than the batch size.
func (td *TrainDataset) nextIndices() ([]int, error) {
	td.mu.Lock()
	defer td.mu.Unlock()
	if len(td.order) == 0 {
		return nil, io.EOF
	}
	indices := make([]int, 0, td.batchSize)
	for len(indices) < td.batchSize {
		if td.next >= len(td.order) {
			if !td.infinite {
				break
			}
			td.resetLocked()
		}
		indices = append(indices, td.order[td.next])
		td.next++
	}
	if len(indices) == 0 {
		return nil, io.EOF
	}
	return indices, nil
}

// Yield implements train.Dataset. spec is the TrainDataset itself.
func (td *TrainDataset) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	spec = td
	indices, err := td.nextIndices()
	if err != nil {
		return
	}
	items := make([][]image.Image, len(indices))
	for i, idx := range indices {
		items[i], err = td.dataset.Item(idx)
		if err != nil {
			err = errors.WithMessagef(err, "while reading item %d of %q", idx, td.name)
			return
		}
	}
	batches, err := batchImages(items, td.toTensor)
	if err != nil {
		err = errors.WithMessagef(err, "while batching items %v of %q", indices, td.name)
		return
	}
	labels = batches[:1]
	inputs = batches[1:]
	return
}

// PairsToTensors converts items, each an ordered list of images such as
// [hr, lr], into one batched tensor per position.
func PairsToTensors(items [][]image.Image, dtype dtypes.DType) ([]*tensors.Tensor, error) {
	return batchImages(items, timage.ToTensor(dtype))
}

func batchImages(items [][]image.Image, toTensor *timage.ToTensorConfig) ([]*tensors.Tensor, error) {
	if len(items) == 0 {
		return nil, errors.New("no items to batch")
	}
	numPositions := len(items[0])
	if numPositions == 0 {
		return nil, errors.New("item 0 has no images")
	}
	batches := make([]*tensors.Tensor, numPositions)
	column := make([]image.Image, len(items))
	for pos := range numPositions {
		var size image.Point
		for i, item := range items {
			if len(item) != numPositions {
				return nil, errors.Errorf("item %d has %d images, item 0 has %d", i, len(item), numPositions)
			}
			itemSize := item[pos].Bounds().Size()
			if i == 0 {
				size = itemSize
			} else if itemSize != size {
				return nil, errors.Errorf("image %d of item %d is %s, expected %s", pos, i,
					formatSize(itemSize), formatSize(size))
			}
			column[i] = item[pos]
		}
		batches[pos] = toTensor.Batch(column)
	}
	return batches, nil
}

func formatSize(p image.Point) string {
	return fmt.Sprintf("%dx%d", p.X, p.Y)
}
