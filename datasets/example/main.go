package main

// Example command that demonstrates loading DIV2K pairs with the
// auto-discovery helper and converting a small batch into gomlx tensors.
//
// The dataset is lazy: it stores file paths and only decodes images when an
// item is read.
//
// Usage:
//   go run ./datasets/example
//
// Note: this example expects the DIV2K archives to be extracted under one of
// the candidate roots below (for instance ~/data/DIV2K/DIV2K_train_HR). If no
// root is found the example will print an error and exit.

import (
	"context"
	"fmt"
	"image"
	"io"
	"log"

	"github.com/gomlx/gopjrt/dtypes"

	"github.com/Noofbiz/srdata/datasets"
)

func main() {
	root, err := datasets.FindRoot([]string{"~/data", "./data", "../data", "."})
	if err != nil {
		log.Fatalf("failed to find DIV2K root: %v", err)
	}
	fmt.Printf("Using DIV2K root: %s\n", root)

	// Paired dataset: HR plus the bicubic X2 track shipped with DIV2K.
	pairsDS, err := datasets.NewDIV2K(context.Background(), root, datasets.Config{
		Scales: []int{2},
		Tracks: []datasets.Track{datasets.TrackBicubic},
		Split:  datasets.SplitTrain,
	})
	if err != nil {
		log.Fatalf("failed to build DIV2K index: %v", err)
	}
	fmt.Printf("Total paired samples available: %d\n", pairsDS.Len())
	if sample, err := pairsDS.Sample(0); err == nil {
		fmt.Printf("  First sample: %v\n", sample)
	}

	// HR-only dataset wrapped with random-scale downscaling. Every access
	// draws a new scale and a new crop, so batches keep a fixed LR size but
	// the HR size changes with the scale. Batch them one at a time.
	hrDS, err := datasets.NewDIV2K(context.Background(), root, datasets.Config{
		Scales: []int{},
		Split:  datasets.SplitTrain,
	})
	if err != nil {
		log.Fatalf("failed to build HR index: %v", err)
	}
	randomDS, err := datasets.NewRandomDownscaled(hrDS, 1, 4, datasets.BicubicDownscaler{})
	if err != nil {
		log.Fatalf("failed to wrap HR dataset: %v", err)
	}

	n := min(4, randomDS.Len())
	for i := range n {
		pair, scale, err := randomDS.ItemWithScale(i)
		if err != nil {
			log.Fatalf("failed to read item %d: %v", i, err)
		}
		batches, err := datasets.PairsToTensors([][]image.Image{pair}, dtypes.Float32)
		if err != nil {
			log.Fatalf("failed to convert item %d to tensors: %v", i, err)
		}
		fmt.Printf("Item %d at scale %.3f: hr=%v lr=%v\n", i, scale,
			batches[0].Shape().Dimensions, batches[1].Shape().Dimensions)
	}

	fmt.Println()

	// HR images downscaled at a fixed scale batch cleanly once cropped to a
	// common size.
	cropped, err := datasets.NewDownscaled(hrDS, 2, datasets.BicubicDownscaler{}, datasets.WithCropSize(48))
	if err != nil {
		log.Fatalf("failed to wrap HR dataset: %v", err)
	}
	train, err := datasets.NewTrainDataset("div2k-x2", cropped, 8, dtypes.Float32)
	if err != nil {
		log.Fatalf("failed to create training dataset: %v", err)
	}
	_, inputs, labels, err := train.Yield()
	if err == io.EOF {
		fmt.Println("Training dataset is empty")
		return
	}
	if err != nil {
		log.Fatalf("failed to yield batch: %v", err)
	}
	fmt.Printf("Created training batch: input=%v label=%v\n",
		inputs[0].Shape().Dimensions, labels[0].Shape().Dimensions)

	fmt.Println("\nExample completed successfully!")
}
