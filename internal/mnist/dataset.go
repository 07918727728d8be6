package mnist

import (
	"fmt"
	"math/rand"
	"path/filepath"

	"github.com/digitml/mnistserve/internal/nn"
	"github.com/digitml/mnistserve/internal/preprocess"
)

// Dataset holds normalized MNIST images and their labels.
type Dataset struct {
	Images [][]float32 // each of length 784, already standardized
	Labels []int
	Rows   int
	Cols   int
}

// Load reads the training or test split from dir, expecting the standard
// uncompressed file names (train-images-idx3-ubyte etc.). Pixels are scaled
// to [0,1] and standardized with the same constants the serving path uses.
// limit > 0 caps the number of samples.
func Load(dir string, train bool, limit int) (*Dataset, error) {
	prefix := "t10k"
	if train {
		prefix = "train"
	}

	images, rows, cols, err := readImagesFile(filepath.Join(dir, prefix+"-images-idx3-ubyte"))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s images: %w", prefix, err)
	}
	labels, err := readLabelsFile(filepath.Join(dir, prefix+"-labels-idx1-ubyte"))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s labels: %w", prefix, err)
	}
	if len(images) != len(labels) {
		return nil, fmt.Errorf("image/label count mismatch: %d vs %d", len(images), len(labels))
	}

	n := len(images)
	if limit > 0 && n > limit {
		n = limit
	}

	ds := &Dataset{
		Images: make([][]float32, n),
		Labels: make([]int, n),
		Rows:   rows,
		Cols:   cols,
	}
	for i := 0; i < n; i++ {
		pixels := make([]float32, len(images[i]))
		for j, b := range images[i] {
			pixels[j] = preprocess.Normalize(float32(b) / 255.0)
		}
		ds.Images[i] = pixels
		label := int(labels[i])
		if label < 0 || label > 9 {
			return nil, fmt.Errorf("label out of range [0,9] at sample %d: %d", i, label)
		}
		ds.Labels[i] = label
	}
	return ds, nil
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.Images) }

// Shuffle permutes samples in place.
func (d *Dataset) Shuffle(rng *rand.Rand) {
	rng.Shuffle(d.Len(), func(i, j int) {
		d.Images[i], d.Images[j] = d.Images[j], d.Images[i]
		d.Labels[i], d.Labels[j] = d.Labels[j], d.Labels[i]
	})
}

// Batch assembles samples [start, start+size) into an input tensor of shape
// [size, 1, rows, cols] plus the matching labels. The batch is truncated at
// the end of the dataset.
func (d *Dataset) Batch(start, size int) (*nn.Tensor, []int) {
	end := start + size
	if end > d.Len() {
		end = d.Len()
	}
	count := end - start

	t := nn.NewTensor(count, 1, d.Rows, d.Cols)
	stride := d.Rows * d.Cols
	for i := 0; i < count; i++ {
		copy(t.Data[i*stride:(i+1)*stride], d.Images[start+i])
	}
	return t, d.Labels[start:end]
}
