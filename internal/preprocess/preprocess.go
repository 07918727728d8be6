// Package preprocess converts arbitrary input images into the canonical
// model input tensor. The exact transform order and constants must match
// what the trainer applies to the dataset, or accuracy silently degrades;
// both sides share this package.
package preprocess

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"github.com/digitml/mnistserve/internal/nn"
)

// Dataset statistics used to standardize pixel intensities. These are the
// precomputed mean and standard deviation of the MNIST training set.
const (
	Mean = 0.1307
	Std  = 0.3081

	// ImageSize is the canonical input width and height.
	ImageSize = 28
)

// Normalize maps a pixel intensity in [0,1] to its standardized value.
func Normalize(v float32) float32 {
	return (v - Mean) / Std
}

// ToTensor converts an image of any size and color mode into the model input
// tensor of shape [1, 1, 28, 28].
//
// Steps, in order: convert to grayscale, resize to 28x28 with bilinear
// resampling, scale to [0,1], standardize with the dataset mean and std.
// Bilinear is used because it is what the reference training pipeline's
// resize applies; changing it here without retraining shifts accuracy.
func ToTensor(img image.Image) *nn.Tensor {
	gray := imaging.Grayscale(img)
	scaled := resize.Resize(ImageSize, ImageSize, gray, resize.Bilinear)

	t := nn.NewTensor(1, 1, ImageSize, ImageSize)
	for y := 0; y < ImageSize; y++ {
		for x := 0; x < ImageSize; x++ {
			// Grayscale output has equal channels; the red channel carries
			// the 16-bit luminance value.
			r, _, _, _ := scaled.At(x, y).RGBA()
			t.Data[y*ImageSize+x] = Normalize(float32(r) / 65535.0)
		}
	}
	return t
}
