package model

import (
	"image"

	"github.com/digitml/mnistserve/internal/nn"
	"github.com/digitml/mnistserve/internal/preprocess"
)

// Classifier ties the preprocessing pipeline to a predictor and produces the
// final (digit, confidence) result.
type Classifier struct {
	predictor Predictor
}

// NewClassifier wraps a predictor.
func NewClassifier(p Predictor) *Classifier {
	return &Classifier{predictor: p}
}

// Classify preprocesses the image, runs the forward pass, applies softmax
// over the 10 logits and returns the argmax class with its probability.
func (c *Classifier) Classify(img image.Image) (digit int, confidence float32, err error) {
	input := preprocess.ToTensor(img)

	logits, err := c.predictor.Predict(input.Data)
	if err != nil {
		return 0, 0, err
	}

	probs := nn.Softmax(logits)
	digit = nn.Argmax(probs)
	return digit, probs[digit], nil
}

// Close releases the underlying predictor.
func (c *Classifier) Close() {
	c.predictor.Close()
}
