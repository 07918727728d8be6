package nn

import (
	"fmt"
	"math"
)

// Softmax converts logits into a probability distribution. The maximum logit
// is subtracted before exponentiation for numerical stability.
func Softmax(logits []float32) []float32 {
	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}

	probs := make([]float32, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - maxLogit))
		probs[i] = float32(e)
		sum += e
	}
	for i := range probs {
		probs[i] = float32(float64(probs[i]) / sum)
	}
	return probs
}

// Argmax returns the index of the largest value.
func Argmax(v []float32) int {
	best := 0
	for i, x := range v[1:] {
		if x > v[best] {
			best = i + 1
		}
	}
	return best
}

// SoftmaxCrossEntropy computes the mean cross-entropy loss between logits of
// shape [batch, classes] and integer class labels, along with the gradient of
// the loss with respect to the logits: (softmax(logits) - onehot) / batch.
func SoftmaxCrossEntropy(logits *Tensor, labels []int) (float32, *Tensor) {
	if len(logits.Shape) != 2 {
		panic(fmt.Sprintf("cross entropy: expected 2D logits [N,C], got shape %v", logits.Shape))
	}
	batch, classes := logits.Shape[0], logits.Shape[1]
	if len(labels) != batch {
		panic(fmt.Sprintf("cross entropy: %d labels for batch of %d", len(labels), batch))
	}

	grad := NewTensor(batch, classes)
	var totalLoss float64
	for n := 0; n < batch; n++ {
		probs := Softmax(logits.Data[n*classes : (n+1)*classes])
		label := labels[n]
		if label < 0 || label >= classes {
			panic(fmt.Sprintf("cross entropy: label %d out of range [0,%d)", label, classes))
		}
		// Clamp to avoid log(0) on confident wrong predictions.
		p := float64(probs[label])
		if p < 1e-12 {
			p = 1e-12
		}
		totalLoss += -math.Log(p)

		for c := 0; c < classes; c++ {
			g := probs[c]
			if c == label {
				g -= 1
			}
			grad.Data[n*classes+c] = g / float32(batch)
		}
	}
	return float32(totalLoss / float64(batch)), grad
}

// Accuracy returns the fraction of rows whose argmax matches the label.
func Accuracy(logits *Tensor, labels []int) float32 {
	batch, classes := logits.Shape[0], logits.Shape[1]
	correct := 0
	for n := 0; n < batch; n++ {
		if Argmax(logits.Data[n*classes:(n+1)*classes]) == labels[n] {
			correct++
		}
	}
	return float32(correct) / float32(batch)
}
