package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConv2DOutputShape(t *testing.T) {
	conv := NewConv2D("conv", 1, 6, 5, 1, 0)
	out := conv.Forward(NewTensor(2, 1, 28, 28))
	assert.Equal(t, []int{2, 6, 24, 24}, out.Shape)
}

func TestConv2DKnownValues(t *testing.T) {
	// 1x1 kernel with weight 2 and bias 1 is an affine map per pixel.
	conv := NewConv2D("conv", 1, 1, 1, 1, 0)
	conv.weight.Data[0] = 2
	conv.bias.Data[0] = 1

	in := NewTensor(1, 1, 2, 2)
	copy(in.Data, []float32{0, 1, 2, 3})

	out := conv.Forward(in)
	assert.Equal(t, []float32{1, 3, 5, 7}, out.Data)
}

func TestConv2DPadding(t *testing.T) {
	conv := NewConv2D("conv", 1, 1, 3, 1, 1)
	out := conv.Forward(NewTensor(1, 1, 4, 4))
	assert.Equal(t, []int{1, 1, 4, 4}, out.Shape)
}

func TestMaxPool2D(t *testing.T) {
	pool := NewMaxPool2D(2)
	in := NewTensor(1, 1, 2, 2)
	copy(in.Data, []float32{1, 5, 3, 2})

	out := pool.Forward(in)
	require.Equal(t, []int{1, 1, 1, 1}, out.Shape)
	assert.Equal(t, float32(5), out.Data[0])

	// The gradient flows back only to the max position.
	grad := NewTensor(1, 1, 1, 1)
	grad.Data[0] = 1
	gradIn := pool.Backward(grad)
	assert.Equal(t, []float32{0, 1, 0, 0}, gradIn.Data)
}

func TestReLU(t *testing.T) {
	relu := NewReLU()
	in := NewTensor(1, 4)
	copy(in.Data, []float32{-2, -0.5, 0, 3})

	out := relu.Forward(in)
	assert.Equal(t, []float32{0, 0, 0, 3}, out.Data)

	grad := NewTensor(1, 4)
	copy(grad.Data, []float32{1, 1, 1, 1})
	gradIn := relu.Backward(grad)
	assert.Equal(t, []float32{0, 0, 0, 1}, gradIn.Data)
}

func TestLinearKnownValues(t *testing.T) {
	lin := NewLinear("fc", 2, 2)
	copy(lin.weight.Data, []float32{1, 2, 3, 4}) // rows: [1 2], [3 4]
	copy(lin.bias.Data, []float32{10, 20})

	in := NewTensor(1, 2)
	copy(in.Data, []float32{1, 1})

	out := lin.Forward(in)
	assert.Equal(t, []float32{13, 27}, out.Data)
}

func TestSoftmaxSumsToOne(t *testing.T) {
	probs := Softmax([]float32{1, 2, 3, 4, 1000})

	var sum float64
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, float32(0))
		sum += float64(p)
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
	assert.Equal(t, 4, Argmax(probs))
}

func TestSoftmaxCrossEntropyPerfectPrediction(t *testing.T) {
	logits := NewTensor(1, 3)
	copy(logits.Data, []float32{100, 0, 0})

	loss, grad := SoftmaxCrossEntropy(logits, []int{0})
	assert.InDelta(t, 0.0, float64(loss), 1e-4)
	for _, g := range grad.Data {
		assert.InDelta(t, 0.0, float64(g), 1e-4)
	}
}

func TestAccuracy(t *testing.T) {
	logits := NewTensor(2, 3)
	copy(logits.Data, []float32{
		5, 1, 0, // argmax 0
		0, 1, 5, // argmax 2
	})
	assert.Equal(t, float32(0.5), Accuracy(logits, []int{0, 1}))
	assert.Equal(t, float32(1.0), Accuracy(logits, []int{0, 2}))
}

// TestGradientsMatchNumeric checks analytic backward passes against central
// differences on a small conv -> relu -> pool -> flatten -> linear stack.
//
// Inputs and weights are fixed positive values so every ReLU preactivation
// and pooling argmax stays well clear of a boundary; perturbing a single
// weight by eps then cannot flip a kink and invalidate the comparison.
func TestGradientsMatchNumeric(t *testing.T) {
	conv := NewConv2D("conv", 1, 2, 3, 1, 0)
	relu := NewReLU()
	pool := NewMaxPool2D(2)
	flatten := NewFlatten()
	lin := NewLinear("fc", 2*2*2, 3)
	layers := []Layer{conv, relu, pool, flatten, lin}
	labels := []int{1}

	for i := range conv.weight.Data {
		conv.weight.Data[i] = 0.2 + 0.01*float32(i%5)
	}
	for i := range conv.bias.Data {
		conv.bias.Data[i] = 0.1
	}
	for i := range lin.weight.Data {
		lin.weight.Data[i] = 0.05 + 0.01*float32(i%7)
	}
	for i := range lin.bias.Data {
		lin.bias.Data[i] = 0.05
	}

	in := NewTensor(1, 1, 6, 6)
	for i := range in.Data {
		in.Data[i] = 0.1 + 0.05*float32(i)
	}

	forwardLoss := func() float32 {
		x := in
		for _, l := range layers {
			x = l.Forward(x)
		}
		loss, _ := SoftmaxCrossEntropy(x, labels)
		return loss
	}

	// Analytic gradients.
	x := in
	for _, l := range layers {
		x = l.Forward(x)
	}
	_, grad := SoftmaxCrossEntropy(x, labels)
	for i := len(layers) - 1; i >= 0; i-- {
		grad = layers[i].Backward(grad)
	}

	const eps = 1e-2
	for _, p := range []*Parameter{conv.weight, conv.bias, lin.weight, lin.bias} {
		for i := range p.Data {
			orig := p.Data[i]
			p.Data[i] = orig + eps
			plus := forwardLoss()
			p.Data[i] = orig - eps
			minus := forwardLoss()
			p.Data[i] = orig

			numeric := (plus - minus) / (2 * eps)
			require.InDeltaf(t, float64(numeric), float64(p.Grad[i]), 1e-2,
				"%s[%d]: numeric %v vs analytic %v", p.Name, i, numeric, p.Grad[i])
		}
	}
}
