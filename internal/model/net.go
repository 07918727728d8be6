package model

import (
	"strings"

	"github.com/digitml/mnistserve/internal/nn"
)

// NumClasses is the number of output digits.
const NumClasses = 10

// Net is the digit classification network. The topology is fixed:
//
//	Input:   [batch, 1, 28, 28]
//	Conv2D:  1 -> 6 channels, 5x5  -> [batch, 6, 24, 24]
//	ReLU + MaxPool 2x2             -> [batch, 6, 12, 12]
//	Conv2D:  6 -> 16 channels, 5x5 -> [batch, 16, 8, 8]
//	ReLU + MaxPool 2x2             -> [batch, 16, 4, 4]
//	Flatten                        -> [batch, 256]
//	Linear: 256 -> 120, ReLU
//	Linear: 120 -> 84, ReLU
//	Linear: 84 -> 10 (logits)
//
// Forward returns raw logits; softmax is applied by the caller where a
// probability is needed.
type Net struct {
	layers []nn.Layer
}

// NewNet creates a freshly initialized network.
func NewNet() *Net {
	return &Net{
		layers: []nn.Layer{
			nn.NewConv2D("conv1", 1, 6, 5, 1, 0),
			nn.NewReLU(),
			nn.NewMaxPool2D(2),
			nn.NewConv2D("conv2", 6, 16, 5, 1, 0),
			nn.NewReLU(),
			nn.NewMaxPool2D(2),
			nn.NewFlatten(),
			nn.NewLinear("fc1", 16*4*4, 120),
			nn.NewReLU(),
			nn.NewLinear("fc2", 120, 84),
			nn.NewReLU(),
			nn.NewLinear("fc3", 84, NumClasses),
		},
	}
}

// Forward runs the network on input of shape [batch, 1, 28, 28] and returns
// logits of shape [batch, 10]. Layers cache activations for Backward, so
// concurrent calls must be serialized by the caller.
func (n *Net) Forward(x *nn.Tensor) *nn.Tensor {
	for _, layer := range n.layers {
		x = layer.Forward(x)
	}
	return x
}

// Backward propagates the logits gradient through the network, accumulating
// parameter gradients.
func (n *Net) Backward(grad *nn.Tensor) {
	for i := len(n.layers) - 1; i >= 0; i-- {
		grad = n.layers[i].Backward(grad)
	}
}

// Parameters returns all trainable parameters in layer order.
func (n *Net) Parameters() []*nn.Parameter {
	var params []*nn.Parameter
	for _, layer := range n.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// NumParameters returns the total trainable parameter count.
func (n *Net) NumParameters() int {
	total := 0
	for _, p := range n.Parameters() {
		total += p.Size()
	}
	return total
}

func (n *Net) String() string {
	var b strings.Builder
	b.WriteString("Net(\n")
	for _, layer := range n.layers {
		if s, ok := layer.(interface{ String() string }); ok {
			b.WriteString("  " + s.String() + "\n")
		}
	}
	b.WriteString(")")
	return b.String()
}
