package nn

import "fmt"

// Linear is a fully connected layer: y = x*W^T + b.
//
// Weight shape is [outFeatures, inFeatures], matching the convention used by
// exported checkpoints.
type Linear struct {
	inFeatures  int
	outFeatures int

	weight *Parameter
	bias   *Parameter

	input *Tensor
}

// NewLinear creates a fully connected layer with Xavier-initialized weights
// and zero bias.
func NewLinear(name string, inFeatures, outFeatures int) *Linear {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("linear: invalid features in=%d out=%d", inFeatures, outFeatures))
	}

	weight := NewParameter(name+".weight", outFeatures, inFeatures)
	bias := NewParameter(name+".bias", outFeatures)
	XavierInit(weight, inFeatures, outFeatures)

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
	}
}

// Forward computes x*W^T + b for a [batch, inFeatures] input.
func (l *Linear) Forward(x *Tensor) *Tensor {
	if len(x.Shape) != 2 || x.Shape[1] != l.inFeatures {
		panic(fmt.Sprintf("linear: expected input [N,%d], got shape %v", l.inFeatures, x.Shape))
	}
	l.input = x

	batch := x.Shape[0]
	out := NewTensor(batch, l.outFeatures)
	for n := 0; n < batch; n++ {
		for o := 0; o < l.outFeatures; o++ {
			sum := l.bias.Data[o]
			row := l.weight.Data[o*l.inFeatures : (o+1)*l.inFeatures]
			in := x.Data[n*l.inFeatures : (n+1)*l.inFeatures]
			for i, v := range in {
				sum += v * row[i]
			}
			out.Data[n*l.outFeatures+o] = sum
		}
	}
	return out
}

// Backward accumulates weight and bias gradients and returns the input
// gradient.
func (l *Linear) Backward(grad *Tensor) *Tensor {
	x := l.input
	batch := x.Shape[0]

	gradIn := NewTensor(batch, l.inFeatures)
	for n := 0; n < batch; n++ {
		in := x.Data[n*l.inFeatures : (n+1)*l.inFeatures]
		gin := gradIn.Data[n*l.inFeatures : (n+1)*l.inFeatures]
		for o := 0; o < l.outFeatures; o++ {
			g := grad.Data[n*l.outFeatures+o]
			if g == 0 {
				continue
			}
			l.bias.Grad[o] += g
			wRow := l.weight.Data[o*l.inFeatures : (o+1)*l.inFeatures]
			gRow := l.weight.Grad[o*l.inFeatures : (o+1)*l.inFeatures]
			for i := range in {
				gRow[i] += g * in[i]
				gin[i] += g * wRow[i]
			}
		}
	}
	return gradIn
}

// Parameters returns the weight and bias.
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

func (l *Linear) String() string {
	return fmt.Sprintf("Linear(in=%d, out=%d)", l.inFeatures, l.outFeatures)
}
