package nn

// ReLU applies max(0, x) elementwise.
type ReLU struct {
	input *Tensor
}

// NewReLU creates a ReLU activation layer.
func NewReLU() *ReLU { return &ReLU{} }

// Forward zeroes all negative inputs.
func (r *ReLU) Forward(x *Tensor) *Tensor {
	r.input = x
	out := NewTensor(x.Shape...)
	for i, v := range x.Data {
		if v > 0 {
			out.Data[i] = v
		}
	}
	return out
}

// Backward passes gradients through only where the input was positive.
func (r *ReLU) Backward(grad *Tensor) *Tensor {
	gradIn := NewTensor(r.input.Shape...)
	for i, v := range r.input.Data {
		if v > 0 {
			gradIn.Data[i] = grad.Data[i]
		}
	}
	return gradIn
}

// Parameters returns nil.
func (r *ReLU) Parameters() []*Parameter { return nil }

func (r *ReLU) String() string { return "ReLU()" }
