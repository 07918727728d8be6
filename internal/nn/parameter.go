package nn

// Parameter is a named trainable tensor with an accumulated gradient buffer.
type Parameter struct {
	Name  string
	Shape []int
	Data  []float32
	Grad  []float32
}

// NewParameter allocates a zero-filled parameter with the given shape.
func NewParameter(name string, shape ...int) *Parameter {
	size := 1
	for _, d := range shape {
		size *= d
	}
	return &Parameter{
		Name:  name,
		Shape: append([]int(nil), shape...),
		Data:  make([]float32, size),
		Grad:  make([]float32, size),
	}
}

// Size returns the number of elements.
func (p *Parameter) Size() int {
	return len(p.Data)
}

// ZeroGrad clears the accumulated gradient.
func (p *Parameter) ZeroGrad() {
	for i := range p.Grad {
		p.Grad[i] = 0
	}
}

// Layer is a differentiable network layer.
//
// Forward caches whatever it needs for the next Backward call, which makes a
// layer non-reentrant: concurrent Forward calls on the same layer must be
// serialized by the caller.
type Layer interface {
	// Forward computes the layer output for the given input.
	Forward(x *Tensor) *Tensor
	// Backward takes the gradient of the loss with respect to the layer
	// output, accumulates parameter gradients, and returns the gradient with
	// respect to the layer input.
	Backward(grad *Tensor) *Tensor
	// Parameters returns the trainable parameters, if any.
	Parameters() []*Parameter
}
