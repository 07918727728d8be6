package nn

// Flatten collapses all non-batch dimensions into one.
type Flatten struct {
	inputShape []int
}

// NewFlatten creates a flatten layer.
func NewFlatten() *Flatten { return &Flatten{} }

// Forward reshapes [N, ...] to [N, product of the rest].
func (f *Flatten) Forward(x *Tensor) *Tensor {
	f.inputShape = append([]int(nil), x.Shape...)
	rest := 1
	for _, d := range x.Shape[1:] {
		rest *= d
	}
	return x.Reshape(x.Shape[0], rest)
}

// Backward restores the original shape.
func (f *Flatten) Backward(grad *Tensor) *Tensor {
	return grad.Reshape(f.inputShape...)
}

// Parameters returns nil.
func (f *Flatten) Parameters() []*Parameter { return nil }

func (f *Flatten) String() string { return "Flatten()" }
