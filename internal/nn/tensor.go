package nn

import "fmt"

// Tensor is a dense row-major float32 array with an explicit shape.
//
// Layers in this package use NCHW layout for 4D tensors:
// [batch, channels, height, width].
type Tensor struct {
	Shape []int
	Data  []float32
}

// NewTensor allocates a zero-filled tensor with the given shape.
func NewTensor(shape ...int) *Tensor {
	size := 1
	for _, d := range shape {
		if d <= 0 {
			panic(fmt.Sprintf("tensor: invalid dimension %d in shape %v", d, shape))
		}
		size *= d
	}
	return &Tensor{
		Shape: append([]int(nil), shape...),
		Data:  make([]float32, size),
	}
}

// Size returns the total number of elements.
func (t *Tensor) Size() int {
	size := 1
	for _, d := range t.Shape {
		size *= d
	}
	return size
}

// Dim returns the length of dimension i.
func (t *Tensor) Dim(i int) int {
	return t.Shape[i]
}

// Reshape returns a view over the same data with a new shape.
// The element count must match exactly.
func (t *Tensor) Reshape(shape ...int) *Tensor {
	size := 1
	for _, d := range shape {
		size *= d
	}
	if size != t.Size() {
		panic(fmt.Sprintf("tensor: cannot reshape %v to %v", t.Shape, shape))
	}
	return &Tensor{
		Shape: append([]int(nil), shape...),
		Data:  t.Data,
	}
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	c := &Tensor{
		Shape: append([]int(nil), t.Shape...),
		Data:  make([]float32, len(t.Data)),
	}
	copy(c.Data, t.Data)
	return c
}
