package nn

import "fmt"

// MaxPool2D is a non-overlapping max pooling layer (stride equals the window
// size).
type MaxPool2D struct {
	size int

	inputShape []int
	argmax     []int // flat input index of each output element's maximum
}

// NewMaxPool2D creates a max pooling layer with a size x size window.
func NewMaxPool2D(size int) *MaxPool2D {
	if size <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid window size %d", size))
	}
	return &MaxPool2D{size: size}
}

// Forward pools each size x size window down to its maximum.
func (m *MaxPool2D) Forward(x *Tensor) *Tensor {
	if len(x.Shape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got shape %v", x.Shape))
	}
	batch, channels, height, width := x.Shape[0], x.Shape[1], x.Shape[2], x.Shape[3]
	outH := height / m.size
	outW := width / m.size

	m.inputShape = append([]int(nil), x.Shape...)
	out := NewTensor(batch, channels, outH, outW)
	m.argmax = make([]int, out.Size())

	for n := 0; n < batch; n++ {
		for c := 0; c < channels; c++ {
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					best := -1
					var bestVal float32
					for kh := 0; kh < m.size; kh++ {
						for kw := 0; kw < m.size; kw++ {
							ih := oh*m.size + kh
							iw := ow*m.size + kw
							idx := ((n*channels+c)*height+ih)*width + iw
							if best < 0 || x.Data[idx] > bestVal {
								best = idx
								bestVal = x.Data[idx]
							}
						}
					}
					outIdx := ((n*channels+c)*outH+oh)*outW + ow
					out.Data[outIdx] = bestVal
					m.argmax[outIdx] = best
				}
			}
		}
	}
	return out
}

// Backward routes each output gradient to the input position that produced
// the maximum.
func (m *MaxPool2D) Backward(grad *Tensor) *Tensor {
	gradIn := NewTensor(m.inputShape...)
	for i, g := range grad.Data {
		gradIn.Data[m.argmax[i]] += g
	}
	return gradIn
}

// Parameters returns nil; pooling has no trainable state.
func (m *MaxPool2D) Parameters() []*Parameter { return nil }

func (m *MaxPool2D) String() string {
	return fmt.Sprintf("MaxPool2D(size=%d)", m.size)
}
