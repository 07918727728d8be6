package nn

import "fmt"

// Conv2D is a 2D convolutional layer.
//
// Input shape:  [batch, inChannels, height, width]
// Weight shape: [outChannels, inChannels, kernel, kernel]
// Bias shape:   [outChannels]
// Output shape: [batch, outChannels, outH, outW]
//
// where outH = (height + 2*padding - kernel)/stride + 1 and likewise for outW.
type Conv2D struct {
	inChannels  int
	outChannels int
	kernel      int
	stride      int
	padding     int

	weight *Parameter
	bias   *Parameter

	input *Tensor // cached by Forward for the backward pass
}

// NewConv2D creates a convolutional layer with Xavier-initialized weights and
// zero bias.
func NewConv2D(name string, inChannels, outChannels, kernel, stride, padding int) *Conv2D {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels in=%d out=%d", inChannels, outChannels))
	}
	if kernel <= 0 || stride <= 0 || padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel=%d stride=%d padding=%d", kernel, stride, padding))
	}

	weight := NewParameter(name+".weight", outChannels, inChannels, kernel, kernel)
	bias := NewParameter(name+".bias", outChannels)

	fanIn := inChannels * kernel * kernel
	fanOut := outChannels * kernel * kernel
	XavierInit(weight, fanIn, fanOut)

	return &Conv2D{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernel:      kernel,
		stride:      stride,
		padding:     padding,
		weight:      weight,
		bias:        bias,
	}
}

// Forward performs the convolution.
func (c *Conv2D) Forward(x *Tensor) *Tensor {
	if len(x.Shape) != 4 {
		panic(fmt.Sprintf("conv2d: expected 4D input [N,C,H,W], got shape %v", x.Shape))
	}
	if x.Shape[1] != c.inChannels {
		panic(fmt.Sprintf("conv2d: input channels %d != expected %d", x.Shape[1], c.inChannels))
	}
	c.input = x

	batch, height, width := x.Shape[0], x.Shape[2], x.Shape[3]
	outH := (height+2*c.padding-c.kernel)/c.stride + 1
	outW := (width+2*c.padding-c.kernel)/c.stride + 1
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("conv2d: input %dx%d too small for kernel %d", height, width, c.kernel))
	}

	out := NewTensor(batch, c.outChannels, outH, outW)
	for n := 0; n < batch; n++ {
		for oc := 0; oc < c.outChannels; oc++ {
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					sum := c.bias.Data[oc]
					for ic := 0; ic < c.inChannels; ic++ {
						for kh := 0; kh < c.kernel; kh++ {
							ih := oh*c.stride - c.padding + kh
							if ih < 0 || ih >= height {
								continue
							}
							for kw := 0; kw < c.kernel; kw++ {
								iw := ow*c.stride - c.padding + kw
								if iw < 0 || iw >= width {
									continue
								}
								in := x.Data[((n*c.inChannels+ic)*height+ih)*width+iw]
								w := c.weight.Data[((oc*c.inChannels+ic)*c.kernel+kh)*c.kernel+kw]
								sum += in * w
							}
						}
					}
					out.Data[((n*c.outChannels+oc)*outH+oh)*outW+ow] = sum
				}
			}
		}
	}
	return out
}

// Backward accumulates weight and bias gradients and returns the gradient
// with respect to the cached input.
func (c *Conv2D) Backward(grad *Tensor) *Tensor {
	x := c.input
	batch, height, width := x.Shape[0], x.Shape[2], x.Shape[3]
	outH, outW := grad.Shape[2], grad.Shape[3]

	gradIn := NewTensor(x.Shape...)
	for n := 0; n < batch; n++ {
		for oc := 0; oc < c.outChannels; oc++ {
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					g := grad.Data[((n*c.outChannels+oc)*outH+oh)*outW+ow]
					if g == 0 {
						continue
					}
					c.bias.Grad[oc] += g
					for ic := 0; ic < c.inChannels; ic++ {
						for kh := 0; kh < c.kernel; kh++ {
							ih := oh*c.stride - c.padding + kh
							if ih < 0 || ih >= height {
								continue
							}
							for kw := 0; kw < c.kernel; kw++ {
								iw := ow*c.stride - c.padding + kw
								if iw < 0 || iw >= width {
									continue
								}
								inIdx := ((n*c.inChannels+ic)*height+ih)*width + iw
								wIdx := ((oc*c.inChannels+ic)*c.kernel+kh)*c.kernel + kw
								c.weight.Grad[wIdx] += g * x.Data[inIdx]
								gradIn.Data[inIdx] += g * c.weight.Data[wIdx]
							}
						}
					}
				}
			}
		}
	}
	return gradIn
}

// Parameters returns the weight and bias.
func (c *Conv2D) Parameters() []*Parameter {
	return []*Parameter{c.weight, c.bias}
}

func (c *Conv2D) String() string {
	return fmt.Sprintf("Conv2D(in=%d, out=%d, kernel=%d, stride=%d, padding=%d)",
		c.inChannels, c.outChannels, c.kernel, c.stride, c.padding)
}
