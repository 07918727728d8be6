package preprocess

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeConstants(t *testing.T) {
	assert.InDelta(t, (1.0-Mean)/Std, float64(Normalize(1)), 1e-6)
	assert.InDelta(t, (0.0-Mean)/Std, float64(Normalize(0)), 1e-6)
}

func TestToTensorShape(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 40))
	out := ToTensor(img)
	assert.Equal(t, []int{1, 1, ImageSize, ImageSize}, out.Shape)
	assert.Len(t, out.Data, ImageSize*ImageSize)
}

func TestToTensorUniformImage(t *testing.T) {
	// A uniform white image stays uniform through grayscale and resize, so
	// every value must be the standardized white level.
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	out := ToTensor(img)
	want := (1.0 - Mean) / Std
	// Grayscale conversion may round by a pixel level, about 0.013 after
	// standardization.
	for _, v := range out.Data {
		assert.InDelta(t, want, float64(v), 0.05)
	}
}

func TestToTensorBlackImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, ImageSize, ImageSize))
	out := ToTensor(img)
	want := (0.0 - Mean) / Std
	for _, v := range out.Data {
		assert.InDelta(t, want, float64(v), 0.05)
	}
}

func TestToTensorColorInputIsFinite(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 33, 57))
	for y := 0; y < 57; y++ {
		for x := 0; x < 33; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 4), B: 200, A: 255})
		}
	}

	out := ToTensor(img)
	lo := float64(Normalize(0))
	hi := float64(Normalize(1))
	for _, v := range out.Data {
		require.False(t, math.IsNaN(float64(v)))
		assert.GreaterOrEqual(t, float64(v), lo-1e-6)
		assert.LessOrEqual(t, float64(v), hi+1e-6)
	}
}

func TestToTensorDeterministic(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x * y) % 256)})
		}
	}

	a := ToTensor(img)
	b := ToTensor(img)
	assert.Equal(t, a.Data, b.Data)
}
