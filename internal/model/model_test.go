package model

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitml/mnistserve/internal/nn"
	"github.com/digitml/mnistserve/internal/optim"
)

func testInput(seedOffset int) *nn.Tensor {
	t := nn.NewTensor(1, 1, 28, 28)
	for i := range t.Data {
		t.Data[i] = float32((i*31+seedOffset)%97) / 97.0
	}
	return t
}

func TestNetForwardShape(t *testing.T) {
	net := NewNet()
	logits := net.Forward(nn.NewTensor(3, 1, 28, 28))
	assert.Equal(t, []int{3, NumClasses}, logits.Shape)
}

func TestNetSoftmaxSumsToOne(t *testing.T) {
	net := NewNet()
	logits := net.Forward(testInput(0))

	probs := nn.Softmax(logits.Data)
	var sum float64
	for _, p := range probs {
		sum += float64(p)
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
}

func TestNetForwardDeterministic(t *testing.T) {
	net := NewNet()
	a := net.Forward(testInput(5)).Clone()
	b := net.Forward(testInput(5)).Clone()
	assert.Equal(t, a.Data, b.Data)
}

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "mnist_net.gob")

	net := NewNet()
	want := net.Forward(testInput(1)).Clone()

	require.NoError(t, SaveCheckpoint(path, net))

	loaded, err := LoadCheckpoint(path)
	require.NoError(t, err)
	got := loaded.Forward(testInput(1))
	assert.Equal(t, want.Data, got.Data)
}

func TestLoadCheckpointMissingFile(t *testing.T) {
	_, err := LoadCheckpoint(filepath.Join(t.TempDir(), "nope.gob"))
	assert.Error(t, err)
}

func TestLoadCheckpointCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gob")
	require.NoError(t, os.WriteFile(path, []byte("not a checkpoint"), 0o644))

	_, err := LoadCheckpoint(path)
	assert.Error(t, err)
}

func TestLoadCheckpointShapeMismatch(t *testing.T) {
	net := NewNet()
	params := net.Parameters()
	saved := make([]checkpointParam, len(params))
	for i, p := range params {
		saved[i] = checkpointParam{Name: p.Name, Shape: p.Shape, Data: p.Data}
	}
	// Corrupt one parameter's shape.
	saved[0].Shape = []int{1, 2, 3}

	path := filepath.Join(t.TempDir(), "mismatch.gob")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, gob.NewEncoder(f).Encode(saved))
	require.NoError(t, f.Close())

	_, err = LoadCheckpoint(path)
	assert.ErrorContains(t, err, "shape mismatch")
}

func TestNativePredictorLogitCount(t *testing.T) {
	p := NewNativePredictorFromNet(NewNet())
	defer p.Close()

	logits, err := p.Predict(testInput(2).Data)
	require.NoError(t, err)
	assert.Len(t, logits, NumClasses)
}

func TestNativePredictorRejectsBadLength(t *testing.T) {
	p := NewNativePredictorFromNet(NewNet())
	defer p.Close()

	_, err := p.Predict(make([]float32, 100))
	assert.Error(t, err)
}

// TestTrainingReducesLoss drives a few optimizer steps on a tiny synthetic
// batch and checks the loss goes down.
func TestTrainingReducesLoss(t *testing.T) {
	net := NewNet()
	optimizer := optim.NewAdam(net.Parameters(), optim.AdamConfig{LR: 0.01})

	batch := nn.NewTensor(4, 1, 28, 28)
	for i := range batch.Data {
		batch.Data[i] = float32((i*17)%89) / 89.0
	}
	labels := []int{0, 3, 7, 9}

	first, _ := nn.SoftmaxCrossEntropy(net.Forward(batch), labels)
	var last float32
	for i := 0; i < 20; i++ {
		optimizer.ZeroGrad()
		logits := net.Forward(batch)
		loss, grad := nn.SoftmaxCrossEntropy(logits, labels)
		net.Backward(grad)
		optimizer.Step()
		last = loss
	}

	assert.Less(t, float64(last), float64(first))
}
