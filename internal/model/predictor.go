package model

import (
	"fmt"
	"sync"

	"github.com/digitml/mnistserve/internal/nn"
	"github.com/digitml/mnistserve/internal/preprocess"
)

// InputSize is the flattened length of one model input.
const InputSize = preprocess.ImageSize * preprocess.ImageSize

// Predictor runs a forward pass over one preprocessed 28x28 input and
// returns the 10 class logits. Implementations are safe for concurrent use.
type Predictor interface {
	Predict(input []float32) ([]float32, error)
	Close()
}

// NativePredictor serves the in-process network. The layer forward caches
// make Net non-reentrant, so calls are serialized with a mutex; the weights
// themselves are immutable after load.
type NativePredictor struct {
	mu  sync.Mutex
	net *Net
}

// NewNativePredictor loads a trained checkpoint and wraps it for serving.
func NewNativePredictor(checkpointPath string) (*NativePredictor, error) {
	net, err := LoadCheckpoint(checkpointPath)
	if err != nil {
		return nil, err
	}
	return &NativePredictor{net: net}, nil
}

// NewNativePredictorFromNet wraps an already constructed network. Used by
// the trainer for evaluation and by tests.
func NewNativePredictorFromNet(net *Net) *NativePredictor {
	return &NativePredictor{net: net}
}

// Predict runs the network on a flattened [1,1,28,28] input.
func (p *NativePredictor) Predict(input []float32) ([]float32, error) {
	if len(input) != InputSize {
		return nil, fmt.Errorf("expected %d input values, got %d", InputSize, len(input))
	}

	t := nn.NewTensor(1, 1, preprocess.ImageSize, preprocess.ImageSize)
	copy(t.Data, input)

	p.mu.Lock()
	logits := p.net.Forward(t)
	out := make([]float32, NumClasses)
	copy(out, logits.Data)
	p.mu.Unlock()

	return out, nil
}

// Close is a no-op; the native network holds no external resources.
func (p *NativePredictor) Close() {}
