package model

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXPredictor serves an exported ONNX copy of the network through ONNX
// Runtime. The session reuses fixed input and output tensors, so calls are
// serialized with a mutex.
type ONNXPredictor struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// NewONNXPredictor initializes the ONNX Runtime environment and creates a
// session for the model at modelPath. The graph must take a [1,1,28,28]
// float input named "input" and produce [1,10] logits named "output", the
// names torch.onnx.export assigns by convention.
//
// A CUDA execution provider is attempted first and the session falls back
// to CPU when unavailable. Set ONNXRUNTIME_SHARED_LIBRARY_PATH to point at
// a specific onnxruntime shared library.
func NewONNXPredictor(modelPath string) (*ONNXPredictor, error) {
	if libPath := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()

	options.SetIntraOpNumThreads(runtime.NumCPU())

	if cudaOptions, err := ort.NewCUDAProviderOptions(); err == nil {
		if err := options.AppendExecutionProviderCUDA(cudaOptions); err != nil {
			log.Printf("CUDA unavailable, using CPU: %v", err)
		} else {
			log.Println("Using CUDA execution provider")
		}
		cudaOptions.Destroy()
	} else {
		log.Printf("CUDA unavailable, using CPU: %v", err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1, 28, 28))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(NumClasses)))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		options)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXPredictor{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// Predict runs the session on a flattened [1,1,28,28] input.
func (p *ONNXPredictor) Predict(input []float32) ([]float32, error) {
	if len(input) != InputSize {
		return nil, fmt.Errorf("expected %d input values, got %d", InputSize, len(input))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	copy(p.inputTensor.GetData(), input)
	if err := p.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := make([]float32, NumClasses)
	copy(out, p.outputTensor.GetData())
	return out, nil
}

// Close releases the session, tensors and the runtime environment.
func (p *ONNXPredictor) Close() {
	if p.inputTensor != nil {
		p.inputTensor.Destroy()
	}
	if p.outputTensor != nil {
		p.outputTensor.Destroy()
	}
	if p.session != nil {
		p.session.Destroy()
	}
	ort.DestroyEnvironment()
}
