package model

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// checkpointParam is the serialized form of one named weight tensor. The
// checkpoint carries no version; compatibility is implied by the fixed
// topology and verified by shape on load.
type checkpointParam struct {
	Name  string
	Shape []int
	Data  []float32
}

// SaveCheckpoint writes the network weights to path, creating parent
// directories as needed.
func SaveCheckpoint(path string, net *Net) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file: %w", err)
	}
	defer f.Close()

	params := net.Parameters()
	saved := make([]checkpointParam, len(params))
	for i, p := range params {
		saved[i] = checkpointParam{Name: p.Name, Shape: p.Shape, Data: p.Data}
	}

	if err := gob.NewEncoder(f).Encode(saved); err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint reads weights from path into a freshly constructed Net.
// A missing file, a corrupt file, or any name/shape mismatch against the
// fixed topology is an error.
func LoadCheckpoint(path string) (*Net, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint: %w", err)
	}
	defer f.Close()

	var saved []checkpointParam
	if err := gob.NewDecoder(f).Decode(&saved); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}

	net := NewNet()
	params := net.Parameters()
	if len(saved) != len(params) {
		return nil, fmt.Errorf("checkpoint has %d parameters, topology expects %d", len(saved), len(params))
	}
	for i, p := range params {
		s := saved[i]
		if s.Name != p.Name {
			return nil, fmt.Errorf("checkpoint parameter %d is %q, topology expects %q", i, s.Name, p.Name)
		}
		if !shapeEqual(s.Shape, p.Shape) {
			return nil, fmt.Errorf("shape mismatch for %q: checkpoint %v, topology %v", p.Name, s.Shape, p.Shape)
		}
		if len(s.Data) != p.Size() {
			return nil, fmt.Errorf("data length mismatch for %q: got %d values, want %d", p.Name, len(s.Data), p.Size())
		}
		copy(p.Data, s.Data)
	}
	return net, nil
}

func shapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
