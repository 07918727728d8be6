// Package mnist loads the MNIST handwritten digit dataset from its standard
// IDX binary distribution.
package mnist

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	imagesMagic = 2051
	labelsMagic = 2049
)

// ReadImages parses an IDX image file: a big-endian header (magic 2051,
// count, rows, cols) followed by one unsigned byte per pixel.
func ReadImages(r io.Reader) ([][]byte, int, int, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != imagesMagic {
		return nil, 0, 0, fmt.Errorf("invalid image magic number: got %d, want %d", magic, imagesMagic)
	}

	var count, rows, cols uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, 0, 0, err
	}
	if err := binary.Read(r, binary.BigEndian, &rows); err != nil {
		return nil, 0, 0, err
	}
	if err := binary.Read(r, binary.BigEndian, &cols); err != nil {
		return nil, 0, 0, err
	}

	size := int(rows * cols)
	images := make([][]byte, count)
	for i := range images {
		images[i] = make([]byte, size)
		if _, err := io.ReadFull(r, images[i]); err != nil {
			return nil, 0, 0, fmt.Errorf("failed to read image %d: %w", i, err)
		}
	}
	return images, int(rows), int(cols), nil
}

// ReadLabels parses an IDX label file: a big-endian header (magic 2049,
// count) followed by one unsigned byte per label.
func ReadLabels(r io.Reader) ([]byte, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != labelsMagic {
		return nil, fmt.Errorf("invalid label magic number: got %d, want %d", magic, labelsMagic)
	}

	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}

	labels := make([]byte, count)
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	return labels, nil
}

func readImagesFile(path string) ([][]byte, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()
	return ReadImages(f)
}

func readLabelsFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLabels(f)
}
