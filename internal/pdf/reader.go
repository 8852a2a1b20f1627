package pdf

import (
	"fmt"
	"os"
	"strings"

	pdferrors "github.com/a3tai/pdfgraph/internal/pdf/errors"
)

// Reader loads whole files into memory for the object-graph parser
type Reader struct {
	maxFileSize int64
}

// NewReader creates a new PDF reader with the specified constraints
func NewReader(maxFileSize int64) *Reader {
	return &Reader{maxFileSize: maxFileSize}
}

// Stat returns the file info of path after size checks
func (r *Reader) Stat(path string) (os.FileInfo, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if err := r.validateFileInfo(path, fileInfo); err != nil {
		return nil, err
	}
	return fileInfo, nil
}

// ReadFile returns the full contents of path after size checks
func (r *Reader) ReadFile(path string) ([]byte, os.FileInfo, error) {
	fileInfo, err := r.Stat(path)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, fileInfo, nil
}

// ReadRange returns length bytes of path starting at offset
func (r *Reader) ReadRange(path string, offset, length int) ([]byte, error) {
	data, _, err := r.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if offset < 0 || length < 0 || offset+length > len(data) {
		return nil, pdferrors.NewAt(pdferrors.ErrorTypeOutOfBounds, offset,
			fmt.Sprintf("range of %d bytes exceeds file length %d", length, len(data)))
	}
	return data[offset : offset+length], nil
}

// validateFileInfo performs basic validation without reading the file
func (r *Reader) validateFileInfo(path string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", path)
	}
	if fileInfo.Size() > r.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), r.maxFileSize)
	}
	return nil
}

// isPDFFile checks if a file has a PDF extension
func isPDFFile(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}
