//go:build !unix

// Package mmfile provides platform-specific helpers for memory-mapping arena files.
package mmfile

import (
	"fmt"
	"io"
	"os"
)

// Map reads the entire file when mmap is not available.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return data, func() error { return nil }, nil
}

// MapRW reads the first size bytes of f into memory. The returned cleanup
// writes the buffer back to the file.
func MapRW(f *os.File, size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("mmfile: invalid mapping size %d", size)
	}
	data := make([]byte, size)
	if _, err := f.ReadAt(data, 0); err != nil && err != io.EOF {
		return nil, nil, err
	}
	cleanup := func() error {
		if data == nil {
			return nil
		}
		_, err := f.WriteAt(data, 0)
		data = nil
		return err
	}
	return data, cleanup, nil
}
