// Package document flattens invoice files into plain text for extraction.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat indicates a file type that cannot be read.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ReadText returns the text of a .docx, .xlsx or .txt file.
func ReadText(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".docx":
		return ReadDocx(path)
	case ".xlsx":
		return ReadXLSX(path)
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
