// Package document extracts plain text from reference transcripts in the
// formats the archive uses: plain text, Word (.docx), OpenDocument (.odt),
// PDF, and HTML. The alignment pipeline only ever sees the extracted text.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned for file types no reader handles.
var ErrUnsupported = fmt.Errorf("unsupported document type")

// Reader loads a reference document as plain text.
type Reader struct{}

// NewReader creates a Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Load extracts the plain text of the document at path, dispatching on
// the file extension.
func (r *Reader) Load(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return readText(path)
	case ".docx":
		return readDocx(path)
	case ".odt":
		return readODT(path)
	case ".pdf":
		return readPDF(path)
	case ".html", ".htm":
		return readHTML(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
	}
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
