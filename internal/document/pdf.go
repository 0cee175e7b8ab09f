package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, reader); err != nil {
		return "", fmt.Errorf("reading text from %s: %w", path, err)
	}
	return sb.String(), nil
}
