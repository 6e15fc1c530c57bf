package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dslipak/pdf"
)

// ErrExtract wraps failures of the text extraction step, whichever
// extractor is used.
var ErrExtract = errors.New("text extraction failed")

// Extractor turns a PDF into its plain text content.
type Extractor interface {
	FromBytes(ctx context.Context, data []byte) (string, error)
	FromFile(ctx context.Context, path string) (string, error)
}

// PDFExtractor reads the PDF in-process.
type PDFExtractor struct{}

func (PDFExtractor) FromBytes(ctx context.Context, data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtract, err)
	}
	return plainText(r)
}

func (PDFExtractor) FromFile(ctx context.Context, path string) (string, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", ErrExtract, path, err)
	}
	return plainText(r)
}

// plainText converts a parsed document. The pdf package panics on some
// malformed content streams, so panics are turned into ErrExtract.
func plainText(r *pdf.Reader) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrExtract, p)
		}
	}()

	rd, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtract, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rd); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtract, err)
	}
	return buf.String(), nil
}
