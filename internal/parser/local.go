package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"chunkforge/internal/util"
)

// ParseLocal handles the formats that need no external service: markdown
// and plain text pass through, PDFs get plain-text extraction. Page count
// for text formats is unknown and stays zero.
func ParseLocal(path string) (Result, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".txt":
		b, err := os.ReadFile(path)
		if err != nil {
			return Result{}, fmt.Errorf("read document: %w", err)
		}
		return finishResult(Result{Markdown: string(b)})
	case ".pdf":
		return parsePDF(path)
	default:
		return Result{}, fmt.Errorf("%w: %s", util.ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func parsePDF(path string) (Result, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return Result{}, fmt.Errorf("extract pdf text: %w", err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return Result{}, fmt.Errorf("read extracted text: %w", err)
	}
	return finishResult(Result{Markdown: buf.String(), PageCount: r.NumPage()})
}
