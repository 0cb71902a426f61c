package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
	"github.com/kirillkom/deductive-coding/internal/core/ports"
)

// Dispatcher picks an extractor by file extension, falling back to the MIME type.
type Dispatcher struct {
	pdf  ports.TextExtractor
	text ports.TextExtractor
}

func NewDispatcher(pdf, text ports.TextExtractor) *Dispatcher {
	return &Dispatcher{pdf: pdf, text: text}
}

func (d *Dispatcher) Extract(ctx context.Context, src domain.SourceFile) (*domain.Document, error) {
	switch kindOf(src) {
	case "pdf":
		return d.pdf.Extract(ctx, src)
	case "text":
		return d.text.Extract(ctx, src)
	default:
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"extract text",
			fmt.Errorf("unsupported file type: %s (%s)", src.Filename, src.MimeType),
		)
	}
}

func kindOf(src domain.SourceFile) string {
	switch strings.ToLower(filepath.Ext(src.Filename)) {
	case ".pdf":
		return "pdf"
	case ".txt", ".md", ".markdown", ".text", ".csv":
		return "text"
	}

	mimeType := strings.ToLower(strings.TrimSpace(src.MimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	switch {
	case mimeType == "application/pdf":
		return "pdf"
	case strings.HasPrefix(mimeType, "text/"):
		return "text"
	default:
		return ""
	}
}
