package plaintext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
	"github.com/kirillkom/deductive-coding/internal/core/ports"
)

type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

// Extract reads a UTF-8 text file as a single-page document.
func (e *Extractor) Extract(ctx context.Context, src domain.SourceFile) (*domain.Document, error) {
	reader, err := e.storage.Open(ctx, src.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}

	if !utf8.Valid(raw) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("file is not valid UTF-8 text: "+src.Filename))
	}

	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	return &domain.Document{
		Name:      src.Filename,
		Content:   strings.TrimSpace(text),
		PageCount: 1,
	}, nil
}
