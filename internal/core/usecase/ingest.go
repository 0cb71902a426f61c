package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
	"github.com/kirillkom/deductive-coding/internal/core/ports"
)

type IngestDocumentUseCase struct {
	storage   ports.ObjectStorage
	extractor ports.TextExtractor
	now       func() time.Time
}

func NewIngestDocumentUseCase(storage ports.ObjectStorage, extractor ports.TextExtractor) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		storage:   storage,
		extractor: extractor,
		now:       time.Now,
	}
}

// Upload stores the raw file and returns its extracted text. Either a whole
// document comes back or an error; never a partial one.
func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("filename is required"))
	}

	storageKey := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeFilename(filename))
	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc, err := uc.extractor.Extract(ctx, domain.SourceFile{
		Filename:   filepath.Base(filename),
		MimeType:   mimeType,
		StorageKey: storageKey,
	})
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("document contains no extractable text"))
	}

	doc.StorageKey = storageKey
	doc.UploadedAt = uc.now().UTC()
	return doc, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
