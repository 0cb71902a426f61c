package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
)

type ingestStorageFake struct {
	savedKey  string
	savedBody string
	err       error
}

func (f *ingestStorageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *ingestStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.savedBody)), nil
}

type textExtractorFake struct {
	src     domain.SourceFile
	content string
	err     error
}

func (f *textExtractorFake) Extract(_ context.Context, src domain.SourceFile) (*domain.Document, error) {
	f.src = src
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{Name: src.Filename, Content: f.content, PageCount: 1}, nil
}

func TestIngestUploadSuccess(t *testing.T) {
	storage := &ingestStorageFake{}
	extractor := &textExtractorFake{content: "The sky is blue."}
	uc := NewIngestDocumentUseCase(storage, extractor)

	doc, err := uc.Upload(context.Background(), "report 1.txt", "text/plain", bytes.NewBufferString("hello"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.Name != "report 1.txt" {
		t.Fatalf("expected original name, got %q", doc.Name)
	}
	if doc.Content != "The sky is blue." {
		t.Fatalf("unexpected content %q", doc.Content)
	}
	if !strings.HasSuffix(storage.savedKey, "_report_1.txt") {
		t.Fatalf("expected sanitized key suffix, got %s", storage.savedKey)
	}
	if doc.StorageKey != storage.savedKey || extractor.src.StorageKey != storage.savedKey {
		t.Fatalf("storage key mismatch: doc=%s extractor=%s saved=%s", doc.StorageKey, extractor.src.StorageKey, storage.savedKey)
	}
	if storage.savedBody != "hello" {
		t.Fatalf("expected saved body hello, got %s", storage.savedBody)
	}
	if doc.UploadedAt.IsZero() {
		t.Fatalf("expected upload timestamp")
	}
}

func TestIngestUploadExtractError(t *testing.T) {
	extractErr := domain.WrapError(domain.ErrInvalidInput, "parse pdf", errors.New("malformed xref"))
	uc := NewIngestDocumentUseCase(&ingestStorageFake{}, &textExtractorFake{err: extractErr})

	_, err := uc.Upload(context.Background(), "report.pdf", "application/pdf", bytes.NewBufferString("%PDF"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "extract text") {
		t.Fatalf("expected extract error context, got %v", err)
	}
}

func TestIngestUploadRejectsEmptyText(t *testing.T) {
	uc := NewIngestDocumentUseCase(&ingestStorageFake{}, &textExtractorFake{content: "  \n "})

	_, err := uc.Upload(context.Background(), "scan.pdf", "application/pdf", bytes.NewBufferString("%PDF"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestIngestUploadStorageError(t *testing.T) {
	uc := NewIngestDocumentUseCase(&ingestStorageFake{err: errors.New("disk full")}, &textExtractorFake{content: "x"})

	_, err := uc.Upload(context.Background(), "report.txt", "text/plain", bytes.NewBufferString("hello"))
	if err == nil || !strings.Contains(err.Error(), "save to object storage") {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../etc/passwd":     "passwd",
		"Interview #3.pdf":  "Interview__3.pdf",
		"notes-2024_v1.txt": "notes-2024_v1.txt",
		"":                  "document.bin",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
