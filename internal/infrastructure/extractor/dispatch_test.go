package extractor

import (
	"context"
	"testing"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
)

type namedExtractor string

func (n namedExtractor) Extract(_ context.Context, src domain.SourceFile) (*domain.Document, error) {
	return &domain.Document{Name: src.Filename, Content: string(n)}, nil
}

func TestDispatcherRoutesByExtensionAndMime(t *testing.T) {
	d := NewDispatcher(namedExtractor("pdf"), namedExtractor("text"))
	cases := []struct {
		src  domain.SourceFile
		want string
	}{
		{src: domain.SourceFile{Filename: "Interview.PDF"}, want: "pdf"},
		{src: domain.SourceFile{Filename: "notes.md"}, want: "text"},
		{src: domain.SourceFile{Filename: "upload", MimeType: "application/pdf"}, want: "pdf"},
		{src: domain.SourceFile{Filename: "upload", MimeType: "text/plain; charset=utf-8"}, want: "text"},
	}
	for _, tc := range cases {
		doc, err := d.Extract(context.Background(), tc.src)
		if err != nil {
			t.Fatalf("Extract(%+v) error = %v", tc.src, err)
		}
		if doc.Content != tc.want {
			t.Fatalf("Extract(%+v) routed to %s, want %s", tc.src, doc.Content, tc.want)
		}
	}
}

func TestDispatcherRejectsUnknownType(t *testing.T) {
	d := NewDispatcher(namedExtractor("pdf"), namedExtractor("text"))

	_, err := d.Extract(context.Background(), domain.SourceFile{Filename: "slides.pptx", MimeType: "application/octet-stream"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
