package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
)

// QuoteExtractor runs one tag against the document text through an LLM backend.
type QuoteExtractor interface {
	Analyze(ctx context.Context, documentText string, tag domain.Tag) ([]string, error)
}

// QuoteExtractorFactory builds a backend client for a resolved provider configuration.
type QuoteExtractorFactory interface {
	NewQuoteExtractor(cfg domain.ProviderConfig) QuoteExtractor
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, src domain.SourceFile) (*domain.Document, error)
}

// WorkspaceStore keeps workspaces in memory for the life of a session.
type WorkspaceStore interface {
	Create(ctx context.Context, ws *domain.Workspace) error
	Get(ctx context.Context, id string) (*domain.Workspace, error)
	Save(ctx context.Context, ws *domain.Workspace) error
	Delete(ctx context.Context, id string) error
}

// RunEventPublisher fans run snapshots out to external subscribers.
type RunEventPublisher interface {
	PublishRunEvent(ctx context.Context, event domain.RunEvent) error
}

// AnalysisRecorder observes per-tag and per-run outcomes.
type AnalysisRecorder interface {
	RecordTagAnalysis(provider string, status domain.TagStatus, duration time.Duration)
	RecordRun(status string, analyzed int, duration time.Duration)
	StartRun()
}
