package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
)

// RunObserver receives every snapshot a run publishes, synchronously and in order.
type RunObserver func(domain.RunEvent)

// AnalysisRequest is the input of one analysis run.
type AnalysisRequest struct {
	WorkspaceID string
	Document    *domain.Document
	Provider    *domain.ProviderConfig
	Tags        []domain.Tag
}

// TagAnalyzer is the inbound contract of the analysis orchestrator.
type TagAnalyzer interface {
	Start(ctx context.Context, req AnalysisRequest, observe RunObserver) (*domain.RunResult, error)
}

// DocumentIngestor stores an uploaded file and extracts its text.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// WorkspaceService is the inbound contract for session-scoped editing and runs.
type WorkspaceService interface {
	Create(ctx context.Context) (*domain.Workspace, error)
	Get(ctx context.Context, id string) (*domain.Workspace, error)
	Delete(ctx context.Context, id string) error
	AttachDocument(ctx context.Context, id, filename, mimeType string, body io.Reader) (*domain.Document, error)
	ConfigureProvider(ctx context.Context, id string, cfg domain.ProviderConfig) error
	CreateTag(ctx context.Context, id, name, description string) (*domain.Tag, error)
	UpdateTag(ctx context.Context, id, tagID, name, description string) (*domain.Tag, error)
	DeleteTag(ctx context.Context, id, tagID string) error
	Plan(ctx context.Context, id string) (domain.AnalysisPlan, error)
	StartAnalysis(ctx context.Context, id string) (domain.AnalysisPlan, error)
	Export(ctx context.Context, id string, at time.Time) (domain.ExportReport, error)
}
