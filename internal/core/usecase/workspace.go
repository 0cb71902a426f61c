package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
	"github.com/kirillkom/deductive-coding/internal/core/ports"
)

// WorkspaceUseCase owns every mutation of a workspace. A running analysis is
// the only writer of tags and progress until it finishes; edits in the
// meantime are rejected with domain.ErrConflict.
type WorkspaceUseCase struct {
	store    ports.WorkspaceStore
	ingestor ports.DocumentIngestor
	analyzer *AnalyzeTagsUseCase
	events   ports.RunEventPublisher

	defaultProvider *domain.ProviderConfig

	runCtx context.Context
	mu     sync.Mutex
	runs   sync.WaitGroup
	now    func() time.Time
}

// NewWorkspaceUseCase builds the service. runCtx bounds background runs and is
// usually the process context, so a run outlives the request that started it.
func NewWorkspaceUseCase(
	runCtx context.Context,
	store ports.WorkspaceStore,
	ingestor ports.DocumentIngestor,
	analyzer *AnalyzeTagsUseCase,
	events ports.RunEventPublisher,
) *WorkspaceUseCase {
	if runCtx == nil {
		runCtx = context.Background()
	}
	return &WorkspaceUseCase{
		store:    store,
		ingestor: ingestor,
		analyzer: analyzer,
		events:   events,
		runCtx:   runCtx,
		now:      time.Now,
	}
}

// UseDefaultProvider preconfigures every new workspace with cfg.
func (uc *WorkspaceUseCase) UseDefaultProvider(cfg domain.ProviderConfig) {
	uc.defaultProvider = &cfg
}

func (uc *WorkspaceUseCase) Create(ctx context.Context) (*domain.Workspace, error) {
	now := uc.now().UTC()
	ws := &domain.Workspace{
		ID:        uuid.NewString(),
		Tags:      []domain.Tag{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if uc.defaultProvider != nil {
		cfg := *uc.defaultProvider
		ws.Provider = &cfg
	}
	if err := uc.store.Create(ctx, ws); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return ws.Clone(), nil
}

func (uc *WorkspaceUseCase) Get(ctx context.Context, id string) (*domain.Workspace, error) {
	return uc.store.Get(ctx, id)
}

func (uc *WorkspaceUseCase) Delete(ctx context.Context, id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	ws, err := uc.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := ensureIdle(ws, "delete workspace"); err != nil {
		return err
	}
	return uc.store.Delete(ctx, id)
}

func (uc *WorkspaceUseCase) AttachDocument(ctx context.Context, id, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	ws, err := uc.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureIdle(ws, "attach document"); err != nil {
		return nil, err
	}

	doc, err := uc.ingestor.Upload(ctx, filename, mimeType, body)
	if err != nil {
		return nil, err
	}

	err = uc.mutate(ctx, id, "attach document", func(ws *domain.Workspace) error {
		ws.Document = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("document_attached",
		"workspace_id", id,
		"document", doc.Name,
		"pages", doc.PageCount,
		"chars", len(doc.Content),
	)
	return doc, nil
}

func (uc *WorkspaceUseCase) ConfigureProvider(ctx context.Context, id string, cfg domain.ProviderConfig) error {
	cfg, err := cfg.Normalized()
	if err != nil {
		return err
	}
	return uc.mutate(ctx, id, "configure provider", func(ws *domain.Workspace) error {
		ws.Provider = &cfg
		return nil
	})
}

func (uc *WorkspaceUseCase) CreateTag(ctx context.Context, id, name, description string) (*domain.Tag, error) {
	tag, err := domain.NewTag(uuid.NewString(), name, description)
	if err != nil {
		return nil, err
	}
	err = uc.mutate(ctx, id, "create tag", func(ws *domain.Workspace) error {
		ws.Tags = append(ws.Tags, tag)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (uc *WorkspaceUseCase) UpdateTag(ctx context.Context, id, tagID, name, description string) (*domain.Tag, error) {
	var updated domain.Tag
	err := uc.mutate(ctx, id, "update tag", func(ws *domain.Workspace) error {
		idx := ws.TagIndex(tagID)
		if idx < 0 {
			return domain.WrapError(domain.ErrNotFound, "update tag", fmt.Errorf("tag %s", tagID))
		}
		next, err := ws.Tags[idx].Edit(name, description)
		if err != nil {
			return err
		}
		ws.Tags[idx] = next
		updated = next.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (uc *WorkspaceUseCase) DeleteTag(ctx context.Context, id, tagID string) error {
	return uc.mutate(ctx, id, "delete tag", func(ws *domain.Workspace) error {
		idx := ws.TagIndex(tagID)
		if idx < 0 {
			return domain.WrapError(domain.ErrNotFound, "delete tag", fmt.Errorf("tag %s", tagID))
		}
		ws.Tags = append(ws.Tags[:idx], ws.Tags[idx+1:]...)
		return nil
	})
}

func (uc *WorkspaceUseCase) Plan(ctx context.Context, id string) (domain.AnalysisPlan, error) {
	ws, err := uc.store.Get(ctx, id)
	if err != nil {
		return domain.AnalysisPlan{}, err
	}
	return PlanAnalysis(ws.Tags), nil
}

// StartAnalysis validates and plans a run, marks the workspace as processing
// and executes the run in the background. The returned plan describes what
// the run will do.
func (uc *WorkspaceUseCase) StartAnalysis(ctx context.Context, id string) (domain.AnalysisPlan, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	ws, err := uc.store.Get(ctx, id)
	if err != nil {
		return domain.AnalysisPlan{}, err
	}
	if err := ensureIdle(ws, "start analysis"); err != nil {
		return domain.AnalysisPlan{}, err
	}

	run, err := uc.analyzer.Prepare(ports.AnalysisRequest{
		WorkspaceID: ws.ID,
		Document:    ws.Document,
		Provider:    ws.Provider,
		Tags:        ws.Tags,
	})
	if err != nil {
		if domain.IsKind(err, domain.ErrNothingToDo) {
			return PlanAnalysis(ws.Tags), err
		}
		return domain.AnalysisPlan{}, err
	}

	ws.Tags = domain.CloneTags(run.Tags)
	ws.Progress = domain.AnalysisProgress{
		CurrentTagIndex:  1,
		TotalTagsThisRun: len(run.Selected),
		IsProcessing:     true,
	}
	ws.UpdatedAt = uc.now().UTC()
	if err := uc.store.Save(ctx, ws); err != nil {
		return domain.AnalysisPlan{}, fmt.Errorf("mark analysis started: %w", err)
	}

	uc.runs.Go(func() {
		result := uc.analyzer.Execute(uc.runCtx, run, uc.observeRun(id))
		uc.finishRun(id, result)
	})
	return run.Plan, nil
}

func (uc *WorkspaceUseCase) Export(ctx context.Context, id string, at time.Time) (domain.ExportReport, error) {
	ws, err := uc.store.Get(ctx, id)
	if err != nil {
		return domain.ExportReport{}, err
	}
	if ws.Document == nil {
		return domain.ExportReport{}, domain.WrapError(domain.ErrPrecondition, "export results", errors.New("no document uploaded"))
	}
	return domain.NewExportReport(ws.Document.Name, ws.Tags, at), nil
}

// Wait blocks until every background run has finished.
func (uc *WorkspaceUseCase) Wait() {
	uc.runs.Wait()
}

func (uc *WorkspaceUseCase) observeRun(id string) ports.RunObserver {
	return func(event domain.RunEvent) {
		uc.mu.Lock()
		ws, err := uc.store.Get(uc.runCtx, id)
		if err == nil {
			ws.Tags = event.Tags
			ws.Progress = event.Progress
			ws.UpdatedAt = event.At
			err = uc.store.Save(uc.runCtx, ws)
		}
		uc.mu.Unlock()
		if err != nil {
			slog.Warn("run_snapshot_not_saved", "workspace_id", id, "run_id", event.RunID, "error", err)
		}

		if uc.events == nil {
			return
		}
		if err := uc.events.PublishRunEvent(uc.runCtx, event); err != nil {
			slog.Warn("run_event_publish_failed", "workspace_id", id, "run_id", event.RunID, "kind", event.Kind, "error", err)
		}
	}
}

func (uc *WorkspaceUseCase) finishRun(id string, result *domain.RunResult) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	ws, err := uc.store.Get(uc.runCtx, id)
	if err != nil {
		slog.Warn("run_result_not_saved", "workspace_id", id, "run_id", result.RunID, "error", err)
		return
	}
	ws.LastRun = result
	ws.UpdatedAt = uc.now().UTC()
	if err := uc.store.Save(uc.runCtx, ws); err != nil {
		slog.Warn("run_result_not_saved", "workspace_id", id, "run_id", result.RunID, "error", err)
	}
}

func (uc *WorkspaceUseCase) mutate(ctx context.Context, id, op string, apply func(ws *domain.Workspace) error) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	ws, err := uc.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := ensureIdle(ws, op); err != nil {
		return err
	}
	if err := apply(ws); err != nil {
		return err
	}
	ws.UpdatedAt = uc.now().UTC()
	if err := uc.store.Save(ctx, ws); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func ensureIdle(ws *domain.Workspace, op string) error {
	if ws.Progress.IsProcessing {
		return domain.WrapError(domain.ErrConflict, op, fmt.Errorf("workspace %s", ws.ID))
	}
	return nil
}
