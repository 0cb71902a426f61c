package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
	"github.com/kirillkom/deductive-coding/internal/core/ports"
)

const DefaultAnalysisDelay = time.Second

// AnalysisRun is a prepared run: the backfilled tag collection and the
// positions of the tags selected for analysis.
type AnalysisRun struct {
	ID          string
	WorkspaceID string
	Document    domain.Document
	Provider    domain.ProviderConfig
	Tags        []domain.Tag
	Selected    []int
	Plan        domain.AnalysisPlan
}

type AnalyzeTagsUseCase struct {
	extractors ports.QuoteExtractorFactory
	recorder   ports.AnalysisRecorder
	delay      time.Duration

	sleep func(ctx context.Context, d time.Duration)
	now   func() time.Time
}

func NewAnalyzeTagsUseCase(
	extractors ports.QuoteExtractorFactory,
	recorder ports.AnalysisRecorder,
	delay time.Duration,
) *AnalyzeTagsUseCase {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if delay < 0 {
		delay = DefaultAnalysisDelay
	}
	return &AnalyzeTagsUseCase{
		extractors: extractors,
		recorder:   recorder,
		delay:      delay,
		sleep:      sleepContext,
		now:        time.Now,
	}
}

func (uc *AnalyzeTagsUseCase) Start(ctx context.Context, req ports.AnalysisRequest, observe ports.RunObserver) (*domain.RunResult, error) {
	run, err := uc.Prepare(req)
	if err != nil {
		return nil, err
	}
	return uc.Execute(ctx, run, observe), nil
}

// Prepare checks preconditions, backfills fingerprints and selects the tags
// to analyze. It never mutates req.Tags.
func (uc *AnalyzeTagsUseCase) Prepare(req ports.AnalysisRequest) (*AnalysisRun, error) {
	if err := checkPreconditions(req); err != nil {
		return nil, err
	}

	tags := BackfillFingerprints(req.Tags)
	selected := SelectForAnalysis(tags)
	plan := planFor(tags, selected)
	if len(selected) == 0 {
		return nil, domain.WrapError(
			domain.ErrNothingToDo,
			"prepare analysis",
			fmt.Errorf("%d of %d tag(s) up to date", plan.UpToDate, plan.Total),
		)
	}

	return &AnalysisRun{
		ID:          uuid.NewString(),
		WorkspaceID: req.WorkspaceID,
		Document:    *req.Document,
		Provider:    *req.Provider,
		Tags:        domain.CloneTags(tags),
		Selected:    selected,
		Plan:        plan,
	}, nil
}

// Execute analyzes the selected tags one at a time. A failing tag is marked
// error and the loop moves on; the run itself never fails.
func (uc *AnalyzeTagsUseCase) Execute(ctx context.Context, run *AnalysisRun, observe ports.RunObserver) *domain.RunResult {
	if observe == nil {
		observe = func(domain.RunEvent) {}
	}
	extractor := uc.extractors.NewQuoteExtractor(run.Provider)
	provider := string(run.Provider.Provider)

	tags := domain.CloneTags(run.Tags)
	total := len(run.Selected)
	result := &domain.RunResult{
		RunID:     run.ID,
		Analyzed:  total,
		Skipped:   len(tags) - total,
		StartedAt: uc.now().UTC(),
	}
	progress := domain.AnalysisProgress{
		CurrentTagIndex:  1,
		TotalTagsThisRun: total,
		IsProcessing:     true,
		HasError:         false,
	}

	slog.Info("analysis_run_started",
		"run_id", run.ID,
		"workspace_id", run.WorkspaceID,
		"provider", provider,
		"selected", total,
		"skipped", result.Skipped,
	)
	uc.recorder.StartRun()
	uc.emit(observe, run, domain.RunEventStarted, nil, "", tags, progress)

	for pos, idx := range run.Selected {
		progress.CurrentTagIndex = pos + 1
		tags[idx] = uc.markProcessing(tags[idx])
		uc.emit(observe, run, domain.RunEventTagProcessing, &tags[idx], "", tags, progress)

		started := uc.now()
		quotes, err := extractor.Analyze(ctx, run.Document.Content, tags[idx].Clone())
		if err != nil {
			tags[idx] = uc.markFailed(tags[idx])
			progress.HasError = true
			result.Failures = append(result.Failures, domain.TagFailure{
				TagID:   tags[idx].ID,
				TagName: tags[idx].Name,
				Message: err.Error(),
				Err:     err,
			})
			uc.recorder.RecordTagAnalysis(provider, domain.TagStatusError, uc.now().Sub(started))
			slog.Warn("tag_analysis_failed",
				"run_id", run.ID,
				"tag_id", tags[idx].ID,
				"tag", tags[idx].Name,
				"error", err,
			)
			uc.emit(observe, run, domain.RunEventTagFailed, &tags[idx], err.Error(), tags, progress)
			continue
		}

		tags[idx] = uc.applyQuotes(tags[idx], quotes)
		uc.recorder.RecordTagAnalysis(provider, tags[idx].Status, uc.now().Sub(started))
		uc.emit(observe, run, domain.RunEventTagCompleted, &tags[idx], "", tags, progress)

		if pos < total-1 {
			uc.sleep(ctx, uc.delay)
		}
	}

	progress.IsProcessing = false
	result.Tags = domain.CloneTags(tags)
	result.Progress = progress
	result.FinishedAt = uc.now().UTC()

	status := "success"
	if progress.HasError {
		status = "partial_failure"
	}
	uc.recorder.RecordRun(status, total, result.FinishedAt.Sub(result.StartedAt))
	slog.Info("analysis_run_finished",
		"run_id", run.ID,
		"workspace_id", run.WorkspaceID,
		"analyzed", total,
		"failed", len(result.Failures),
	)
	uc.emit(observe, run, domain.RunEventFinished, nil, "", tags, progress)
	return result
}

// markProcessing stamps the current fingerprint. Quotes found for older
// content are dropped so a later failure cannot leave them attached.
func (uc *AnalyzeTagsUseCase) markProcessing(tag domain.Tag) domain.Tag {
	next := tag.Clone()
	next.Status = domain.TagStatusProcessing
	if current := next.CurrentFingerprint(); next.Fingerprint != current {
		next.Fingerprint = current
		next.Quotes = []string{}
	}
	return next
}

func (uc *AnalyzeTagsUseCase) markFailed(tag domain.Tag) domain.Tag {
	next := tag.Clone()
	next.Status = domain.TagStatusError
	return next
}

func (uc *AnalyzeTagsUseCase) applyQuotes(tag domain.Tag, quotes []string) domain.Tag {
	next := tag.Clone()
	next.Quotes = make([]string, len(quotes))
	copy(next.Quotes, quotes)
	if len(next.Quotes) > 0 {
		next.Status = domain.TagStatusCompleted
	} else {
		next.Status = domain.TagStatusNoResults
	}
	return next
}

func (uc *AnalyzeTagsUseCase) emit(
	observe ports.RunObserver,
	run *AnalysisRun,
	kind domain.RunEventKind,
	tag *domain.Tag,
	errMessage string,
	tags []domain.Tag,
	progress domain.AnalysisProgress,
) {
	event := domain.RunEvent{
		Kind:        kind,
		RunID:       run.ID,
		WorkspaceID: run.WorkspaceID,
		Error:       errMessage,
		Tags:        domain.CloneTags(tags),
		Progress:    progress,
		At:          uc.now().UTC(),
	}
	if tag != nil {
		event.TagID = tag.ID
		event.TagName = tag.Name
	}
	observe(event)
}

func checkPreconditions(req ports.AnalysisRequest) error {
	var missing []error
	if req.Document == nil {
		missing = append(missing, errors.New("no document uploaded"))
	}
	if req.Provider == nil {
		missing = append(missing, errors.New("AI provider is not configured"))
	}
	if len(req.Tags) == 0 {
		missing = append(missing, errors.New("no tags defined"))
	}
	if len(missing) > 0 {
		return domain.WrapError(domain.ErrPrecondition, "start analysis", errors.Join(missing...))
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

type noopRecorder struct{}

func (noopRecorder) RecordTagAnalysis(string, domain.TagStatus, time.Duration) {}
func (noopRecorder) RecordRun(string, int, time.Duration)                       {}
func (noopRecorder) StartRun()                                                  {}
