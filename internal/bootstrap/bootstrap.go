package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/deductive-coding/internal/config"
	"github.com/kirillkom/deductive-coding/internal/core/ports"
	"github.com/kirillkom/deductive-coding/internal/core/usecase"
	"github.com/kirillkom/deductive-coding/internal/infrastructure/extractor"
	"github.com/kirillkom/deductive-coding/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/deductive-coding/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/deductive-coding/internal/infrastructure/llm/provider"
	"github.com/kirillkom/deductive-coding/internal/infrastructure/queue/nats"
	"github.com/kirillkom/deductive-coding/internal/infrastructure/resilience"
	"github.com/kirillkom/deductive-coding/internal/infrastructure/session/memory"
	"github.com/kirillkom/deductive-coding/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/deductive-coding/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Metrics    *metrics.HTTPServerMetrics
	Events     *nats.EventBus
	Ingestor   ports.DocumentIngestor
	Analyzer   ports.TagAnalyzer
	Workspaces *usecase.WorkspaceUseCase

	closeFn func()
}

// New wires the application. ctx bounds background analysis runs; cancel it
// on shutdown and call Wait before Close.
func New(ctx context.Context, service string, cfg config.Config) (*App, error) {
	defaultProvider, hasDefault, err := cfg.DefaultProvider()
	if err != nil {
		return nil, fmt.Errorf("default provider: %w", err)
	}

	httpMetrics := metrics.NewHTTPServerMetrics(service)
	analysisMetrics := metrics.NewAnalysisMetrics(service, httpMetrics.Registry())

	executor := resilience.NewExecutor(resilience.Config{
		BreakerEnabled:      cfg.BreakerEnabled,
		BreakerMinRequests:  uint32(max(cfg.BreakerMinRequests, 0)),
		BreakerFailureRatio: cfg.BreakerFailureRatio,
		BreakerOpenTimeout:  cfg.BreakerOpenTimeout,
		OnStateChange:       analysisMetrics.RecordBreakerState,
	})

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	textExtractor := extractor.NewDispatcher(pdf.NewExtractor(storage), plaintext.NewExtractor(storage))
	ingestUC := usecase.NewIngestDocumentUseCase(storage, textExtractor)

	factory := provider.NewFactory(provider.Options{
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		AnthropicBaseURL: cfg.AnthropicBaseURL,
		Timeout:          cfg.ProviderTimeout,
		Executor:         executor,
	})
	analyzeUC := usecase.NewAnalyzeTagsUseCase(factory, analysisMetrics, cfg.AnalysisDelay)

	var (
		bus       *nats.EventBus
		publisher ports.RunEventPublisher
	)
	if cfg.NATSURL != "" {
		bus, err = nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ClientName:         service,
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init run event bus: %w", err)
		}
		publisher = bus
	}

	workspaces := usecase.NewWorkspaceUseCase(ctx, memory.NewStore(cfg.WorkspaceTTL), ingestUC, analyzeUC, publisher)
	if hasDefault {
		workspaces.UseDefaultProvider(defaultProvider)
		slog.Info("default_provider_configured", "provider", defaultProvider.Provider, "model", defaultProvider.Model)
	}

	return &App{
		Config:     cfg,
		Metrics:    httpMetrics,
		Events:     bus,
		Ingestor:   ingestUC,
		Analyzer:   analyzeUC,
		Workspaces: workspaces,
		closeFn: func() {
			if bus != nil {
				bus.Close()
			}
		},
	}, nil
}

// Wait blocks until in-flight analysis runs have stopped.
func (a *App) Wait() {
	a.Workspaces.Wait()
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
