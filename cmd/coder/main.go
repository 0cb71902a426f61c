package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/kirillkom/deductive-coding/internal/bootstrap"
	"github.com/kirillkom/deductive-coding/internal/config"
	"github.com/kirillkom/deductive-coding/internal/core/domain"
	"github.com/kirillkom/deductive-coding/internal/core/ports"
	"github.com/kirillkom/deductive-coding/internal/core/usecase"
	"github.com/kirillkom/deductive-coding/internal/infrastructure/queue/nats"
	"github.com/kirillkom/deductive-coding/internal/observability/logging"
)

const serviceName = "coder"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: load .env: %v\n", err)
	}
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "run":
		err = runCommand(ctx, os.Args[2:])
	case "watch":
		err = watchCommand(ctx, os.Args[2:])
	case "help", "-h", "--help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  coder run -doc <file.pdf|file.txt> -tags <tags.yaml> [-out dir] [-format json|xlsx|both] [-save]
  coder watch [-workspace id] [-nats url] [-subject prefix]

Provider settings come from PROVIDER, PROVIDER_API_KEY, PROVIDER_MODEL and
PROVIDER_ENDPOINT (or a .env file); -provider, -model and -endpoint override them.`)
}

func runCommand(ctx context.Context, args []string) error {
	cfg := config.Load()

	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	docPath := fs.String("doc", "", "Document to analyze (PDF or UTF-8 text)")
	tagsPath := fs.String("tags", "", "YAML file with the tags to apply")
	outDir := fs.String("out", ".", "Directory for the results export")
	format := fs.String("format", "json", "Export format: json, xlsx or both")
	save := fs.Bool("save", false, "Write tag statuses and quotes back to the tag file")
	fs.StringVar(&cfg.Provider, "provider", cfg.Provider, "AI provider: openai, anthropic or custom")
	fs.StringVar(&cfg.ProviderModel, "model", cfg.ProviderModel, "Model name, provider default when empty")
	fs.StringVar(&cfg.ProviderEndpoint, "endpoint", cfg.ProviderEndpoint, "Endpoint URL for the custom provider")
	fs.DurationVar(&cfg.AnalysisDelay, "delay", cfg.AnalysisDelay, "Pause between provider calls")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *docPath == "" || *tagsPath == "" {
		return errors.New("-doc and -tags are required")
	}

	slog.SetDefault(logging.NewTextLogger(os.Stderr, serviceName, cfg.LogLevel))

	providerCfg, ok, err := cfg.DefaultProvider()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("no AI provider configured: set PROVIDER and PROVIDER_API_KEY or pass -provider")
	}

	tags, err := loadTags(*tagsPath)
	if err != nil {
		return err
	}

	app, err := bootstrap.New(ctx, serviceName, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	doc, err := ingestFile(ctx, app.Ingestor, *docPath)
	if err != nil {
		return err
	}
	color.Cyan("Loaded %s: %d page(s), %d characters", doc.Name, doc.PageCount, len([]rune(doc.Content)))

	plan := usecase.PlanAnalysis(tags)
	req := ports.AnalysisRequest{
		WorkspaceID: uuid.NewString(),
		Document:    doc,
		Provider:    &providerCfg,
		Tags:        tags,
	}

	bar := newProgressBar(plan.NeedsAnalysis, "Analyzing tags")
	observe := func(event domain.RunEvent) {
		switch event.Kind {
		case domain.RunEventTagProcessing:
			bar.Describe(color.BlueString("Analyzing %q (%d/%d)", event.TagName, event.Progress.CurrentTagIndex, event.Progress.TotalTagsThisRun))
		case domain.RunEventTagCompleted, domain.RunEventTagFailed:
			_ = bar.Add(1)
		}
		if app.Events != nil {
			if err := app.Events.PublishRunEvent(ctx, event); err != nil {
				slog.Warn("run_event_publish_failed", "run_id", event.RunID, "kind", event.Kind, "error", err)
			}
		}
	}

	result, err := app.Analyzer.Start(ctx, req, observe)
	if domain.IsKind(err, domain.ErrNothingToDo) {
		_ = bar.Exit()
		color.Green("All %d tag(s) have already been analyzed and are up to date", plan.Total)
		result = &domain.RunResult{Tags: usecase.BackfillFingerprints(tags), Skipped: plan.Total}
	} else if err != nil {
		_ = bar.Exit()
		return err
	} else {
		_ = bar.Finish()
	}

	at := time.Now()
	report := domain.NewExportReport(doc.Name, result.Tags, at)
	printRunSummary(os.Stdout, result, report)

	paths, err := writeExports(*outDir, *format, report, at)
	if err != nil {
		return err
	}
	for _, path := range paths {
		color.Cyan("Results written to %s", path)
	}

	if *save {
		if err := saveTags(*tagsPath, result.Tags); err != nil {
			return err
		}
		color.Cyan("Tag state saved to %s", *tagsPath)
	}

	if n := len(result.Failures); n > 0 {
		return fmt.Errorf("%d of %d tag(s) failed", n, result.Analyzed)
	}
	return nil
}

func ingestFile(ctx context.Context, ingestor ports.DocumentIngestor, path string) (*domain.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer file.Close()
	return ingestor.Upload(ctx, filepath.Base(path), mime.TypeByExtension(filepath.Ext(path)), file)
}

func watchCommand(ctx context.Context, args []string) error {
	cfg := config.Load()

	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	workspaceID := fs.String("workspace", "", "Workspace to follow, every workspace when empty")
	fs.StringVar(&cfg.NATSURL, "nats", cfg.NATSURL, "NATS server URL")
	fs.StringVar(&cfg.NATSSubject, "subject", cfg.NATSSubject, "Run event subject prefix")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.NATSURL == "" {
		return errors.New("NATS_URL or -nats is required")
	}

	slog.SetDefault(logging.NewTextLogger(os.Stderr, serviceName, cfg.LogLevel))

	bus, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{ClientName: serviceName + "-watch"})
	if err != nil {
		return err
	}
	defer bus.Close()

	target := *workspaceID
	if target == "" {
		target = "all workspaces"
	}
	color.Cyan("Watching analysis runs for %s (Ctrl+C to stop)", target)
	return bus.SubscribeRunEvents(ctx, *workspaceID, func(_ context.Context, event domain.RunEvent) error {
		printEvent(os.Stdout, event)
		return nil
	})
}
