package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
	"github.com/kirillkom/deductive-coding/internal/infrastructure/report/xlsx"
)

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("tags"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func printEvent(w io.Writer, event domain.RunEvent) {
	prefix := fmt.Sprintf("[%s] %s", event.At.Local().Format(time.TimeOnly), shortID(event.WorkspaceID))
	progress := fmt.Sprintf("(%d/%d)", event.Progress.CurrentTagIndex, event.Progress.TotalTagsThisRun)

	switch event.Kind {
	case domain.RunEventStarted:
		color.New(color.FgCyan).Fprintf(w, "%s run %s started, %d tag(s) to analyze\n", prefix, shortID(event.RunID), event.Progress.TotalTagsThisRun)
	case domain.RunEventTagProcessing:
		fmt.Fprintf(w, "%s %s analyzing %q\n", prefix, progress, event.TagName)
	case domain.RunEventTagCompleted:
		tag, _ := findTag(event.Tags, event.TagID)
		if tag.Status == domain.TagStatusNoResults {
			color.New(color.FgYellow).Fprintf(w, "%s %s %q: no matches\n", prefix, progress, event.TagName)
			return
		}
		color.New(color.FgGreen).Fprintf(w, "%s %s %q: %d quote(s)\n", prefix, progress, event.TagName, len(tag.Quotes))
	case domain.RunEventTagFailed:
		color.New(color.FgRed).Fprintf(w, "%s %s %q failed: %s\n", prefix, progress, event.TagName, event.Error)
	case domain.RunEventFinished:
		c := color.New(color.FgGreen)
		outcome := "finished"
		if event.Progress.HasError {
			c = color.New(color.FgYellow)
			outcome = "finished with errors"
		}
		c.Fprintf(w, "%s run %s %s\n", prefix, shortID(event.RunID), outcome)
	default:
		fmt.Fprintf(w, "%s %s\n", prefix, event.Kind)
	}
}

func printRunSummary(w io.Writer, result *domain.RunResult, report domain.ExportReport) {
	fmt.Fprintln(w)
	color.New(color.FgGreen).Fprintf(w, "Analyzed %d tag(s), %d already up to date, %d quote(s) in export\n",
		result.Analyzed, result.Skipped, report.TotalQuotes())
	for _, failure := range result.Failures {
		color.New(color.FgRed).Fprintf(w, "  %s: %s\n", failure.TagName, failure.Message)
	}
}

// writeExports writes the report in each requested format to dir and
// returns the written paths.
func writeExports(dir, format string, report domain.ExportReport, at time.Time) ([]string, error) {
	var formats []string
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		formats = []string{"json"}
	case "xlsx":
		formats = []string{"xlsx"}
	case "both":
		formats = []string{"json", "xlsx"}
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "write exports", fmt.Errorf("unknown format %q", format))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		var buf bytes.Buffer
		switch f {
		case "json":
			enc := json.NewEncoder(&buf)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return nil, fmt.Errorf("encode report: %w", err)
			}
		case "xlsx":
			if err := xlsx.Write(&buf, report); err != nil {
				return nil, err
			}
		}
		path := filepath.Join(dir, domain.ExportFilename(report.Document, at, "."+f))
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("write export: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func findTag(tags []domain.Tag, id string) (domain.Tag, bool) {
	for _, tag := range tags {
		if tag.ID == id {
			return tag, true
		}
	}
	return domain.Tag{}, false
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
