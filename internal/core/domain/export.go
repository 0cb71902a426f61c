package domain

import (
	"strings"
	"time"
)

// ExportReport is the JSON results document handed to presentation.
type ExportReport struct {
	Document   string        `json:"document"`
	AnalyzedAt time.Time     `json:"analyzedAt"`
	Tags       []ExportedTag `json:"tags"`
}

type ExportedTag struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	QuotesFound int      `json:"quotesFound"`
	Quotes      []string `json:"quotes"`
}

// NewExportReport keeps only tags with a finished analysis, in collection order.
func NewExportReport(documentName string, tags []Tag, analyzedAt time.Time) ExportReport {
	report := ExportReport{
		Document:   documentName,
		AnalyzedAt: analyzedAt.UTC(),
		Tags:       []ExportedTag{},
	}
	for _, tag := range tags {
		if !tag.HasResult() {
			continue
		}
		quotes := make([]string, len(tag.Quotes))
		copy(quotes, tag.Quotes)
		report.Tags = append(report.Tags, ExportedTag{
			Name:        tag.Name,
			Description: tag.Description,
			QuotesFound: len(quotes),
			Quotes:      quotes,
		})
	}
	return report
}

// TotalQuotes counts quotes across all exported tags.
func (r ExportReport) TotalQuotes() int {
	total := 0
	for _, tag := range r.Tags {
		total += tag.QuotesFound
	}
	return total
}

// ExportFilename builds "coding-results-<document>-<YYYY-MM-DD><ext>".
func ExportFilename(documentName string, at time.Time, ext string) string {
	base := strings.Replace(documentName, ".pdf", "", 1)
	return "coding-results-" + base + "-" + at.UTC().Format("2006-01-02") + ext
}
