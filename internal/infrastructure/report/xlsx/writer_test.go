package xlsx

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
)

func TestWriteProducesSummaryAndQuotes(t *testing.T) {
	report := domain.NewExportReport("interview.pdf", []domain.Tag{
		{Name: "Color", Description: "mentions of color", Status: domain.TagStatusCompleted, Quotes: []string{"The sky is blue.", "The grass is green."}},
		{Name: "Weather", Description: "rain", Status: domain.TagStatusNoResults, Quotes: []string{}},
		{Name: "Pending", Description: "not run", Status: domain.TagStatusIdle},
	}, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	if err := Write(&buf, report); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	summary, err := f.GetRows(summarySheet)
	if err != nil {
		t.Fatalf("GetRows(summary) error = %v", err)
	}
	if summary[0][1] != "interview.pdf" || summary[2][1] != "2" {
		t.Fatalf("unexpected summary header rows %v", summary[:3])
	}
	// Header row plus the two tags with results.
	if len(summary) != 7 || summary[5][0] != "Color" || summary[6][2] != "0" {
		t.Fatalf("unexpected summary rows %v", summary)
	}

	quotes, err := f.GetRows(quotesSheet)
	if err != nil {
		t.Fatalf("GetRows(quotes) error = %v", err)
	}
	if len(quotes) != 3 {
		t.Fatalf("expected header plus 2 quotes, got %v", quotes)
	}
	if quotes[2][0] != "Color" || quotes[2][1] != "2" || quotes[2][2] != "The grass is green." {
		t.Fatalf("unexpected quote row %v", quotes[2])
	}
}
