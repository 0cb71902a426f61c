package httpadapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
	"github.com/kirillkom/deductive-coding/internal/infrastructure/report/xlsx"
)

func (rt *Router) exportResults(w http.ResponseWriter, r *http.Request) {
	at := rt.now()
	report, err := rt.workspaces.Export(r.Context(), r.PathValue("id"), at)
	if err != nil {
		writeError(w, err)
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	switch format {
	case "", "json":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			writeError(w, fmt.Errorf("encode report: %w", err))
			return
		}
		writeAttachment(w, "application/json", domain.ExportFilename(report.Document, at, ".json"), buf.Bytes())
	case "xlsx":
		var buf bytes.Buffer
		if err := xlsx.Write(&buf, report); err != nil {
			writeError(w, err)
			return
		}
		writeAttachment(w, xlsx.ContentType, domain.ExportFilename(report.Document, at, ".xlsx"), buf.Bytes())
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "format must be json or xlsx"})
	}
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
