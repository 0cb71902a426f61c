package httpadapter

import (
	"fmt"
	"net/http"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
)

type analysisView struct {
	Status   string                  `json:"status"`
	Summary  string                  `json:"summary"`
	Plan     domain.AnalysisPlan     `json:"plan"`
	Progress domain.AnalysisProgress `json:"progress"`
	LastRun  *domain.RunResult       `json:"lastRun,omitempty"`
}

func (rt *Router) getAnalysis(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ws, err := rt.workspaces.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	plan, err := rt.workspaces.Plan(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	status := "idle"
	switch {
	case ws.Progress.IsProcessing:
		status = "processing"
	case plan.AllUpToDate && plan.Total > 0:
		status = "up_to_date"
	}
	writeJSON(w, http.StatusOK, analysisView{
		Status:   status,
		Summary:  planSummary(plan),
		Plan:     plan,
		Progress: ws.Progress,
		LastRun:  ws.LastRun,
	})
}

// startAnalysis answers 202 while the run continues in the background.
func (rt *Router) startAnalysis(w http.ResponseWriter, r *http.Request) {
	plan, err := rt.workspaces.StartAnalysis(r.Context(), r.PathValue("id"))
	if domain.IsKind(err, domain.ErrNothingToDo) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "up_to_date",
			"summary": planSummary(plan),
			"plan":    plan,
		})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":  "started",
		"summary": planSummary(plan),
		"plan":    plan,
	})
}

func planSummary(plan domain.AnalysisPlan) string {
	switch {
	case plan.Total == 0:
		return "no tags defined"
	case plan.AllUpToDate:
		return "all tags have already been analyzed and are up to date"
	case plan.NeedsAnalysis == 0:
		return fmt.Sprintf("%d of %d tags still being analyzed", plan.InProgress, plan.Total)
	case plan.UpToDate > 0:
		return fmt.Sprintf("%d of %d tags already up to date, %d to analyze", plan.UpToDate, plan.Total, plan.NeedsAnalysis)
	default:
		return fmt.Sprintf("%d tags to analyze", plan.NeedsAnalysis)
	}
}
