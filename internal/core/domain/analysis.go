package domain

import "time"

// AnalysisProgress is the transient progress record of the latest run.
// CurrentTagIndex is 1-based within the tags selected for this run.
type AnalysisProgress struct {
	CurrentTagIndex  int  `json:"currentTagIndex"`
	TotalTagsThisRun int  `json:"totalTagsThisRun"`
	IsProcessing     bool `json:"isProcessing"`
	HasError         bool `json:"hasError"`
}

// AnalysisPlan summarizes which tags a run would touch. Tags still marked
// processing are neither selected nor up to date; they count as InProgress.
type AnalysisPlan struct {
	Total         int      `json:"total"`
	NeedsAnalysis int      `json:"needsAnalysis"`
	UpToDate      int      `json:"upToDate"`
	InProgress    int      `json:"inProgress,omitempty"`
	AllUpToDate   bool     `json:"allUpToDate"`
	SelectedIDs   []string `json:"selectedIds,omitempty"`
}

type RunEventKind string

const (
	RunEventStarted       RunEventKind = "run_started"
	RunEventTagProcessing RunEventKind = "tag_processing"
	RunEventTagCompleted  RunEventKind = "tag_completed"
	RunEventTagFailed     RunEventKind = "tag_failed"
	RunEventFinished      RunEventKind = "run_finished"
)

// RunEvent is an immutable snapshot published at each step of a run.
// Tags is a full copy of the collection; observers may keep it.
type RunEvent struct {
	Kind        RunEventKind     `json:"kind"`
	RunID       string           `json:"runId"`
	WorkspaceID string           `json:"workspaceId,omitempty"`
	TagID       string           `json:"tagId,omitempty"`
	TagName     string           `json:"tagName,omitempty"`
	Error       string           `json:"error,omitempty"`
	Tags        []Tag            `json:"tags"`
	Progress    AnalysisProgress `json:"progress"`
	At          time.Time        `json:"at"`
}

type TagFailure struct {
	TagID   string `json:"tagId"`
	TagName string `json:"tagName"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

type RunResult struct {
	RunID      string           `json:"runId"`
	Tags       []Tag            `json:"tags"`
	Progress   AnalysisProgress `json:"progress"`
	Analyzed   int              `json:"analyzed"`
	Skipped    int              `json:"skipped"`
	Failures   []TagFailure     `json:"failures,omitempty"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
}
