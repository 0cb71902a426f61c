package domain

import "time"

// Workspace is one client's in-memory analysis session.
type Workspace struct {
	ID        string           `json:"id"`
	Document  *Document        `json:"document,omitempty"`
	Tags      []Tag            `json:"tags"`
	Provider  *ProviderConfig  `json:"provider,omitempty"`
	Progress  AnalysisProgress `json:"progress"`
	LastRun   *RunResult       `json:"lastRun,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func (w *Workspace) Clone() *Workspace {
	if w == nil {
		return nil
	}
	out := *w
	out.Tags = CloneTags(w.Tags)
	if out.Tags == nil {
		out.Tags = []Tag{}
	}
	if w.Document != nil {
		doc := *w.Document
		out.Document = &doc
	}
	if w.Provider != nil {
		cfg := *w.Provider
		out.Provider = &cfg
	}
	if w.LastRun != nil {
		run := *w.LastRun
		run.Tags = CloneTags(w.LastRun.Tags)
		run.Failures = append([]TagFailure(nil), w.LastRun.Failures...)
		out.LastRun = &run
	}
	return &out
}

func (w *Workspace) TagIndex(tagID string) int {
	for i, tag := range w.Tags {
		if tag.ID == tagID {
			return i
		}
	}
	return -1
}
