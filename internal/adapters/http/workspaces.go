package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kirillkom/deductive-coding/internal/core/domain"
)

type documentView struct {
	Name       string    `json:"name"`
	PageCount  int       `json:"pageCount"`
	Characters int       `json:"characters"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type workspaceView struct {
	ID        string                  `json:"id"`
	Document  *documentView           `json:"document,omitempty"`
	Provider  *domain.ProviderConfig  `json:"provider,omitempty"`
	Tags      []domain.Tag            `json:"tags"`
	Progress  domain.AnalysisProgress `json:"progress"`
	Plan      domain.AnalysisPlan     `json:"plan"`
	CreatedAt time.Time               `json:"createdAt"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

func newDocumentView(doc *domain.Document) *documentView {
	if doc == nil {
		return nil
	}
	return &documentView{
		Name:       doc.Name,
		PageCount:  doc.PageCount,
		Characters: len([]rune(doc.Content)),
		UploadedAt: doc.UploadedAt,
	}
}

// newWorkspaceView hides the document text and the provider key.
func newWorkspaceView(ws *domain.Workspace, plan domain.AnalysisPlan) workspaceView {
	view := workspaceView{
		ID:        ws.ID,
		Document:  newDocumentView(ws.Document),
		Tags:      ws.Tags,
		Progress:  ws.Progress,
		Plan:      plan,
		CreatedAt: ws.CreatedAt,
		UpdatedAt: ws.UpdatedAt,
	}
	if ws.Provider != nil {
		redacted := ws.Provider.Redacted()
		view.Provider = &redacted
	}
	return view
}

func (rt *Router) createWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := rt.workspaces.Create(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newWorkspaceView(ws, domain.AnalysisPlan{}))
}

func (rt *Router) getWorkspace(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, newWorkspaceView(ws, plan))
}

func (rt *Router) deleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := rt.workspaces.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes())
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "file exceeds upload limit"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.workspaces.AttachDocument(
		r.Context(),
		r.PathValue("id"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newDocumentView(doc))
}

func (rt *Router) configureProvider(w http.ResponseWriter, r *http.Request) {
	var req domain.ProviderConfig
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	cfg, err := req.Normalized()
	if err != nil {
		writeError(w, err)
		return
	}
	if err := rt.workspaces.ConfigureProvider(r.Context(), r.PathValue("id"), cfg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg.Redacted())
}
