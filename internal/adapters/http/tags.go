package httpadapter

import (
	"encoding/json"
	"net/http"
)

type tagRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (rt *Router) listTags(w http.ResponseWriter, r *http.Request) {
	ws, err := rt.workspaces.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": ws.Tags})
}

func (rt *Router) createTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	tag, err := rt.workspaces.CreateTag(r.Context(), r.PathValue("id"), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (rt *Router) updateTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	tag, err := rt.workspaces.UpdateTag(r.Context(), r.PathValue("id"), r.PathValue("tagID"), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (rt *Router) deleteTag(w http.ResponseWriter, r *http.Request) {
	if err := rt.workspaces.DeleteTag(r.Context(), r.PathValue("id"), r.PathValue("tagID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
