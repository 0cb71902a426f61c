package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kirillkom/deductive-coding/internal/config"
	"github.com/kirillkom/deductive-coding/internal/core/ports"
	"github.com/kirillkom/deductive-coding/internal/observability/metrics"
)

const (
	serviceName     = "api"
	backpressureMax = 250 * time.Millisecond
)

type Router struct {
	cfg        config.Config
	workspaces ports.WorkspaceService
	metrics    *metrics.HTTPServerMetrics
	now        func() time.Time
}

func NewRouter(cfg config.Config, workspaces ports.WorkspaceService, httpMetrics *metrics.HTTPServerMetrics) *Router {
	return &Router{
		cfg:        cfg,
		workspaces: workspaces,
		metrics:    httpMetrics,
		now:        time.Now,
	}
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /v1/workspaces", rt.createWorkspace)
	api.HandleFunc("GET /v1/workspaces/{id}", rt.getWorkspace)
	api.HandleFunc("DELETE /v1/workspaces/{id}", rt.deleteWorkspace)
	api.HandleFunc("POST /v1/workspaces/{id}/document", rt.uploadDocument)
	api.HandleFunc("PUT /v1/workspaces/{id}/provider", rt.configureProvider)
	api.HandleFunc("GET /v1/workspaces/{id}/tags", rt.listTags)
	api.HandleFunc("POST /v1/workspaces/{id}/tags", rt.createTag)
	api.HandleFunc("PUT /v1/workspaces/{id}/tags/{tagID}", rt.updateTag)
	api.HandleFunc("DELETE /v1/workspaces/{id}/tags/{tagID}", rt.deleteTag)
	api.HandleFunc("GET /v1/workspaces/{id}/analysis", rt.getAnalysis)
	api.HandleFunc("POST /v1/workspaces/{id}/analysis", rt.startAnalysis)
	api.HandleFunc("GET /v1/workspaces/{id}/export", rt.exportResults)

	var guarded http.Handler = api
	guarded = backpressureMiddlewareWithHook(guarded, rt.cfg.APIMaxInFlight, backpressureMax, rt.rejectHook("backpressure"))
	guarded = rateLimitMiddleware(guarded, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.rejectHook("rate_limit"))
	guarded = apiKeyMiddleware(guarded, rt.cfg.APIKey)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		root.Handle("GET /metrics", rt.metrics.Handler())
	}
	root.Handle("/v1/", guarded)

	var handler http.Handler = root
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) rejectHook(reason string) func() {
	if rt.metrics == nil {
		return nil
	}
	return func() { rt.metrics.RecordRejected(serviceName, reason) }
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
