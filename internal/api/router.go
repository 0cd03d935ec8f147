package api

import (
	"net/http"
	"strings"
)

// NewRouter registers every endpoint on a fresh ServeMux.
func NewRouter(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /files/{path...}", h.dispatchFiles)
	mux.HandleFunc("GET /folders/{path...}", h.Folders)
	mux.HandleFunc("GET /status", h.Status)
	mux.HandleFunc("GET /status/stream", h.StatusStream)
	mux.HandleFunc("GET /capabilities", h.Capabilities)
	mux.HandleFunc("POST /maintenance/pause", h.PauseQueue)
	mux.HandleFunc("POST /maintenance/resume", h.ResumeQueue)

	return mux
}

// WithCORS wraps mux with the configured CORS headers. It only echoes
// the allowed origin (and the credentials flag); OPTIONS preflight
// requests are not answered, so cross-origin POSTs to the maintenance
// endpoints that need a preflight are not supported.
func WithCORS(mux http.Handler, origin string, allowCredentials bool) http.Handler {
	if origin == "" {
		return mux
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		if allowCredentials {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		mux.ServeHTTP(w, r)
	})
}

// dispatchFiles distinguishes a directory query from a single-file
// fetch by a literal trailing slash on the request path: ServeMux's
// {path...} wildcard can't express that distinction in the pattern
// itself, since a "..." wildcard must be the final token.
func (h *Handler) dispatchFiles(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/") {
		h.QueryFiles(w, r)
		return
	}
	h.File(w, r)
}
