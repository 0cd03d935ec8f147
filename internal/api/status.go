package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Status handles GET status: a single snapshot of indexing progress,
// queue depth, and cache size.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reporter.Snapshot())
}

// StatusStream handles GET status/stream: the same snapshot pushed as
// Server-Sent Events, at most once a second; a queue event is pushed
// immediately when the previous snapshot is at least a second old.
func (h *Handler) StatusStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	snapshots := h.reporter.Stream(r.Context())
	for snap := range snapshots {
		data, err := json.Marshal(snap)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}
