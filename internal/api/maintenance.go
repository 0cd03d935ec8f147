package api

import "net/http"

// PauseQueue handles POST maintenance/pause: stops the derivative
// worker pool from picking up new jobs without dropping anything
// already queued.
func (h *Handler) PauseQueue(w http.ResponseWriter, r *http.Request) {
	h.manager.Pause()
	writeJSON(w, http.StatusOK, map[string]bool{"paused": true})
}

// ResumeQueue handles POST maintenance/resume, undoing PauseQueue.
func (h *Handler) ResumeQueue(w http.ResponseWriter, r *http.Request) {
	h.manager.Resume()
	writeJSON(w, http.StatusOK, map[string]bool{"paused": false})
}
