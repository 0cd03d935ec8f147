// Package api is the thin, transport-facing adapter over the indexer,
// the query engine, and the derivative manager: it decodes request
// parameters, dispatches to the domain packages, and maps domain
// errors to status codes. It holds no business logic of its own.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/scottdrichards/photrix/internal/derivative"
	"github.com/scottdrichards/photrix/internal/indexer"
	"github.com/scottdrichards/photrix/internal/logger"
	"github.com/scottdrichards/photrix/internal/status"
)

// Handler wires the HTTP surface to the domain packages.
type Handler struct {
	idx       *indexer.Indexer
	manager   *derivative.Manager
	reporter  *status.Reporter
	mediaRoot string
	dev       bool
}

// NewHandler builds a Handler serving mediaRoot. In dev mode, 500
// responses include the underlying error message instead of a generic
// one.
func NewHandler(idx *indexer.Indexer, manager *derivative.Manager, reporter *status.Reporter, mediaRoot string, dev bool) *Handler {
	return &Handler{idx: idx, manager: manager, reporter: reporter, mediaRoot: mediaRoot, dev: dev}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("api: failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	apiErr, ok := err.(*Error)
	if !ok {
		apiErr = internal(err)
	}
	code := http.StatusInternalServerError
	message := apiErr.Message
	switch apiErr.Kind {
	case KindBadRequest:
		code = http.StatusBadRequest
	case KindForbidden:
		code = http.StatusForbidden
	case KindNotFound:
		code = http.StatusNotFound
	case KindUnprocessableEntity:
		code = http.StatusUnprocessableEntity
	case KindInternal:
		code = http.StatusInternalServerError
		logger.Warn("api: internal error", "error", apiErr.Cause)
		if h.dev && apiErr.Cause != nil {
			message = apiErr.Cause.Error()
		}
	}
	writeJSON(w, code, map[string]string{"error": message})
}
