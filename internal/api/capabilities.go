package api

import (
	"net/http"

	"github.com/scottdrichards/photrix/internal/derivative"
)

// Capabilities handles GET capabilities: the standard derivative
// heights for images, video thumbnails, and HLS, so a client can build
// its own size-selection UI without guessing.
func (h *Handler) Capabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"imageHeights":      derivative.StandardHeights,
		"videoThumbHeights": derivative.StandardHeights,
		"hlsHeights":        derivative.StandardHeights,
	})
}
