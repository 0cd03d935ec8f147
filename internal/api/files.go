package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/scottdrichards/photrix/internal/derivative"
	"github.com/scottdrichards/photrix/internal/hls"
	"github.com/scottdrichards/photrix/internal/mimetype"
	"github.com/scottdrichards/photrix/internal/record"
)

const (
	representationHLS     = "hls"
	representationPreview = "preview"
	representationWebSafe = "webSafe"
	previewHeight         = 320
	segmentWaitTimeout    = 30 * time.Second
)

// File handles GET files/{path}: single-file access, dispatching to
// HLS, video thumbnail, resized image, or original bytes in that
// order, the first handler that claims the request wins.
func (h *Handler) File(w http.ResponseWriter, r *http.Request) {
	relPath, err := safePath(r.PathValue("path"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	rec := h.idx.GetIndexedFile(relPath)
	if rec == nil {
		h.writeError(w, notFound("file not found: %s", relPath))
		return
	}
	absPath, err := h.idx.AbsPath(relPath)
	if err != nil {
		h.writeError(w, forbidden("path escapes media root"))
		return
	}
	if _, statErr := os.Stat(absPath); statErr != nil {
		h.writeError(w, notFound("file not found: %s", relPath))
		return
	}

	q := r.URL.Query()
	representation := q.Get("representation")
	height, err := requestedHeight(q.Get("height"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	isVideo := mimetype.IsVideo(rec.MimeType)
	isImage := mimetype.IsImage(rec.MimeType)
	hash := derivative.SourceHash(relPath)

	if isVideo && representation == representationHLS {
		h.serveHLS(w, r, relPath, hash, q.Get("segment"), height)
		return
	}
	if isVideo && (representation == representationPreview || representation == representationWebSafe || height != 0) {
		h.serveVideoThumbnail(w, r, relPath, hash, height)
		return
	}
	if isImage && (representation == representationWebSafe || (height != 0 && height < originalImageHeight(rec))) {
		h.serveImage(w, r, relPath, hash, height)
		return
	}

	h.serveOriginal(w, r, absPath, rec.MimeType)
}

// requestedHeight parses the height query parameter: empty or
// "original" means no resize (0), anything else must be a positive
// integer.
func requestedHeight(raw string) (int, error) {
	if raw == "" || raw == "original" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, badRequest("height must be a positive integer or \"original\"")
	}
	return n, nil
}

func originalImageHeight(rec *record.Record) int {
	if rec.Metadata == nil || rec.Metadata.Image == nil || rec.Metadata.Image.Dimensions == nil {
		return 0
	}
	return rec.Metadata.Image.Dimensions.Height
}

// serveOriginal streams the source file, honoring Range requests via
// http.ServeContent (which also sets Accept-Ranges, Last-Modified, and
// handles conditional requests).
func (h *Handler) serveOriginal(w http.ResponseWriter, r *http.Request, absPath, mimeType string) {
	f, err := os.Open(absPath)
	if err != nil {
		h.writeError(w, notFound("file not found"))
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		h.writeError(w, internal(err))
		return
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mimeType)
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (h *Handler) serveImage(w http.ResponseWriter, r *http.Request, relPath, hash string, height int) {
	if height == 0 {
		height = derivative.StandardHeights[0]
	}
	path, err := h.manager.RequestImage(r.Context(), relPath, hash, height)
	if err != nil {
		h.writeError(w, mapDerivativeError(err))
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	http.ServeFile(w, r, path)
}

func (h *Handler) serveVideoThumbnail(w http.ResponseWriter, r *http.Request, relPath, hash string, height int) {
	if height == 0 {
		height = previewHeight
	}
	path, err := h.manager.RequestVideoThumbnail(r.Context(), relPath, hash, height)
	if err != nil {
		h.writeError(w, mapDerivativeError(err))
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	http.ServeFile(w, r, path)
}

func mapDerivativeError(err error) *Error {
	if errors.Is(err, derivative.ErrInvalidSource) {
		return unprocessable("source file could not be decoded")
	}
	return internal(err)
}

// serveHLS implements §4.6's HLS branch: it always drives a
// single-stream build (this module does not pre-encode a multi-bitrate
// ladder) and serves a rewritten media playlist once at least 3
// segments exist, or the raw segment bytes once a segment name is
// requested.
func (h *Handler) serveHLS(w http.ResponseWriter, r *http.Request, relPath, hash, segment string, height int) {
	if height == 0 {
		height = previewHeight
	}
	outDir := h.manager.RequestSingleStreamHLS(relPath, hash, height)

	if segment != "" {
		w.Header().Set("Content-Type", "video/mp2t")
		http.ServeFile(w, r, outDir+"/"+segment)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), segmentWaitTimeout)
	defer cancel()
	if err := hls.WaitForSegments(ctx, outDir, 3); err != nil {
		h.writeError(w, internal(err))
		return
	}

	playlistBytes, err := os.ReadFile(outDir + "/playlist.m3u8")
	if err != nil {
		h.writeError(w, internal(err))
		return
	}
	rewritten := hls.RewriteSegmentURIs(string(playlistBytes), func(name string) string {
		return "?representation=hls&height=" + strconv.Itoa(height) + "&segment=" + name
	})

	if rec := h.idx.GetIndexedFile(relPath); rec != nil && rec.Metadata != nil && rec.Metadata.Video != nil && rec.Metadata.Video.Duration > 0 {
		w.Header().Set("X-Content-Duration", strconv.FormatFloat(rec.Metadata.Video.Duration, 'f', -1, 64))
	}
	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	w.Write([]byte(rewritten))
}
