package api

import (
	"net/http"
	"strings"

	"github.com/scottdrichards/photrix/internal/mimetype"
)

// folderEntry is one subfolder, with a recursive count of the photo and
// video files it (and its descendants) contain -- enough for a client
// to show counts without a second round-trip per folder.
type folderEntry struct {
	Name   string `json:"name"`
	Photos int    `json:"photos"`
	Videos int    `json:"videos"`
}

// Folders handles GET folders/{path}: a one-level-deep listing of
// subfolder names under path, derived from the indexed records rather
// than a live readdir, so it reflects what's actually searchable.
func (h *Handler) Folders(w http.ResponseWriter, r *http.Request) {
	dir, err := safePath(r.PathValue("path"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	counts := make(map[string]*folderEntry)
	order := make([]string, 0)
	for _, rec := range h.idx.ListIndexedFiles() {
		if !rec.IsFull() {
			continue
		}
		if !isDirectDescendantDir(dir, rec.Directory) {
			continue
		}
		name := strings.TrimPrefix(rec.Directory, dir)
		name = strings.TrimPrefix(name, "/")
		if slash := strings.Index(name, "/"); slash >= 0 {
			name = name[:slash]
		}
		if name == "" {
			continue
		}
		entry, ok := counts[name]
		if !ok {
			entry = &folderEntry{Name: name}
			counts[name] = entry
			order = append(order, name)
		}
		switch {
		case mimetype.IsImage(rec.MimeType):
			entry.Photos++
		case mimetype.IsVideo(rec.MimeType):
			entry.Videos++
		}
	}

	folders := make([]*folderEntry, len(order))
	for i, name := range order {
		folders[i] = counts[name]
	}

	writeJSON(w, http.StatusOK, map[string]any{"folders": folders})
}

// isDirectDescendantDir reports whether recordDir is dir itself or any
// descendant of it (not necessarily one level deep -- the caller trims
// to the first path segment below dir).
func isDirectDescendantDir(dir, recordDir string) bool {
	if dir == "" {
		return true
	}
	return recordDir == dir || strings.HasPrefix(recordDir, dir+"/")
}
