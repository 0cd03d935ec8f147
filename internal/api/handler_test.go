package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/scottdrichards/photrix/internal/derivative"
	"github.com/scottdrichards/photrix/internal/ffmpeg"
	"github.com/scottdrichards/photrix/internal/indexer"
	"github.com/scottdrichards/photrix/internal/indexstore"
	"github.com/scottdrichards/photrix/internal/status"
)

func newTestHandler(t *testing.T) (*Handler, string) {
	t.Helper()
	mediaRoot := t.TempDir()
	if err := os.MkdirAll(filepath.Join(mediaRoot, "vacation"), 0755); err != nil {
		t.Fatal(err)
	}
	imgPath := filepath.Join(mediaRoot, "vacation", "beach.jpg")
	if err := os.WriteFile(imgPath, []byte("not a real jpeg but has bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	st := indexstore.New(filepath.Join(t.TempDir(), "index.json"))
	idx := indexer.New(mediaRoot, st, "ffprobe", 2, false, false)
	if err := idx.IndexFile("vacation/beach.jpg", false); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}

	cacheRoot := t.TempDir()
	cache := derivative.NewCache(cacheRoot, 0)
	encoder := ffmpeg.NewEncoder("ffmpeg")
	manager := derivative.NewManager(cache, encoder, 2, func(relPath string) (string, error) {
		return idx.AbsPath(relPath)
	})

	reporter := status.NewReporter(idx, manager.Queue(), filepath.Join(t.TempDir(), "index.json"), manager)

	return NewHandler(idx, manager, reporter, mediaRoot, true), mediaRoot
}

func TestFileServesOriginalBytes(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := NewRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/files/vacation/beach.jpg", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "not a real jpeg but has bytes" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestFileMissingReturnsNotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := NewRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/files/vacation/missing.jpg", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSafePathRejectsTraversal(t *testing.T) {
	_, err := safePath("../../etc/passwd")
	if err == nil {
		t.Fatal("expected traversal to be rejected")
	}
	apiErr, ok := err.(*Error)
	if !ok || apiErr.Kind != KindForbidden {
		t.Fatalf("expected a Forbidden *Error, got %+v", err)
	}
}

func TestQueryFilesListsIndexedRecords(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := NewRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/files/?includeSubfolders=true", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result struct {
		Items []struct {
			RelativePath string `json:"relative_path"`
		} `json:"items"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Total != 1 || len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %+v", result)
	}
	if result.Items[0].RelativePath != "vacation/beach.jpg" {
		t.Fatalf("unexpected item: %+v", result.Items[0])
	}
}

func TestFoldersListsOneLevelDeep(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := NewRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/folders/", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result struct {
		Folders []struct {
			Name   string `json:"name"`
			Photos int    `json:"photos"`
		} `json:"folders"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Folders) != 1 || result.Folders[0].Name != "vacation" || result.Folders[0].Photos != 1 {
		t.Fatalf("unexpected folders: %+v", result.Folders)
	}
}

func TestStatusReturnsSnapshot(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := NewRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var snap struct {
		DatabaseSize string `json:"database_size"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestCapabilitiesReportsStandardHeights(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := NewRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/capabilities", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var caps struct {
		ImageHeights []int `json:"imageHeights"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &caps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(caps.ImageHeights) != len(derivative.StandardHeights) {
		t.Fatalf("expected %v, got %v", derivative.StandardHeights, caps.ImageHeights)
	}
}

func TestMaintenancePauseResumeReflectedInStatus(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := NewRouter(h)

	statusPaused := func() bool {
		req := httptest.NewRequest(http.MethodGet, "/status", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		var snap struct {
			Queue struct {
				Paused bool `json:"paused"`
			} `json:"queue"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		return snap.Queue.Paused
	}

	if statusPaused() {
		t.Fatal("expected queue to start unpaused")
	}

	req := httptest.NewRequest(http.MethodPost, "/maintenance/pause", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from pause, got %d: %s", rec.Code, rec.Body.String())
	}
	if !statusPaused() {
		t.Fatal("expected queue to report paused after /maintenance/pause")
	}

	req = httptest.NewRequest(http.MethodPost, "/maintenance/resume", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from resume, got %d: %s", rec.Code, rec.Body.String())
	}
	if statusPaused() {
		t.Fatal("expected queue to report unpaused after /maintenance/resume")
	}
}
