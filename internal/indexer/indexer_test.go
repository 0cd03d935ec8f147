package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/scottdrichards/photrix/internal/indexstore"
)

func newTestIndexer(t *testing.T) (*Indexer, string) {
	t.Helper()
	root := t.TempDir()
	store := indexstore.New(filepath.Join(t.TempDir(), "index.json"))
	t.Cleanup(store.Close)
	return New(root, store, "ffprobe", 4, false, true), root
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestIndexFileCreatesFullRecord(t *testing.T) {
	x, root := newTestIndexer(t)
	writeFile(t, filepath.Join(root, "photo.jpg"), "not-a-real-jpeg")

	if err := x.IndexFile("photo.jpg", false); err != nil {
		t.Fatalf("IndexFile failed: %v", err)
	}
	r := x.GetIndexedFile("photo.jpg")
	if r == nil {
		t.Fatal("expected a record for photo.jpg")
	}
	if !r.IsFull() {
		t.Fatalf("expected Full stage, got %v", r.Stage())
	}
	if r.MimeType != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", r.MimeType)
	}
}

func TestIndexFileSkipsUnchanged(t *testing.T) {
	x, root := newTestIndexer(t)
	path := filepath.Join(root, "photo.jpg")
	writeFile(t, path, "data")

	if err := x.IndexFile("photo.jpg", true); err != nil {
		t.Fatal(err)
	}
	first := x.GetIndexedFile("photo.jpg")
	firstIndexedAt := *first.LastIndexedAt

	if err := x.IndexFile("photo.jpg", true); err != nil {
		t.Fatal(err)
	}
	second := x.GetIndexedFile("photo.jpg")
	if !second.LastIndexedAt.Equal(firstIndexedAt) {
		t.Error("expected unchanged file to be left untouched by a second skipIfUnchanged pass")
	}
}

func TestRemoveFile(t *testing.T) {
	x, root := newTestIndexer(t)
	writeFile(t, filepath.Join(root, "photo.jpg"), "data")
	if err := x.IndexFile("photo.jpg", false); err != nil {
		t.Fatal(err)
	}
	x.RemoveFile("photo.jpg")
	if r := x.GetIndexedFile("photo.jpg"); r != nil {
		t.Fatal("expected record to be removed")
	}
}

// Scenario A: a file added after Start is picked up by the watcher.
func TestScenarioAWatchDetectsNewFile(t *testing.T) {
	root := t.TempDir()
	store := indexstore.New(filepath.Join(t.TempDir(), "index.json"))
	defer store.Close()

	x := New(root, store, "ffprobe", 4, true, false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	x.Start(ctx)
	defer x.Stop(false)

	// Let the initial (empty) scan finish and the watcher attach.
	time.Sleep(100 * time.Millisecond)

	writeFile(t, filepath.Join(root, "new.jpg"), "data")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r := x.GetIndexedFile("new.jpg"); r != nil && r.IsFull() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("expected the watcher to index the new file within the deadline")
}

// Scenario B: a rename is observed as an unlink of the old name
// followed by indexing under the new name.
func TestScenarioBRenameIsUnlinkThenAdd(t *testing.T) {
	root := t.TempDir()
	store := indexstore.New(filepath.Join(t.TempDir(), "index.json"))
	defer store.Close()

	oldPath := filepath.Join(root, "old.jpg")
	writeFile(t, oldPath, "data")

	x := New(root, store, "ffprobe", 4, true, false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	x.Start(ctx)
	defer x.Stop(false)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r := x.GetIndexedFile("old.jpg"); r != nil && r.IsFull() {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if r := x.GetIndexedFile("old.jpg"); r == nil {
		t.Fatal("expected old.jpg to be indexed by the initial scan")
	}

	if err := os.Rename(oldPath, filepath.Join(root, "renamed.jpg")); err != nil {
		t.Fatal(err)
	}

	deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		oldGone := x.GetIndexedFile("old.jpg") == nil
		newHere := x.GetIndexedFile("renamed.jpg") != nil
		if oldGone && newHere {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("expected rename to remove the old entry and add the new one")
}
