package store

import (
	"path/filepath"
	"testing"

	"github.com/scottdrichards/photrix/internal/procqueue"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadAllRoundTrips(t *testing.T) {
	s := newTestStore(t)
	q := procqueue.NewQueue()

	job, _ := q.Submit("image", "abc123", "320", procqueue.PriorityUserBlocked)
	if err := s.Save(job, "vacation/photo.jpg"); err != nil {
		t.Fatal(err)
	}

	records, err := s.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].SourcePath != "vacation/photo.jpg" {
		t.Fatalf("expected source path preserved, got %q", records[0].SourcePath)
	}
	if records[0].Job.Hash != "abc123" || records[0].Job.Priority != procqueue.PriorityUserBlocked {
		t.Fatalf("unexpected job round trip: %+v", records[0].Job)
	}
}

func TestSaveUpsertsOnConflict(t *testing.T) {
	s := newTestStore(t)
	q := procqueue.NewQueue()

	job, _ := q.Submit("image", "abc123", "320", procqueue.PriorityBackground)
	if err := s.Save(job, "a.jpg"); err != nil {
		t.Fatal(err)
	}

	job.Status = procqueue.StatusComplete
	if err := s.Save(job, "a.jpg"); err != nil {
		t.Fatal(err)
	}

	records, err := s.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected upsert to keep a single row, got %d", len(records))
	}
	if records[0].Job.Status != procqueue.StatusComplete {
		t.Fatalf("expected updated status, got %s", records[0].Job.Status)
	}
}

func TestResetRunningJobs(t *testing.T) {
	s := newTestStore(t)
	q := procqueue.NewQueue()

	job, _ := q.Submit("image", "abc123", "320", procqueue.PriorityBackground)
	job.Status = procqueue.StatusRunning
	if err := s.Save(job, "a.jpg"); err != nil {
		t.Fatal(err)
	}

	n, err := s.ResetRunningJobs()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 job reset, got %d", n)
	}

	records, err := s.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if records[0].Job.Status != procqueue.StatusPending {
		t.Fatalf("expected job reset to pending, got %s", records[0].Job.Status)
	}
}

func TestDeleteRemovesJob(t *testing.T) {
	s := newTestStore(t)
	q := procqueue.NewQueue()

	job, _ := q.Submit("image", "abc123", "320", procqueue.PriorityBackground)
	if err := s.Save(job, "a.jpg"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("image", "abc123", "320"); err != nil {
		t.Fatal(err)
	}

	records, err := s.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records after delete, got %d", len(records))
	}
}
