package query

import (
	"testing"
	"time"

	"github.com/scottdrichards/photrix/internal/record"
)

func withDateTaken(name string, t time.Time) *record.Record {
	now := time.Now().UTC()
	return &record.Record{
		RelativePath:  name,
		Name:          name,
		LastIndexedAt: &now,
		Metadata:      &record.Metadata{Image: &record.ImageMetadata{DateTaken: &t}},
	}
}

func TestDateRangeResult(t *testing.T) {
	early := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	all := []*record.Record{withDateTaken("a", early), withDateTaken("b", late)}

	agg := DateRangeResult(all, nil)
	if agg.MinDate == nil || !agg.MinDate.Equal(early) {
		t.Fatalf("expected min date %v, got %v", early, agg.MinDate)
	}
	if agg.MaxDate == nil || !agg.MaxDate.Equal(late) {
		t.Fatalf("expected max date %v, got %v", late, agg.MaxDate)
	}
}

func TestGeoClustersGroupsByGridCell(t *testing.T) {
	mk := func(name string, lat, lon float64) *record.Record {
		now := time.Now().UTC()
		return &record.Record{
			RelativePath:  name,
			Name:          name,
			LastIndexedAt: &now,
			Metadata:      &record.Metadata{Image: &record.ImageMetadata{Location: &record.Location{Lat: lat, Lon: lon}}},
		}
	}
	all := []*record.Record{
		mk("a", 40.1, -74.1),
		mk("b", 40.2, -74.2),
		mk("c", 51.5, -0.1),
	}

	clusters := GeoClustersResult(all, nil, 50, 1.0)
	if len(clusters.Clusters) != 2 {
		t.Fatalf("expected 2 grid cells (NYC area + London), got %d: %+v", len(clusters.Clusters), clusters.Clusters)
	}
	total := 0
	for _, c := range clusters.Clusters {
		total += c.Count
	}
	if total != 3 {
		t.Fatalf("expected cluster counts to sum to 3, got %d", total)
	}
	if clusters.Truncated {
		t.Fatal("did not expect truncation when pageSize exceeds the number of cells")
	}
}

func TestGeoClustersTruncatesWhenCellsExceedPageSize(t *testing.T) {
	var all []*record.Record
	for i := 0; i < 5; i++ {
		now := time.Now().UTC()
		all = append(all, &record.Record{
			RelativePath:  string(rune('a' + i)),
			Name:          string(rune('a' + i)),
			LastIndexedAt: &now,
			Metadata: &record.Metadata{Image: &record.ImageMetadata{
				Location: &record.Location{Lat: float64(i) * 10, Lon: float64(i) * 10},
			}},
		})
	}

	clusters := GeoClustersResult(all, nil, 2, 1.0)
	if !clusters.Truncated {
		t.Fatal("expected truncation when there are more cells than pageSize")
	}
	if len(clusters.Clusters) != 2 {
		t.Fatalf("expected clusters capped at pageSize, got %d", len(clusters.Clusters))
	}
}
