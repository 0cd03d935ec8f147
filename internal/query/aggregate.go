package query

import (
	"math"
	"sort"
	"time"

	"github.com/scottdrichards/photrix/internal/record"
)

// filterSurvivors applies node over all Full records, independent of
// sort/paginate/project, for use by aggregation terminals.
func filterSurvivors(all []*record.Record, node Node) []*record.Record {
	out := make([]*record.Record, 0, len(all))
	for _, r := range all {
		if !r.IsFull() {
			continue
		}
		if node == nil || node.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// DateRangeAgg computes the min/max date_taken across survivors.
type DateRangeAgg struct {
	MinDate *time.Time `json:"min_date"`
	MaxDate *time.Time `json:"max_date"`
}

// DateRangeResult computes the {min_date, max_date} aggregate over records
// matching node.
func DateRangeResult(all []*record.Record, node Node) DateRangeAgg {
	var agg DateRangeAgg
	for _, r := range filterSurvivors(all, node) {
		d := r.DateTaken()
		if d == nil {
			continue
		}
		if agg.MinDate == nil || d.Before(*agg.MinDate) {
			t := *d
			agg.MinDate = &t
		}
		if agg.MaxDate == nil || d.After(*agg.MaxDate) {
			t := *d
			agg.MaxDate = &t
		}
	}
	return agg
}

// HistogramBucket is one bucket of a date histogram.
type HistogramBucket struct {
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

// Histogram is the date_histogram aggregate result.
type Histogram struct {
	Buckets       []HistogramBucket `json:"buckets"`
	BucketSizeMs  int64             `json:"bucketSizeMs"`
	MinDate       *time.Time        `json:"minDate"`
	MaxDate       *time.Time        `json:"maxDate"`
	Grouping      string            `json:"grouping"` // "day" or "month"
}

const dayMs = int64(24 * time.Hour / time.Millisecond)

// maxDayBuckets bounds how many daily buckets a histogram will produce
// before switching to month buckets (one per calendar month, reported
// with a nominal 30-day BucketSizeMs): a
// span that would otherwise need more buckets than this is grouped by
// month instead, trading granularity for a readable bucket count.
const maxDayBuckets = 28 * 4

// DateHistogram auto-chooses day or month buckets — switching to month
// once grouping by day would produce more than maxDayBuckets buckets,
// not merely once the raw span crosses some fixed number of days — and
// returns the per-bucket counts over records matching node.
func DateHistogram(all []*record.Record, node Node) Histogram {
	survivors := filterSurvivors(all, node)

	var dates []time.Time
	for _, r := range survivors {
		if d := r.DateTaken(); d != nil {
			dates = append(dates, d.UTC())
		}
	}
	if len(dates) == 0 {
		return Histogram{Grouping: "day"}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	minDate, maxDate := dates[0], dates[len(dates)-1]

	dayBucketCount := int(maxDate.Sub(minDate).Hours()/24) + 1
	grouping := "day"
	if dayBucketCount > maxDayBuckets {
		grouping = "month"
	}

	buckets := make(map[string]*HistogramBucket)
	var order []string
	for _, d := range dates {
		var key string
		var start time.Time
		if grouping == "day" {
			start = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
			key = start.Format("2006-01-02")
		} else {
			start = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
			key = start.Format("2006-01")
		}
		b, ok := buckets[key]
		if !ok {
			b = &HistogramBucket{Start: start}
			buckets[key] = b
			order = append(order, key)
		}
		b.Count++
	}

	sort.Strings(order)
	out := make([]HistogramBucket, len(order))
	for i, k := range order {
		out[i] = *buckets[k]
	}

	bucketSizeMs := dayMs
	if grouping == "month" {
		bucketSizeMs = dayMs * 30
	}

	return Histogram{
		Buckets:      out,
		BucketSizeMs: bucketSizeMs,
		MinDate:      &minDate,
		MaxDate:      &maxDate,
		Grouping:     grouping,
	}
}

// GeoCluster is one non-empty grid cell in a geo_clusters aggregate.
type GeoCluster struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Count      int     `json:"count"`
	SamplePath string  `json:"samplePath"`
	SampleName string  `json:"sampleName"`
}

// GeoClusters is the geo_clusters aggregate result.
type GeoClusters struct {
	Clusters  []GeoCluster `json:"clusters"`
	Truncated bool         `json:"truncated"`
}

// GeoClustersResult grid-buckets the lat/lon of geotagged survivors of
// node into at most pageSize cells (clusterSize degrees per side; a
// clusterSize of 0 uses a 1-degree default), one GeoCluster per
// non-empty cell, sorted by descending count. Truncated is set when
// more geotagged records exist than the returned clusters' summed
// counts (i.e. the pageSize cap dropped some cells).
func GeoClustersResult(all []*record.Record, node Node, pageSize int, clusterSize float64) GeoClusters {
	if clusterSize <= 0 {
		clusterSize = 1.0
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	type cell struct {
		latBucket, lonBucket int
	}
	type accum struct {
		latSum, lonSum float64
		count          int
		sampleEntryPath string
		sampleEntryName string
	}

	cells := make(map[cell]*accum)
	total := 0
	for _, r := range filterSurvivors(all, node) {
		if r.Metadata == nil || r.Metadata.Image == nil || r.Metadata.Image.Location == nil {
			continue
		}
		loc := r.Metadata.Image.Location
		total++
		c := cell{
			latBucket: int(math.Floor(loc.Lat / clusterSize)),
			lonBucket: int(math.Floor(loc.Lon / clusterSize)),
		}
		a, ok := cells[c]
		if !ok {
			a = &accum{sampleEntryPath: r.RelativePath, sampleEntryName: r.Name}
			cells[c] = a
		}
		a.latSum += loc.Lat
		a.lonSum += loc.Lon
		a.count++
	}

	out := make([]GeoCluster, 0, len(cells))
	for _, a := range cells {
		out = append(out, GeoCluster{
			Latitude:   a.latSum / float64(a.count),
			Longitude:  a.lonSum / float64(a.count),
			Count:      a.count,
			SamplePath: a.sampleEntryPath,
			SampleName: a.sampleEntryName,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].SamplePath < out[j].SamplePath
	})

	truncated := false
	if len(out) > pageSize {
		truncated = true
		out = out[:pageSize]
	}
	summed := 0
	for _, c := range out {
		summed += c.Count
	}
	if summed < total {
		truncated = true
	}

	return GeoClusters{Clusters: out, Truncated: truncated}
}
