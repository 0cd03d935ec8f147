package query

import (
	"sort"
	"time"

	"github.com/scottdrichards/photrix/internal/record"
)

// SortField names a sortable record attribute.
type SortField string

const (
	SortByName       SortField = "name"
	SortByDateTaken  SortField = "dateTaken"
	SortByDateCreated SortField = "dateCreated"
	SortByRating     SortField = "rating"
)

// SortOrder is the sort direction.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

type sortKey struct {
	rec      *record.Record
	hasValue bool
	timeVal  time.Time
	intVal   int
}

func sortKeyFor(r *record.Record, field SortField) sortKey {
	switch field {
	case SortByDateTaken:
		if d := r.DateTaken(); d != nil {
			return sortKey{rec: r, hasValue: true, timeVal: *d}
		}
		return sortKey{rec: r}
	case SortByDateCreated:
		if r.DateCreated != nil {
			return sortKey{rec: r, hasValue: true, timeVal: *r.DateCreated}
		}
		return sortKey{rec: r}
	case SortByRating:
		if r.Metadata != nil && r.Metadata.Image != nil && r.Metadata.Image.Rating != 0 {
			return sortKey{rec: r, hasValue: true, intVal: r.Metadata.Image.Rating}
		}
		return sortKey{rec: r}
	default: // SortByName
		return sortKey{rec: r, hasValue: true}
	}
}

// SortRecords orders items by field/order. Missing sort values sort
// last regardless of order; ties (and all missing-value comparisons)
// break by name, then path, ascending.
func SortRecords(items []*record.Record, field SortField, order SortOrder) {
	keys := make([]sortKey, len(items))
	for i, r := range items {
		keys[i] = sortKeyFor(r, field)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		ki, kj := keys[i], keys[j]
		ri, rj := ki.rec, kj.rec
		if ki.hasValue != kj.hasValue {
			return ki.hasValue // records with a value sort before those without, in either order
		}
		if ki.hasValue {
			if less := lessValue(field, ri, rj, ki, kj); less != 0 {
				if order == Descending {
					return less > 0
				}
				return less < 0
			}
		}
		if ri.Name != rj.Name {
			return ri.Name < rj.Name
		}
		return ri.RelativePath < rj.RelativePath
	})
	for i, k := range keys {
		items[i] = k.rec
	}
}

// lessValue returns -1, 0, or 1 comparing i to j on field's value.
func lessValue(field SortField, ri, rj *record.Record, ki, kj sortKey) int {
	switch field {
	case SortByDateTaken, SortByDateCreated:
		switch {
		case ki.timeVal.Before(kj.timeVal):
			return -1
		case ki.timeVal.After(kj.timeVal):
			return 1
		default:
			return 0
		}
	case SortByRating:
		switch {
		case ki.intVal < kj.intVal:
			return -1
		case ki.intVal > kj.intVal:
			return 1
		default:
			return 0
		}
	default: // SortByName
		switch {
		case ri.Name < rj.Name:
			return -1
		case ri.Name > rj.Name:
			return 1
		default:
			return 0
		}
	}
}
