package query

import "github.com/scottdrichards/photrix/internal/record"

// Options bundles sort, pagination, and projection parameters for a
// single Query call.
type Options struct {
	SortBy   SortField
	Order    SortOrder
	Page     int
	PageSize int
	// Metadata is nil for "no projection" (full metadata returned),
	// non-nil (possibly empty) to restrict the projected keys.
	Metadata []string
}

// Result is the outcome of a single Query call.
type Result struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
}

const defaultPageSize = 50

// Query filters all records by node (nil matches every Full record),
// sorts, paginates, and projects the survivors.
func Query(all []*record.Record, node Node, opts Options) Result {
	filtered := make([]*record.Record, 0, len(all))
	for _, r := range all {
		if !r.IsFull() {
			continue
		}
		if node == nil || node.Matches(r) {
			filtered = append(filtered, r)
		}
	}

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = SortByName
	}
	order := opts.Order
	if order == "" {
		order = Ascending
	}
	SortRecords(filtered, sortBy, order)

	total := len(filtered)

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	page1 := filtered[start:end]

	items := make([]Item, len(page1))
	for i, r := range page1 {
		items[i] = ProjectItem(r, opts.Metadata)
	}

	return Result{Items: items, Total: total, Page: page}
}
