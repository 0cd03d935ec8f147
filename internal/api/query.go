package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/scottdrichards/photrix/internal/query"
	"github.com/scottdrichards/photrix/internal/record"
)

// QueryFiles handles GET files/{path}/ (trailing slash): a filtered,
// sorted, paginated, optionally-projected and optionally-aggregated
// listing.
func (h *Handler) QueryFiles(w http.ResponseWriter, r *http.Request) {
	dir, err := safePath(r.PathValue("path"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	q := r.URL.Query()

	node, err := parseFilter(q.Get("filter"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	node = scopeToDirectory(dir, q.Get("includeSubfolders") == "true", node)

	all := h.idx.ListIndexedFiles()

	if q.Get("cluster") == "true" {
		result, err := clusterResult(all, node, q)
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	switch q.Get("aggregate") {
	case "dateRange":
		writeJSON(w, http.StatusOK, query.DateRangeResult(all, node))
		return
	case "dateHistogram":
		writeJSON(w, http.StatusOK, query.DateHistogram(all, node))
		return
	}

	opts, err := parseOptions(q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, query.Query(all, node, opts))
}

func clusterResult(all []*record.Record, node query.Node, q url.Values) (query.GeoClusters, error) {
	clusterSize := 0.01
	if v := q.Get("clusterSize"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return query.GeoClusters{}, badRequest("clusterSize must be a number")
		}
		clusterSize = n
	}
	pageSize := defaultClusterPageSize
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return query.GeoClusters{}, badRequest("pageSize must be an integer")
		}
		pageSize = n
	}

	bbox, err := parseViewport(q)
	if err != nil {
		return query.GeoClusters{}, err
	}
	if bbox != nil {
		scope := query.LeafNode{Filter: &query.Filter{Location: bbox}}
		if node == nil {
			node = scope
		} else {
			node = query.AndNode{Children: []query.Node{scope, node}}
		}
	}

	return query.GeoClustersResult(all, node, pageSize, clusterSize), nil
}

const defaultClusterPageSize = 500

func parseViewport(q url.Values) (*query.BBox, error) {
	has := q.Has("west") || q.Has("east") || q.Has("north") || q.Has("south")
	if !has {
		return nil, nil
	}
	parse := func(key string) (*float64, error) {
		v := q.Get(key)
		if v == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, badRequest("%s must be a number", key)
		}
		return &f, nil
	}
	west, err := parse("west")
	if err != nil {
		return nil, err
	}
	east, err := parse("east")
	if err != nil {
		return nil, err
	}
	north, err := parse("north")
	if err != nil {
		return nil, err
	}
	south, err := parse("south")
	if err != nil {
		return nil, err
	}
	return &query.BBox{MinLat: south, MaxLat: north, MinLon: west, MaxLon: east}, nil
}

// exactDirNode matches only records whose Directory equals dir exactly.
// query.Filter's Directory clause treats a literal pattern as "dir or
// any descendant" (matching §4.3's default recursive listing), so
// excluding subfolders needs this separate exact-match node instead.
type exactDirNode string

func (n exactDirNode) Matches(r *record.Record) bool {
	return r.IsFull() && r.Directory == string(n)
}

// scopeToDirectory ANDs the request's directory scope onto node.
func scopeToDirectory(dir string, includeSubfolders bool, node query.Node) query.Node {
	var scope query.Node
	if includeSubfolders {
		if dir == "" {
			return node
		}
		scope = query.LeafNode{Filter: &query.Filter{Directory: []string{dir}}}
	} else {
		scope = exactDirNode(dir)
	}
	if node == nil {
		return scope
	}
	return query.AndNode{Children: []query.Node{scope, node}}
}

func parseOptions(q url.Values) (query.Options, error) {
	opts := query.Options{
		SortBy: query.SortField(q.Get("sortBy")),
		Order:  query.SortOrder(q.Get("order")),
	}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, badRequest("page must be an integer")
		}
		opts.Page = n
	}
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, badRequest("pageSize must be an integer")
		}
		opts.PageSize = n
	}
	if v := q.Get("metadata"); v != "" {
		opts.Metadata = strings.Split(v, ",")
	}
	return opts, nil
}
