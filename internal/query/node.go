package query

import "github.com/scottdrichards/photrix/internal/record"

// Node is a sum type over {Leaf, And, Or}: a composed filter AST parsed
// once from a request and evaluated per record, rather than
// re-traversing the request shape on every match.
type Node interface {
	Matches(r *record.Record) bool
}

// LeafNode wraps a single Filter clause set.
type LeafNode struct {
	Filter *Filter
}

func (n LeafNode) Matches(r *record.Record) bool {
	return n.Filter.Matches(r)
}

// AndNode requires every child to match.
type AndNode struct {
	Children []Node
}

func (n AndNode) Matches(r *record.Record) bool {
	for _, c := range n.Children {
		if !c.Matches(r) {
			return false
		}
	}
	return true
}

// OrNode requires at least one child to match.
type OrNode struct {
	Children []Node
}

func (n OrNode) Matches(r *record.Record) bool {
	for _, c := range n.Children {
		if c.Matches(r) {
			return true
		}
	}
	return false
}
