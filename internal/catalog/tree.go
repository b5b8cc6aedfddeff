// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog holds the category-aware filtering and ranking logic shared
// by every storefront listing: building category forests with aggregated
// counts, turning a sidebar selection into a category ID set, and computing
// neighbour navigation for a detail page. Nothing here performs I/O.
package catalog

import (
	"github.com/google/uuid"

	"moonui/internal/models"
)

// Node is one category in a built forest. AggregateCount includes the
// published items of every descendant.
type Node struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	ParentID       *uuid.UUID `json:"parent_id"`
	DirectCount    int        `json:"direct_count"`
	AggregateCount int        `json:"count"`
	Children       []*Node    `json:"children"`
}

// BuildTree converts a flat category list into a rooted forest. counts maps
// a category ID to its published item count; missing entries count as zero.
//
// Children keep the order of the input list. A category whose parent is not
// in the list, or whose ancestor chain loops back to itself, becomes a root.
func BuildTree(cats []models.Category, counts map[uuid.UUID]int) []*Node {
	nodes := make(map[uuid.UUID]*Node, len(cats))
	parents := make(map[uuid.UUID]uuid.UUID, len(cats))
	order := make([]*Node, 0, len(cats))

	for _, c := range cats {
		if _, dup := nodes[c.ID]; dup {
			continue
		}
		n := &Node{
			ID:             c.ID,
			Name:           c.Name,
			ParentID:       c.ParentID,
			DirectCount:    counts[c.ID],
			AggregateCount: counts[c.ID],
			Children:       []*Node{},
		}
		nodes[c.ID] = n
		order = append(order, n)
		if !c.IsRoot() {
			parents[c.ID] = *c.ParentID
		}
	}

	roots := make([]*Node, 0)
	for _, n := range order {
		parentID, hasParent := parents[n.ID]
		parent, found := nodes[parentID]
		if !hasParent || !found || inCycle(n.ID, parents, nodes) {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	for _, r := range roots {
		aggregate(r)
	}
	return roots
}

// inCycle walks the ancestor chain of id and reports whether it returns to id.
// The walk stops at the first missing parent or at any repeated ancestor.
func inCycle(id uuid.UUID, parents map[uuid.UUID]uuid.UUID, nodes map[uuid.UUID]*Node) bool {
	seen := map[uuid.UUID]bool{}
	cur := id
	for {
		p, ok := parents[cur]
		if !ok {
			return false
		}
		if _, exists := nodes[p]; !exists {
			return false
		}
		if p == id {
			return true
		}
		if seen[p] {
			return false
		}
		seen[p] = true
		cur = p
	}
}

// aggregate sums counts bottom-up, children before parents.
func aggregate(n *Node) int {
	total := n.DirectCount
	for _, c := range n.Children {
		total += aggregate(c)
	}
	n.AggregateCount = total
	return total
}

// FlatNode is a Node positioned in depth-first display order.
type FlatNode struct {
	*Node
	Depth int `json:"depth"`
}

// Flatten walks a forest depth-first and returns every node with its depth.
// Useful for <select> style pickers in the admin.
func Flatten(roots []*Node) []FlatNode {
	var result []FlatNode
	Walk(roots, func(n *Node, depth int) {
		result = append(result, FlatNode{Node: n, Depth: depth})
	})
	return result
}

// Walk calls fn for every node in depth-first pre-order.
func Walk(roots []*Node, fn func(n *Node, depth int)) {
	var visit func(nodes []*Node, depth int)
	visit = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			visit(n.Children, depth+1)
		}
	}
	visit(roots, 0)
}

// Total returns the sum of the roots' aggregate counts.
func Total(roots []*Node) int {
	total := 0
	for _, r := range roots {
		total += r.AggregateCount
	}
	return total
}
