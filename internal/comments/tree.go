// Package comments holds the pure thread builder plus the comment service
// (create, anonymizing delete, like toggle, list-as-tree).
package comments

import (
	"sort"

	"github.com/movieclubhq/movieclub-server/internal/models"
)

// BuildTree turns a flat comment collection into an ordered forest.
//
// Two passes: first every comment gets a node, then each node is attached to
// its parent's children or, when the parent id is missing, unset, or the
// comment's own id, to the root list. Orphans are kept as top-level nodes so
// a deleted or missing parent never hides its replies. Roots and every
// children list are sorted by creation time, ties broken by id, so any
// permutation of the same input yields an identical tree.
func BuildTree(flat []models.Comment) []*models.CommentNode {
	nodes := make(map[string]*models.CommentNode, len(flat))
	for i := range flat {
		nodes[flat[i].ID] = &models.CommentNode{Comment: flat[i]}
	}

	var roots []*models.CommentNode
	for i := range flat {
		c := &flat[i]
		node := nodes[c.ID]
		if c.ParentID != "" && c.ParentID != c.ID {
			if parent, ok := nodes[c.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	sortNodes(roots)
	for _, node := range nodes {
		sortNodes(node.Children)
	}
	return roots
}

func sortNodes(ns []*models.CommentNode) {
	sort.Slice(ns, func(i, j int) bool {
		a, b := ns[i].Comment, ns[j].Comment
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
