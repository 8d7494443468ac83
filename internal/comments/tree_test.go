package comments

import (
	"math/rand"
	"testing"
	"time"

	"github.com/movieclubhq/movieclub-server/internal/models"
)

func at(sec int) time.Time {
	return time.Date(2024, time.May, 1, 12, 0, sec, 0, time.UTC)
}

func TestBuildTree_Empty(t *testing.T) {
	if got := BuildTree(nil); len(got) != 0 {
		t.Errorf("BuildTree(nil) = %v, want empty", got)
	}
	if got := BuildTree([]models.Comment{}); len(got) != 0 {
		t.Errorf("BuildTree(empty) = %v, want empty", got)
	}
}

func TestBuildTree_RootsSortedRepliesAttached(t *testing.T) {
	flat := []models.Comment{
		{ID: "a", CreatedAt: at(2)},
		{ID: "b", ParentID: "a", CreatedAt: at(3)},
		{ID: "c", CreatedAt: at(1)},
	}
	roots := BuildTree(flat)

	if len(roots) != 2 {
		t.Fatalf("Got %d roots, want 2", len(roots))
	}
	if roots[0].Comment.ID != "c" || roots[1].Comment.ID != "a" {
		t.Errorf("Root order = [%s, %s], want [c, a]", roots[0].Comment.ID, roots[1].Comment.ID)
	}
	if len(roots[1].Children) != 1 || roots[1].Children[0].Comment.ID != "b" {
		t.Errorf("a.children = %v, want [b]", roots[1].Children)
	}
	if len(roots[0].Children) != 0 {
		t.Errorf("c.children = %v, want empty", roots[0].Children)
	}
}

func TestBuildTree_OrphanBecomesRoot(t *testing.T) {
	flat := []models.Comment{
		{ID: "a", CreatedAt: at(1)},
		{ID: "b", ParentID: "gone", CreatedAt: at(2)},
	}
	roots := BuildTree(flat)
	if len(roots) != 2 {
		t.Fatalf("Got %d roots, want 2 (orphan preserved)", len(roots))
	}
	if roots[1].Comment.ID != "b" {
		t.Errorf("Orphan not at root: %v", roots)
	}
}

func TestBuildTree_SelfParentTreatedAsRoot(t *testing.T) {
	flat := []models.Comment{
		{ID: "a", ParentID: "a", CreatedAt: at(1)},
	}
	roots := BuildTree(flat)
	if len(roots) != 1 || roots[0].Comment.ID != "a" {
		t.Fatalf("Self-parented comment should be a root, got %v", roots)
	}
	if len(roots[0].Children) != 0 {
		t.Error("Self-parented comment must not contain itself")
	}
}

func TestBuildTree_DeepNesting(t *testing.T) {
	// a <- b <- c <- d, created in order.
	flat := []models.Comment{
		{ID: "d", ParentID: "c", CreatedAt: at(4)},
		{ID: "b", ParentID: "a", CreatedAt: at(2)},
		{ID: "a", CreatedAt: at(1)},
		{ID: "c", ParentID: "b", CreatedAt: at(3)},
	}
	roots := BuildTree(flat)
	if len(roots) != 1 {
		t.Fatalf("Got %d roots, want 1", len(roots))
	}
	node := roots[0]
	for _, want := range []string{"a", "b", "c", "d"} {
		if node.Comment.ID != want {
			t.Fatalf("Chain broken at %s, got %s", want, node.Comment.ID)
		}
		if len(node.Children) == 0 {
			node = nil
			break
		}
		node = node.Children[0]
	}
}

func TestBuildTree_DeterministicUnderPermutation(t *testing.T) {
	base := []models.Comment{
		{ID: "a", CreatedAt: at(2)},
		{ID: "b", ParentID: "a", CreatedAt: at(5)},
		{ID: "c", ParentID: "a", CreatedAt: at(3)},
		{ID: "d", CreatedAt: at(1)},
		{ID: "e", ParentID: "d", CreatedAt: at(4)},
		{ID: "f", ParentID: "d", CreatedAt: at(4)}, // equal timestamps: id breaks the tie
		{ID: "g", ParentID: "missing", CreatedAt: at(6)},
	}
	want := flatten(BuildTree(base))

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]models.Comment(nil), base...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		if got := flatten(BuildTree(shuffled)); got != want {
			t.Fatalf("Permutation %d built a different tree:\n got %s\nwant %s", i, got, want)
		}
	}
}

// flatten serializes a forest to a comparable pre-order string.
func flatten(roots []*models.CommentNode) string {
	var out string
	var walk func(n *models.CommentNode, depth int)
	walk = func(n *models.CommentNode, depth int) {
		out += string(rune('0'+depth)) + n.Comment.ID + ";"
		for _, child := range n.Children {
			walk(child, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
	return out
}
