package search

import "github.com/kenneth/autocrack/internal/decoder"

// Node is one point in the decoder-composition tree explored by the
// Search Engine: a text, reached at some depth via some decoder edge
// from its parent. The root node has a nil Edge and Parent.
type Node struct {
	Text     string
	Depth    int
	Parent   *Node
	Edge     decoder.CrackResult
	Priority float64

	// seq breaks priority ties in FIFO order, keeping expansion
	// deterministic for equal-priority nodes.
	seq int
}

// Path walks from n back to the root, returning the ordered list of
// edges (CrackResults) from root to n. The root itself contributes no
// edge, so Path() on the root node returns an empty slice.
func (n *Node) Path() []decoder.CrackResult {
	var reversed []decoder.CrackResult
	for cur := n; cur != nil && cur.Parent != nil; cur = cur.Parent {
		reversed = append(reversed, cur.Edge)
	}
	out := make([]decoder.CrackResult, len(reversed))
	for i, e := range reversed {
		out[len(reversed)-1-i] = e
	}
	return out
}
