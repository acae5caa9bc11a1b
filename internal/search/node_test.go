package search

import (
	"testing"

	"github.com/kenneth/autocrack/internal/decoder"
)

func TestNodePathReturnsEmptyForRoot(t *testing.T) {
	root := &Node{Text: "encoded"}
	if path := root.Path(); len(path) != 0 {
		t.Fatalf("expected empty path for the root node, got %v", path)
	}
}

func TestNodePathWalksRootToLeafInOrder(t *testing.T) {
	root := &Node{Text: "aGVsbG8="}
	child := &Node{
		Text:   "hello",
		Parent: root,
		Depth:  1,
		Edge:   decoder.CrackResult{DecoderName: "base64"},
	}
	grandchild := &Node{
		Text:   "olleh",
		Parent: child,
		Depth:  2,
		Edge:   decoder.CrackResult{DecoderName: "reverse"},
	}

	path := grandchild.Path()
	if len(path) != 2 {
		t.Fatalf("expected a 2-edge path, got %d", len(path))
	}
	if path[0].DecoderName != "base64" {
		t.Errorf("expected first edge 'base64', got %q", path[0].DecoderName)
	}
	if path[1].DecoderName != "reverse" {
		t.Errorf("expected second edge 'reverse', got %q", path[1].DecoderName)
	}
}
