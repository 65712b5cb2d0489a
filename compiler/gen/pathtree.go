package gen

import (
	"strings"

	"github.com/wictorwilen/cocogen-sub000/compiler/load"
)

// PathTree is a nested mapping from path segment to either a child
// tree or a leaf field mapping. A node is a leaf iff it carries a
// source; never both leaf and children. Key order is insertion order
// so that everything compiled from a tree is deterministic.
//
// Trees are built fresh per compilation call and never retained.
type PathTree struct {
	keys  []string
	nodes map[string]*PathNode
}

// PathNode is one node of a path tree.
type PathNode struct {
	// Leaf holds the field mapping if this node is a leaf.
	Leaf *load.FieldMapping
	// Children holds the subtree if this node is not a leaf.
	Children *PathTree
}

// IsLeaf reports if the node carries a source.
func (n *PathNode) IsLeaf() bool { return n.Leaf != nil }

// BuildPathTree turns a flat list of (dotted path, source) mappings
// into a nested tree. Empty segments are dropped. If a later mapping's
// segment collides with an already-placed node of the other kind, the
// later write wins silently.
func BuildPathTree(fields []*load.FieldMapping) *PathTree {
	tree := newPathTree()
	for _, f := range fields {
		segs := splitPath(f.Path)
		if len(segs) == 0 {
			continue
		}
		node := tree
		for _, seg := range segs[:len(segs)-1] {
			node = node.descend(seg)
		}
		node.put(segs[len(segs)-1], &PathNode{Leaf: f})
	}
	return tree
}

func newPathTree() *PathTree {
	return &PathTree{nodes: make(map[string]*PathNode)}
}

// Keys returns the segment keys in insertion order.
func (t *PathTree) Keys() []string { return t.keys }

// Get returns the node attached at the given segment.
func (t *PathTree) Get(seg string) *PathNode { return t.nodes[seg] }

// Len returns the number of top-level segments.
func (t *PathTree) Len() int { return len(t.keys) }

// put attaches a node, overwriting any previous node at the segment
// but keeping its key position.
func (t *PathTree) put(seg string, n *PathNode) {
	if _, ok := t.nodes[seg]; !ok {
		t.keys = append(t.keys, seg)
	}
	t.nodes[seg] = n
}

// descend returns the subtree at the segment, converting a leaf node
// into a subtree if necessary (last write wins).
func (t *PathTree) descend(seg string) *PathTree {
	if n, ok := t.nodes[seg]; ok && n.Children != nil {
		return n.Children
	}
	child := newPathTree()
	t.put(seg, &PathNode{Children: child})
	return child
}

// splitPath splits a dotted path, trimming and dropping empty segments.
func splitPath(path string) []string {
	parts := strings.Split(path, ".")
	segs := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}

// leafRef is one leaf of a tree together with the segments leading to it.
type leafRef struct {
	segs []string
	node *PathNode
}

// leaves collects all leaf nodes in depth-first key order. The
// collection compilers index their parsed arrays by this order, so it
// is part of the compiled-expression contract.
func (t *PathTree) leaves() []leafRef {
	var out []leafRef
	var walk func(t *PathTree, prefix []string)
	walk = func(t *PathTree, prefix []string) {
		for _, k := range t.keys {
			n := t.nodes[k]
			segs := append(append([]string(nil), prefix...), k)
			if n.IsLeaf() {
				out = append(out, leafRef{segs: segs, node: n})
				continue
			}
			walk(n.Children, segs)
		}
	}
	walk(t, nil)
	return out
}
