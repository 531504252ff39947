package trees

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/ZanzyTHEbar/filename-repairer/fnr/codepage"
)

// Tree is the append-only arena of nodes emitted by one walk. Parents are
// plain indices into the arena and are used for placement only.
type Tree struct {
	nodes    []TreeNode
	children map[NodeID][]NodeID
	roots    []NodeID
	failed   *roaring.Bitmap
	index    *PathIndex
	encoding codepage.EncodingID
}

// NewTree creates an empty tree whose proposals are computed under enc
func NewTree(enc codepage.EncodingID) *Tree {
	return &Tree{
		children: make(map[NodeID][]NodeID),
		failed:   roaring.New(),
		index:    NewPathIndex(),
		encoding: enc,
	}
}

// Encoding returns the active encoding
func (t *Tree) Encoding() codepage.EncodingID {
	return t.encoding
}

// Add appends a node for the entry at path and computes its proposal under
// the active encoding. parent is NoParent for walk roots.
func (t *Tree) Add(parent NodeID, path, rawName string, isDir bool) *TreeNode {
	id := NodeID(len(t.nodes))
	depth := 0
	if parent != NoParent {
		depth = t.nodes[parent].Depth + 1
	}

	t.nodes = append(t.nodes, TreeNode{
		ID:          id,
		Parent:      parent,
		Depth:       depth,
		IsDir:       isDir,
		Path:        path,
		RawName:     rawName,
		DisplayText: codepage.EscapedDisplay(rawName),
	})
	n := &t.nodes[id]
	if !n.decode(t.encoding) {
		t.failed.Add(uint32(id))
	}

	if parent == NoParent {
		t.roots = append(t.roots, id)
	} else {
		t.children[parent] = append(t.children[parent], id)
	}
	t.index.Insert(path, id)
	return n
}

// Len returns the number of nodes emitted so far
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns a copy of the node with the given id
func (t *Tree) Node(id NodeID) (TreeNode, bool) {
	if id < 0 || int(id) >= len(t.nodes) {
		return TreeNode{}, false
	}
	return t.nodes[id], true
}

// Nodes returns a copy of every node in emission order
func (t *Tree) Nodes() []TreeNode {
	out := make([]TreeNode, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// Since returns the nodes emitted at or after cursor and the cursor to pass
// on the next call.
func (t *Tree) Since(cursor int) ([]TreeNode, int) {
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(t.nodes) {
		return nil, len(t.nodes)
	}
	out := make([]TreeNode, len(t.nodes)-cursor)
	copy(out, t.nodes[cursor:])
	return out, len(t.nodes)
}

// Roots returns the ids of the walk roots in visiting order
func (t *Tree) Roots() []NodeID {
	return append([]NodeID(nil), t.roots...)
}

// Children returns the ids of the direct children of id in visiting order
func (t *Tree) Children(id NodeID) []NodeID {
	return append([]NodeID(nil), t.children[id]...)
}

// Lookup finds the node emitted for path
func (t *Tree) Lookup(path string) (TreeNode, bool) {
	id, ok := t.index.Lookup(path)
	if !ok {
		return TreeNode{}, false
	}
	return t.nodes[id], true
}

// Subtree returns the nodes at or below path, ordered by path
func (t *Tree) Subtree(path string) []TreeNode {
	ids := t.index.Under(path)
	out := make([]TreeNode, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.nodes[id])
	}
	return out
}

// FailedCount returns how many nodes have no proposal under the active encoding
func (t *Tree) FailedCount() int {
	return int(t.failed.GetCardinality())
}

// Failed reports whether the node has no proposal under the active encoding
func (t *Tree) Failed(id NodeID) bool {
	return t.failed.Contains(uint32(id))
}

// AllSucceeded reports whether every node decoded under the active encoding
func (t *Tree) AllSucceeded() bool {
	return t.failed.IsEmpty()
}

// RecomputeEncoding re-decodes every emitted node under enc and returns
// the new all-succeeded flag. The tree shape is unchanged.
func (t *Tree) RecomputeEncoding(enc codepage.EncodingID) bool {
	t.encoding = enc
	t.failed.Clear()
	for i := range t.nodes {
		if !t.nodes[i].decode(enc) {
			t.failed.Add(uint32(i))
		}
	}
	return t.AllSucceeded()
}

// Plan returns every node in reverse pre-order, so each entry comes before
// its ancestors and renaming in this order never invalidates a pending path.
func (t *Tree) Plan() []TreeNode {
	out := make([]TreeNode, 0, len(t.nodes))
	for i := len(t.nodes) - 1; i >= 0; i-- {
		out = append(out, t.nodes[i])
	}
	return out
}
