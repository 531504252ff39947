package trees

import (
	"path/filepath"

	"github.com/armon/go-radix"
)

// PathIndex maps the on-disk path of every emitted node to its id using a
// compressed trie, so lookups cost O(k) in the path length.
type PathIndex struct {
	tree *radix.Tree
}

// NewPathIndex creates an empty index
func NewPathIndex() *PathIndex {
	return &PathIndex{tree: radix.New()}
}

// Insert records id under path and reports whether an earlier entry was replaced
func (idx *PathIndex) Insert(path string, id NodeID) bool {
	_, updated := idx.tree.Insert(filepath.Clean(path), id)
	return updated
}

// Lookup finds the node id recorded for path
func (idx *PathIndex) Lookup(path string) (NodeID, bool) {
	v, ok := idx.tree.Get(filepath.Clean(path))
	if !ok {
		return NoParent, false
	}
	return v.(NodeID), true
}

// Under returns the ids of every indexed path at or below dir, in path order
func (idx *PathIndex) Under(dir string) []NodeID {
	dir = filepath.Clean(dir)
	var ids []NodeID
	idx.tree.WalkPrefix(dir, func(p string, v interface{}) bool {
		if p == dir || (len(p) > len(dir) && (p[len(dir)] == filepath.Separator || dir == string(filepath.Separator))) {
			ids = append(ids, v.(NodeID))
		}
		return false
	})
	return ids
}

// Len returns the number of indexed paths
func (idx *PathIndex) Len() int {
	return idx.tree.Len()
}
