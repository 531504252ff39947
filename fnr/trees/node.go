package trees

import (
	"path/filepath"

	"github.com/ZanzyTHEbar/filename-repairer/fnr/codepage"
)

// NodeID indexes a node inside its Tree.
type NodeID int

// NoParent is the parent of a walk root.
const NoParent NodeID = -1

// TreeNode is one filesystem entry discovered by a walk.
type TreeNode struct {
	ID     NodeID
	Parent NodeID
	Depth  int
	IsDir  bool

	// Path is the on-disk path of the entry as it was when visited.
	Path string
	// RawName is the on-disk basename, not necessarily valid UTF-8.
	RawName string
	// DisplayText is RawName in its escaped, printable form.
	DisplayText string

	// ProposedName is valid only when Proposed is set. Proposed is false
	// when RawName could not be decoded under the active encoding.
	ProposedName string
	Proposed     bool
}

// NeedsRename reports whether applying the proposal would change the name.
func (n *TreeNode) NeedsRename() bool {
	return n.Proposed && n.ProposedName != n.RawName
}

// ProposedPath returns the destination path of the proposal, or "" when
// there is none.
func (n *TreeNode) ProposedPath() string {
	if !n.Proposed {
		return ""
	}
	return filepath.Join(filepath.Dir(n.Path), n.ProposedName)
}

// decode recomputes the proposal of n under enc and reports success.
func (n *TreeNode) decode(enc codepage.EncodingID) bool {
	name, err := codepage.ProposedName(n.RawName, enc)
	if err != nil {
		n.ProposedName = ""
		n.Proposed = false
		return false
	}
	n.ProposedName = name
	n.Proposed = true
	return true
}
