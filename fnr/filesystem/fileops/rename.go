package fileops

import (
	"io/fs"
	"os"
)

// OSRenamer renames entries on the local filesystem. Symlinks are renamed
// themselves, never their targets.
type OSRenamer struct{}

// Rename moves src to dst. Without replace an existing dst is reported as
// an error matching fs.ErrExist.
func (OSRenamer) Rename(src, dst string, replace bool) error {
	if replace {
		return os.Rename(src, dst)
	}
	return renameNoReplace(src, dst)
}

// renameCheckFirst is the portable no-replace rename. It is racy between the
// check and the rename, which the atomic variants are not.
func renameCheckFirst(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: fs.ErrExist}
	} else if !os.IsNotExist(err) {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: err}
	}
	return os.Rename(src, dst)
}
