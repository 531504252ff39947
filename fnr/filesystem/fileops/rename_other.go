//go:build !linux

package fileops

func renameNoReplace(src, dst string) error {
	return renameCheckFirst(src, dst)
}
