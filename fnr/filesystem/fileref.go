package filesystem

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/common"
)

// FileType is the kind of entry a FileRef points at, as seen without
// following symlinks.
type FileType int

const (
	TypeUnknown FileType = iota
	TypeFile
	TypeDirectory
	TypeSymlink
	TypeOther
)

func (t FileType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDirectory:
		return "directory"
	case TypeSymlink:
		return "symlink"
	case TypeOther:
		return "other"
	default:
		return "unknown"
	}
}

// FileRef identifies one entry by location. Only refs with the file scheme
// are local; everything else is carried so callers can report it, but never
// touched.
type FileRef struct {
	scheme string
	host   string
	path   string
}

// LocalRef returns a ref for a path on the local filesystem.
func LocalRef(path string) FileRef {
	return FileRef{scheme: "file", path: filepath.Clean(path)}
}

// ParseFileRef accepts a plain path or a URI. file:// URIs are percent
// decoded into their raw path bytes; other schemes yield a non-local ref.
func ParseFileRef(s string) (FileRef, error) {
	if s == "" {
		return FileRef{}, common.ErrPathEmpty
	}

	i := strings.Index(s, "://")
	if i <= 0 || strings.ContainsAny(s[:i], "/\\") {
		if err := common.NewValidationUtils().ValidatePath(s); err != nil {
			return FileRef{}, err
		}
		return LocalRef(s), nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return FileRef{}, fmt.Errorf("invalid file reference %q: %w", s, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "file" || (u.Host != "" && u.Host != "localhost") {
		return FileRef{scheme: scheme, host: u.Host, path: u.Path}, nil
	}
	if err := common.NewValidationUtils().ValidatePath(u.Path); err != nil {
		return FileRef{}, err
	}
	return LocalRef(u.Path), nil
}

// IsLocal reports whether the ref points into the local filesystem.
func (r FileRef) IsLocal() bool {
	return r.scheme == "file" && r.host == ""
}

// Scheme returns the URI scheme the ref was created from.
func (r FileRef) Scheme() string {
	return r.scheme
}

// Path returns the location of the entry.
func (r FileRef) Path() string {
	return r.path
}

// Basename returns the raw name of the entry.
func (r FileRef) Basename() string {
	return filepath.Base(r.path)
}

// Dir returns a ref for the directory holding the entry.
func (r FileRef) Dir() FileRef {
	return FileRef{scheme: r.scheme, host: r.host, path: filepath.Dir(r.path)}
}

// Child returns a ref for name inside the entry.
func (r FileRef) Child(name string) FileRef {
	return FileRef{scheme: r.scheme, host: r.host, path: filepath.Join(r.path, name)}
}

// Type queries the entry without following symlinks.
func (r FileRef) Type() (FileType, error) {
	if !r.IsLocal() {
		return TypeUnknown, common.ErrNotLocal
	}
	info, err := os.Lstat(r.path)
	if err != nil {
		return TypeUnknown, err
	}
	return fileTypeOf(info.Mode()), nil
}

func (r FileRef) String() string {
	if r.IsLocal() {
		return r.path
	}
	return r.scheme + "://" + r.host + r.path
}

func fileTypeOf(mode os.FileMode) FileType {
	switch {
	case mode.IsRegular():
		return TypeFile
	case mode.IsDir():
		return TypeDirectory
	case mode&os.ModeSymlink != 0:
		return TypeSymlink
	default:
		return TypeOther
	}
}
