package interfaces

import (
	"context"

	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/options"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/types"
)

// ConflictResolver decides what to do when a repaired name already exists
type ConflictResolver interface {
	DetectConflict(ctx context.Context, srcPath, dstPath string) (*types.ConflictInfo, error)
	ResolveConflict(ctx context.Context, conflict *types.ConflictInfo, strategy options.ConflictStrategy) (types.Resolution, error)
}

// Renamer moves one entry without following symlinks. With replace unset an
// existing destination must be reported as an error, never clobbered.
type Renamer interface {
	Rename(src, dst string, replace bool) error
}

// Journal records executed renames so a batch can be undone by hand
type Journal interface {
	Record(batchID string, result types.RenameResult) error
	Close() error
}

// IgnoreChecker reports whether a root-relative path is excluded from a walk
type IgnoreChecker interface {
	MatchesPath(path string) bool
}
