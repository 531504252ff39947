package options

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/filename-repairer/fnr/codepage"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/types"
)

// ConflictStrategy defines how to handle a repaired name that already exists
type ConflictStrategy string

const (
	ConflictOverwrite   ConflictStrategy = "overwrite"
	ConflictSkip        ConflictStrategy = "skip"
	ConflictAskPerEntry ConflictStrategy = "ask"
)

// ParseConflictStrategy converts a config or flag value into a strategy
func ParseConflictStrategy(s string) (ConflictStrategy, error) {
	switch ConflictStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case ConflictOverwrite:
		return ConflictOverwrite, nil
	case ConflictSkip:
		return ConflictSkip, nil
	case ConflictAskPerEntry, "":
		return ConflictAskPerEntry, nil
	default:
		return "", fmt.Errorf("unknown conflict strategy: %q", s)
	}
}

// WalkOptions configures a repair walk
type WalkOptions struct {
	IncludeSubdirectories bool     // Descend into directory roots
	SortEntries           bool     // Read each directory whole and sort by raw name
	ChunkSize             int      // Entries read per enumeration call when not sorting
	Exclude               []string // Patterns to ignore (gitignore style), relative to each root
}

// DefaultWalkOptions returns the walk defaults
func DefaultWalkOptions() WalkOptions {
	return WalkOptions{
		SortEntries: true,
		ChunkSize:   256,
	}
}

// ApplyOptions configures a rename batch
type ApplyOptions struct {
	Encoding    codepage.EncodingID
	Walk        WalkOptions
	Conflict    ConflictStrategy
	DryRun      bool                     // Preview operations without executing
	JournalPath string                   // CSV undo journal, empty for none
	Progress    func(types.RenameResult) // Called once per entry, in execution order
}
