package types

import (
	"fmt"
	"time"
)

// RenameStatus is the outcome of one entry of a rename batch
type RenameStatus string

const (
	StatusRenamed  RenameStatus = "renamed"
	StatusSkipped  RenameStatus = "skipped"
	StatusConflict RenameStatus = "conflict"
	StatusFailed   RenameStatus = "failed"
)

// RenameResult describes what happened to one entry
type RenameResult struct {
	Src    string       `json:"src"`
	Dst    string       `json:"dst,omitempty"`
	IsDir  bool         `json:"is_dir"`
	Status RenameStatus `json:"status"`
	Reason string       `json:"reason,omitempty"`
	Err    error        `json:"-"`
	DryRun bool         `json:"dry_run,omitempty"`
}

func (r RenameResult) String() string {
	if r.Reason != "" {
		return fmt.Sprintf("%s: %s -> %s (%s)", r.Status, r.Src, r.Dst, r.Reason)
	}
	return fmt.Sprintf("%s: %s -> %s", r.Status, r.Src, r.Dst)
}

// Summary counts the results of a batch
type Summary struct {
	BatchID   string        `json:"batch_id"`
	Renamed   int           `json:"renamed"`
	Skipped   int           `json:"skipped"`
	Conflicts int           `json:"conflicts"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Add counts one result
func (s *Summary) Add(r RenameResult) {
	switch r.Status {
	case StatusRenamed:
		s.Renamed++
	case StatusSkipped:
		s.Skipped++
	case StatusConflict:
		s.Conflicts++
	case StatusFailed:
		s.Failed++
	}
}

// Total returns the number of entries counted
func (s Summary) Total() int {
	return s.Renamed + s.Skipped + s.Conflicts + s.Failed
}

// OK reports whether no entry failed or was left in conflict
func (s Summary) OK() bool {
	return s.Failed == 0 && s.Conflicts == 0
}

// ConflictInfo contains information about a destination that already exists
type ConflictInfo struct {
	SourcePath   string       `json:"source_path"`
	TargetPath   string       `json:"target_path"`
	ConflictType ConflictType `json:"conflict_type"`
	SourceIsDir  bool         `json:"source_is_dir"`
	TargetIsDir  bool         `json:"target_is_dir"`
}

// ConflictType defines the types of rename conflicts
type ConflictType string

const (
	ConflictFileExists      ConflictType = "file_exists"
	ConflictDirectoryExists ConflictType = "directory_exists"
	ConflictTypeMismatch    ConflictType = "type_mismatch"
)

// Resolution is the decision taken for a conflict
type Resolution string

const (
	ResolutionOverwrite Resolution = "overwrite"
	ResolutionSkip      Resolution = "skip"
	ResolutionConflict  Resolution = "conflict"
)
