package fileops

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ZanzyTHEbar/filename-repairer/fnr/codepage"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/common"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/interfaces"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/options"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/types"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/trees"
)

// Entry is one rename request: the entry at Path gets the basename
// ProposedName. Proposed is false when no name could be computed.
type Entry struct {
	Path         string
	RawName      string
	ProposedName string
	Proposed     bool
	IsDir        bool

	// Explicit entries were picked by the operator and are renamed even
	// when RawName is already valid text, e.g. a percent-escaped name.
	Explicit bool
}

// EntryFromNode converts a walked node into a rename request
func EntryFromNode(n trees.TreeNode) Entry {
	return Entry{
		Path:         n.Path,
		RawName:      n.RawName,
		ProposedName: n.ProposedName,
		Proposed:     n.Proposed,
		IsDir:        n.IsDir,
	}
}

// Executor applies rename batches. A failing entry is recorded and the batch
// goes on; there is no way to stop a batch half way.
type Executor struct {
	resolver   interfaces.ConflictResolver
	renamer    interfaces.Renamer
	journal    interfaces.Journal
	metrics    *common.RenameMetrics
	validation *common.ValidationUtils
	errUtils   *common.ErrorUtils
	logger     zerolog.Logger
}

// ExecutorOption configures an Executor
type ExecutorOption func(*Executor)

// WithRenamer replaces the filesystem rename primitive
func WithRenamer(r interfaces.Renamer) ExecutorOption {
	return func(e *Executor) {
		e.renamer = r
	}
}

// WithJournal records every result of every batch
func WithJournal(j interfaces.Journal) ExecutorOption {
	return func(e *Executor) {
		e.journal = j
	}
}

// WithLogger sets the executor logger
func WithLogger(logger zerolog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// NewExecutor creates an executor that settles conflicts through resolver
func NewExecutor(resolver interfaces.ConflictResolver, opts ...ExecutorOption) *Executor {
	e := &Executor{
		resolver:   resolver,
		renamer:    OSRenamer{},
		metrics:    &common.RenameMetrics{},
		validation: common.NewValidationUtils(),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.errUtils = common.NewErrorUtils(e.logger)
	return e
}

// Metrics returns the counters accumulated over every batch
func (e *Executor) Metrics() *common.RenameMetrics {
	return e.metrics
}

// Apply renames entries in the given order and returns one result per entry.
// Callers that rename a tree pass descendants before their ancestors.
func (e *Executor) Apply(ctx context.Context, entries []Entry, opts options.ApplyOptions) ([]types.RenameResult, types.Summary) {
	return e.ApplyWithJournal(ctx, entries, opts, e.journal)
}

// ApplyWithJournal is Apply recording the batch in journal instead of the
// executor's own journal. A nil journal records nothing.
func (e *Executor) ApplyWithJournal(ctx context.Context, entries []Entry, opts options.ApplyOptions, journal interfaces.Journal) ([]types.RenameResult, types.Summary) {
	start := time.Now()
	summary := types.Summary{BatchID: uuid.NewString()}
	results := make([]types.RenameResult, 0, len(entries))

	for _, entry := range entries {
		res := e.applyOne(ctx, entry, opts)
		results = append(results, res)
		summary.Add(res)
		e.metrics.Record(res.Status == types.StatusRenamed, res.Status == types.StatusSkipped, res.Status == types.StatusConflict)
		e.record(journal, summary.BatchID, res)
		if opts.Progress != nil {
			opts.Progress(res)
		}
	}

	summary.Duration = time.Since(start)
	e.logger.Info().
		Str("batch", summary.BatchID).
		Int("renamed", summary.Renamed).
		Int("skipped", summary.Skipped).
		Int("conflicts", summary.Conflicts).
		Int("failed", summary.Failed).
		Bool("dry_run", opts.DryRun).
		Dur("duration", summary.Duration).
		Msg("rename batch finished")
	return results, summary
}

func (e *Executor) applyOne(ctx context.Context, entry Entry, opts options.ApplyOptions) types.RenameResult {
	res := types.RenameResult{Src: entry.Path, IsDir: entry.IsDir, DryRun: opts.DryRun}

	if !entry.Explicit && codepage.IsValidUnicodeText(entry.RawName) {
		return skipped(res, "name is already valid")
	}
	if !entry.Proposed {
		return failed(res, "no name under the encoding", common.ErrConversionFailed)
	}
	if err := e.validation.ValidateBasename(entry.ProposedName); err != nil {
		return failed(res, "proposed name is not usable", err)
	}

	res.Dst = filepath.Join(filepath.Dir(entry.Path), entry.ProposedName)
	if res.Dst == res.Src {
		return skipped(res, "name unchanged")
	}

	conflict, err := e.resolver.DetectConflict(ctx, res.Src, res.Dst)
	if err != nil {
		return failed(res, "cannot inspect entry", e.errUtils.HandleOperationError(err, "inspect", res.Src))
	}

	replace := false
	if conflict != nil {
		resolution, err := e.resolver.ResolveConflict(ctx, conflict, opts.Conflict)
		if err != nil {
			return failed(res, "conflict not resolved", err)
		}
		switch resolution {
		case types.ResolutionConflict:
			res.Status = types.StatusConflict
			res.Reason = string(conflict.ConflictType)
			res.Err = common.ErrConflict
			e.logger.Warn().Str("src", res.Src).Str("dst", res.Dst).Msg("destination exists")
			return res
		case types.ResolutionSkip:
			return skipped(res, "overwrite declined")
		case types.ResolutionOverwrite:
			replace = true
		}
	}

	if opts.DryRun {
		res.Status = types.StatusRenamed
		res.Reason = "dry run"
		return res
	}

	if err := e.renamer.Rename(res.Src, res.Dst, replace); err != nil {
		if !replace && errors.Is(err, fs.ErrExist) {
			res.Status = types.StatusConflict
			res.Reason = "destination appeared during rename"
			res.Err = common.ErrConflict
			return res
		}
		e.logger.Warn().Str("src", res.Src).Str("dst", res.Dst).Err(err).Msg("rename failed")
		return failed(res, "rename failed", &common.RenameError{Src: res.Src, Dst: res.Dst, Err: err})
	}

	res.Status = types.StatusRenamed
	if replace {
		res.Reason = "overwritten"
	}
	e.logger.Debug().Str("src", res.Src).Str("dst", res.Dst).Msg("renamed")
	return res
}

func (e *Executor) record(journal interfaces.Journal, batchID string, res types.RenameResult) {
	if journal == nil || res.DryRun {
		return
	}
	if err := journal.Record(batchID, res); err != nil {
		e.logger.Warn().Err(err).Str("src", res.Src).Msg("journal write failed")
	}
}

func skipped(res types.RenameResult, reason string) types.RenameResult {
	res.Status = types.StatusSkipped
	res.Reason = reason
	return res
}

func failed(res types.RenameResult, reason string, err error) types.RenameResult {
	res.Status = types.StatusFailed
	res.Reason = reason
	res.Err = err
	return res
}

// Undo reverts the renames journalled for batchID, newest first. Entries
// whose original name is taken again are reported as conflicts.
func (e *Executor) Undo(records []JournalRecord, batchID string) ([]types.RenameResult, types.Summary) {
	start := time.Now()
	summary := types.Summary{BatchID: batchID}
	var results []types.RenameResult

	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if rec.BatchID != batchID || rec.Status != types.StatusRenamed {
			continue
		}
		res := types.RenameResult{Src: rec.NewPath, Dst: rec.OldPath}
		if err := e.renamer.Rename(rec.NewPath, rec.OldPath, false); err != nil {
			if errors.Is(err, fs.ErrExist) {
				res.Status = types.StatusConflict
				res.Err = common.ErrConflict
			} else {
				res = failed(res, "rename failed", &common.RenameError{Src: rec.NewPath, Dst: rec.OldPath, Err: err})
			}
		} else {
			res.Status = types.StatusRenamed
		}
		results = append(results, res)
		summary.Add(res)
	}

	summary.Duration = time.Since(start)
	e.logger.Info().
		Str("batch", batchID).
		Int("restored", summary.Renamed).
		Int("conflicts", summary.Conflicts).
		Int("failed", summary.Failed).
		Msgf("undo of %d entries finished", summary.Total())
	return results, summary
}
