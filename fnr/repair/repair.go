// Package repair ties the candidate generator, the resumable walker and the
// rename executor into the operations a presentation layer drives.
package repair

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	internal "github.com/ZanzyTHEbar/filename-repairer/fnr"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/candidates"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/codepage"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/common"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/fileops"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/interfaces"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/options"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/services"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/types"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/ports"
)

// Service is the entry point of the repair core
type Service struct {
	locale     ports.LocaleSource
	interactor ports.Interactor
	journal    interfaces.Journal
	renamer    interfaces.Renamer
	walk       options.WalkOptions
	steps      int
	logger     zerolog.Logger

	generator  *candidates.Generator
	executor   *fileops.Executor
	validation *common.ValidationUtils
}

// Option configures a Service
type Option func(*Service)

// WithLocale sets the locale used for candidate ordering and default encodings
func WithLocale(src ports.LocaleSource) Option {
	return func(s *Service) {
		if src != nil {
			s.locale = src
		}
	}
}

// WithInteractor sets who answers per-entry overwrite questions
func WithInteractor(i ports.Interactor) Option {
	return func(s *Service) {
		s.interactor = i
	}
}

// WithJournal records the results of every rename batch
func WithJournal(j interfaces.Journal) Option {
	return func(s *Service) {
		s.journal = j
	}
}

// WithRenamer replaces the filesystem rename primitive
func WithRenamer(r interfaces.Renamer) Option {
	return func(s *Service) {
		s.renamer = r
	}
}

// WithWalkOptions sets the enumeration settings of every walk
func WithWalkOptions(opts options.WalkOptions) Option {
	return func(s *Service) {
		s.walk = opts
	}
}

// WithStepsPerAdvance sets how many entries ApplyRepair visits per Advance
func WithStepsPerAdvance(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.steps = n
		}
	}
}

// WithLogger sets the logger handed to every component
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a service with the given options
func NewService(opts ...Option) *Service {
	s := &Service{
		locale: codepage.EnvLocale{},
		walk:   options.DefaultWalkOptions(),
		steps:  internal.DefaultStepsPerAdvance,
		logger: zerolog.Nop(),

		validation: common.NewValidationUtils(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.generator = candidates.NewGenerator(
		candidates.WithLocale(s.locale),
		candidates.WithLogger(s.logger),
	)

	execOpts := []fileops.ExecutorOption{fileops.WithLogger(s.logger)}
	if s.journal != nil {
		execOpts = append(execOpts, fileops.WithJournal(s.journal))
	}
	if s.renamer != nil {
		execOpts = append(execOpts, fileops.WithRenamer(s.renamer))
	}
	s.executor = fileops.NewExecutor(services.NewConflictResolverService(s.interactor, s.logger), execOpts...)
	return s
}

// Locale returns the locale the service orders candidates by
func (s *Service) Locale() string {
	return s.locale.Locale()
}

// DefaultEncoding returns the code page preferred for the current locale
func (s *Service) DefaultEncoding() codepage.EncodingID {
	return codepage.DefaultEncodingForLocale(s.locale.Locale())
}

// GenerateCandidates returns the ranked repair candidates for one entry
func (s *Service) GenerateCandidates(ref filesystem.FileRef) (candidates.List, error) {
	return s.generator.Generate(ref)
}

// GenerateAll returns the candidates of many entries, computed concurrently
func (s *Service) GenerateAll(ctx context.Context, refs []filesystem.FileRef, workers int) ([]candidates.Result, error) {
	return s.generator.GenerateAll(ctx, refs, workers)
}

// SuggestEncoding picks the encoding to pre-select for a bulk repair of ref:
// the best code page candidate of the on-disk bytes that is offered for bulk
// use, otherwise the locale default.
func (s *Service) SuggestEncoding(ref filesystem.FileRef) codepage.EncodingID {
	list, err := s.generator.Generate(ref)
	if err == nil {
		for _, c := range list {
			if c.Kind != candidates.KindCodepage || c.Unescaped {
				continue
			}
			if e, ok := codepage.Get(c.Encoding); ok && e.Selectable {
				return c.Encoding
			}
		}
	}
	return s.DefaultEncoding()
}

// StartTraversal begins a walk over roots with proposals under enc. An empty
// enc selects the locale default.
func (s *Service) StartTraversal(roots []filesystem.FileRef, includeSubdirs bool, enc codepage.EncodingID) (*filesystem.Session, error) {
	if enc == "" {
		enc = s.DefaultEncoding()
	}
	return filesystem.StartTraversal(roots, includeSubdirs, enc,
		filesystem.WithWalkOptions(s.walk),
		filesystem.WithLogger(s.logger),
	)
}

// Advance runs at most maxSteps steps of session
func (s *Service) Advance(session *filesystem.Session, maxSteps int) filesystem.TraversalStatus {
	return session.Advance(maxSteps)
}

// RecomputeEncoding re-decodes the nodes of session under enc and returns
// the new all-succeeded flag
func (s *Service) RecomputeEncoding(session *filesystem.Session, enc codepage.EncodingID) (bool, error) {
	return session.RecomputeEncoding(enc)
}

// ApplyRepair walks roots to completion and renames every entry whose name
// decodes under enc. Descendants are renamed before their directories.
func (s *Service) ApplyRepair(ctx context.Context, roots []filesystem.FileRef, enc codepage.EncodingID, includeSubdirs bool, conflict options.ConflictStrategy) ([]types.RenameResult, types.Summary, error) {
	walk := s.walk
	walk.IncludeSubdirectories = includeSubdirs
	return s.ApplyRepairWithOptions(ctx, roots, options.ApplyOptions{
		Encoding: enc,
		Walk:     walk,
		Conflict: conflict,
	})
}

// ApplyRepairWithOptions is ApplyRepair with dry-run, progress reporting and
// a per-batch journal. A JournalPath takes the place of the service journal.
func (s *Service) ApplyRepairWithOptions(ctx context.Context, roots []filesystem.FileRef, opts options.ApplyOptions) (_ []types.RenameResult, _ types.Summary, err error) {
	if opts.Encoding == "" {
		opts.Encoding = s.DefaultEncoding()
	}
	if opts.Conflict == "" {
		opts.Conflict = options.ConflictAskPerEntry
	}

	session, err := filesystem.StartTraversal(roots, opts.Walk.IncludeSubdirectories, opts.Encoding,
		filesystem.WithWalkOptions(opts.Walk),
		filesystem.WithLogger(s.logger),
	)
	if err != nil {
		return nil, types.Summary{}, err
	}
	defer session.Close()

	journal := s.journal
	if opts.JournalPath != "" && !opts.DryRun {
		j, err := fileops.OpenJournal(opts.JournalPath)
		if err != nil {
			return nil, types.Summary{}, err
		}
		defer func() {
			if cerr := j.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close journal: %w", cerr)
			}
		}()
		journal = j
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, types.Summary{}, fmt.Errorf("walk interrupted: %w", err)
		}
		if st := session.Advance(s.steps); st.Done {
			break
		}
	}

	plan := session.Tree().Plan()
	entries := make([]fileops.Entry, 0, len(plan))
	for _, n := range plan {
		entries = append(entries, fileops.EntryFromNode(n))
	}

	results, summary := s.executor.ApplyWithJournal(ctx, entries, opts, journal)
	return results, summary, nil
}

// RenameTo applies one chosen candidate to ref. Candidates derived from a
// percent-escaped name are applied even though the current name is valid.
// A missing ref fails with ErrSourceNotExist.
func (s *Service) RenameTo(ctx context.Context, ref filesystem.FileRef, c candidates.Candidate, conflict options.ConflictStrategy, dryRun bool) (types.RenameResult, error) {
	if !ref.IsLocal() {
		return types.RenameResult{}, common.ErrNotLocal
	}
	if err := s.validation.ValidateFileExists(ref.Path()); err != nil {
		return types.RenameResult{}, err
	}
	typ, err := ref.Type()
	if err != nil {
		return types.RenameResult{}, err
	}
	if conflict == "" {
		conflict = options.ConflictAskPerEntry
	}

	entry := fileops.Entry{
		Path:         ref.Path(),
		RawName:      ref.Basename(),
		ProposedName: c.Text,
		Proposed:     true,
		IsDir:        typ == filesystem.TypeDirectory,
		Explicit:     c.Explicit(),
	}
	results, _ := s.executor.Apply(ctx, []fileops.Entry{entry}, options.ApplyOptions{
		Conflict: conflict,
		DryRun:   dryRun,
	})
	return results[0], nil
}

// Undo restores the names renamed by batchID according to the journal at path
func (s *Service) Undo(path, batchID string) ([]types.RenameResult, types.Summary, error) {
	records, err := fileops.ReadJournal(path)
	if err != nil {
		return nil, types.Summary{}, err
	}
	if batchID == "" {
		if len(records) == 0 {
			return nil, types.Summary{}, fmt.Errorf("journal %s is empty", path)
		}
		batchID = records[len(records)-1].BatchID
	}
	results, summary := s.executor.Undo(records, batchID)
	return results, summary, nil
}
