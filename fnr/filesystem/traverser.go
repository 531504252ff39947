package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/ZanzyTHEbar/filename-repairer/fnr/codepage"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/common"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/interfaces"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/options"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/trees"
)

// State is the lifecycle position of a Session.
type State int

const (
	StateIdle State = iota
	StateWalking
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWalking:
		return "walking"
	default:
		return "done"
	}
}

// TraversalStatus is returned by Advance. AllSucceeded is meaningful only
// once Done is set.
type TraversalStatus struct {
	Done         bool
	AllSucceeded bool
}

func (s TraversalStatus) String() string {
	if !s.Done {
		return "continuing"
	}
	return fmt.Sprintf("done(all_succeeded=%t)", s.AllSucceeded)
}

// frame is the enumeration of one directory in progress.
type frame struct {
	dir  string
	root string
	node trees.NodeID

	opened  bool
	handle  *os.File
	entries []os.DirEntry
	cursor  int
}

// Session is a resumable depth-first walk over a set of roots. All progress
// lives in the session between Advance calls; nothing is mutated on disk.
type Session struct {
	id             uuid.UUID
	roots          []FileRef
	stack          []*frame
	includeSubdirs bool
	sortEntries    bool
	chunkSize      int
	ignore         interfaces.IgnoreChecker
	tree           *trees.Tree
	state          State
	logger         zerolog.Logger
	metrics        common.TraversalMetrics
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithLogger sets the session logger
func WithLogger(logger zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithSortEntries selects between reading each directory whole in name
// order and streaming it in chunks in the order the filesystem returns.
func WithSortEntries(sorted bool) SessionOption {
	return func(s *Session) {
		s.sortEntries = sorted
	}
}

// WithChunkSize sets how many entries a streaming enumeration reads at once
func WithChunkSize(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithExclude skips entries matching gitignore style patterns relative to
// their root. Excluded directories are not descended into.
func WithExclude(patterns ...string) SessionOption {
	return func(s *Session) {
		if len(patterns) > 0 {
			s.ignore = ignore.CompileIgnoreLines(patterns...)
		}
	}
}

// WithIgnoreChecker installs a custom exclusion matcher
func WithIgnoreChecker(checker interfaces.IgnoreChecker) SessionOption {
	return func(s *Session) {
		s.ignore = checker
	}
}

// WithWalkOptions applies the enumeration settings of opts
func WithWalkOptions(opts options.WalkOptions) SessionOption {
	return func(s *Session) {
		WithSortEntries(opts.SortEntries)(s)
		WithChunkSize(opts.ChunkSize)(s)
		WithExclude(opts.Exclude...)(s)
	}
}

// StartTraversal creates an idle session over roots. Every root must be
// local and enc must name a known code page.
func StartTraversal(roots []FileRef, includeSubdirs bool, enc codepage.EncodingID, opts ...SessionOption) (*Session, error) {
	if len(roots) == 0 {
		return nil, common.ErrEmptyRoots
	}
	if _, ok := codepage.Get(enc); !ok {
		return nil, fmt.Errorf("%w: %s", codepage.ErrUnknownEncoding, enc)
	}
	for _, r := range roots {
		if !r.IsLocal() {
			return nil, fmt.Errorf("%w: %s", common.ErrNotLocal, r)
		}
	}

	s := &Session{
		id:             uuid.New(),
		roots:          distinctRoots(roots, includeSubdirs),
		includeSubdirs: includeSubdirs,
		sortEntries:    true,
		chunkSize:      256,
		tree:           trees.NewTree(enc),
		state:          StateIdle,
		logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// distinctRoots drops repeated roots and, when directories are descended
// into, roots lying inside another directory root. Each entry is then
// emitted once and only by its outermost root.
func distinctRoots(roots []FileRef, includeSubdirs bool) []FileRef {
	out := make([]FileRef, 0, len(roots))
	seen := make(map[string]bool, len(roots))
	var dirs []string
	for _, r := range roots {
		if seen[r.Path()] {
			continue
		}
		seen[r.Path()] = true
		out = append(out, r)
		if includeSubdirs {
			if info, err := os.Lstat(r.Path()); err == nil && info.IsDir() {
				dirs = append(dirs, r.Path())
			}
		}
	}
	if len(dirs) == 0 {
		return out
	}

	kept := out[:0]
	for _, r := range out {
		if !insideAny(r.Path(), dirs) {
			kept = append(kept, r)
		}
	}
	return kept
}

func insideAny(path string, dirs []string) bool {
	for _, d := range dirs {
		rel, err := filepath.Rel(d, path)
		if err != nil || rel == "." {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// ID returns the session identifier used in logs and journals
func (s *Session) ID() uuid.UUID { return s.id }

// State returns the lifecycle position of the session
func (s *Session) State() State { return s.state }

// Tree returns the nodes emitted so far
func (s *Session) Tree() *trees.Tree { return s.tree }

// Encoding returns the active encoding
func (s *Session) Encoding() codepage.EncodingID { return s.tree.Encoding() }

// IncludeSubdirectories reports whether directory roots are descended into
func (s *Session) IncludeSubdirectories() bool { return s.includeSubdirs }

// AllSucceeded reports whether every node emitted so far decoded under the
// active encoding.
func (s *Session) AllSucceeded() bool { return s.tree.AllSucceeded() }

// Metrics returns a snapshot of the walk counters
func (s *Session) Metrics() common.TraversalMetrics { return s.metrics }

// Since returns the nodes emitted at or after cursor and the next cursor
func (s *Session) Since(cursor int) ([]trees.TreeNode, int) {
	return s.tree.Since(cursor)
}

// RecomputeEncoding re-decodes every emitted node under enc. The walk
// itself is not restarted.
func (s *Session) RecomputeEncoding(enc codepage.EncodingID) (bool, error) {
	if _, ok := codepage.Get(enc); !ok {
		return false, fmt.Errorf("%w: %s", codepage.ErrUnknownEncoding, enc)
	}
	ok := s.tree.RecomputeEncoding(enc)
	s.logger.Debug().
		Str("session", s.id.String()).
		Str("encoding", string(enc)).
		Bool("all_succeeded", ok).
		Msg("encoding recomputed")
	return ok, nil
}

// Advance visits at most maxSteps entries and reports whether the walk is
// finished. Popping an exhausted directory is not a step.
func (s *Session) Advance(maxSteps int) TraversalStatus {
	if s.state == StateDone {
		return s.status()
	}
	if maxSteps < 1 {
		maxSteps = 1
	}
	if s.state == StateIdle {
		s.state = StateWalking
		s.metrics.StartedAt = time.Now()
		s.logger.Info().
			Str("session", s.id.String()).
			Int("roots", len(s.roots)).
			Str("encoding", string(s.tree.Encoding())).
			Bool("include_subdirs", s.includeSubdirs).
			Msg("walk started")
	}
	s.metrics.Advances++

	for steps := 0; steps < maxSteps; {
		if n := len(s.stack); n > 0 {
			top := s.stack[n-1]
			entry, ok := s.next(top)
			if !ok {
				s.pop()
				continue
			}
			s.visitChild(top, entry)
			steps++
			continue
		}
		if len(s.roots) > 0 {
			root := s.roots[0]
			s.roots = s.roots[1:]
			s.visitRoot(root)
			steps++
			continue
		}
		break
	}

	if len(s.stack) == 0 && len(s.roots) == 0 {
		s.finish()
	}
	return s.status()
}

// Close releases open directory handles and ends the session.
func (s *Session) Close() {
	for len(s.stack) > 0 {
		s.pop()
	}
	s.roots = nil
	if s.state != StateDone {
		s.state = StateDone
		s.metrics.FinishedAt = time.Now()
	}
}

func (s *Session) status() TraversalStatus {
	if s.state != StateDone {
		return TraversalStatus{}
	}
	return TraversalStatus{Done: true, AllSucceeded: s.tree.AllSucceeded()}
}

func (s *Session) finish() {
	s.state = StateDone
	s.metrics.FinishedAt = time.Now()
	s.logger.Info().
		Str("session", s.id.String()).
		Int("nodes", s.tree.Len()).
		Int("failed", s.tree.FailedCount()).
		Dur("duration", s.metrics.Duration()).
		Msg("walk finished")
}

func (s *Session) visitRoot(root FileRef) {
	info, err := os.Lstat(root.Path())
	if err != nil {
		s.metrics.EnumerateFails++
		s.logger.Warn().Str("path", root.Path()).Err(err).Msg("root not accessible")
		return
	}

	isDir := info.IsDir()
	node := s.tree.Add(trees.NoParent, root.Path(), root.Basename(), isDir)
	s.count(node)
	if isDir && s.includeSubdirs {
		s.stack = append(s.stack, &frame{dir: root.Path(), root: root.Path(), node: node.ID})
	}
}

func (s *Session) visitChild(parent *frame, entry os.DirEntry) {
	name := entry.Name()
	path := filepath.Join(parent.dir, name)
	isDir := entry.IsDir()

	if s.excluded(parent.root, path, isDir) {
		s.logger.Debug().Str("path", path).Msg("excluded")
		return
	}

	node := s.tree.Add(parent.node, path, name, isDir)
	s.count(node)
	if isDir {
		s.stack = append(s.stack, &frame{dir: path, root: parent.root, node: node.ID})
	}
}

func (s *Session) count(node *trees.TreeNode) {
	if node.IsDir {
		s.metrics.Directories++
	} else {
		s.metrics.Files++
	}
	if !node.Proposed {
		s.metrics.Failed++
	}
}

func (s *Session) excluded(root, path string, isDir bool) bool {
	if s.ignore == nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if s.ignore.MatchesPath(rel) {
		return true
	}
	return isDir && s.ignore.MatchesPath(rel+"/")
}

// next returns the next entry of f, reading more from disk when needed.
// A directory that cannot be read is treated as having no more children.
func (s *Session) next(f *frame) (os.DirEntry, bool) {
	if !f.opened {
		f.opened = true
		if s.sortEntries {
			entries, err := os.ReadDir(f.dir)
			if err != nil {
				s.enumerationFailed(f.dir, err)
			}
			f.entries = entries
		} else {
			h, err := os.Open(f.dir)
			if err != nil {
				s.enumerationFailed(f.dir, err)
				return nil, false
			}
			f.handle = h
		}
	}

	if f.cursor >= len(f.entries) && f.handle != nil {
		entries, err := f.handle.ReadDir(s.chunkSize)
		if err != nil && !errors.Is(err, io.EOF) {
			s.enumerationFailed(f.dir, err)
		}
		f.entries = entries
		f.cursor = 0
		if len(entries) == 0 || err != nil {
			s.closeHandle(f)
		}
	}

	if f.cursor >= len(f.entries) {
		return nil, false
	}
	e := f.entries[f.cursor]
	f.cursor++
	return e, true
}

func (s *Session) pop() {
	n := len(s.stack)
	s.closeHandle(s.stack[n-1])
	s.stack[n-1] = nil
	s.stack = s.stack[:n-1]
}

func (s *Session) closeHandle(f *frame) {
	if f.handle != nil {
		_ = f.handle.Close()
		f.handle = nil
	}
}

func (s *Session) enumerationFailed(dir string, err error) {
	s.metrics.EnumerateFails++
	s.logger.Warn().Str("path", dir).Err(err).Msg("directory enumeration failed")
}
