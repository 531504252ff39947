package candidates

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/ZanzyTHEbar/filename-repairer/fnr/codepage"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/common"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/ports"
)

// Kind tells how a candidate was produced.
type Kind int

const (
	KindCodepage Kind = iota
	KindURIEscape
)

func (k Kind) String() string {
	if k == KindURIEscape {
		return "uri"
	}
	return "codepage"
}

// Candidate is one plausible repaired name. Encoding is empty for
// KindURIEscape. Unescaped is set on code page candidates decoded from the
// percent-unescaped bytes of a name that is itself plain text.
type Candidate struct {
	Encoding  codepage.EncodingID
	Text      string
	Kind      Kind
	Unescaped bool
}

// Explicit reports whether applying the candidate renames a name that is
// already valid text on disk.
func (c Candidate) Explicit() bool {
	return c.Kind == KindURIEscape || c.Unescaped
}

// List is an ordered candidate list with unique texts.
type List []Candidate

// Texts returns the candidate texts in order
func (l List) Texts() []string {
	out := make([]string, len(l))
	for i, c := range l {
		out[i] = c.Text
	}
	return out
}

// Contains reports whether text is already in the list
func (l List) Contains(text string) bool {
	for _, c := range l {
		if c.Text == text {
			return true
		}
	}
	return false
}

// Generator builds candidate lists. It holds no per-call state and is safe
// for concurrent use.
type Generator struct {
	locale ports.LocaleSource
	logger zerolog.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithLocale sets where the locale used for ordering comes from
func WithLocale(src ports.LocaleSource) Option {
	return func(g *Generator) {
		if src != nil {
			g.locale = src
		}
	}
}

// WithLogger sets the generator logger
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a generator using the process locale by default
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		locale: codepage.EnvLocale{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the candidates for the basename of ref. Non-local refs
// are rejected with ErrNotLocal so callers can tell them apart from names
// that need no repair.
func (g *Generator) Generate(ref filesystem.FileRef) (List, error) {
	if !ref.IsLocal() {
		return nil, common.ErrNotLocal
	}
	return g.GenerateForName(ref.Basename()), nil
}

// GenerateForName returns the candidates for one raw name. An empty list
// means the name needs no repair or no code page yields a usable name.
// Percent-escaped bytes that are not UTF-8 are guessed like a mangled name.
func (g *Generator) GenerateForName(raw string) List {
	working, unescaped := unescapeName(raw)
	if unescaped && codepage.IsValidUnicodeText(working) {
		if usable(raw, working) {
			return List{{Text: working, Kind: KindURIEscape}}
		}
		working, unescaped = raw, false
	}

	if !codepage.NeedsRepair(working) {
		return List{}
	}

	list := List{}
	add := func(id codepage.EncodingID) {
		text, err := codepage.Decode(working, id)
		if err != nil {
			return
		}
		if !usable(working, text) || text == raw || list.Contains(text) {
			return
		}
		list = append(list, Candidate{Encoding: id, Text: text, Kind: KindCodepage, Unescaped: unescaped})
	}

	locale := g.locale.Locale()
	preferred := codepage.DefaultEncodingsForLocale(locale)
	for _, id := range preferred {
		add(id)
	}
	for _, id := range codepage.CandidateOrder() {
		add(id)
	}

	g.logger.Debug().
		Str("name", codepage.EscapedDisplay(raw)).
		Str("locale", locale).
		Int("candidates", len(list)).
		Msg("candidates generated")
	return list
}

// unescapeName returns the percent-decoded bytes of raw and whether decoding
// changed anything. The result need not be UTF-8.
func unescapeName(raw string) (string, bool) {
	if !strings.Contains(raw, "%") {
		return raw, false
	}
	text, err := url.PathUnescape(raw)
	if err != nil || text == raw {
		return raw, false
	}
	return text, true
}

// usable reports whether text can replace raw as a single file name.
func usable(raw, text string) bool {
	if text == "" || text == raw || !utf8.ValidString(text) {
		return false
	}
	if strings.ContainsRune(text, codepage.ReplacementRune) {
		return false
	}
	if text == "." || text == ".." {
		return false
	}
	return !strings.ContainsAny(text, "/\x00")
}

// Result is the outcome for one ref of GenerateAll.
type Result struct {
	Ref        filesystem.FileRef
	Candidates List
	Err        error
}

// GenerateAll computes candidate lists for refs on a bounded worker pool.
// Results are in input order.
func (g *Generator) GenerateAll(ctx context.Context, refs []filesystem.FileRef, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(refs))
	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx)
	for i, ref := range refs {
		i, ref := i, ref
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			list, err := g.Generate(ref)
			results[i] = Result{Ref: ref, Candidates: list, Err: err}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
