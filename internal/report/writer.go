package report

import (
	"fmt"
	"log/slog"

	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/model"
	"github.com/nao1215/scanreport/internal/registry"
)

// Generator produces a complete document in one format.
//
// Design decision: Generate takes the summary and results instead of an
// io.Writer because the same Document is written to a file, archived and
// attached to a notification; keeping the bytes lets callers do all three
// without rendering twice.
type Generator interface {
	// Format is the output format this generator produces.
	Format() format.Format

	// Generate renders the document. Plugin failures are reported as
	// Diagnostics, never as an error; the error return is reserved for
	// failures of the document itself (for example a JSON encoding error).
	// A nil summary renders like an empty one.
	Generate(summary *model.ScanSummary, results *model.PluginResults) (*Document, error)
}

// orEmpty returns summary, or an empty summary when it is nil.
func orEmpty(summary *model.ScanSummary) *model.ScanSummary {
	if summary == nil {
		return &model.ScanSummary{}
	}
	return summary
}

// Document is a generated report.
type Document struct {
	// Format is the document's output format.
	Format format.Format

	// Content is the complete document.
	Content []byte

	// Diagnostics lists plugin sections that were replaced by a placeholder.
	Diagnostics []Diagnostic
}

// Filename returns base with the extension of the document's format.
func (d *Document) Filename(base string) string {
	return base + "." + d.Format.Extension()
}

// HasDiagnostics reports whether any plugin section was replaced.
func (d *Document) HasDiagnostics() bool {
	return len(d.Diagnostics) > 0
}

// DefaultWidth is the rule width of text reports when none is configured.
const DefaultWidth = 70

// Option configures a Generator.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	width   int
	compact bool
	title   string
	version string
}

// WithLogger sets the logger that receives diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithWidth sets the rule width of text reports. Values below 40 are
// raised to 40 so headings stay readable.
func WithWidth(width int) Option {
	return func(o *options) {
		o.width = max(width, 40)
	}
}

// WithCompact disables indentation of JSON output.
func WithCompact(compact bool) Option {
	return func(o *options) {
		o.compact = compact
	}
}

// WithTitle sets the document title used by HTML, text and Markdown reports.
func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

// WithVersion records the generating tool's version in the document footer
// or metadata.
func WithVersion(version string) Option {
	return func(o *options) {
		o.version = version
	}
}

func newOptions(opts []Option) options {
	o := options{
		width: DefaultWidth,
		title: "Scan Report",
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// New returns the generator for f backed by reg.
func New(f format.Format, reg *registry.Registry, opts ...Option) (Generator, error) {
	switch f {
	case format.HTML:
		return NewHTMLGenerator(reg, opts...), nil
	case format.Text:
		return NewTextGenerator(reg, opts...), nil
	case format.Markdown:
		return NewMarkdownGenerator(reg, opts...), nil
	case format.JSON:
		return NewJSONGenerator(reg, opts...), nil
	case format.YAML:
		return NewYAMLGenerator(reg, opts...), nil
	default:
		return nil, fmt.Errorf("%w: no report generator for %q", format.ErrUnknownFormat, f)
	}
}

// baseGenerator holds what every generator shares.
type baseGenerator struct {
	format   format.Format
	registry *registry.Registry
	options
}

func newBaseGenerator(f format.Format, reg *registry.Registry, opts []Option) baseGenerator {
	return baseGenerator{
		format:   f,
		registry: reg,
		options:  newOptions(opts),
	}
}

// Format implements Generator.
func (g *baseGenerator) Format() format.Format {
	return g.format
}

// footer returns the attribution line shared by the document formats.
func (g *baseGenerator) footer() string {
	if g.version == "" {
		return "Report generated by scanreport"
	}
	return "Report generated by scanreport " + g.version
}
