package config

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/adrg/xdg"

	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/notify"
	"github.com/nao1215/scanreport/internal/report"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "scanreport"

	// DefaultOutputBase is the file name, without extension, of written
	// reports. Each format adds its own extension.
	DefaultOutputBase = "scan_report"

	// DefaultTitle heads HTML, text and Markdown reports.
	DefaultTitle = "Scan Report"

	// MinWidth is the narrowest text report accepted.
	MinWidth = 40
)

// Config holds every option of a render run. It is populated from the
// config file and CLI flags and passed down explicitly.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The notification options are the exception because the
// notify package validates them as a unit.
type Config struct {
	// SnapshotPath is the recorded scan (YAML or JSON) to report on.
	SnapshotPath string

	// Formats are the documents to render, in order.
	Formats []format.Format

	// OutputDir receives one file per format. Empty means the current
	// directory.
	OutputDir string

	// OutputBase is the file name of written reports without extension.
	OutputBase string

	// Stdout prints the single selected document instead of writing a file.
	Stdout bool

	// Title heads HTML, text and Markdown reports.
	Title string

	// Width is the rule width of text reports.
	Width int

	// Compact disables JSON indentation.
	Compact bool

	// Strict makes a run fail when any plugin section was replaced by a
	// placeholder.
	Strict bool

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the explicitly requested config file, if any.
	ConfigFilePath string

	// Plugins selects the built-in plugins to run. Empty runs all of them.
	Plugins []string

	// ExcludeContentTypes is a regular expression; matching content types
	// are left out of the content_types inventory.
	ExcludeContentTypes string

	// ExternalResults controls whether plugin results recorded in the
	// snapshot are reported.
	ExternalResults bool

	// DBDir is the report archive directory.
	DBDir string

	// SaveToDB archives the scan and every rendered document.
	SaveToDB bool

	// NotifyEnabled sends an e-mail after rendering.
	NotifyEnabled bool

	// Notify configures the e-mail.
	Notify notify.Options
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		Formats:         []format.Format{format.Text},
		OutputBase:      DefaultOutputBase,
		Title:           DefaultTitle,
		Width:           report.DefaultWidth,
		ExternalResults: true,
		DBDir:           XDGDataDir(),
		Notify:          notify.DefaultOptions(),
	}
}

// XDGDataDir returns the default archive directory.
// On Linux: ~/.local/share/scanreport
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the directory searched for config.yaml.
// On Linux: ~/.config/scanreport
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// OutputPath returns where the document in f is written.
func (c *Config) OutputPath(f format.Format) string {
	return filepath.Join(c.OutputDir, c.OutputBase+"."+f.Extension())
}

// ExcludePattern compiles ExcludeContentTypes. It returns nil when no
// pattern is set.
func (c *Config) ExcludePattern() (*regexp.Regexp, error) {
	if c.ExcludeContentTypes == "" {
		return nil, nil
	}
	re, err := regexp.Compile(c.ExcludeContentTypes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidExcludePattern, err)
	}
	return re, nil
}

// ReportOptions returns the generator options implied by c.
func (c *Config) ReportOptions() []report.Option {
	return []report.Option{
		report.WithTitle(c.Title),
		report.WithWidth(c.Width),
		report.WithCompact(c.Compact),
	}
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.SnapshotPath == "" {
		return ErrNoSnapshot
	}
	if len(c.Formats) == 0 {
		return ErrNoFormat
	}

	seen := make(map[format.Format]bool, len(c.Formats))
	for _, f := range c.Formats {
		if !f.IsValid() {
			return fmt.Errorf("%w %q", format.ErrUnknownFormat, f)
		}
		if !f.Renderable() {
			return fmt.Errorf("%w: %s", ErrNotRenderable, f)
		}
		if seen[f] {
			return fmt.Errorf("%w: %s", ErrDuplicateFormat, f)
		}
		seen[f] = true
	}

	if c.Stdout && len(c.Formats) > 1 {
		return ErrStdoutMultipleFormats
	}
	if c.Width < MinWidth {
		return ErrInvalidWidth
	}
	if _, err := c.ExcludePattern(); err != nil {
		return err
	}
	if c.NotifyEnabled {
		if err := c.Notify.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats converts format names into Formats.
func ParseFormats(names []string) ([]format.Format, error) {
	formats := make([]format.Format, 0, len(names))
	for _, name := range names {
		f, err := format.Parse(name)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}
