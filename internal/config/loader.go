package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/scanreport/internal/notify"
)

// DefaultConfigFile is the config file name looked up in the current and
// home directories.
const DefaultConfigFile = ".scanreport"

// XDGConfigFile is the config file name inside XDGConfigDir.
const XDGConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the structure of the configuration file.
type File struct {
	Report       ReportSettings       `yaml:"report,omitempty"`
	Plugins      []string             `yaml:"plugins,omitempty"`
	ContentTypes ContentTypesSettings `yaml:"content_types,omitempty"`
	Archive      ArchiveSettings      `yaml:"archive,omitempty"`

	// Notify is kept as a node so that decoding starts from the notify
	// defaults and explicitly empty values (authentication: "") survive.
	Notify yaml.Node `yaml:"notify,omitempty"`
}

// ReportSettings are the rendering defaults.
type ReportSettings struct {
	Formats []string `yaml:"formats,omitempty"`
	Output  string   `yaml:"output,omitempty"`
	Base    string   `yaml:"base,omitempty"`
	Title   string   `yaml:"title,omitempty"`
	Width   int      `yaml:"width,omitempty"`
	Compact bool     `yaml:"compact,omitempty"`
	Strict  bool     `yaml:"strict,omitempty"`
}

// ContentTypesSettings configure the content_types plugin.
type ContentTypesSettings struct {
	Exclude string `yaml:"exclude,omitempty"`
}

// ArchiveSettings configure the report archive.
type ArchiveSettings struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// HasNotify reports whether the file configures notifications.
func (f *File) HasNotify() bool {
	return f.Notify.Kind != 0
}

// NotifyOptions decodes the notify section over the notify defaults.
func (f *File) NotifyOptions() (notify.Options, error) {
	opts := notify.DefaultOptions()
	if !f.HasNotify() {
		return opts, nil
	}
	if err := f.Notify.Decode(&opts); err != nil {
		return opts, fmt.Errorf("notify: %w", err)
	}
	return opts, nil
}

// LoadConfigFile loads the configuration file at path. A missing file
// yields ErrConfigNotFound; callers decide whether that matters.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// ApplyFile copies the settings of f into c. Command-line flags are
// applied afterwards and win.
func (c *Config) ApplyFile(f *File) error {
	if len(f.Report.Formats) > 0 {
		formats, err := ParseFormats(f.Report.Formats)
		if err != nil {
			return fmt.Errorf("report.formats: %w", err)
		}
		c.Formats = formats
	}
	if f.Report.Output != "" {
		c.OutputDir = f.Report.Output
	}
	if f.Report.Base != "" {
		c.OutputBase = f.Report.Base
	}
	if f.Report.Title != "" {
		c.Title = f.Report.Title
	}
	if f.Report.Width != 0 {
		c.Width = f.Report.Width
	}
	c.Compact = c.Compact || f.Report.Compact
	c.Strict = c.Strict || f.Report.Strict

	if len(f.Plugins) > 0 {
		c.Plugins = f.Plugins
	}
	if f.ContentTypes.Exclude != "" {
		c.ExcludeContentTypes = f.ContentTypes.Exclude
	}

	if f.Archive.Enabled {
		c.SaveToDB = true
	}
	if f.Archive.Dir != "" {
		c.DBDir = f.Archive.Dir
	}

	if f.HasNotify() {
		opts, err := f.NotifyOptions()
		if err != nil {
			return err
		}
		c.Notify = opts
		c.NotifyEnabled = true
	}
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. .scanreport in the current directory
// 3. config.yaml in the XDG config directory
// 4. .scanreport in the user's home directory
//
// Returns the path found, or an empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), XDGConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
