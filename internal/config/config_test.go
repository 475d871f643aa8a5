package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/notify"
)

// TestNewConfig documents the defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default format is text", func(t *testing.T) {
		t.Parallel()
		if len(cfg.Formats) != 1 || cfg.Formats[0] != format.Text {
			t.Errorf("expected [text], got %v", cfg.Formats)
		}
	})

	t.Run("default output base is scan_report", func(t *testing.T) {
		t.Parallel()
		if cfg.OutputBase != "scan_report" {
			t.Errorf("expected scan_report, got %q", cfg.OutputBase)
		}
	})

	t.Run("default width is 70", func(t *testing.T) {
		t.Parallel()
		if cfg.Width != 70 {
			t.Errorf("expected 70, got %d", cfg.Width)
		}
	})

	t.Run("external results are reported", func(t *testing.T) {
		t.Parallel()
		if !cfg.ExternalResults {
			t.Error("expected ExternalResults to be true")
		}
	})

	t.Run("archive defaults to the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected %q, got %q", XDGDataDir(), cfg.DBDir)
		}
		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be false")
		}
	})

	t.Run("notify defaults", func(t *testing.T) {
		t.Parallel()
		if cfg.NotifyEnabled {
			t.Error("expected notifications to be off")
		}
		if cfg.Notify.Authentication != notify.AuthPlain || cfg.Notify.Report != "text" {
			t.Errorf("unexpected notify defaults: %+v", cfg.Notify)
		}
	})
}

// TestConfigValidate checks one rule per case.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.SnapshotPath = "scan.yaml"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "no snapshot", mutate: func(c *Config) { c.SnapshotPath = "" }, wantErr: ErrNoSnapshot},
		{name: "no format", mutate: func(c *Config) { c.Formats = nil }, wantErr: ErrNoFormat},
		{
			name:    "none is not renderable",
			mutate:  func(c *Config) { c.Formats = []format.Format{format.None} },
			wantErr: ErrNotRenderable,
		},
		{
			name:    "unknown format",
			mutate:  func(c *Config) { c.Formats = []format.Format{"pdf"} },
			wantErr: format.ErrUnknownFormat,
		},
		{
			name:    "duplicate format",
			mutate:  func(c *Config) { c.Formats = []format.Format{format.HTML, format.HTML} },
			wantErr: ErrDuplicateFormat,
		},
		{
			name: "stdout with several formats",
			mutate: func(c *Config) {
				c.Stdout = true
				c.Formats = []format.Format{format.HTML, format.JSON}
			},
			wantErr: ErrStdoutMultipleFormats,
		},
		{name: "narrow width", mutate: func(c *Config) { c.Width = 20 }, wantErr: ErrInvalidWidth},
		{
			name:    "bad exclude pattern",
			mutate:  func(c *Config) { c.ExcludeContentTypes = "image/(" },
			wantErr: ErrInvalidExcludePattern,
		},
		{
			name:    "incomplete notify options",
			mutate:  func(c *Config) { c.NotifyEnabled = true },
			wantErr: notify.ErrInvalidOptions,
		},
		{
			name: "notify options ignored when disabled",
			mutate: func(c *Config) {
				c.Notify = notify.Options{}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigOutputPath(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.OutputDir = "out"

	tests := map[format.Format]string{
		format.HTML:     filepath.Join("out", "scan_report.html"),
		format.Text:     filepath.Join("out", "scan_report.txt"),
		format.Markdown: filepath.Join("out", "scan_report.md"),
		format.JSON:     filepath.Join("out", "scan_report.json"),
		format.YAML:     filepath.Join("out", "scan_report.yaml"),
	}
	for f, want := range tests {
		if got := cfg.OutputPath(f); got != want {
			t.Errorf("OutputPath(%s) = %q, want %q", f, got, want)
		}
	}
}

func TestConfigExcludePattern(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	re, err := cfg.ExcludePattern()
	if err != nil || re != nil {
		t.Fatalf("expected no pattern, got %v, %v", re, err)
	}

	cfg.ExcludeContentTypes = "^image/"
	re, err = cfg.ExcludePattern()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !re.MatchString("image/png") || re.MatchString("text/html") {
		t.Error("pattern does not match as expected")
	}
}

func TestParseFormats(t *testing.T) {
	t.Parallel()

	got, err := ParseFormats([]string{"HTML", "md", "yml"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []format.Format{format.HTML, format.Markdown, format.YAML}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("format %d: got %s, want %s", i, got[i], want[i])
		}
	}

	if _, err := ParseFormats([]string{"pdf"}); !errors.Is(err, format.ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid YAML", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(writeConfig(t, "report: [unclosed"))
		if err == nil {
			t.Error("expected a parse error")
		}
	})

	t.Run("full file", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `
report:
  formats: [html, json]
  output: reports
  title: Nightly Scan
  width: 100
  compact: true
plugins: [healthmap]
content_types:
  exclude: "^image/"
archive:
  enabled: true
  dir: /var/lib/scanreport
notify:
  to: secops@example.com, lead@example.com
  from: scanner@example.com
  server_address: smtp.example.com
  server_port: 587
  tls: true
  authentication: ""
  report: none
`)
		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		if err := cfg.ApplyFile(cf); err != nil {
			t.Fatalf("ApplyFile: %v", err)
		}

		if len(cfg.Formats) != 2 || cfg.Formats[0] != format.HTML || cfg.Formats[1] != format.JSON {
			t.Errorf("unexpected formats %v", cfg.Formats)
		}
		if cfg.OutputDir != "reports" || cfg.Title != "Nightly Scan" || cfg.Width != 100 || !cfg.Compact {
			t.Errorf("report settings not applied: %+v", cfg)
		}
		if cfg.OutputBase != DefaultOutputBase {
			t.Errorf("unset base must keep the default, got %q", cfg.OutputBase)
		}
		if len(cfg.Plugins) != 1 || cfg.Plugins[0] != "healthmap" {
			t.Errorf("unexpected plugins %v", cfg.Plugins)
		}
		if cfg.ExcludeContentTypes != "^image/" {
			t.Errorf("unexpected exclude %q", cfg.ExcludeContentTypes)
		}
		if !cfg.SaveToDB || cfg.DBDir != "/var/lib/scanreport" {
			t.Errorf("archive settings not applied: %v %q", cfg.SaveToDB, cfg.DBDir)
		}

		if !cfg.NotifyEnabled {
			t.Fatal("expected notifications to be enabled")
		}
		n := cfg.Notify
		if strings.Join(n.To, ";") != "secops@example.com;lead@example.com" {
			t.Errorf("unexpected recipients %v", n.To)
		}
		if n.Authentication != notify.AuthNone {
			t.Errorf("explicit empty authentication must survive, got %q", n.Authentication)
		}
		if n.Report != "none" || !n.TLS || n.ServerPort != 587 {
			t.Errorf("unexpected notify options %+v", n)
		}

		cfg.SnapshotPath = "scan.yaml"
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected a valid config, got %v", err)
		}
	})

	t.Run("notify defaults fill unset options", func(t *testing.T) {
		t.Parallel()

		cf, err := LoadConfigFile(writeConfig(t, "notify:\n  to: a@example.com\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		opts, err := cf.NotifyOptions()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opts.Authentication != notify.AuthPlain || opts.Report != "text" {
			t.Errorf("defaults lost: %+v", opts)
		}
	})

	t.Run("bad format in file", func(t *testing.T) {
		t.Parallel()

		cf, err := LoadConfigFile(writeConfig(t, "report:\n  formats: [pdf]\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := NewConfig().ApplyFile(cf); !errors.Is(err, format.ErrUnknownFormat) {
			t.Errorf("expected ErrUnknownFormat, got %v", err)
		}
	})

	t.Run("file without notify keeps it disabled", func(t *testing.T) {
		t.Parallel()

		cf, err := LoadConfigFile(writeConfig(t, "plugins: [content_types]\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cfg := NewConfig()
		if err := cfg.ApplyFile(cf); err != nil {
			t.Fatalf("ApplyFile: %v", err)
		}
		if cfg.NotifyEnabled || cf.HasNotify() {
			t.Error("expected notifications to stay disabled")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path that exists", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "plugins: []\n")
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit path that does not exist", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing")); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{"data": XDGDataDir(), "config": XDGConfigDir()} {
		if filepath.Base(dir) != AppName {
			t.Errorf("%s dir %q does not end in %s", name, dir, AppName)
		}
	}
}
