package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/scanreport/internal/config"
	"github.com/nao1215/scanreport/internal/database"
	"github.com/nao1215/scanreport/internal/formatter"
	"github.com/nao1215/scanreport/internal/model"
	"github.com/nao1215/scanreport/internal/notify"
	"github.com/nao1215/scanreport/internal/plugin"
	"github.com/nao1215/scanreport/internal/registry"
	"github.com/nao1215/scanreport/internal/report"
)

// errPlaceholders is returned in strict mode when a document contains a
// placeholder instead of a plugin section.
var errPlaceholders = errors.New("some plugin sections could not be rendered")

// NewRenderCmd creates the render command.
func NewRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <snapshot>",
		Short: "Render reports from a recorded scan",
		Long: `Render runs the report plugins over a recorded scan snapshot and writes
one report per requested format.

Examples:
  # Plain-text report in the current directory (scan_report.txt)
  scanreport render scan.yaml

  # HTML and JSON reports in ./reports
  scanreport render scan.yaml -f html,json -o reports

  # Markdown to standard output
  scanreport render scan.yaml -f markdown --stdout

  # Archive the scan and e-mail the HTML report
  scanreport render scan.yaml --archive --notify-opt report=html

Configuration file (.scanreport) example:
  report:
    formats: [html, text]
    output: reports
  plugins: [healthmap, content_types]
  notify:
    to: secops@example.com
    from: scanner@example.com
    server_address: smtp.example.com
    server_port: 587`,
		Args: cobra.ExactArgs(1),
		RunE: runRenderCmd,
	}

	addConfigFlag(cmd)

	cmd.Flags().StringSliceP("format", "f", nil,
		"Report formats: html, text, markdown, json, yaml (default: text)")
	cmd.Flags().StringP("output-dir", "o", "",
		"Directory for written reports (created if needed)")
	cmd.Flags().String("base", config.DefaultOutputBase,
		"Report file name without extension")
	cmd.Flags().Bool("stdout", false,
		"Print the report to standard output instead of writing a file")
	cmd.Flags().String("title", config.DefaultTitle, "Report title")
	cmd.Flags().IntP("width", "w", 0,
		"Text report width (default: terminal width when printing, otherwise 70)")
	cmd.Flags().Bool("compact", false, "Do not indent JSON reports")
	cmd.Flags().Bool("strict", false,
		"Fail when a plugin section is replaced by a placeholder")

	cmd.Flags().StringSlice("plugins", nil,
		"Built-in plugins to run (default: all)")
	cmd.Flags().String("exclude-content-types", "",
		"Regular expression of content types left out of the inventory")
	cmd.Flags().Bool("no-external", false,
		"Ignore plugin results recorded in the snapshot")

	cmd.Flags().Bool("archive", false, "Save the scan and reports to the archive")
	cmd.Flags().String("db-dir", "", "Archive directory (default: XDG data directory)")

	cmd.Flags().Bool("notify", false, "E-mail a notification using the configured options")
	cmd.Flags().StringArray("notify-opt", nil,
		"Notification option as name=value (repeatable; implies --notify)")

	return cmd
}

func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .scanreport in current or home directory)")
}

func runRenderCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildRenderConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runRender(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, logger)
}

// loadConfig builds a Config from defaults and the config file. An
// explicitly requested file must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	path := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case path != "":
		cf, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		if err := cfg.ApplyFile(cf); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}
	return cfg, nil
}

// buildRenderConfig applies flags over the config file. Only flags the
// user actually set override file values.
func buildRenderConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	cfg.SnapshotPath = args[0]
	cfg.Verbose = getVerboseFlag(cmd)

	flags := cmd.Flags()
	if flags.Changed("format") {
		names, _ := flags.GetStringSlice("format")
		if cfg.Formats, err = config.ParseFormats(names); err != nil {
			return nil, err
		}
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("base") {
		cfg.OutputBase, _ = flags.GetString("base")
	}
	cfg.Stdout, _ = flags.GetBool("stdout")
	if flags.Changed("title") {
		cfg.Title, _ = flags.GetString("title")
	}
	if flags.Changed("width") {
		cfg.Width, _ = flags.GetInt("width")
	} else if cfg.Stdout && cfg.Width == report.DefaultWidth {
		cfg.Width = max(terminalWidth(cmd.OutOrStdout()), config.MinWidth)
	}
	if flags.Changed("compact") {
		cfg.Compact, _ = flags.GetBool("compact")
	}
	if flags.Changed("strict") {
		cfg.Strict, _ = flags.GetBool("strict")
	}

	if flags.Changed("plugins") {
		cfg.Plugins, _ = flags.GetStringSlice("plugins")
	}
	if flags.Changed("exclude-content-types") {
		cfg.ExcludeContentTypes, _ = flags.GetString("exclude-content-types")
	}
	if noExternal, _ := flags.GetBool("no-external"); noExternal {
		cfg.ExternalResults = false
	}

	if save, _ := flags.GetBool("archive"); save {
		cfg.SaveToDB = true
	}
	if flags.Changed("db-dir") {
		cfg.DBDir, _ = flags.GetString("db-dir")
	}

	if err := applyNotifyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyNotifyFlags enables notifications and applies --notify-opt values.
func applyNotifyFlags(cmd *cobra.Command, cfg *config.Config) error {
	if enabled, _ := cmd.Flags().GetBool("notify"); enabled {
		cfg.NotifyEnabled = true
	}
	opts, _ := cmd.Flags().GetStringArray("notify-opt")
	for _, kv := range opts {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("%w: %q is not name=value", notify.ErrInvalidOptions, kv)
		}
		if err := cfg.Notify.Set(strings.TrimSpace(name), value); err != nil {
			return err
		}
		cfg.NotifyEnabled = true
	}
	return nil
}

// buildPlugins selects the configured plugins and applies plugin options.
func buildPlugins(cfg *config.Config) ([]plugin.Plugin, error) {
	plugins, err := plugin.Select(cfg.Plugins)
	if err != nil {
		return nil, err
	}
	exclude, err := cfg.ExcludePattern()
	if err != nil {
		return nil, err
	}
	if exclude != nil {
		for i, p := range plugins {
			if p.Name() == model.PluginContentTypes {
				plugins[i] = plugin.NewContentTypes(plugin.WithExclude(exclude))
			}
		}
	}
	return plugins, nil
}

// runPlugins loads the snapshot and runs the plugin pipeline over it.
func runPlugins(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*model.ScanSummary, *model.PluginResults, error) {
	scan, err := model.LoadScan(cfg.SnapshotPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load snapshot %s: %w", cfg.SnapshotPath, err)
	}

	plugins, err := buildPlugins(cfg)
	if err != nil {
		return nil, nil, err
	}
	pipeline := plugin.NewPipeline(plugins,
		plugin.WithLogger(logger),
		plugin.WithExternalResults(cfg.ExternalResults),
	)
	results, err := pipeline.Run(ctx, scan)
	if err != nil {
		return nil, nil, err
	}
	return model.NewScanSummary(scan), results, nil
}

// generators returns one generator per configured format.
func generators(cfg *config.Config, reg *registry.Registry, logger *slog.Logger) ([]report.Generator, error) {
	opts := append(cfg.ReportOptions(), report.WithLogger(logger), report.WithVersion(getVersion()))
	gens := make([]report.Generator, 0, len(cfg.Formats))
	for _, f := range cfg.Formats {
		g, err := report.New(f, reg, opts...)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}
	return gens, nil
}

// runRender performs a full render run. Reports go to stdout or files;
// progress and warnings go to stderr.
func runRender(ctx context.Context, stdout, stderr io.Writer, cfg *config.Config, logger *slog.Logger) error {
	summary, results, err := runPlugins(ctx, cfg, logger)
	if err != nil {
		return err
	}

	reg, err := formatter.NewDefaultRegistry()
	if err != nil {
		return fmt.Errorf("failed to set up formatters: %w", err)
	}
	gens, err := generators(cfg, reg, logger)
	if err != nil {
		return err
	}

	docs, err := report.GenerateAll(ctx, gens, summary, results)
	if err != nil {
		return fmt.Errorf("failed to generate reports: %w", err)
	}

	status := stdout
	if cfg.Stdout {
		status = stderr
		if _, err := stdout.Write(docs[0].Content); err != nil {
			return fmt.Errorf("failed to print report: %w", err)
		}
	} else {
		for _, doc := range docs {
			path := cfg.OutputPath(doc.Format)
			if err := report.WriteFile(path, doc); err != nil {
				return err
			}
			fmt.Fprintf(status, "Wrote %s report: %s\n", doc.Format, path)
		}
	}

	placeholders := printDiagnostics(stderr, docs)

	if cfg.SaveToDB {
		if err := archive(ctx, status, cfg, summary, results, docs); err != nil {
			return err
		}
	}

	if cfg.NotifyEnabled {
		mailer := notify.NewSMTPMailer(cfg.Notify, notify.WithMailerLogger(logger))
		if err := sendNotification(ctx, status, cfg, mailer, reg, logger, summary, results); err != nil {
			return err
		}
	}

	if cfg.Strict && placeholders > 0 {
		return fmt.Errorf("%w: %d placeholder(s)", errPlaceholders, placeholders)
	}
	return nil
}

// printDiagnostics lists replaced plugin sections and returns their count.
func printDiagnostics(w io.Writer, docs []*report.Document) int {
	u := newUI(w)
	n := 0
	for _, doc := range docs {
		for _, d := range doc.Diagnostics {
			fmt.Fprintf(w, "%s %s/%s: %s\n", u.Warn("placeholder"), doc.Format, d.Plugin, d.Message)
			n++
		}
	}
	return n
}

func archive(ctx context.Context, w io.Writer, cfg *config.Config, summary *model.ScanSummary, results *model.PluginResults, docs []*report.Document) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer db.Close()

	id, err := db.SaveScan(ctx, summary, results)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if _, err := db.SaveDocument(ctx, id, doc); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "Archived scan #%d (%d report(s)) in %s\n", id, len(docs), db.Path())
	return nil
}

func sendNotification(ctx context.Context, w io.Writer, cfg *config.Config, mailer notify.Mailer, reg *registry.Registry,
	logger *slog.Logger, summary *model.ScanSummary, results *model.PluginResults,
) error {
	n, err := notify.NewNotifier(cfg.Notify, mailer, reg,
		notify.WithLogger(logger),
		notify.WithReportOptions(append(cfg.ReportOptions(), report.WithVersion(getVersion()))...),
	)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Sending the notification...")
	if err := n.Notify(ctx, summary, results); err != nil {
		return err
	}
	fmt.Fprintln(w, "Done.")
	return nil
}
