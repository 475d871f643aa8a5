package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nao1215/scanreport/internal/config"
	"github.com/nao1215/scanreport/internal/database"
	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/formatter"
	"github.com/nao1215/scanreport/internal/report"
)

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse archived scans and reports",
		Long: `History lists scans saved with 'scanreport render --archive' and gives
access to their archived reports.

Examples:
  # List every archived scan
  scanreport history

  # Only scans of one target
  scanreport history --target https://shop.example.com

  # Show the reports archived for scan 3
  scanreport history show 3

  # Extract the archived HTML report of scan 3
  scanreport history get 3 html -o report.html

  # Render scan 3 again in a format that was not archived
  scanreport history render 3 -f markdown

  # Remove scan 3 and its reports
  scanreport history delete 3`,
		Args: cobra.NoArgs,
		RunE: runHistoryList,
	}

	cmd.PersistentFlags().String("db-dir", "", "Archive directory (default: XDG data directory)")
	cmd.Flags().StringP("target", "t", "", "Only list scans of this target")

	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryGetCmd())
	cmd.AddCommand(newHistoryRenderCmd())
	cmd.AddCommand(newHistoryDeleteCmd())

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <scan-id>",
		Short: "List the reports archived for a scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseScanID(args[0])
			if err != nil {
				return err
			}
			return withArchive(cmd, func(ctx context.Context, db *database.Archive) error {
				return showScan(ctx, cmd.OutOrStdout(), db, id)
			})
		},
	}
}

func newHistoryGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <scan-id> <format>",
		Short: "Print or extract an archived report",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseScanID(args[0])
			if err != nil {
				return err
			}
			f, err := format.Parse(args[1])
			if err != nil {
				return err
			}
			output, _ := cmd.Flags().GetString("output")
			return withArchive(cmd, func(ctx context.Context, db *database.Archive) error {
				rec, err := db.GetDocument(ctx, id, f)
				if err != nil {
					return err
				}
				doc := &report.Document{Format: rec.Format, Content: rec.Content}
				if output == "" {
					_, err = cmd.OutOrStdout().Write(doc.Content)
					return err
				}
				if err := report.WriteFile(output, doc); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s report: %s\n", f, output)
				return nil
			})
		},
	}
	cmd.Flags().StringP("output", "o", "", "Write the report to this file instead of standard output")
	return cmd
}

func newHistoryRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <scan-id>",
		Short: "Render an archived scan again",
		Long: `Render generates a report from the archived scan summary and plugin
results. The new document is printed and, with --save, archived too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseScanID(args[0])
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("format")
			f, err := format.Parse(name)
			if err != nil {
				return err
			}
			if !f.Renderable() {
				return fmt.Errorf("%w: %s", config.ErrNotRenderable, f)
			}
			save, _ := cmd.Flags().GetBool("save")
			logger := setupLogger(cmd)

			return withArchive(cmd, func(ctx context.Context, db *database.Archive) error {
				summary, results, err := db.LoadScan(ctx, id)
				if err != nil {
					return err
				}
				reg, err := formatter.NewDefaultRegistry()
				if err != nil {
					return fmt.Errorf("failed to set up formatters: %w", err)
				}
				gen, err := report.New(f, reg,
					report.WithLogger(logger),
					report.WithWidth(max(terminalWidth(cmd.OutOrStdout()), config.MinWidth)),
					report.WithVersion(getVersion()),
				)
				if err != nil {
					return err
				}
				doc, err := gen.Generate(summary, results)
				if err != nil {
					return err
				}
				printDiagnostics(cmd.ErrOrStderr(), []*report.Document{doc})
				if save {
					if _, err := db.SaveDocument(ctx, id, doc); err != nil {
						return err
					}
				}
				_, err = cmd.OutOrStdout().Write(doc.Content)
				return err
			})
		},
	}
	cmd.Flags().StringP("format", "f", format.Text.String(), "Report format")
	cmd.Flags().Bool("save", false, "Archive the rendered report, replacing one of the same format")
	return cmd
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <scan-id>",
		Short: "Remove an archived scan and its reports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseScanID(args[0])
			if err != nil {
				return err
			}
			return withArchive(cmd, func(ctx context.Context, db *database.Archive) error {
				if err := db.DeleteScan(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted scan #%d\n", id)
				return nil
			})
		},
	}
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	target, _ := cmd.Flags().GetString("target")
	return withArchive(cmd, func(ctx context.Context, db *database.Archive) error {
		scans, err := db.ListScans(ctx, target)
		if err != nil {
			return fmt.Errorf("failed to list scans: %w", err)
		}
		printScans(cmd.OutOrStdout(), scans, time.Now())
		return nil
	})
}

// withArchive opens the archive selected by --db-dir for the duration of fn.
func withArchive(cmd *cobra.Command, fn func(context.Context, *database.Archive) error) error {
	dir, _ := cmd.Flags().GetString("db-dir")
	if dir == "" {
		dir = config.XDGDataDir()
	}
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer db.Close()

	if err := fn(cmd.Context(), db); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w (see 'scanreport history')", err)
		}
		return err
	}
	return nil
}

func parseScanID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid scan ID %q", s)
	}
	return id, nil
}

// newTable returns a table styled like the rest of the command output.
func newTable(w io.Writer, headers ...string) *table.Table {
	border := lipgloss.NewStyle()
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	if !colorEnabled(w) {
		header = header.UnsetBold()
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(border).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}

func printScans(w io.Writer, scans []database.ScanRecord, now time.Time) {
	if len(scans) == 0 {
		fmt.Fprintln(w, "No archived scans.")
		fmt.Fprintln(w, "\nUse 'scanreport render --archive <snapshot>' to archive a scan.")
		return
	}

	t := newTable(w, "ID", "Target", "Scanned", "Duration", "Pages", "Issues", "Reports")
	for _, s := range scans {
		t.Row(
			strconv.FormatInt(s.ID, 10),
			s.Target,
			humanize.RelTime(s.FinishedAt, now, "ago", "from now"),
			s.Duration.String(),
			humanize.Comma(int64(s.Pages)),
			humanize.Comma(int64(s.Issues)),
			strconv.Itoa(s.Documents),
		)
	}
	fmt.Fprintln(w, t.Render())
}

func showScan(ctx context.Context, w io.Writer, db *database.Archive, id int64) error {
	docs, err := db.ListDocuments(ctx, id)
	if err != nil {
		return err
	}
	u := newUI(w)
	fmt.Fprintln(w, u.Header(fmt.Sprintf("Scan #%d", id)))
	if len(docs) == 0 {
		fmt.Fprintln(w, "No archived reports.")
		return nil
	}

	t := newTable(w, "Format", "Size", "Placeholders", "Digest", "Archived")
	for _, d := range docs {
		t.Row(
			d.Format.String(),
			humanize.Bytes(uint64(max(d.Size, 0))),
			strconv.Itoa(d.Diagnostics),
			shortDigest(d.Digest),
			d.CreatedAt.Local().Format(time.DateTime),
		)
	}
	fmt.Fprintln(w, t.Render())
	return nil
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
