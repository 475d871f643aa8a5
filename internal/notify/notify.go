package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/model"
	"github.com/nao1215/scanreport/internal/registry"
	"github.com/nao1215/scanreport/internal/report"
)

// AttachmentBase is the file name, without extension, of attached reports.
const AttachmentBase = "scan_report"

// Notifier sends the end-of-scan notification.
type Notifier struct {
	opts       Options
	mailer     Mailer
	registry   *registry.Registry
	logger     *slog.Logger
	tempDir    string
	reportOpts []report.Option
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// WithTempDir sets where the attachment is rendered before sending. The
// default is os.TempDir.
func WithTempDir(dir string) Option {
	return func(n *Notifier) {
		n.tempDir = dir
	}
}

// WithReportOptions passes options to the attachment's generator.
func WithReportOptions(opts ...report.Option) Option {
	return func(n *Notifier) {
		n.reportOpts = append(n.reportOpts, opts...)
	}
}

// NewNotifier validates opts and returns a Notifier delivering through
// mailer. reg supplies plugin formatters for the attached report.
func NewNotifier(opts Options, mailer Mailer, reg *registry.Registry, nopts ...Option) (*Notifier, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	n := &Notifier{
		opts:     opts,
		mailer:   mailer,
		registry: reg,
		logger:   slog.Default(),
	}
	for _, o := range nopts {
		o(n)
	}
	return n, nil
}

// Subject returns the notification subject for summary.
func Subject(summary *model.ScanSummary) string {
	return fmt.Sprintf("Scan for %s finished in %s", summary.Target, summary.Duration)
}

// Body returns the notification body for summary.
func Body(summary *model.ScanSummary) string {
	return "Found " + strconv.Itoa(summary.TotalIssues()) + " unique issues."
}

// Notify renders the configured report, if any, and sends the message.
// The rendered report file is removed once the message has been handed to
// the mailer or anything failed.
func (n *Notifier) Notify(ctx context.Context, summary *model.ScanSummary, results *model.PluginResults) (err error) {
	msg := NewMessage(n.opts.From, n.opts.To, n.opts.Cc, n.opts.Bcc, Subject(summary), Body(summary))

	if f := n.opts.ReportFormat(); f != format.None {
		dir, mkErr := os.MkdirTemp(n.tempDir, "scanreport-notify-")
		if mkErr != nil {
			return fmt.Errorf("failed to create attachment directory: %w", mkErr)
		}
		defer func() {
			if rmErr := os.RemoveAll(dir); rmErr != nil {
				err = errors.Join(err, fmt.Errorf("failed to remove attachment: %w", rmErr))
			}
		}()

		if err := n.attachReport(msg, dir, f, summary, results); err != nil {
			return err
		}
	}

	n.logger.Info("sending the notification", "to", n.opts.To.String(), "server", n.opts.ServerAddr())
	if err := n.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	n.logger.Info("notification sent")
	return nil
}

// attachReport renders the report in f into dir and attaches the file.
func (n *Notifier) attachReport(msg *Message, dir string, f format.Format, summary *model.ScanSummary, results *model.PluginResults) error {
	opts := append([]report.Option{report.WithLogger(n.logger)}, n.reportOpts...)
	gen, err := report.New(f, n.registry, opts...)
	if err != nil {
		return err
	}
	doc, err := gen.Generate(summary, results)
	if err != nil {
		return fmt.Errorf("failed to render %s attachment: %w", f, err)
	}

	name := doc.Filename(AttachmentBase)
	path := filepath.Join(dir, name)
	if err := report.WriteFile(path, doc); err != nil {
		return err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is inside our own temp directory
	if err != nil {
		return fmt.Errorf("failed to read attachment: %w", err)
	}

	msg.Attach(name, f.MediaType(), data)
	return nil
}
