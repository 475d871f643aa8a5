package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/scanreport/internal/formatter"
	"github.com/nao1215/scanreport/internal/notify"
)

var errNoSnapshot = errors.New("a snapshot file is required")

// NewNotifyCmd creates the notify command.
func NewNotifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify [snapshot]",
		Short: "E-mail a scan notification with the report attached",
		Long: `Notify runs the report plugins over a snapshot and e-mails a short
summary to the configured recipients, with the report attached in the
configured format. Options come from the notify section of the
configuration file; --opt overrides them one at a time.

Examples:
  # List the notification options
  scanreport notify --list-options

  # Send using the configuration file, attaching HTML
  scanreport notify scan.yaml --opt report=html

  # Send without a configuration file
  scanreport notify scan.yaml \
    --opt to=secops@example.com --opt from=scanner@example.com \
    --opt server_address=smtp.example.com --opt server_port=587 \
    --opt tls=true --opt username=scanner --opt password=secret`,
		Args: cobra.MaximumNArgs(1),
		RunE: runNotifyCmd,
	}

	addConfigFlag(cmd)
	cmd.Flags().StringArray("opt", nil, "Notification option as name=value (repeatable)")
	cmd.Flags().Bool("list-options", false, "List the notification options and exit")
	cmd.Flags().StringSlice("plugins", nil, "Built-in plugins to run (default: all)")
	cmd.Flags().Bool("no-external", false, "Ignore plugin results recorded in the snapshot")

	return cmd
}

func runNotifyCmd(cmd *cobra.Command, args []string) error {
	if list, _ := cmd.Flags().GetBool("list-options"); list {
		printOptionSpecs(cmd.OutOrStdout())
		return nil
	}
	if len(args) == 0 {
		return errNoSnapshot
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.SnapshotPath = args[0]
	cfg.Verbose = getVerboseFlag(cmd)
	if cmd.Flags().Changed("plugins") {
		cfg.Plugins, _ = cmd.Flags().GetStringSlice("plugins")
	}
	if noExternal, _ := cmd.Flags().GetBool("no-external"); noExternal {
		cfg.ExternalResults = false
	}

	opts, _ := cmd.Flags().GetStringArray("opt")
	for _, kv := range opts {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("%w: %q is not name=value", notify.ErrInvalidOptions, kv)
		}
		if err := cfg.Notify.Set(strings.TrimSpace(name), value); err != nil {
			return err
		}
	}
	if err := cfg.Notify.Validate(); err != nil {
		return err
	}

	logger := setupLogger(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, results, err := runPlugins(ctx, cfg, logger)
	if err != nil {
		return err
	}
	reg, err := formatter.NewDefaultRegistry()
	if err != nil {
		return fmt.Errorf("failed to set up formatters: %w", err)
	}

	mailer := notify.NewSMTPMailer(cfg.Notify, notify.WithMailerLogger(logger))
	return sendNotification(ctx, cmd.OutOrStdout(), cfg, mailer, reg, logger, summary, results)
}

func printOptionSpecs(w io.Writer) {
	u := newUI(w)
	fmt.Fprintln(w, u.Header("Notification options"))
	for _, opt := range notify.OptionSpecs() {
		fmt.Fprintf(w, "  %-15s %s\n", opt.Name, opt.Description)
		var details []string
		if opt.Required {
			details = append(details, "required")
		}
		if opt.Default != "" {
			details = append(details, "default: "+opt.Default)
		}
		if len(opt.Choices) > 0 {
			choices := make([]string, len(opt.Choices))
			for i, c := range opt.Choices {
				if c == "" {
					c = `""`
				}
				choices[i] = c
			}
			details = append(details, "choices: "+strings.Join(choices, ", "))
		}
		if len(details) > 0 {
			fmt.Fprintf(w, "  %-15s %s\n", "", u.Dim(strings.Join(details, "; ")))
		}
	}
}
