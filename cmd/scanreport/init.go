package main

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/scanreport/internal/config"
)

//go:embed templates/scanreport.yaml
var templates embed.FS

const templatePath = "templates/scanreport.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a scanreport configuration file",
		Long: `Init writes a commented .scanreport configuration file covering report
formats, plugins, the archive and e-mail notifications.

Examples:
  # Create .scanreport in the current directory
  scanreport init

  # Create the per-user configuration
  scanreport init -o ~/.config/scanreport/config.yaml

  # Overwrite an existing file
  scanreport init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile, "Path of the configuration file to create")
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	output, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	if !force {
		_, err := os.Stat(output)
		if err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", output)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to check %s: %w", output, err)
		}
	}

	content, err := templates.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read configuration template: %w", err)
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	// The file may hold SMTP credentials.
	if err := os.WriteFile(output, content, 0o600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	w := cmd.OutOrStdout()
	u := newUI(w)
	fmt.Fprintf(w, "%s created %s\n", u.OK("✓"), output)
	fmt.Fprintln(w, u.Dim("Uncomment the notify section to e-mail reports after each render."))
	return nil
}
