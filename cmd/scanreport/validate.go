package main

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/nao1215/scanreport/internal/format"
	"github.com/nao1215/scanreport/internal/formatter"
	"github.com/nao1215/scanreport/internal/plugin"
	"github.com/nao1215/scanreport/internal/registry"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check which plugins have a formatter for every format",
		Long: `Validate lists the registered formatters and reports every
(format, plugin) pair that would render as a placeholder.

Examples:
  scanreport validate
  scanreport validate --plugins healthmap --strict`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}
	cmd.Flags().StringSlice("plugins", nil, "Plugins to check (default: all built-in plugins)")
	cmd.Flags().Bool("strict", false, "Exit with an error when a gap is found")
	cmd.Flags().Bool("bindings", false, "Also list every registered formatter")
	return cmd
}

func runValidate(cmd *cobra.Command, _ []string) error {
	names, _ := cmd.Flags().GetStringSlice("plugins")
	plugins, err := plugin.Select(names)
	if err != nil {
		return err
	}

	reg, err := formatter.NewDefaultRegistry()
	if err != nil {
		return fmt.Errorf("failed to set up formatters: %w", err)
	}

	w := cmd.OutOrStdout()
	if showBindings, _ := cmd.Flags().GetBool("bindings"); showBindings {
		printBindings(w, reg)
	}

	gaps := reg.Validate(plugin.Names(plugins), format.All())
	printGaps(w, gaps)

	if strict, _ := cmd.Flags().GetBool("strict"); strict && len(gaps) > 0 {
		return fmt.Errorf("%d plugin/format pair(s) have no formatter", len(gaps))
	}
	return nil
}

func printBindings(w io.Writer, reg *registry.Registry) {
	u := newUI(w)
	fmt.Fprintln(w, u.Header("Registered formatters"))
	for _, b := range reg.Bindings() {
		line := fmt.Sprintf("  %-10s %s", b.Format, b.Plugin)
		if b.Fallback {
			line += u.Dim(" (fallback)")
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}

func printGaps(w io.Writer, gaps []registry.Gap) {
	u := newUI(w)
	if len(gaps) == 0 {
		fmt.Fprintln(w, u.OK("OK")+" every plugin has a formatter for every format")
		return
	}

	fmt.Fprintln(w, u.Header("Missing formatters"))
	slices.SortFunc(gaps, func(a, b registry.Gap) int {
		if c := cmp.Compare(a.Plugin, b.Plugin); c != 0 {
			return c
		}
		return cmp.Compare(a.Format, b.Format)
	})
	for _, g := range gaps {
		fmt.Fprintf(w, "  %s %s has no %s formatter\n", u.Warn("gap"), g.Plugin, g.Format)
	}
}
