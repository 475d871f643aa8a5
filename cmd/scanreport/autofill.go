package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/scanreport/internal/autofill"
)

// NewAutofillCmd creates the autofill command.
func NewAutofillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "autofill <name[=value]>...",
		Short: "Show the values a scan submits for form parameters",
		Long: `Autofill prints the value submitted for each form parameter. A
parameter given as name=value keeps its value; a bare name or an empty
value is filled from the parameter name.

Example:
  scanreport autofill user_email password q amount=5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := make(map[string]string, len(args))
			order := make([]string, 0, len(args))
			for _, arg := range args {
				name, value, _ := strings.Cut(arg, "=")
				if name == "" {
					return fmt.Errorf("invalid parameter %q: empty name", arg)
				}
				if _, dup := params[name]; !dup {
					order = append(order, name)
				}
				params[name] = value
			}

			filled := autofill.Fill(params)
			w := cmd.OutOrStdout()
			u := newUI(w)
			width := len(slices.MaxFunc(order, func(a, b string) int { return len(a) - len(b) }))
			for _, name := range order {
				note := ""
				if params[name] == "" {
					if _, ok := autofill.MatchDefaultValue(name); !ok {
						note = u.Dim(" (default)")
					}
				}
				fmt.Fprintf(w, "%-*s = %s%s\n", width, name, filled[name], note)
			}
			return nil
		},
	}
}
