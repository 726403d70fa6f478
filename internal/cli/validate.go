package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/clinbench/goldtruth/internal/terminology"
)

// NewValidateCommand creates the validate command: load the terminology
// directory, run the load-time invariants (well-formed value sets,
// numerator/exclusion disjointness), and report the registered
// categories. Exit code 1 if the registry is invalid.
func NewValidateCommand(opts *RootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a terminology directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := terminology.Load(dir)
			if err != nil {
				return WrapExitError(ExitFailure, "terminology invalid", err)
			}

			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

			type setInfo struct {
				Category string `json:"category"`
				Label    string `json:"label"`
				Role     string `json:"role,omitempty"`
				Codes    int    `json:"codes"`
			}
			var sets []setInfo
			for _, category := range reg.Categories() {
				set, err := reg.Codes(category)
				if err != nil {
					return WrapExitError(ExitCommandError, "reading registry", err)
				}
				sets = append(sets, setInfo{
					Category: set.Category,
					Label:    set.Label,
					Role:     string(set.Role),
					Codes:    set.Len(),
				})
			}

			return out.Print(map[string]any{"status": "ok", "valuesets": sets}, func(w io.Writer) {
				fmt.Fprintf(w, "terminology OK: %d value sets\n", len(sets))
				for _, s := range sets {
					role := s.Role
					if role == "" {
						role = "-"
					}
					fmt.Fprintf(w, "  %-32s %-10s %4d codes  (%s)\n", s.Category, role, s.Codes, s.Label)
				}
			})
		},
	}

	cmd.Flags().StringVar(&dir, "terminology", "valuesets", "directory of CUE value-set declarations")
	return cmd
}
