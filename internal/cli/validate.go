package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opweave/opweave/internal/engine"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <module-file>",
		Short: "Verify a module and report diagnostics",
		Long: `Parse a module and run full validation: structural verification of
the built-in dialects plus signature checks against the loaded dialect
catalog for everything else.

Exits 0 when the module is valid, 1 when any diagnostic was raised.

Example:
  opweave validate ./kernel.mlir
  opweave validate --dialects ./my-dialects ./kernel.mlir`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := loadSession(rootOpts, args[0], engine.Config{})
			if err != nil {
				return err
			}
			valid, diags := sess.Validate()
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			if rootOpts.Format == "json" {
				if err := out.Success(map[string]any{"valid": valid, "diagnostics": diags}); err != nil {
					return err
				}
			} else {
				for _, d := range diags {
					fmt.Fprintln(cmd.OutOrStdout(), d)
				}
				if valid {
					fmt.Fprintln(cmd.OutOrStdout(), "module is valid")
				}
			}
			if !valid {
				return NewExitError(ExitFailure, fmt.Sprintf("module is invalid (%d diagnostics)", len(diags)))
			}
			return nil
		},
	}
	return cmd
}
