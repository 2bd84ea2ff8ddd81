package cli

import (
	"github.com/spf13/cobra"

	"github.com/opweave/opweave/internal/engine"
)

// NewPrintCommand creates the print command.
func NewPrintCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print <module-file>",
		Short: "Parse a module and print its canonical text",
		Long: `Parse a module file and print it back in canonical form.

The output is the engine's own serialization, so it is stable across
round trips: printing the printed text again yields identical bytes.

Example:
  opweave print ./kernel.mlir`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := loadSession(rootOpts, args[0], engine.Config{})
			if err != nil {
				return err
			}
			text, err := sess.Text()
			if err != nil {
				return WrapExitError(ExitFailure, "failed to serialize module", err)
			}
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			if rootOpts.Format == "json" {
				return out.Success(map[string]string{"text": text})
			}
			return out.Success(text)
		},
	}
	return cmd
}
