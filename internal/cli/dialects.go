package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opweave/opweave/internal/dialect"
)

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dialects [dialect]",
		Short: "List known dialects and their operation signatures",
		Long: `List every dialect in the signature catalog: the built-ins plus
anything loaded via --dialects. With an argument, list only that
dialect's operations.

Example:
  opweave dialects
  opweave dialects arith
  opweave dialects --dialects ./my-dialects --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadDialects(rootOpts)
			if err != nil {
				return err
			}
			names := reg.Dialects()
			if len(args) == 1 {
				ops := reg.Ops(args[0])
				if ops == nil {
					return NewExitError(ExitCommandError, fmt.Sprintf("unknown dialect %q", args[0]))
				}
				names = args[:1]
			}
			if rootOpts.Format == "json" {
				out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
				payload := make(map[string][]dialect.Signature)
				for _, name := range names {
					payload[name] = reg.Ops(name)
				}
				return out.Success(payload)
			}
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", name)
				for _, sig := range reg.Ops(name) {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %s\n", sig.OpName, sig.Summary)
				}
			}
			return nil
		},
	}
	return cmd
}
