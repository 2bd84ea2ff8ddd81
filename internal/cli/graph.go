package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opweave/opweave/internal/engine"
)

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <module-file>",
		Short: "Project a module into its flat graph form",
		Long: `Parse a module and emit the flat graph projection: operations,
blocks, regions and dataflow edges, each with a fresh deterministic id.

Ids are stable for identical input text but are reassigned on every
materialization; do not persist them across edits.

Example:
  opweave graph ./kernel.mlir
  opweave graph --format json ./kernel.mlir`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := loadSession(rootOpts, args[0], engine.Config{})
			if err != nil {
				return err
			}
			g := sess.Graph()
			if rootOpts.Format == "json" {
				out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
				return out.Success(g)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(g); err != nil {
				return WrapExitError(ExitFailure, "failed to encode graph", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d operations, %d blocks, %d regions, %d edges\n",
				len(g.Operations), len(g.Blocks), len(g.Regions), len(g.Edges))
			return nil
		},
	}
	return cmd
}
