package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/opweave/opweave/internal/engine"
	"github.com/opweave/opweave/internal/store"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Journal string
	Output  string
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <module-file> <script-file>",
		Short: "Apply an edit script to a module",
		Long: `Load a module, apply a YAML edit script step by step and print the
resulting module text. Each step is transactional: a failed step rolls
itself back and stops the batch, leaving the module as the last
successful step produced it.

With --journal, every committed step is also appended to a SQLite edit
journal.

Example:
  opweave apply ./kernel.mlir ./edits.yaml
  opweave apply ./kernel.mlir ./edits.yaml -o ./kernel.out.mlir --journal ./edits.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite edit journal")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write resulting module here instead of stdout")

	return cmd
}

func runApply(opts *ApplyOptions, modulePath, scriptPath string, cmd *cobra.Command) error {
	script, err := LoadScript(scriptPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load script", err)
	}

	cfg := engine.Config{}
	if opts.Journal != "" {
		slog.Info("opening journal", "path", opts.Journal)
		st, err := store.Open(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()
		cfg.Journal = st
	}

	sess, err := loadSession(opts.RootOptions, modulePath, cfg)
	if err != nil {
		return err
	}

	for i, step := range script.Edits {
		slog.Debug("applying edit", "step", i, "op", step.Op, "target", step.Target)
		if err := runStep(sess, step); err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("step %d (%s) failed", i, step.Op), err)
		}
	}

	text, err := sess.Text()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to serialize module", err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(text), 0o644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
		slog.Info("module written", "path", opts.Output, "edits", len(script.Edits))
		return nil
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		valid, diags := sess.Validate()
		return out.Success(map[string]any{
			"text":        text,
			"valid":       valid,
			"diagnostics": diags,
			"edits":       len(script.Edits),
		})
	}
	return out.Success(text)
}
