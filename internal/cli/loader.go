package cli

import (
	"os"

	"github.com/opweave/opweave/internal/dialect"
	"github.com/opweave/opweave/internal/engine"
)

// loadDialects returns the built-in signature catalog, extended by the
// --dialects directory when one was given.
func loadDialects(opts *RootOptions) (*dialect.Registry, error) {
	reg, err := dialect.Builtin()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load built-in dialects", err)
	}
	if opts.DialectDir != "" {
		if err := reg.LoadDir(opts.DialectDir); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load dialect directory", err)
		}
	}
	return reg, nil
}

// loadSession reads a module file and loads it into a fresh session.
func loadSession(opts *RootOptions, path string, cfg engine.Config) (*engine.Session, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read module", err)
	}
	if cfg.Dialects == nil {
		reg, err := loadDialects(opts)
		if err != nil {
			return nil, err
		}
		cfg.Dialects = reg
	}
	sess := engine.NewSession(cfg)
	if _, err := sess.Load(string(text)); err != nil {
		return nil, WrapExitError(ExitFailure, "failed to parse module", err)
	}
	return sess, nil
}
