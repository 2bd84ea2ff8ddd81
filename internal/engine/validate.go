package engine

import (
	"fmt"

	"github.com/opweave/opweave/internal/mir"
)

// Validate runs structural verification plus the supplementary
// signature checks for operations the verifier has no built-in rules
// for. A module is valid only when the diagnostic list is empty;
// warnings count.
func (s *Session) Validate() (bool, []string) {
	if s.module == nil {
		return false, []string{"ERROR: no module loaded"}
	}
	_, structural := mir.Verify(s.module)
	diags := make([]string, 0, len(structural))
	for _, d := range structural {
		diags = append(diags, d.String())
	}
	diags = append(diags, s.signatureWarnings()...)
	return len(diags) == 0, diags
}

// signatureWarnings checks operations from unregistered dialects
// against the loaded signature catalog. Operations absent from the
// catalog pass silently; the catalog is advisory, not a whitelist.
func (s *Session) signatureWarnings() []string {
	if s.cfg.Dialects == nil || s.graph == nil {
		return nil
	}
	var out []string
	for _, op := range s.graph.Operations {
		if mir.IsRegisteredDialect(op.Name) {
			continue
		}
		sig, ok := s.cfg.Dialects.Signature(op.Name)
		if !ok {
			continue
		}
		if len(op.Operands) < sig.MinOperands {
			out = append(out, fmt.Sprintf("WARNING: %s (%s): expected at least %d operands, got %d",
				op.Name, op.OpID, sig.MinOperands, len(op.Operands)))
		}
		if sig.Results > 0 && len(op.Results) != sig.Results {
			out = append(out, fmt.Sprintf("WARNING: %s (%s): expected %d results, got %d",
				op.Name, op.OpID, sig.Results, len(op.Results)))
		}
	}
	return out
}
