// Package dialect supplies operation metadata: per-op expected
// signatures compiled from CUE definitions. The built-in set covers
// the dialects the editor knows about; additional dialect files can be
// loaded from a directory at startup.
package dialect

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed builtin.cue
var builtinCUE string

// VariadicResults marks a signature whose result count is not fixed.
const VariadicResults = -1

// Signature is the expected shape of one operation: the minimum
// operand count, the exact result count (or VariadicResults), and the
// child region count.
type Signature struct {
	OpName      string `json:"op_name"`
	Summary     string `json:"summary"`
	MinOperands int    `json:"min_operands"`
	Results     int    `json:"results"`
	Regions     int    `json:"regions"`
}

// Registry holds op signatures grouped by dialect.
type Registry struct {
	byOp     map[string]Signature
	dialects map[string][]string // dialect -> sorted op names
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		byOp:     make(map[string]Signature),
		dialects: make(map[string][]string),
	}
}

// Builtin compiles the embedded dialect definitions.
func Builtin() (*Registry, error) {
	r := New()
	if err := r.loadSource("builtin.cue", builtinCUE); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadDir compiles every .cue file in dir into the registry,
// overriding earlier entries for the same op name.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("load dialect dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".cue") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("load dialect file %s: %w", path, err)
		}
		if err := r.loadSource(entry.Name(), string(src)); err != nil {
			return err
		}
	}
	return nil
}

// loadSource compiles one CUE source and merges its dialects and op
// signatures. Uses the CUE SDK's Go API directly (not CLI subprocess).
func (r *Registry) loadSource(filename, src string) error {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return fmt.Errorf("compile %s: %w", filename, err)
	}

	dialectsVal := v.LookupPath(cue.ParsePath("dialects"))
	if !dialectsVal.Exists() {
		return fmt.Errorf("compile %s: missing top-level 'dialects' struct", filename)
	}

	dialectIter, err := dialectsVal.Fields()
	if err != nil {
		return fmt.Errorf("compile %s: %w", filename, err)
	}
	for dialectIter.Next() {
		dialectName := dialectIter.Selector().Unquoted()
		opsVal := dialectIter.Value().LookupPath(cue.ParsePath("ops"))
		if !opsVal.Exists() {
			return fmt.Errorf("compile %s: dialect %q has no 'ops' struct", filename, dialectName)
		}
		opIter, err := opsVal.Fields()
		if err != nil {
			return fmt.Errorf("compile %s: dialect %q: %w", filename, dialectName, err)
		}
		for opIter.Next() {
			opName := opIter.Selector().Unquoted()
			sig, err := parseSignature(opName, opIter.Value())
			if err != nil {
				return fmt.Errorf("compile %s: dialect %q: %w", filename, dialectName, err)
			}
			r.add(dialectName, sig)
		}
	}
	return nil
}

func parseSignature(opName string, v cue.Value) (Signature, error) {
	sig := Signature{OpName: opName}

	if s := v.LookupPath(cue.ParsePath("summary")); s.Exists() {
		text, err := s.String()
		if err != nil {
			return sig, fmt.Errorf("op %q: summary: %w", opName, err)
		}
		sig.Summary = text
	}
	if m := v.LookupPath(cue.ParsePath("min_operands")); m.Exists() {
		n, err := m.Int64()
		if err != nil {
			return sig, fmt.Errorf("op %q: min_operands: %w", opName, err)
		}
		sig.MinOperands = int(n)
	}
	if res := v.LookupPath(cue.ParsePath("results")); res.Exists() {
		n, err := res.Int64()
		if err != nil {
			return sig, fmt.Errorf("op %q: results: %w", opName, err)
		}
		sig.Results = int(n)
	}
	if reg := v.LookupPath(cue.ParsePath("regions")); reg.Exists() {
		n, err := reg.Int64()
		if err != nil {
			return sig, fmt.Errorf("op %q: regions: %w", opName, err)
		}
		sig.Regions = int(n)
	}
	return sig, nil
}

func (r *Registry) add(dialectName string, sig Signature) {
	if _, exists := r.byOp[sig.OpName]; !exists {
		r.dialects[dialectName] = append(r.dialects[dialectName], sig.OpName)
		sort.Strings(r.dialects[dialectName])
	}
	r.byOp[sig.OpName] = sig
}

// Signature looks up the expected signature for a fully qualified op
// name.
func (r *Registry) Signature(opName string) (Signature, bool) {
	sig, ok := r.byOp[opName]
	return sig, ok
}

// Dialects returns the known dialect names, sorted.
func (r *Registry) Dialects() []string {
	names := make([]string, 0, len(r.dialects))
	for name := range r.dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ops returns the signatures of one dialect's operations, sorted by
// op name. Unknown dialects return nil.
func (r *Registry) Ops(dialectName string) []Signature {
	names, ok := r.dialects[dialectName]
	if !ok {
		return nil
	}
	sigs := make([]Signature, 0, len(names))
	for _, name := range names {
		sigs = append(sigs, r.byOp[name])
	}
	return sigs
}
