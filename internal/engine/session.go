package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/opweave/opweave/internal/dialect"
	"github.com/opweave/opweave/internal/graph"
	"github.com/opweave/opweave/internal/history"
	"github.com/opweave/opweave/internal/mir"
	"github.com/opweave/opweave/internal/notify"
)

// JournalEntry describes one committed edit for persistence.
type JournalEntry struct {
	ID         string `json:"id"`
	SessionID  string `json:"session_id"`
	Seq        int64  `json:"seq"`
	Kind       string `json:"kind"`
	Target     string `json:"target"`
	Payload    string `json:"payload"`
	ModuleHash string `json:"module_hash"`
}

// Journal persists committed edits. Implementations must tolerate
// being called once per successful mutation; a failed Record never
// fails the edit itself.
type Journal interface {
	Record(ctx context.Context, e JournalEntry) error
}

// Config carries session collaborators. The zero value is usable:
// history gets the default depth and the optional pieces stay off.
type Config struct {
	// HistoryLimit bounds the undo and redo stacks. Values below 1
	// select history.DefaultLimit.
	HistoryLimit int

	// Dialects enables supplementary validation of operations outside
	// the built-in verifier's coverage. Optional.
	Dialects *dialect.Registry

	// Notifier receives a validation report after every committed
	// edit. Optional.
	Notifier *notify.Hub

	// Journal records committed edits. Optional.
	Journal Journal
}

// Session owns one module and serializes edits against it. It is not
// safe for concurrent use; callers own the locking discipline.
type Session struct {
	id      string
	cfg     Config
	module  *mir.Module
	history *history.Manager
	reg     *graph.Registry
	graph   *graph.Graph
	seq     int64
}

// NewSession creates an empty session. Load must be called before any
// other operation.
func NewSession(cfg Config) *Session {
	return &Session{
		id:      uuid.NewString(),
		cfg:     cfg,
		history: history.NewManager(cfg.HistoryLimit),
		reg:     graph.NewRegistry(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Load parses module text, resets history and materializes the first
// projection. All ids from earlier loads become invalid.
func (s *Session) Load(text string) (*graph.Graph, error) {
	m, err := mir.Parse(text)
	if err != nil {
		return nil, errParse("module text", err)
	}
	s.module = m
	s.history.Clear()
	s.seq = 0
	return s.Rebuild(), nil
}

// Text serializes the current module.
func (s *Session) Text() (string, error) {
	if s.module == nil {
		return "", errNoModule()
	}
	return s.module.Text(), nil
}

// Rebuild re-materializes the projection from the current tree. Ids
// are reassigned from scratch; holding on to ids across a rebuild is
// an error on the caller's part.
func (s *Session) Rebuild() *graph.Graph {
	if s.module == nil {
		return nil
	}
	s.graph = s.reg.Build(s.module)
	return s.graph
}

// Graph returns the projection from the most recent materialization,
// or nil before the first Load.
func (s *Session) Graph() *graph.Graph { return s.graph }

// Module exposes the backing tree for read-only inspection.
func (s *Session) Module() *mir.Module { return s.module }

// CanUndo reports whether an undo snapshot exists.
func (s *Session) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether a redo snapshot exists.
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// Undo restores the most recent snapshot and re-materializes.
func (s *Session) Undo() (*graph.Graph, error) {
	if s.module == nil {
		return nil, errNoModule()
	}
	text, err := s.history.Undo(s.module.Text())
	if err != nil {
		return nil, &EditError{Code: CodeNothingToUndo, Message: "history is empty", Index: -1}
	}
	if err := s.reparse(text); err != nil {
		return nil, err
	}
	return s.commit("undo", "", nil)
}

// Redo re-applies the most recently undone state.
func (s *Session) Redo() (*graph.Graph, error) {
	if s.module == nil {
		return nil, errNoModule()
	}
	text, err := s.history.Redo(s.module.Text())
	if err != nil {
		return nil, &EditError{Code: CodeNothingToRedo, Message: "nothing to redo", Index: -1}
	}
	if err := s.reparse(text); err != nil {
		return nil, err
	}
	return s.commit("redo", "", nil)
}

// snapshot pushes the current text onto the undo stack. Every mutation
// calls this after its precondition checks and before touching the
// tree.
func (s *Session) snapshot() {
	s.history.Snapshot(s.module.Text())
}

// rollback restores the snapshot taken at the start of the failed
// mutation and returns cause unchanged. The failed state never reaches
// the redo stack.
func (s *Session) rollback(cause error) error {
	text, err := s.history.PopSnapshot()
	if err != nil {
		return errInternal("rollback with no snapshot", err)
	}
	if err := s.reparse(text); err != nil {
		return err
	}
	s.Rebuild()
	return cause
}

func (s *Session) reparse(text string) error {
	m, err := mir.Parse(text)
	if err != nil {
		// Snapshots are produced by our own printer, so this means a
		// print/parse mismatch, not caller input.
		return errInternal("snapshot no longer parses", err)
	}
	s.module = m
	return nil
}

// commit finishes a successful mutation: re-materialize, journal the
// edit and broadcast a fresh validation report. Journal and broadcast
// failures are logged, never surfaced; the edit has already happened.
func (s *Session) commit(kind, target string, payload any) (*graph.Graph, error) {
	g := s.Rebuild()
	s.seq++
	if s.cfg.Journal != nil {
		var body string
		if payload != nil {
			if b, err := json.Marshal(payload); err == nil {
				body = string(b)
			}
		}
		entry := JournalEntry{
			ID:         uuid.NewString(),
			SessionID:  s.id,
			Seq:        s.seq,
			Kind:       kind,
			Target:     target,
			Payload:    body,
			ModuleHash: hashText(s.module.Text()),
		}
		if err := s.cfg.Journal.Record(context.Background(), entry); err != nil {
			slog.Warn("journal record failed", "session", s.id, "seq", s.seq, "error", err)
		}
	}
	if s.cfg.Notifier != nil {
		valid, diags := s.Validate()
		s.cfg.Notifier.Publish(notify.Validation{Valid: valid, Diagnostics: diags})
	}
	return g, nil
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
