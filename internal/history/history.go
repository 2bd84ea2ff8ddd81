// Package history provides bounded snapshot-based undo/redo over
// serialized module text.
//
// Snapshots are whole-module text, not structural diffs or object
// references: backend handles are not safe to retain across mutations,
// but text always reparses into an equivalent module. Each entry is
// snappy-compressed, which keeps fifty snapshots of even large modules
// to a few megabytes.
package history

import (
	"errors"

	"github.com/golang/snappy"
)

// DefaultLimit is the undo stack capacity used when none is given.
const DefaultLimit = 50

// ErrNothingToUndo is returned by Undo on an empty undo stack.
var ErrNothingToUndo = errors.New("nothing to undo")

// ErrNothingToRedo is returned by Redo on an empty redo stack.
var ErrNothingToRedo = errors.New("nothing to redo")

// Manager holds the undo and redo stacks for one editing session.
// It performs no locking; the session serializes access.
type Manager struct {
	undo  [][]byte
	redo  [][]byte
	limit int
}

// NewManager returns a manager with the given capacity. Limits below
// one fall back to DefaultLimit.
func NewManager(limit int) *Manager {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Manager{limit: limit}
}

func compress(text string) []byte {
	return snappy.Encode(nil, []byte(text))
}

func decompress(data []byte) (string, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Snapshot pushes moduleText (the state before a mutation) onto the
// undo stack, evicting the oldest entry past capacity, and clears the
// redo stack: a new edit starts a new branch.
func (m *Manager) Snapshot(moduleText string) {
	m.undo = append(m.undo, compress(moduleText))
	if len(m.undo) > m.limit {
		m.undo = m.undo[1:]
	}
	m.redo = m.redo[:0]
}

// Undo pops the previous snapshot, pushes currentText onto the redo
// stack, and returns the previous module text.
func (m *Manager) Undo(currentText string) (string, error) {
	if len(m.undo) == 0 {
		return "", ErrNothingToUndo
	}
	previous := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, compress(currentText))
	return decompress(previous)
}

// Redo pops the next snapshot, pushes currentText onto the undo
// stack, and returns the next module text.
func (m *Manager) Redo(currentText string) (string, error) {
	if len(m.redo) == 0 {
		return "", ErrNothingToRedo
	}
	next := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = append(m.undo, compress(currentText))
	return decompress(next)
}

// PopSnapshot removes and returns the most recent undo snapshot
// without touching the redo stack. This is the rollback path: the
// snapshot pushed at the start of a failed mutation is consumed to
// restore the pre-mutation state, and the failed state never becomes
// redoable.
func (m *Manager) PopSnapshot() (string, error) {
	if len(m.undo) == 0 {
		return "", ErrNothingToUndo
	}
	previous := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	return decompress(previous)
}

// Clear empties both stacks; called when a new module is loaded.
func (m *Manager) Clear() {
	m.undo = nil
	m.redo = nil
}

// CanUndo reports whether the undo stack is non-empty.
func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }
