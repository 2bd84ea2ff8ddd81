package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opweave/opweave/internal/dialect"
	"github.com/opweave/opweave/internal/notify"
	"github.com/opweave/opweave/internal/testutil"
)

func newSession(t *testing.T, text string) *Session {
	t.Helper()
	s := NewSession(Config{})
	_, err := s.Load(text)
	require.NoError(t, err)
	return s
}

func moduleText(t *testing.T, s *Session) string {
	t.Helper()
	text, err := s.Text()
	require.NoError(t, err)
	return text
}

func TestLoadAndText(t *testing.T) {
	s := newSession(t, testutil.SimpleFunc)
	assert.Equal(t, testutil.SimpleFunc, moduleText(t, s))
	assert.NotEmpty(t, s.ID())
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
}

func TestLoadRejectsMalformedText(t *testing.T) {
	s := NewSession(Config{})
	_, err := s.Load("module {")
	require.Error(t, err)
	assert.True(t, IsParseError(err))
}

func TestOperationsBeforeLoad(t *testing.T) {
	s := NewSession(Config{})
	_, err := s.Text()
	assert.True(t, IsNoModule(err))
	_, err = s.ModifyAttributes("op_1", nil, nil)
	assert.True(t, IsNoModule(err))
	_, err = s.Undo()
	assert.True(t, IsNoModule(err))
}

func TestLoadResetsHistory(t *testing.T) {
	s := newSession(t, testutil.SimpleFunc)
	_, err := s.ModifyAttributes("op_2", map[string]string{"value": "2.0 : f32"}, nil)
	require.NoError(t, err)
	require.True(t, s.CanUndo())

	_, err = s.Load(testutil.BareModule)
	require.NoError(t, err)
	assert.False(t, s.CanUndo(), "loading fresh text discards all history")
}

func TestRebuildIsIdempotent(t *testing.T) {
	s := newSession(t, testutil.SimpleFunc)
	first := s.Rebuild()
	second := s.Rebuild()
	assert.Equal(t, first, second, "rebuilding an unchanged tree reproduces the projection")
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s := newSession(t, testutil.SimpleFunc)
	original := moduleText(t, s)

	_, err := s.ModifyAttributes("op_2", map[string]string{"value": "9.0 : f32"}, nil)
	require.NoError(t, err)
	edited := moduleText(t, s)
	require.NotEqual(t, original, edited)

	_, err = s.Undo()
	require.NoError(t, err)
	assert.Equal(t, original, moduleText(t, s), "undo restores byte-identical text")
	assert.True(t, s.CanRedo())

	_, err = s.Redo()
	require.NoError(t, err)
	assert.Equal(t, edited, moduleText(t, s), "redo restores byte-identical text")
}

func TestUndoEmptyHistory(t *testing.T) {
	s := newSession(t, testutil.SimpleFunc)
	_, err := s.Undo()
	require.Error(t, err)
	assert.True(t, IsHistoryEmpty(err))
	_, err = s.Redo()
	require.Error(t, err)
	assert.True(t, IsHistoryEmpty(err))
}

func TestHistoryBounded(t *testing.T) {
	s := NewSession(Config{HistoryLimit: 2})
	_, err := s.Load(testutil.SimpleFunc)
	require.NoError(t, err)

	for i, v := range []string{"2.0 : f32", "3.0 : f32", "4.0 : f32", "5.0 : f32"} {
		_, err := s.ModifyAttributes("op_2", map[string]string{"value": v}, nil)
		require.NoError(t, err, "edit %d", i)
	}

	undos := 0
	for s.CanUndo() {
		_, err := s.Undo()
		require.NoError(t, err)
		undos++
	}
	assert.Equal(t, 2, undos, "history depth is capped by the configured limit")
}

func TestRollbackIsByteIdentical(t *testing.T) {
	s := newSession(t, testutil.SimpleFunc)
	before := moduleText(t, s)

	// The delete applies before the malformed update is discovered, so
	// rollback must also restore the deleted attribute.
	_, err := s.ModifyAttributes("op_2", map[string]string{"value": "%%%not-an-attr"}, []string{"value"})
	require.Error(t, err)
	assert.True(t, IsParseError(err))

	assert.Equal(t, before, moduleText(t, s), "failed edit leaves byte-identical text")
	assert.False(t, s.CanUndo(), "rolled-back edit leaves no history entry")
	assert.False(t, s.CanRedo(), "rolled-back state never becomes redoable")
}

func TestPreconditionFailuresLeaveNoHistory(t *testing.T) {
	s := newSession(t, testutil.SimpleFunc)

	_, err := s.ModifyAttributes("op_99", nil, nil)
	assert.True(t, IsNotFound(err))

	_, err = s.SetOperand("op_3", 5, "val_0")
	assert.True(t, IsOutOfRange(err))

	_, err = s.SetOperand("op_3", 0, "val_99")
	assert.True(t, IsNotFound(err))

	_, err = s.CreateOperation("arith.negf", nil, nil, nil, "block_99", 0)
	assert.True(t, IsNotFound(err))

	assert.False(t, s.CanUndo(), "id and bounds checks run before any snapshot")
}

type memoryJournal struct {
	entries []JournalEntry
}

func (j *memoryJournal) Record(_ context.Context, e JournalEntry) error {
	j.entries = append(j.entries, e)
	return nil
}

func TestJournalRecordsCommits(t *testing.T) {
	j := &memoryJournal{}
	s := NewSession(Config{Journal: j})
	_, err := s.Load(testutil.SimpleFunc)
	require.NoError(t, err)

	_, err = s.ModifyAttributes("op_2", map[string]string{"value": "2.0 : f32"}, nil)
	require.NoError(t, err)
	_, err = s.Undo()
	require.NoError(t, err)

	require.Len(t, j.entries, 2)
	assert.Equal(t, "modify_attributes", j.entries[0].Kind)
	assert.Equal(t, "op_2", j.entries[0].Target)
	assert.Equal(t, int64(1), j.entries[0].Seq)
	assert.Equal(t, "undo", j.entries[1].Kind)
	assert.Equal(t, int64(2), j.entries[1].Seq)
	assert.Equal(t, s.ID(), j.entries[0].SessionID)
	assert.NotEmpty(t, j.entries[0].ModuleHash)
	assert.NotEqual(t, j.entries[0].ModuleHash, j.entries[1].ModuleHash)
}

func TestFailedEditsAreNotJournaled(t *testing.T) {
	j := &memoryJournal{}
	s := NewSession(Config{Journal: j})
	_, err := s.Load(testutil.SimpleFunc)
	require.NoError(t, err)

	_, err = s.ModifyAttributes("op_2", map[string]string{"value": "%%%bad"}, nil)
	require.Error(t, err)
	assert.Empty(t, j.entries)
}

func TestNotifierReceivesValidation(t *testing.T) {
	hub := notify.NewHub()
	ch, cancel := hub.SubscribeChan(4)
	defer cancel()

	s := NewSession(Config{Notifier: hub})
	_, err := s.Load(testutil.SimpleFunc)
	require.NoError(t, err)

	_, err = s.ModifyAttributes("op_2", map[string]string{"value": "2.0 : f32"}, nil)
	require.NoError(t, err)

	select {
	case v := <-ch:
		assert.True(t, v.Valid)
		assert.Empty(t, v.Diagnostics)
	default:
		t.Fatal("expected a validation broadcast after the commit")
	}
}

func TestValidateStructuralError(t *testing.T) {
	s := newSession(t, `module {
  "func.return"() : () -> ()
}
`)
	valid, diags := s.Validate()
	assert.False(t, valid)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0], "ERROR:")
}

func TestValidateSignatureWarnings(t *testing.T) {
	reg, err := dialect.Builtin()
	require.NoError(t, err)

	s := NewSession(Config{Dialects: reg})
	_, err = s.Load(`module {
  %0 = "math.sqrt"() : () -> f32
}
`)
	require.NoError(t, err)

	valid, diags := s.Validate()
	assert.False(t, valid, "a warning still marks the module invalid")
	require.Len(t, diags, 1)
	assert.Equal(t, "WARNING: math.sqrt (op_1): expected at least 1 operands, got 0", diags[0])
}

func TestValidateUnknownDialectPassesSilently(t *testing.T) {
	reg, err := dialect.Builtin()
	require.NoError(t, err)

	s := NewSession(Config{Dialects: reg})
	_, err = s.Load(`module {
  %0 = "mystery.op"() : () -> f32
}
`)
	require.NoError(t, err)

	valid, diags := s.Validate()
	assert.True(t, valid, "ops absent from the catalog are not flagged: %v", diags)
}
