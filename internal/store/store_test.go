package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opweave/opweave/internal/engine"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func entry(id, session string, seq int64, kind string) engine.JournalEntry {
	return engine.JournalEntry{
		ID:         id,
		SessionID:  session,
		Seq:        seq,
		Kind:       kind,
		Target:     "op_2",
		Payload:    `{"updates":{"value":"2.0 : f32"}}`,
		ModuleHash: "deadbeef",
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Record(context.Background(), entry("e1", "sess", 1, "modify_attributes")))
	require.NoError(t, s1.Close())

	// Reopening an existing database reapplies pragmas and schema
	// without losing rows.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	entries, err := s2.ReadSession(context.Background(), "sess")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecordAndReadSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, entry("e2", "sess", 2, "undo")))
	require.NoError(t, s.Record(ctx, entry("e1", "sess", 1, "modify_attributes")))
	require.NoError(t, s.Record(ctx, entry("x1", "other", 1, "delete_operation")))

	entries, err := s.ReadSession(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "e1", entries[0].ID)
	assert.Equal(t, "e2", entries[1].ID)
	assert.Equal(t, "modify_attributes", entries[0].Kind)
	assert.Equal(t, "op_2", entries[0].Target)
	assert.Equal(t, `{"updates":{"value":"2.0 : f32"}}`, entries[0].Payload)
	assert.Equal(t, "deadbeef", entries[0].ModuleHash)
}

func TestRecordDuplicateIDIsIgnored(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e := entry("e1", "sess", 1, "modify_attributes")
	require.NoError(t, s.Record(ctx, e))
	require.NoError(t, s.Record(ctx, e))

	entries, err := s.ReadSession(ctx, "sess")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecordRejectsReusedSeq(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, entry("e1", "sess", 1, "modify_attributes")))
	err := s.Record(ctx, entry("e2", "sess", 1, "undo"))
	assert.Error(t, err, "a different edit id may not reuse a (session, seq) pair")
}

func TestReadSessionEmpty(t *testing.T) {
	s := openTestStore(t)

	entries, err := s.ReadSession(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestLastSeq(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seq, err := s.LastSeq(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	require.NoError(t, s.Record(ctx, entry("e1", "sess", 1, "modify_attributes")))
	require.NoError(t, s.Record(ctx, entry("e2", "sess", 2, "undo")))

	seq, err = s.LastSeq(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)
}
