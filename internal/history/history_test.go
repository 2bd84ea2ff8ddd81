package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndoRedoSymmetry(t *testing.T) {
	m := NewManager(10)

	m.Snapshot("v1")
	m.Snapshot("v2")
	require.True(t, m.CanUndo())
	require.False(t, m.CanRedo())

	text, err := m.Undo("v3")
	require.NoError(t, err)
	assert.Equal(t, "v2", text)
	assert.True(t, m.CanRedo())

	text, err = m.Undo(text)
	require.NoError(t, err)
	assert.Equal(t, "v1", text)
	assert.False(t, m.CanUndo())

	text, err = m.Redo(text)
	require.NoError(t, err)
	assert.Equal(t, "v2", text)

	text, err = m.Redo(text)
	require.NoError(t, err)
	assert.Equal(t, "v3", text)
	assert.False(t, m.CanRedo())
}

func TestUndoEmpty(t *testing.T) {
	m := NewManager(10)
	_, err := m.Undo("current")
	assert.ErrorIs(t, err, ErrNothingToUndo)
	_, err = m.Redo("current")
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestSnapshotClearsRedo(t *testing.T) {
	m := NewManager(10)
	m.Snapshot("v1")
	_, err := m.Undo("v2")
	require.NoError(t, err)
	require.True(t, m.CanRedo())

	m.Snapshot("v1-edited")
	assert.False(t, m.CanRedo(), "a new edit invalidates the redo branch")
}

func TestBoundedDepth(t *testing.T) {
	m := NewManager(3)
	for i := 0; i < 10; i++ {
		m.Snapshot(fmt.Sprintf("v%d", i))
	}
	// Only the newest three snapshots survive.
	text, err := m.Undo("current")
	require.NoError(t, err)
	assert.Equal(t, "v9", text)
	text, err = m.Undo(text)
	require.NoError(t, err)
	assert.Equal(t, "v8", text)
	text, err = m.Undo(text)
	require.NoError(t, err)
	assert.Equal(t, "v7", text)
	_, err = m.Undo(text)
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestPopSnapshotSkipsRedo(t *testing.T) {
	m := NewManager(10)
	m.Snapshot("good")

	text, err := m.PopSnapshot()
	require.NoError(t, err)
	assert.Equal(t, "good", text)
	assert.False(t, m.CanUndo())
	assert.False(t, m.CanRedo(), "a rolled-back state must not become redoable")

	_, err = m.PopSnapshot()
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestDefaultLimit(t *testing.T) {
	m := NewManager(0)
	for i := 0; i < DefaultLimit+5; i++ {
		m.Snapshot(fmt.Sprintf("v%d", i))
	}
	count := 0
	text := "current"
	for {
		next, err := m.Undo(text)
		if err != nil {
			break
		}
		text = next
		count++
	}
	assert.Equal(t, DefaultLimit, count)
}

func TestClear(t *testing.T) {
	m := NewManager(10)
	m.Snapshot("v1")
	_, err := m.Undo("v2")
	require.NoError(t, err)
	m.Clear()
	assert.False(t, m.CanUndo())
	assert.False(t, m.CanRedo())
}

func TestRoundTripsLargeText(t *testing.T) {
	m := NewManager(2)
	var big string
	for i := 0; i < 1000; i++ {
		big += fmt.Sprintf("  %%%d = \"arith.constant\"() {value = %d : i32} : () -> i32\n", i, i)
	}
	m.Snapshot(big)
	text, err := m.Undo("current")
	require.NoError(t, err)
	assert.Equal(t, big, text, "compression must be lossless")
}
