package store

import (
	"context"
	"fmt"

	"github.com/opweave/opweave/internal/engine"
)

// ReadSession returns every journaled edit for a session in replay
// order: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) when the session has no edits.
func (s *Store) ReadSession(ctx context.Context, sessionID string) ([]engine.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, seq, kind, target, payload, module_hash
		FROM edits
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query edits: %w", err)
	}
	defer rows.Close()

	var entries []engine.JournalEntry
	for rows.Next() {
		var e engine.JournalEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Seq, &e.Kind, &e.Target, &e.Payload, &e.ModuleHash); err != nil {
			return nil, fmt.Errorf("scan edit: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edits: %w", err)
	}

	if entries == nil {
		entries = []engine.JournalEntry{}
	}

	return entries, nil
}

// LastSeq returns the highest journaled sequence number for a
// session, or 0 when none exist.
func (s *Store) LastSeq(ctx context.Context, sessionID string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM edits WHERE session_id = ?
	`, sessionID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return seq, nil
}
