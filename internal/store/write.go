package store

import (
	"context"
	"fmt"

	"github.com/opweave/opweave/internal/engine"
)

// Record appends one committed edit to the journal. Uses ON
// CONFLICT(id) DO NOTHING for idempotency: replaying the same edit id
// is silently ignored. Other constraint violations, such as a reused
// (session_id, seq) pair with a different id, still return errors.
//
// Record implements engine.Journal.
func (s *Store) Record(ctx context.Context, e engine.JournalEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO edits
		(id, session_id, seq, kind, target, payload, module_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		e.ID,
		e.SessionID,
		e.Seq,
		e.Kind,
		e.Target,
		e.Payload,
		e.ModuleHash,
	)
	if err != nil {
		return fmt.Errorf("record edit: %w", err)
	}

	return nil
}
