// Package engine implements the transactional mutation engine.
//
// A Session owns one module tree and applies edits to it through a
// fixed protocol:
//
//  1. Resolve every id and bounds-check every index. Failures here
//     (NOT_FOUND, OUT_OF_RANGE) return before any state changes.
//  2. Snapshot the serialized module onto the undo stack.
//  3. Apply the edit against the tree. Parse failures and structural
//     surprises abort here.
//  4. On failure, pop the snapshot, reparse it and re-materialize; the
//     module is byte-identical to before the call and the failed state
//     never reaches the redo stack.
//  5. On success, re-materialize the projection, journal the edit and
//     broadcast a validation report.
//
// Edits that change operand arity cannot mutate in place; they funnel
// through Operation Recreation, which rebuilds the operation with a
// new operand list, moves its region contents, redirects every result
// use and erases the original. Edits that can move a producer below a
// consumer finish with a dominance pass that topologically re-sorts
// the affected block, preserving original order among unconstrained
// operations and backing off entirely on a dependency cycle.
//
// Sessions serialize their own edits and are not safe for concurrent
// use.
package engine
