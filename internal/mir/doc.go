// Package mir implements the textual IR backend the editing engine is
// built on: an MLIR-style representation of operations, values, blocks
// and regions, with a generic-form parser, a deterministic printer, a
// structural verifier, and a small set of mutation primitives.
//
// The mutation surface is intentionally coarse. An operation's operand
// list can be rewritten index-by-index but never grown or shrunk in
// place; arity changes go through create/erase. Blocks move between
// regions wholesale. Use lists are not maintained incrementally - use
// queries walk the tree from the root.
//
// # Text format
//
// Operations use the generic form:
//
//	%0, %1 = "dialect.op"(%a, %b) ({ ...regions... }) {attr = value} : (f32, f32) -> (f32, f32)
//
// Two sugared headers are accepted and printed: the top-level
// "builtin.module" as `module { ... }`, and "func.func" as
//
//	func @name(%arg0: f32, %arg1: f32) -> (f32) { ... }
//
// The func header materializes the sym_name and function_type
// attributes, so both still surface as ordinary attributes.
package mir
