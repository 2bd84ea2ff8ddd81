// Package graph projects the live IR tree into a flat, externally
// addressable graph with process-stable identifiers.
//
// The projection is never patched in place. Every rebuild walks the
// whole tree from the root, assigns fresh sequential identifiers, and
// produces a new Graph; identifiers are therefore stable only within
// one materialization, and callers must re-fetch after every mutation.
package graph
