// Package graph tracks every loaded document and stylesheet together with the
// imports between them.
//
// The graph is the single source of truth for what a document imports. It is
// populated depth-first by LoadDependency and queried by the evaluator
// (Flatten, for style precedence) and by the engine (FlattenDependents, to
// find what must be re-evaluated after an edit).
//
// # Thread-Safety
//
// Graph is not safe for concurrent use. The engine owns it and its callers
// serialize access.
package graph
