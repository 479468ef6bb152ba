/*
Package ports defines the driven ports (interfaces) of the tandem engine.

The engine core depends only on these interfaces. Concrete adapters live under
pkg/adapters and internal/compiler.

# Key Interfaces

  - Parser: turns document and stylesheet source into an AST.
  - ExpressionEvaluator: evaluates embedded expressions against bound data.
  - StyleEvaluator: scopes a parsed stylesheet into an evaluated CSS sheet.
  - VirtualFileSystem: resolves, reads and overlays document sources.
  - SnapshotStore: keeps the last known good tree of each document.
  - DistributedLocker: serializes engine mutations across replicas.
*/
package ports
