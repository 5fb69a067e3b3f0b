// Package store provides the SQLite node store adapter for arbor.
//
// The store persists a tree of nodes with:
//   - nodes: id, parent, name, sibling position and primary type
//   - node_mixins: auxiliary type tags per node
//   - properties: typed values as a JSON array of lexical strings
//
// # Paths and Identity
//
// Node ids come from an IDGenerator (UUIDv7 by default) and never change.
// Paths are derived from the parent chain on every read. A same-name
// sibling's index is one more than the number of earlier siblings with
// that name, so "/a/b[2]" is the second child of /a named b.
//
// # Deterministic Ordering
//
//   - Children: ORDER BY position ASC (insertion order)
//   - Properties and descriptors: ORDER BY name COLLATE BINARY ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Removing a node cascades to its subtree
//
// Every operation runs inside the SQL transaction opened by Begin.
package store
