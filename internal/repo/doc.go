// Package repo defines the generic node model of arbor and the contract
// every node store adapter implements.
//
// The package holds:
//   - Node: a path-addressed snapshot with a stable identifier
//   - Transaction: the unit of work that scopes every call
//   - Store: the adapter contract (see internal/store for SQLite)
//   - Error: the single domain error with a Code per failure category
//
// Paths are absolute and slash-delimited. A segment may carry a
// same-name-sibling index, "book[2]", where index 1 is implicit.
package repo
