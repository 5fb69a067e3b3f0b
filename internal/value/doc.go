// Package value provides the property value model for arbor nodes.
//
// Every property stored on a node has a declared Type and a multiplicity
// flag. Values are a sealed interface with one Go type per declared type,
// so a switch over Value is exhaustive by construction.
//
// This package imports nothing internal. The store, the path resolver and
// the typed views all build on it.
//
// Lexical form:
//   - Dates are RFC 3339 with nanoseconds
//   - Binary payloads are standard base64
//   - Doubles use the shortest representation that round-trips
//   - References hold the target node identifier, never its path
package value
