// Package schema holds the node type registry: which properties each node
// type declares, their value types and multiplicity, and which types are
// mixins or residual.
//
// Node types are written in CUE and unified with the #NodeType and
// #Property definitions in defs.cue before being compiled into Go values.
// The built-in types (types.cue) cover the root, the generic
// nt:unstructured type, mix:referenceable and the rel:* relational types.
// Extra types can be layered on top with LoadFile.
package schema
