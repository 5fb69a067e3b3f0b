// Package harness runs YAML tree scenarios against a fresh in-memory store.
//
// A scenario builds a tree with a sequence of steps, checks the outcome of
// each step, evaluates assertions against the final tree, and renders the
// whole tree as a traversal dump for golden file comparison.
//
// # Scenario Format
//
//	name: sales_model
//	description: "Builds a model with two related tables"
//	types:
//	  - types/extra.cue
//	setup:
//	  - op: mkpath
//	    path: models/sales
//	    final_type: rel:model
//	flow:
//	  - op: table
//	    path: /models/sales
//	    name: orders
//	  - op: set_property
//	    path: /models/sales/orders
//	    name: rel:cardinality
//	    type: long
//	    values: ["100"]
//	  - op: remove
//	    path: /missing
//	    expect:
//	      error: NOT_FOUND
//	assertions:
//	  - type: exists
//	    path: /models/sales/orders
//	  - type: property
//	    path: /models/sales/orders
//	    name: rel:cardinality
//	    equals: "100"
//
// # Step Operations
//
//   - mkpath: find or create path below at (default /)
//   - add_child: append a child called name of type under path
//   - add_mixin: tag path with type
//   - set_property, remove_property: write or drop a property on path
//   - remove: delete path and its subtree
//   - model, table, column: create relational elements
//   - primary_key, foreign_key: create keys over columns of the table at path
//   - option: set a statement option on the element at path
//
// Reference values are written as paths and stored as the target's id.
//
// # Assertion Types
//
//   - exists, absent: a node is or is not at path
//   - property: the displayed value of a property equals the expected text
//   - child_count: path has exactly count children
//   - kind: the default type resolver registry resolves path to kind
//   - dump_contains: the traversal dump contains text
//
// # Deterministic Testing
//
// Node ids come from a sequence generator, so dumps are identical across
// runs. Golden files live in testdata/golden/{scenario.Name}.golden.
package harness
