// Package relational overlays typed views on generic store nodes.
//
// A view is a path-bound handle (transaction, store, path) that reads and
// writes through repo.Store. Views are never persisted and any number of
// them may wrap the same node.
//
// Each view kind has a TypeResolver that decides whether a node can be
// viewed as that kind and wraps it. A Registry tries resolvers in
// ascending priority order and takes the first match:
//
//	statement option  10
//	column            20
//	primary key       30
//	foreign key       40
//	table             50
//	model             60
//
// The registry does not adjudicate nodes that more than one resolver could
// accept beyond this order.
package relational
