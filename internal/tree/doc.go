// Package tree builds and renders node hierarchies through a repo.Store.
//
// FindOrCreate walks a relative path below a parent node, creating missing
// segments. Traverse renders a subtree as an indented text dump with
// multi-valued, binary and reference properties made readable:
//
//	(tab)(tab)(tab)library
//	(tab)(tab)(tab)(tab)@count=3
//	(tab)(tab)(tab)(tab)@tags=[x,y]
//	(tab)(tab)(tab)(tab)book
//
// The dump reads raw properties and children through the store, never
// through typed views, and only runs while the transaction is NOT_STARTED.
package tree
