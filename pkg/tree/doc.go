// Package tree provides the dependency tree model explored by deptree.
//
// A [Tree] is an immutable snapshot of a rooted package tree. Every tree gets a
// fresh identity ([Tree.ID]) when it is constructed, and the layout memo keys
// on that identity together with the [ExpandedSet] fingerprint.
//
// # Nodes
//
// [Node] children are pointers, so trees decoded from flat node-link graphs can
// share subtrees (diamond dependencies) and may even contain cycles. Acyclicity
// is a precondition of the layout engine, not something this package enforces;
// the engine guards against revisits on the active path instead.
//
// # Expanded Set
//
// [ExpandedSet] has value semantics: [ExpandedSet.Toggle], [ExpandedSet.With]
// and [ExpandedSet.Without] return new sets and never modify the receiver. The
// root is always visible; it only shows its children when it is in the set.
//
// # Input Formats
//
// [ReadFile] and [Decode] accept:
//
//	nested JSON/YAML   {"name": "app", "version": "1.0", "children": [...]}
//	node-link JSON     {"nodes": [{"id": "app", "meta": {"version": "1.0"}}], "edges": [{"from": "app", "to": "lib"}]}
package tree
