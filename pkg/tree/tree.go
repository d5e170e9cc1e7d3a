package tree

import (
	"github.com/google/uuid"

	"github.com/matzehuels/deptree/pkg/errors"
)

// Node is a package in the dependency tree.
type Node struct {
	ID       string  `json:"name" yaml:"name"`
	Version  string  `json:"version,omitempty" yaml:"version,omitempty"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// HasChildren reports whether the node has at least one dependency.
func (n *Node) HasChildren() bool { return n != nil && len(n.Children) > 0 }

// Label returns "name@version", or just the name when the version is unknown.
func (n *Node) Label() string {
	if n.Version == "" {
		return n.ID
	}
	return n.ID + "@" + n.Version
}

// Tree is an immutable, rooted snapshot of a dependency tree.
//
// The zero value is not usable - use New.
type Tree struct {
	id    uuid.UUID
	root  *Node
	index map[string]*Node
	order []string
}

// New wraps root in a Tree with a fresh identity.
// It returns an INVALID_TREE error when root is nil and INVALID_NODE_ID when
// any reachable node has an unusable id.
func New(root *Node) (*Tree, error) {
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidTree, "tree has no root")
	}

	t := &Tree{
		id:    uuid.New(),
		root:  root,
		index: make(map[string]*Node),
	}

	// Shared subtrees and cycles are visited once per pointer.
	seen := make(map[*Node]bool)
	var walk func(n *Node) error
	walk = func(n *Node) error {
		if n == nil || seen[n] {
			return nil
		}
		seen[n] = true
		if err := errors.ValidateNodeID(n.ID); err != nil {
			return err
		}
		if _, ok := t.index[n.ID]; !ok {
			t.index[n.ID] = n
			t.order = append(t.order, n.ID)
		}
		for _, c := range n.Children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return t, nil
}

// ID returns the identity assigned when the tree was constructed.
func (t *Tree) ID() uuid.UUID { return t.id }

// Root returns the root node.
func (t *Tree) Root() *Node { return t.root }

// Contains reports whether id names a node reachable from the root.
func (t *Tree) Contains(id string) bool {
	_, ok := t.index[id]
	return ok
}

// Node returns the first node reachable from the root with the given id.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.index[id]
	return n, ok
}

// Len returns the number of distinct node ids in the tree.
func (t *Tree) Len() int { return len(t.index) }

// IDs returns every distinct node id in pre-order of first appearance.
func (t *Tree) IDs() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Expandable returns the ids of every node that has children.
func (t *Tree) Expandable() []string {
	var out []string
	for _, id := range t.order {
		if t.index[id].HasChildren() {
			out = append(out, id)
		}
	}
	return out
}
