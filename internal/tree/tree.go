// Package tree reconstructs the device's folder hierarchy from the flat,
// unordered metadata record set and resolves slash-delimited paths against
// it. Records may arrive in any order; a child's record can precede its
// parent's.
package tree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/remkit/remkit/internal/metadata"
)

// Node is one entry in the reconstructed hierarchy. The synthetic root owns
// no Record and has the empty path. Folder paths end in "/", document paths
// do not.
type Node struct {
	Record   *metadata.Record
	Path     string
	FileType string // payload type hint for documents ("pdf", "epub"); empty for folders
	Children []*Node
}

// IsFolder reports whether the node is the root or a collection.
func (n *Node) IsFolder() bool {
	return n.Record == nil || n.Record.IsFolder()
}

// ID returns the node's identifier, or "" for the root.
func (n *Node) ID() string {
	if n.Record == nil {
		return ""
	}
	return n.Record.ID
}

// Name returns the node's display name, or "" for the root.
func (n *Node) Name() string {
	if n.Record == nil {
		return ""
	}
	return n.Record.VisibleName
}

// Attach creates a node for rec under parent and inserts it, returning the
// new node. The path is computed here, before the node becomes visible, so
// the path invariants hold for every node reachable from the root. Children
// are kept sorted by name (ties broken by identifier) so the built tree does
// not depend on record arrival order.
func Attach(parent *Node, rec *metadata.Record, fileType string) *Node {
	p := parent.Path + rec.VisibleName
	if rec.IsFolder() {
		p += "/"
		fileType = ""
	}
	child := &Node{Record: rec, Path: p, FileType: fileType}

	i := sort.Search(len(parent.Children), func(i int) bool {
		c := parent.Children[i]
		if c.Name() != rec.VisibleName {
			return c.Name() > rec.VisibleName
		}
		return c.ID() > rec.ID
	})
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[i+1:], parent.Children[i:])
	parent.Children[i] = child
	return child
}

// UnresolvedError reports records whose parent identifier never
// materialized as a node: either the parent record is missing from the
// input, or it was excluded (deleted or trashed) while the child was not.
type UnresolvedError struct {
	IDs     []string // offending record identifiers
	Parents []string // their dangling parent identifiers, index-aligned
}

func (e *UnresolvedError) Error() string {
	pairs := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		pairs[i] = fmt.Sprintf("%s -> %s", id, e.Parents[i])
	}
	return fmt.Sprintf("unresolvable ancestry for %d record(s): %s",
		len(e.IDs), strings.Join(pairs, ", "))
}

// Build assembles the tree from the full raw record set.
//
// Records with the deleted flag set, or with the trash sentinel as parent,
// are dropped and never materialize a node. Exclusion does not cascade: a
// clean child of an excluded parent is not silently dropped — its ancestry
// is unresolvable and Build fails with an UnresolvedError naming it.
//
// Resolution runs in rounds: each round attaches every pending record whose
// parent is the root or already materialized. A round that makes no progress
// means the remaining records can never resolve, so Build fails fast instead
// of spinning.
func Build(raws []metadata.Raw) (*Node, error) {
	type pending struct {
		rec      *metadata.Record
		fileType string
	}

	var queue []pending
	for _, raw := range raws {
		rec, err := metadata.Normalize(raw)
		if err != nil {
			return nil, err
		}
		if rec.Deleted || rec.Parent == metadata.TrashParent {
			continue
		}
		queue = append(queue, pending{rec: rec, fileType: raw.FileType})
	}

	root := &Node{}
	nodes := make(map[string]*Node, len(queue))
	for len(queue) > 0 {
		var carry []pending
		for _, p := range queue {
			parent := root
			if p.rec.Parent != "" {
				var ok bool
				parent, ok = nodes[p.rec.Parent]
				if !ok {
					carry = append(carry, p)
					continue
				}
			}
			nodes[p.rec.ID] = Attach(parent, p.rec, p.fileType)
		}
		if len(carry) == len(queue) {
			err := &UnresolvedError{}
			for _, p := range carry {
				err.IDs = append(err.IDs, p.rec.ID)
				err.Parents = append(err.Parents, p.rec.Parent)
			}
			return nil, err
		}
		queue = carry
	}
	return root, nil
}

// Walk visits every node in depth-first pre-order, root first.
func Walk(root *Node, visit func(*Node)) {
	visit(root)
	for _, c := range root.Children {
		Walk(c, visit)
	}
}
