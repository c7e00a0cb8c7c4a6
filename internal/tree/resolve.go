package tree

import (
	"errors"
	"path"
	"strings"
)

// ErrNotFound is returned by Resolve when no node matches the query path.
var ErrNotFound = errors.New("path not found")

// normalizePath canonicalizes a path for comparison: separators collapsed,
// "."/".." segments resolved, trailing separators stripped. "" and "." both
// denote the root.
func normalizePath(p string) string {
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimPrefix(p, "/")
}

// Resolve finds the node whose path matches query, comparing normalized
// paths for exact, case-sensitive equality. Traversal is depth-first
// pre-order and the first match wins; when two nodes share a path (the
// device does not forbid duplicate names) later matches are unreachable.
func Resolve(root *Node, query string) (*Node, error) {
	want := normalizePath(query)
	if n := find(root, want); n != nil {
		return n, nil
	}
	return nil, ErrNotFound
}

func find(n *Node, want string) *Node {
	if normalizePath(n.Path) == want {
		return n
	}
	for _, c := range n.Children {
		if m := find(c, want); m != nil {
			return m
		}
	}
	return nil
}
