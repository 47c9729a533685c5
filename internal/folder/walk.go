package folder

import (
	"slices"
	"sync"
)

// Visited is the cycle guard used by every traversal of the tree. The tree comes from a
// merged collaborative structure and is never trusted to be acyclic.
// It is safe for concurrent use.
type Visited struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewVisited() *Visited {
	return &Visited{seen: map[string]struct{}{}}
}

// Visit marks id and reports whether it was unseen.
func (v *Visited) Visit(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.seen[id]; ok {
		return false
	}
	v.seen[id] = struct{}{}
	return true
}

func (v *Visited) Seen(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.seen[id]
	return ok
}

// Walk visits the descendants of root in depth-first preorder (root excluded).
// Returning false from fn skips the subtree below that id.
func (f *Folder) Walk(root string, fn func(id string, depth int) bool) {
	type frame struct {
		id    string
		depth int
	}
	visited := NewVisited()
	visited.Visit(root)

	stack := make([]frame, 0)
	push := func(parent string, depth int) {
		ids := f.children[parent]
		for i := len(ids) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: ids[i], depth: depth})
		}
	}
	push(root, 1)
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visited.Visit(top.id) {
			continue
		}
		if !fn(top.id, top.depth) {
			continue
		}
		push(top.id, top.depth+1)
	}
}

// Descendants returns every id below root in preorder.
func (f *Folder) Descendants(root string) []string {
	out := make([]string, 0)
	f.Walk(root, func(id string, _ int) bool {
		out = append(out, id)
		return true
	})
	return out
}

// IsDescendant reports whether id sits anywhere below root.
func (f *Folder) IsDescendant(root, id string) bool {
	found := false
	f.Walk(root, func(cur string, _ int) bool {
		if cur == id {
			found = true
		}
		return !found
	})
	return found
}

// AncestorIDs returns the chain root→id by following parent ids upward. The walk stops
// at the workspace, at an unknown id, or when an id recurs.
func (f *Folder) AncestorIDs(id string) []string {
	chain := make([]string, 0)
	visited := NewVisited()
	cur := id
	for cur != "" && cur != f.workspace.ID {
		if !visited.Visit(cur) {
			break
		}
		v, ok := f.views[cur]
		if !ok {
			break
		}
		chain = append(chain, cur)
		cur = v.ParentID
	}
	slices.Reverse(chain)
	return chain
}
