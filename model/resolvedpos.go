package model

import (
	"errors"
	"fmt"
	"sync"
)

// pathEntry is one level of a resolved position: the ancestor node, the
// index into it, and the absolute position at which that child starts.
type pathEntry struct {
	node   *Node
	index  int
	offset int
}

// ResolvedPos is a position together with the chain of nodes it points
// into. Methods taking an optional depth default to Depth, and read a
// negative depth as relative to it.
type ResolvedPos struct {
	Pos int
	// Depth is 0 for positions directly in the document, 1 inside a
	// top-level block, and so on.
	Depth int
	// ParentOffset is the offset into the innermost node.
	ParentOffset int

	path []pathEntry
}

func newResolvedPos(pos int, path []pathEntry, parentOffset int) *ResolvedPos {
	return &ResolvedPos{
		Pos:          pos,
		Depth:        len(path) - 1,
		ParentOffset: parentOffset,
		path:         path,
	}
}

func (r *ResolvedPos) resolveDepth(depth []int) int {
	if len(depth) == 0 {
		return r.Depth
	}
	if depth[0] < 0 {
		return r.Depth + depth[0]
	}
	return depth[0]
}

// Parent returns the innermost node holding the position. Text nodes are
// never parents.
func (r *ResolvedPos) Parent() *Node {
	return r.Node(r.Depth)
}

// Doc returns the document the position was resolved in.
func (r *ResolvedPos) Doc() *Node {
	return r.Node(0)
}

// Node returns the ancestor at depth.
func (r *ResolvedPos) Node(depth ...int) *Node {
	return r.path[r.resolveDepth(depth)].node
}

// Index returns the index of the child of the ancestor at depth that holds
// or follows the position.
func (r *ResolvedPos) Index(depth ...int) int {
	return r.path[r.resolveDepth(depth)].index
}

// IndexAfter returns the index of the first child of the ancestor at depth
// that starts after the position.
func (r *ResolvedPos) IndexAfter(depth ...int) int {
	d := r.resolveDepth(depth)
	if d == r.Depth && r.TextOffset() == 0 {
		return r.Index(d)
	}
	return r.Index(d) + 1
}

// Start returns where the content of the ancestor at depth starts.
func (r *ResolvedPos) Start(depth ...int) int {
	d := r.resolveDepth(depth)
	if d == 0 {
		return 0
	}
	return r.path[d-1].offset + 1
}

// End returns where the content of the ancestor at depth ends.
func (r *ResolvedPos) End(depth ...int) int {
	d := r.resolveDepth(depth)
	return r.Start(d) + r.Node(d).Content.Size
}

// Before returns the position in front of the ancestor at depth. Depth+1
// gives Pos.
func (r *ResolvedPos) Before(depth ...int) (int, error) {
	d := r.resolveDepth(depth)
	if d == 0 {
		return 0, errors.New("There is no position before the top-level node")
	}
	if d == r.Depth+1 {
		return r.Pos, nil
	}
	return r.path[d-1].offset, nil
}

// After returns the position behind the ancestor at depth.
func (r *ResolvedPos) After(depth ...int) (int, error) {
	d := r.resolveDepth(depth)
	if d == 0 {
		return 0, errors.New("There is no position after the top-level node")
	}
	if d == r.Depth+1 {
		return r.Pos, nil
	}
	return r.path[d-1].offset + r.path[d].node.NodeSize(), nil
}

// TextOffset is the offset into the text node the position points into,
// or 0 between nodes.
func (r *ResolvedPos) TextOffset() int {
	return r.Pos - r.path[len(r.path)-1].offset
}

// NodeAfter returns the node right after the position, cut when the
// position is inside a text node.
func (r *ResolvedPos) NodeAfter() *Node {
	parent := r.Parent()
	index := r.Index(r.Depth)
	if index == parent.ChildCount() {
		return nil
	}
	child := parent.MaybeChild(index)
	if off := r.TextOffset(); off > 0 {
		return child.Cut(off)
	}
	return child
}

// NodeBefore is the counterpart of NodeAfter.
func (r *ResolvedPos) NodeBefore() *Node {
	index := r.Index(r.Depth)
	if off := r.TextOffset(); off > 0 {
		return r.Parent().MaybeChild(index).Cut(0, off)
	}
	if index == 0 {
		return nil
	}
	return r.Parent().MaybeChild(index - 1)
}

// Marks returns the marks text typed at the position would get. At the
// start of a block these are the marks of the node after it.
func (r *ResolvedPos) Marks() []*Mark {
	parent := r.Parent()
	index := r.Index()

	if parent.Content.Size == 0 {
		return NoMarks
	}

	if r.TextOffset() > 0 {
		return parent.MaybeChild(index).Marks
	}

	main := parent.MaybeChild(index - 1)
	other := parent.MaybeChild(index)
	if main == nil {
		main, other = other, main
	}

	// Non-inclusive marks only carry over when they continue on the other
	// side.
	marks := main.Marks
	for _, m := range main.Marks {
		if m.Type.Spec.Inclusive != nil && !*m.Type.Spec.Inclusive &&
			(other == nil || !m.IsInSet(other.Marks)) {
			marks = m.RemoveFromSet(marks)
		}
	}
	return marks
}

// SharedDepth returns the deepest depth whose ancestor also holds pos.
func (r *ResolvedPos) SharedDepth(pos int) int {
	for depth := r.Depth; depth > 0; depth-- {
		if r.Start(depth) <= pos && r.End(depth) >= pos {
			return depth
		}
	}
	return 0
}

func (r *ResolvedPos) String() string {
	str := ""
	for i := 1; i <= r.Depth; i++ {
		if str != "" {
			str += "/"
		}
		str += fmt.Sprintf("%s_%d", r.Node(i).Type.Name, r.Index(i-1))
	}
	return fmt.Sprintf("%s:%d", str, r.ParentOffset)
}

func resolvePos(doc *Node, pos int) (*ResolvedPos, error) {
	if pos < 0 || pos > doc.Content.Size {
		return nil, fmt.Errorf("Position %d out of range", pos)
	}
	var path []pathEntry
	start := 0
	parentOffset := pos
	node := doc
	for {
		index, offset, err := node.Content.findIndex(parentOffset)
		if err != nil {
			return nil, err
		}
		rem := parentOffset - offset
		path = append(path, pathEntry{node: node, index: index, offset: start + offset})
		if rem == 0 {
			break
		}
		node = node.MaybeChild(index)
		if node == nil || node.IsText() {
			break
		}
		parentOffset = rem - 1
		start += offset + 1
	}
	return newResolvedPos(pos, path, parentOffset), nil
}

// resolveRing keeps the last resolved positions.
type resolveRing struct {
	mu      sync.Mutex
	docs    [12]*Node
	entries [12]*ResolvedPos
	next    int
}

var resolveCache resolveRing

func resolvePosCached(doc *Node, pos int) (*ResolvedPos, error) {
	resolveCache.mu.Lock()
	defer resolveCache.mu.Unlock()
	for i, d := range resolveCache.docs {
		if d == doc && resolveCache.entries[i].Pos == pos {
			return resolveCache.entries[i], nil
		}
	}
	rpos, err := resolvePos(doc, pos)
	if err != nil {
		return nil, err
	}
	resolveCache.docs[resolveCache.next] = doc
	resolveCache.entries[resolveCache.next] = rpos
	resolveCache.next = (resolveCache.next + 1) % len(resolveCache.docs)
	return rpos, nil
}
