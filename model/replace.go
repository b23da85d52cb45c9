package model

import "fmt"

// ReplaceError is returned by Node.Replace when the replacement would
// produce an invalid document.
type ReplaceError struct {
	Message string
}

func replaceErrorf(format string, args ...interface{}) *ReplaceError {
	return &ReplaceError{Message: fmt.Sprintf(format, args...)}
}

func (e *ReplaceError) Error() string {
	return e.Message
}

// nodeList collects the children of a node being rebuilt. Adjacent text
// nodes with the same marks are joined.
type nodeList []*Node

func (l *nodeList) push(child *Node) {
	if n := len(*l); n > 0 && child.IsText() && child.SameMarkup((*l)[n-1]) {
		(*l)[n-1] = child.WithText(*(*l)[n-1].Text + *child.Text)
		return
	}
	*l = append(*l, child)
}

// pushRange adds the children of the node at depth found between start and
// end. A nil start means from the first child, a nil end up to the last
// one. Text nodes cut by start or end are added partially.
func (l *nodeList) pushRange(start, end *ResolvedPos, depth int) error {
	ref := end
	if ref == nil {
		ref = start
	}
	node := ref.Node(depth)
	first, last := 0, node.ChildCount()
	if end != nil {
		last = end.Index(depth)
	}
	if start != nil {
		first = start.Index(depth)
		if start.Depth > depth {
			first++
		} else if start.TextOffset() != 0 {
			l.push(start.NodeAfter())
			first++
		}
	}
	for i := first; i < last; i++ {
		child, err := node.Child(i)
		if err != nil {
			return err
		}
		l.push(child)
	}
	if end != nil && end.Depth == depth && end.TextOffset() != 0 {
		l.push(end.NodeBefore())
	}
	return nil
}

func (l nodeList) fragment() *Fragment {
	return NewFragment(l)
}

// replacer replaces the range between two resolved positions of the same
// document with a slice.
type replacer struct {
	from, to *ResolvedPos
	slice    *Slice
}

func replaceRange(from, to *ResolvedPos, slice *Slice) (*Node, error) {
	if slice.OpenStart > from.Depth {
		return nil, replaceErrorf("Inserted content deeper than insertion position")
	}
	if from.Depth-slice.OpenStart != to.Depth-slice.OpenEnd {
		return nil, replaceErrorf("Inconsistent open depths")
	}
	r := &replacer{from: from, to: to, slice: slice}
	return r.rebuild(0)
}

// rebuild returns the node at depth with the replacement applied. It
// descends as long as both ends of the range are inside the same child.
func (r *replacer) rebuild(depth int) (*Node, error) {
	node := r.from.Node(depth)
	index := r.from.Index(depth)
	if index == r.to.Index(depth) && depth < r.from.Depth-r.slice.OpenStart {
		inner, err := r.rebuild(depth + 1)
		if err != nil {
			return nil, err
		}
		return node.Copy(node.Content.ReplaceChild(index, inner)), nil
	}

	var content *Fragment
	var err error
	switch {
	case r.slice.Content.Size == 0:
		content, err = joinTwoWay(r.from, r.to, depth)
	case r.slice.OpenStart == 0 && r.slice.OpenEnd == 0 && r.from.Depth == depth && r.to.Depth == depth:
		// Closed slice in a single parent.
		content = node.Content.Cut(0, r.from.ParentOffset).
			Append(r.slice.Content).
			Append(node.Content.Cut(r.to.ParentOffset))
	default:
		var start, end *ResolvedPos
		if start, end, err = r.sliceBounds(); err == nil {
			content, err = joinThreeWay(r.from, start, end, r.to, depth)
		}
	}
	if err != nil {
		return nil, err
	}
	return closeNode(node, content)
}

// sliceBounds wraps the slice content in copies of the nodes above the
// insertion point, and resolves its open start and end in the result.
func (r *replacer) sliceBounds() (*ResolvedPos, *ResolvedPos, error) {
	extra := r.from.Depth - r.slice.OpenStart
	node := r.from.Node(extra).Copy(r.slice.Content)
	for d := extra - 1; d >= 0; d-- {
		node = r.from.Node(d).Copy(FragmentFrom(node))
	}
	start, err := node.resolveNoCache(r.slice.OpenStart + extra)
	if err != nil {
		return nil, nil, err
	}
	end, err := node.resolveNoCache(node.Content.Size - r.slice.OpenEnd - extra)
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func checkJoin(main, sub *Node) error {
	if !sub.Type.compatibleContent(main.Type) {
		return replaceErrorf("Cannot join %s onto %s", sub.Type.Name, main.Type.Name)
	}
	return nil
}

// joinableAt returns the node at depth before the join, when the node at
// the same depth after it can be joined onto it.
func joinableAt(before, after *ResolvedPos, depth int) (*Node, error) {
	node := before.Node(depth)
	if err := checkJoin(node, after.Node(depth)); err != nil {
		return nil, err
	}
	return node, nil
}

// closeNode copies node with the new content, which must be valid for it.
func closeNode(node *Node, content *Fragment) (*Node, error) {
	if !node.Type.ValidContent(content) {
		return nil, replaceErrorf("Invalid content for node %s", node.Type.Name)
	}
	return node.Copy(content), nil
}

// closeTwoWay rebuilds node with the content around the join of from and
// to at depth.
func closeTwoWay(node *Node, from, to *ResolvedPos, depth int) (*Node, error) {
	content, err := joinTwoWay(from, to, depth)
	if err != nil {
		return nil, err
	}
	return closeNode(node, content)
}

// joinTwoWay returns the content of the node at depth with everything
// between from and to removed, joining the open nodes on both sides.
func joinTwoWay(from, to *ResolvedPos, depth int) (*Fragment, error) {
	var list nodeList
	if err := list.pushRange(nil, from, depth); err != nil {
		return nil, err
	}
	if from.Depth > depth {
		node, err := joinableAt(from, to, depth+1)
		if err != nil {
			return nil, err
		}
		closed, err := closeTwoWay(node, from, to, depth+1)
		if err != nil {
			return nil, err
		}
		list.push(closed)
	}
	if err := list.pushRange(to, nil, depth); err != nil {
		return nil, err
	}
	return list.fragment(), nil
}

// joinThreeWay returns the content of the node at depth with the range
// between from and to replaced by the slice content between start and end.
func joinThreeWay(from, start, end, to *ResolvedPos, depth int) (*Fragment, error) {
	var openStart, openEnd *Node
	var err error
	if from.Depth > depth {
		if openStart, err = joinableAt(from, start, depth+1); err != nil {
			return nil, err
		}
	}
	if to.Depth > depth {
		if openEnd, err = joinableAt(end, to, depth+1); err != nil {
			return nil, err
		}
	}

	var list nodeList
	if err := list.pushRange(nil, from, depth); err != nil {
		return nil, err
	}
	if openStart != nil && openEnd != nil && start.Index(depth) == end.Index(depth) {
		if err := checkJoin(openStart, openEnd); err != nil {
			return nil, err
		}
		inner, err := joinThreeWay(from, start, end, to, depth+1)
		if err != nil {
			return nil, err
		}
		closed, err := closeNode(openStart, inner)
		if err != nil {
			return nil, err
		}
		list.push(closed)
	} else {
		if openStart != nil {
			closed, err := closeTwoWay(openStart, from, start, depth+1)
			if err != nil {
				return nil, err
			}
			list.push(closed)
		}
		if err := list.pushRange(start, end, depth); err != nil {
			return nil, err
		}
		if openEnd != nil {
			closed, err := closeTwoWay(openEnd, end, to, depth+1)
			if err != nil {
				return nil, err
			}
			list.push(closed)
		}
	}
	if err := list.pushRange(to, nil, depth); err != nil {
		return nil, err
	}
	return list.fragment(), nil
}
