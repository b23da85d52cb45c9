package model

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Node represents a node in the tree that makes up a document. So a document
// is an instance of Node, with children that are also instances of Node.
//
// Nodes are persistent data structures. Instead of changing them, you create
// new ones with the content you want. Old ones keep pointing at the old
// document shape. This is made cheaper by sharing structure between the old
// and new data as much as possible, which a tree shape like this (without
// back pointers) makes easy.
//
// Do not directly mutate the properties of a Node object.
type Node struct {
	// The type of node that this is.
	Type *NodeType
	// An object mapping attribute names to values. The kind of attributes
	// allowed and required are determined by the node type.
	Attrs map[string]interface{}
	// A container holding the node's children.
	Content *Fragment
	// For text nodes, this contains the node's text content.
	Text *string
	// The marks (things like whether it is emphasized or part of a link)
	// applied to this node.
	Marks []*Mark
}

// NewNode is the low-level constructor of nodes. Prefer NodeType.Create,
// which checks the content.
func NewNode(typ *NodeType, attrs map[string]interface{}, content *Fragment, marks []*Mark) *Node {
	if content == nil {
		content = EmptyFragment
	}
	if marks == nil {
		marks = NoMarks
	}
	return &Node{Type: typ, Attrs: attrs, Content: content, Marks: marks}
}

// NewTextNode creates a text node. Empty text is not allowed.
func NewTextNode(typ *NodeType, attrs map[string]interface{}, text string, marks []*Mark) *Node {
	if marks == nil {
		marks = NoMarks
	}
	return &Node{Type: typ, Attrs: attrs, Text: &text, Content: EmptyFragment, Marks: marks}
}

// NodeSize is the size of this node, as defined by the integer-based
// indexing scheme. For text nodes, this is the amount of characters. For
// other leaf nodes, it is one. For non-leaf nodes, it is the size of the
// content plus two (the start and end token).
func (n *Node) NodeSize() int {
	if n.IsText() {
		return len(*n.Text)
	}
	if n.IsLeaf() {
		return 1
	}
	return 2 + n.Content.Size
}

// ChildCount is the number of children that the node has.
func (n *Node) ChildCount() int {
	return n.Content.ChildCount()
}

// Child gets the child node at the given index. Returns an error when the
// index is out of range.
func (n *Node) Child(index int) (*Node, error) {
	return n.Content.Child(index)
}

// MaybeChild gets the child node at the given index, if it exists.
func (n *Node) MaybeChild(index int) *Node {
	return n.Content.MaybeChild(index)
}

// FirstChild returns this node's first child, or nil if there are no
// children.
func (n *Node) FirstChild() *Node {
	return n.Content.FirstChild()
}

// LastChild returns this node's last child, or nil if there are no children.
func (n *Node) LastChild() *Node {
	return n.Content.LastChild()
}

// ForEach calls fn for every child node, passing the node, its offset into
// this parent node, and its index.
func (n *Node) ForEach(fn func(node *Node, offset, index int)) {
	n.Content.ForEach(fn)
}

// NodesBetween invokes a callback for all descendant nodes recursively
// between the given two positions that are relative to start of this node's
// content. The callback is invoked with the node, its parent-relative
// position, its parent node, and its child index. When the callback returns
// false for a given node, that node's children will not be recursed over.
// The last parameter can be used to specify a starting position to count
// from.
func (n *Node) NodesBetween(from, to int, fn NBCallback, startPos ...int) {
	s := 0
	if len(startPos) > 0 {
		s = startPos[0]
	}
	n.Content.NodesBetween(from, to, fn, s, n)
}

// Descendants calls the given callback for every descendant node. Doesn't
// descend into a node when the callback returns false.
func (n *Node) Descendants(fn NBCallback) {
	n.NodesBetween(0, n.Content.Size, fn)
}

// TextContent concatenates all the text nodes found in this node and its
// children.
func (n *Node) TextContent() string {
	if n.IsText() {
		return *n.Text
	}
	return n.TextBetween(0, n.Content.Size, "")
}

// TextBetween gets all text between positions from and to. When
// blockSeparator is given, it will be inserted whenever a new block node is
// started. When leafText is given, it'll be inserted for every non-text leaf
// node encountered.
func (n *Node) TextBetween(from, to int, args ...string) string {
	if n.IsText() {
		return (*n.Text)[from:to]
	}
	return n.Content.TextBetween(from, to, args...)
}

// Eq tests whether two nodes represent the same piece of document.
func (n *Node) Eq(other *Node) bool {
	if n == other {
		return true
	}
	if n.IsText() != other.IsText() {
		return false
	}
	if n.IsText() && *n.Text != *other.Text {
		return false
	}
	return n.SameMarkup(other) && n.Content.Eq(other.Content)
}

// SameMarkup compares the markup (type, attributes, and marks) of this node
// to those of another. Returns true if both have the same markup.
func (n *Node) SameMarkup(other *Node) bool {
	return n.HasMarkup(other.Type, other.Attrs, other.Marks)
}

// HasMarkup checks whether this node's markup correspond to the given type,
// attributes, and marks.
func (n *Node) HasMarkup(typ *NodeType, attrs map[string]interface{}, marks ...[]*Mark) bool {
	if n.Type != typ {
		return false
	}
	if attrs == nil {
		attrs = typ.DefaultAttrs
	}
	if !attrsEqual(n.Attrs, attrs) {
		return false
	}
	set := NoMarks
	if len(marks) > 0 && marks[0] != nil {
		set = marks[0]
	}
	return SameMarkSet(n.Marks, set)
}

// Copy creates a new node with the same markup as this node, containing the
// given content (or empty, if no content is given).
func (n *Node) Copy(content ...*Fragment) *Node {
	c := EmptyFragment
	if len(content) > 0 && content[0] != nil {
		c = content[0]
	}
	if c == n.Content {
		return n
	}
	return NewNode(n.Type, n.Attrs, c, n.Marks)
}

// Mark creates a copy of this node, with the given set of marks instead of
// the node's own marks.
func (n *Node) Mark(marks []*Mark) *Node {
	if SameMarkSet(n.Marks, marks) {
		return n
	}
	if n.IsText() {
		return NewTextNode(n.Type, n.Attrs, *n.Text, marks)
	}
	return NewNode(n.Type, n.Attrs, n.Content, marks)
}

// Cut creates a copy of this node with only the content between the given
// positions. If to is not given, it defaults to the end of the node.
func (n *Node) Cut(from int, to ...int) *Node {
	if n.IsText() {
		t := len(*n.Text)
		if len(to) > 0 {
			t = to[0]
		}
		if from == 0 && t == len(*n.Text) {
			return n
		}
		return n.WithText((*n.Text)[from:t])
	}
	t := n.Content.Size
	if len(to) > 0 {
		t = to[0]
	}
	if from == 0 && t == n.Content.Size {
		return n
	}
	return n.Copy(n.Content.Cut(from, t))
}

// Slice cuts out the part of the document between the given positions, and
// returns it as a Slice object.
func (n *Node) Slice(from int, to ...int) (*Slice, error) {
	t := n.Content.Size
	if len(to) > 0 {
		t = to[0]
	}
	if from == t {
		return EmptySlice, nil
	}
	rfrom, err := n.Resolve(from)
	if err != nil {
		return nil, err
	}
	rto, err := n.Resolve(t)
	if err != nil {
		return nil, err
	}
	depth := rfrom.SharedDepth(t)
	start := rfrom.Start(depth)
	node := rfrom.Node(depth)
	content := node.Content.Cut(rfrom.Pos-start, rto.Pos-start)
	return NewSlice(content, rfrom.Depth-depth, rto.Depth-depth), nil
}

// Replace replaces the part of the document between the given positions
// with the given slice. The slice must 'fit', meaning its open sides must be
// able to connect to the surrounding content, and its content nodes must be
// valid children for the node they are placed into. If any of this is
// violated, an error of type ReplaceError is returned.
func (n *Node) Replace(from, to int, slice *Slice) (*Node, error) {
	rfrom, err := n.Resolve(from)
	if err != nil {
		return nil, err
	}
	rto, err := n.Resolve(to)
	if err != nil {
		return nil, err
	}
	return replaceRange(rfrom, rto, slice)
}

// NodeAt finds the node directly after the given position, or nil when the
// position is out of range.
func (n *Node) NodeAt(pos int) *Node {
	node := n
	for {
		index, offset, err := node.Content.findIndex(pos)
		if err != nil {
			return nil
		}
		node = node.MaybeChild(index)
		if node == nil {
			return nil
		}
		if offset == pos || node.IsText() {
			return node
		}
		pos -= offset + 1
	}
}

// Resolve resolves the given position in the document, returning an object
// with information about its context.
func (n *Node) Resolve(pos int) (*ResolvedPos, error) {
	return resolvePosCached(n, pos)
}

func (n *Node) resolveNoCache(pos int) (*ResolvedPos, error) {
	return resolvePos(n, pos)
}

// CanReplace tests whether replacing the range between from and to (by
// child index) with the given replacement fragment (which defaults to the
// empty fragment) would leave the node's content valid.
func (n *Node) CanReplace(from, to int, replacement ...*Fragment) bool {
	r := EmptyFragment
	if len(replacement) > 0 && replacement[0] != nil {
		r = replacement[0]
	}
	content := make([]*Node, 0, n.ChildCount()+r.ChildCount())
	content = append(content, n.Content.Content[:from]...)
	content = append(content, r.Content...)
	content = append(content, n.Content.Content[to:]...)
	return n.Type.ValidContent(NewFragment(content))
}

// Check verifies that this node and all its descendants conform to the
// schema, returning an error if they do not.
func (n *Node) Check() error {
	if !n.Type.ValidContent(n.Content) {
		return fmt.Errorf("Invalid content for node %s: %s", n.Type.Name, n.Content.String())
	}
	for _, child := range n.Content.Content {
		if err := child.Check(); err != nil {
			return err
		}
	}
	return nil
}

// IsBlock is true when this is a block (non-inline node).
func (n *Node) IsBlock() bool {
	return n.Type.IsBlock()
}

// IsTextblock is true when this is a textblock node, a block node with
// inline content.
func (n *Node) IsTextblock() bool {
	return n.Type.IsTextblock()
}

// InlineContent is true when this node allows inline content.
func (n *Node) InlineContent() bool {
	return n.Type.InlineContent()
}

// IsInline is true when this is an inline node (a text node or a node that
// can appear among text).
func (n *Node) IsInline() bool {
	return n.Type.IsInline()
}

// IsText is true when this is a text node.
func (n *Node) IsText() bool {
	return n.Text != nil
}

// IsLeaf is true when this is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.Type.IsLeaf()
}

// WithText returns a text node with the same markup and the given text.
func (n *Node) WithText(text string) *Node {
	if text == *n.Text {
		return n
	}
	return NewTextNode(n.Type, n.Attrs, text, n.Marks)
}

// Attr returns the value of the attribute with the given name, falling back
// to the type's default.
func (n *Node) Attr(name string) interface{} {
	if v, ok := n.Attrs[name]; ok {
		return v
	}
	return n.Type.DefaultAttrs[name]
}

// String returns a string representation of this node for debugging
// purposes.
func (n *Node) String() string {
	if n.Type.Spec.ToDebugString != nil {
		return n.Type.Spec.ToDebugString(n)
	}
	name := n.Type.Name
	if n.IsText() {
		name = fmt.Sprintf("%q", *n.Text)
	} else if n.Content.Size > 0 {
		name += fmt.Sprintf("(%s)", n.Content.toStringInner())
	}
	return wrapMarks(n.Marks, name)
}

// AttrsString formats the attributes in key order, as used in debug strings.
func (n *Node) AttrsString() string {
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, n.Attrs[k])
	}
	return strings.Join(parts, " ")
}

func wrapMarks(marks []*Mark, str string) string {
	for i := len(marks) - 1; i >= 0; i-- {
		str = fmt.Sprintf("%s(%s)", marks[i].Type.Name, str)
	}
	return str
}

// attrsEqual compares two attribute maps, treating a nil map as an empty
// one.
func attrsEqual(a, b map[string]interface{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !reflect.DeepEqual(va, vb) {
			return false
		}
	}
	return true
}
