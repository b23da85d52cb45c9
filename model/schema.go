package model

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// AttributeSpec is used to define attributes on nodes or marks.
type AttributeSpec struct {
	// The default value for this attribute, to use when no explicit value is
	// provided.
	Default interface{}
	// ParseDOM reads the attribute value from a DOM element matched by one of
	// the node's parse rules. A nil result means the default applies.
	ParseDOM func(dom *html.Node) interface{}
	// ToDOM turns the attribute value into markup attributes. Returning no
	// attributes omits the value from the output.
	ToDOM func(value interface{}) []html.Attribute
}

// NodeSpec is an object describing a node type.
type NodeSpec struct {
	// The name of the node type.
	Key string
	// The content expression for this node, as described in the schema
	// guide. When not given, the node does not allow any content.
	Content string
	// The marks that are allowed inside of this node. May be a
	// space-separated string referring to mark names or groups, "_" to
	// explicitly allow all marks, or "" to disallow marks. When not given,
	// nodes with inline content default to allowing all marks, other nodes
	// default to not allowing marks.
	Marks *string
	// The group or space-separated groups to which this node belongs, which
	// can be referred to in the content expressions for the schema.
	Group string
	// Should be set to true for inline nodes. (Implied for text nodes.)
	Inline bool
	// Can be used to indicate that this node contains code, which causes
	// some commands (and input rules) to behave differently.
	Code bool
	// The attributes that nodes of this type get.
	Attrs map[string]*AttributeSpec
	// Associates DOM parser information with this node, which can be used by
	// DOMParser.FromSchema to automatically derive a parser.
	ParseDOM []*ParseRule
	// Defines the default way a node of this type should be serialized to
	// DOM/HTML (as used by DOMSerializerFromSchema).
	ToDOM ToDOM
	// Defines the way a node of this type is exported to a Notion block.
	ToNotion ToNotionBlock
	// Defines the default way a node of this type should be serialized to a
	// string representation for debugging (e.g. in error messages).
	ToDebugString func(*Node) string
}

// MarkSpec is an object describing a mark type.
type MarkSpec struct {
	// The name of the mark type.
	Key string
	// The attributes that marks of this type get.
	Attrs map[string]*AttributeSpec
	// Whether this mark should be active when the cursor is positioned at its
	// end (or at its start when that is also the start of the parent node).
	// Defaults to true.
	Inclusive *bool
	// Determines which other marks this mark can coexist with. Should be a
	// space-separated strings naming other marks or groups of marks. When not
	// given, only marks of the same type are excluded.
	Excludes *string
	// The group or space-separated groups to which this mark belongs.
	Group string
	// Determines whether marks of this type can span multiple adjacent nodes
	// when serialized to DOM/HTML. Defaults to true.
	Spanning *bool
	// Associates DOM parser information with this mark.
	ParseDOM []*ParseRule
	// Defines the default way marks of this type should be serialized to
	// DOM/HTML.
	ToDOM ToDOM
}

// SchemaSpec is an object describing a schema, as passed to the Schema
// constructor.
type SchemaSpec struct {
	// The node types in this schema. The order in which they are provided
	// determines the order in which parse rules with the same priority are
	// tried, and the first textblock type is the default for wrapping loose
	// inline content.
	Nodes []*NodeSpec
	// The mark types that exist in this schema. The order in which they are
	// provided determines the order in which mark sets are sorted.
	Marks []*MarkSpec
	// The name of the default top-level node for the schema. Defaults to
	// "doc".
	TopNode string
}

// Schema holds the node and mark types of a document model.
type Schema struct {
	// The spec on which the schema is based.
	Spec *SchemaSpec
	// An object mapping the schema's node names to node type objects.
	Nodes map[string]*NodeType
	// A map from mark names to mark type objects.
	Marks map[string]*MarkType

	topNodeType *NodeType
}

// NewSchema constructs a schema from a schema specification.
func NewSchema(spec *SchemaSpec) (*Schema, error) {
	schema := &Schema{
		Spec:  spec,
		Nodes: make(map[string]*NodeType, len(spec.Nodes)),
		Marks: make(map[string]*MarkType, len(spec.Marks)),
	}
	if spec.TopNode == "" {
		spec.TopNode = "doc"
	}
	for _, ns := range spec.Nodes {
		if _, ok := schema.Nodes[ns.Key]; ok {
			return nil, fmt.Errorf("Duplicate node type %q", ns.Key)
		}
		schema.Nodes[ns.Key] = newNodeType(ns.Key, schema, ns)
	}
	for i, ms := range spec.Marks {
		schema.Marks[ms.Key] = newMarkType(ms.Key, i, schema, ms)
	}
	top, ok := schema.Nodes[spec.TopNode]
	if !ok {
		return nil, fmt.Errorf("Schema is missing its top node type (%q)", spec.TopNode)
	}
	schema.topNodeType = top
	if _, ok := schema.Nodes["text"]; !ok {
		return nil, errors.New("Every schema needs a 'text' type")
	}
	if len(schema.Nodes["text"].Spec.Attrs) > 0 {
		return nil, errors.New("The text node type should not have attributes")
	}

	for _, ns := range spec.Nodes {
		typ := schema.Nodes[ns.Key]
		expr, err := parseContentExpr(ns.Content, schema.Nodes)
		if err != nil {
			return nil, err
		}
		typ.contentExpr = expr
		typ.inlineContent = expr.inline()
		marks := ns.Marks
		switch {
		case marks != nil && *marks == "_":
			typ.markSet = nil
		case marks != nil:
			set, err := gatherMarks(schema, strings.Fields(*marks))
			if err != nil {
				return nil, err
			}
			typ.markSet = set
		case !typ.inlineContent:
			typ.markSet = []*MarkType{}
		}
	}
	for _, ms := range spec.Marks {
		typ := schema.Marks[ms.Key]
		if ms.Excludes == nil {
			typ.excluded = []*MarkType{typ}
			continue
		}
		if *ms.Excludes == "" {
			typ.excluded = []*MarkType{}
			continue
		}
		set, err := gatherMarks(schema, strings.Fields(*ms.Excludes))
		if err != nil {
			return nil, err
		}
		typ.excluded = set
	}
	return schema, nil
}

// TopNodeType returns the type of the default top node for this schema.
func (s *Schema) TopNodeType() *NodeType {
	return s.topNodeType
}

// NodeType returns the node type with the given name.
func (s *Schema) NodeType(name string) (*NodeType, error) {
	if typ, ok := s.Nodes[name]; ok {
		return typ, nil
	}
	return nil, fmt.Errorf("Unknown node type: %s", name)
}

// MarkType returns the mark type with the given name.
func (s *Schema) MarkType(name string) (*MarkType, error) {
	if typ, ok := s.Marks[name]; ok {
		return typ, nil
	}
	return nil, fmt.Errorf("Unknown mark type: %s", name)
}

// Node creates a node in this schema.
func (s *Schema) Node(name string, attrs map[string]interface{}, content ...*Node) (*Node, error) {
	typ, err := s.NodeType(name)
	if err != nil {
		return nil, err
	}
	return typ.Create(attrs, FragmentFromArray(content), nil)
}

// Text creates a text node in the schema. Empty text nodes are not allowed.
func (s *Schema) Text(text string, marks ...*Mark) *Node {
	typ := s.Nodes["text"]
	return NewTextNode(typ, nil, text, MarkSetFrom(marks))
}

// Mark creates a mark with the given type and attributes.
func (s *Schema) Mark(name string, attrs ...map[string]interface{}) *Mark {
	var a map[string]interface{}
	if len(attrs) > 0 {
		a = attrs[0]
	}
	return s.Marks[name].Create(a)
}

// nodeTypesInOrder returns the node types in spec order.
func (s *Schema) nodeTypesInOrder() []*NodeType {
	result := make([]*NodeType, 0, len(s.Spec.Nodes))
	for _, ns := range s.Spec.Nodes {
		result = append(result, s.Nodes[ns.Key])
	}
	return result
}

func gatherMarks(schema *Schema, names []string) ([]*MarkType, error) {
	var found []*MarkType
	for _, name := range names {
		if mark, ok := schema.Marks[name]; ok {
			found = append(found, mark)
			continue
		}
		ok := false
		for _, ms := range schema.Spec.Marks {
			mark := schema.Marks[ms.Key]
			if name == "_" || hasGroup(ms.Group, name) {
				found = append(found, mark)
				ok = true
			}
		}
		if !ok {
			return nil, fmt.Errorf("Unknown mark type: %q", name)
		}
	}
	return found, nil
}

func hasGroup(groups, name string) bool {
	for _, g := range strings.Fields(groups) {
		if g == name {
			return true
		}
	}
	return false
}

// NodeType are objects allocated once per Schema and used to tag Node
// instances. They contain information about the node type, such as its name
// and what kind of node it represents.
type NodeType struct {
	// The name the node type has in this schema.
	Name string
	// A link back to the Schema the node type belongs to.
	Schema *Schema
	// The spec that this type is based on
	Spec *NodeSpec
	// The groups this type belongs to.
	Groups []string
	// The default attributes of the node type.
	DefaultAttrs map[string]interface{}

	contentExpr   *exprType
	inlineContent bool
	markSet       []*MarkType // nil means all marks are allowed
}

func newNodeType(name string, schema *Schema, spec *NodeSpec) *NodeType {
	return &NodeType{
		Name:         name,
		Schema:       schema,
		Spec:         spec,
		Groups:       strings.Fields(spec.Group),
		DefaultAttrs: defaultAttrs(spec.Attrs),
	}
}

// IsInline is true if this is an inline type.
func (nt *NodeType) IsInline() bool {
	return nt.Spec.Inline || nt.Name == "text"
}

// IsBlock is true if this is a block type.
func (nt *NodeType) IsBlock() bool {
	return !nt.IsInline()
}

// IsText is true if this is the text node type.
func (nt *NodeType) IsText() bool {
	return nt.Name == "text"
}

// IsTextblock is true if this is a textblock type, a block that contains
// inline content.
func (nt *NodeType) IsTextblock() bool {
	return nt.IsBlock() && nt.inlineContent
}

// InlineContent is true if this node type has inline content.
func (nt *NodeType) InlineContent() bool {
	return nt.inlineContent
}

// IsLeaf is true for node types that allow no content.
func (nt *NodeType) IsLeaf() bool {
	return nt.contentExpr == nil || nt.contentExpr.empty()
}

// InGroup tells if the node type is part of the given group.
func (nt *NodeType) InGroup(group string) bool {
	for _, g := range nt.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// AllowsMarkType checks whether the given mark type is allowed in this node.
func (nt *NodeType) AllowsMarkType(mt *MarkType) bool {
	if nt.markSet == nil {
		return true
	}
	for _, m := range nt.markSet {
		if m == mt {
			return true
		}
	}
	return false
}

// AllowsMarks tests whether the given set of marks are allowed in this node.
func (nt *NodeType) AllowsMarks(marks []*Mark) bool {
	for _, m := range marks {
		if !nt.AllowsMarkType(m.Type) {
			return false
		}
	}
	return true
}

// AllowsChild tells whether the content expression of this type can refer
// to the given type at all.
func (nt *NodeType) AllowsChild(child *NodeType) bool {
	return nt.contentExpr != nil && nt.contentExpr.mentions(child)
}

// compatibleContent tells whether nodes of this type can be joined with
// nodes of the other type, which requires their content expressions to
// share at least one child type.
func (nt *NodeType) compatibleContent(other *NodeType) bool {
	if nt == other {
		return true
	}
	if nt.contentExpr == nil || other.contentExpr == nil {
		return false
	}
	for _, typ := range nt.Schema.nodeTypesInOrder() {
		if nt.contentExpr.mentions(typ) && other.contentExpr.mentions(typ) {
			return true
		}
	}
	return false
}

// ValidContent returns true if the given fragment is valid content for this
// node type.
func (nt *NodeType) ValidContent(content *Fragment) bool {
	if nt.contentExpr == nil {
		return content.ChildCount() == 0
	}
	if !nt.contentExpr.matches(content.Content) {
		return false
	}
	for _, child := range content.Content {
		if !nt.AllowsMarks(child.Marks) {
			return false
		}
	}
	return true
}

// Create a Node of this type. The given attributes are checked and
// defaulted (you can pass nil to use the type's defaults entirely, if no
// required attributes exist). content may be a Fragment or nil. Similarly
// marks may be nil to default to the empty set of marks.
func (nt *NodeType) Create(attrs map[string]interface{}, content *Fragment, marks []*Mark) (*Node, error) {
	if nt.IsText() {
		return nil, errors.New("NodeType.create can't construct text nodes")
	}
	if content == nil {
		content = EmptyFragment
	}
	if !nt.ValidContent(content) {
		return nil, fmt.Errorf("Invalid content for node %s: %s", nt.Name, content.String())
	}
	return NewNode(nt, nt.computeAttrs(attrs), content, MarkSetFrom(marks)), nil
}

// CreateUnchecked is like Create, but doesn't check the content against the
// type's content expression.
func (nt *NodeType) CreateUnchecked(attrs map[string]interface{}, content *Fragment, marks []*Mark) *Node {
	if content == nil {
		content = EmptyFragment
	}
	return NewNode(nt, nt.computeAttrs(attrs), content, MarkSetFrom(marks))
}

// CreateAndFill is like Create, but when the content is invalid and empty,
// it tries to fill the node with the first block type the content
// expression accepts.
func (nt *NodeType) CreateAndFill(args ...interface{}) (*Node, error) {
	var attrs map[string]interface{}
	content := EmptyFragment
	if len(args) > 0 {
		attrs, _ = args[0].(map[string]interface{})
	}
	if len(args) > 1 {
		if c, ok := args[1].(*Fragment); ok && c != nil {
			content = c
		}
	}
	node, err := nt.Create(attrs, content, nil)
	if err == nil || content.ChildCount() > 0 {
		return node, err
	}
	for _, child := range nt.Schema.nodeTypesInOrder() {
		if child.IsText() || !nt.AllowsChild(child) {
			continue
		}
		filler, ferr := child.CreateAndFill()
		if ferr != nil {
			continue
		}
		if node, err := nt.Create(attrs, FragmentFrom(filler), nil); err == nil {
			return node, nil
		}
	}
	return nil, err
}

func (nt *NodeType) computeAttrs(attrs map[string]interface{}) map[string]interface{} {
	if len(nt.Spec.Attrs) == 0 {
		return nil
	}
	built := make(map[string]interface{}, len(nt.Spec.Attrs))
	for name, spec := range nt.Spec.Attrs {
		value, ok := attrs[name]
		if !ok {
			value = spec.Default
		}
		built[name] = value
	}
	return built
}

func defaultAttrs(attrs map[string]*AttributeSpec) map[string]interface{} {
	if len(attrs) == 0 {
		return nil
	}
	defaults := make(map[string]interface{}, len(attrs))
	for name, spec := range attrs {
		defaults[name] = spec.Default
	}
	return defaults
}

// MarkType is like nodes, marks (which are associated with nodes to signify
// things like emphasis or being part of a link) are tagged with type
// objects, which are instantiated once per Schema.
type MarkType struct {
	// The name of the mark type.
	Name string
	// The rank determines the order of marks in a set.
	Rank int
	// The schema that this mark type instance is part of.
	Schema *Schema
	// The spec on which the type is based.
	Spec *MarkSpec

	excluded []*MarkType
}

func newMarkType(name string, rank int, schema *Schema, spec *MarkSpec) *MarkType {
	return &MarkType{Name: name, Rank: rank, Schema: schema, Spec: spec}
}

// Create a mark of this type. attrs may be nil or an object containing only
// some of the mark's attributes. The others, if they have defaults, will be
// added.
func (mt *MarkType) Create(attrs map[string]interface{}) *Mark {
	built := map[string]interface{}{}
	for name, spec := range mt.Spec.Attrs {
		value, ok := attrs[name]
		if !ok {
			value = spec.Default
		}
		built[name] = value
	}
	if len(built) == 0 {
		built = nil
	}
	return &Mark{Type: mt, Attrs: built}
}

// Excludes queries whether a given mark type is excluded by this one.
func (mt *MarkType) Excludes(other *MarkType) bool {
	for _, m := range mt.excluded {
		if m == other {
			return true
		}
	}
	return false
}

// IsInSet tests whether there is a mark of this type in the given set.
func (mt *MarkType) IsInSet(set []*Mark) *Mark {
	for _, m := range set {
		if m.Type == mt {
			return m
		}
	}
	return nil
}
