package model

import (
	"errors"
	"fmt"
	"math"
)

// ToJSON returns a JSON-serializable representation of this node.
func (n *Node) ToJSON() map[string]interface{} {
	obj := map[string]interface{}{"type": n.Type.Name}
	if len(n.Attrs) > 0 {
		obj["attrs"] = n.Attrs
	}
	if n.Content.Size > 0 {
		obj["content"] = n.Content.ToJSON()
	}
	if len(n.Marks) > 0 {
		marks := make([]interface{}, len(n.Marks))
		for i, m := range n.Marks {
			marks[i] = m.ToJSON()
		}
		obj["marks"] = marks
	}
	if n.IsText() {
		obj["text"] = *n.Text
	}
	return obj
}

// ToJSON returns a JSON-serializable representation of this fragment.
func (f *Fragment) ToJSON() []interface{} {
	if len(f.Content) == 0 {
		return nil
	}
	result := make([]interface{}, len(f.Content))
	for i, child := range f.Content {
		result[i] = child.ToJSON()
	}
	return result
}

// ToJSON converts this mark to a JSON-serializable representation.
func (m *Mark) ToJSON() map[string]interface{} {
	obj := map[string]interface{}{"type": m.Type.Name}
	if len(m.Attrs) > 0 {
		obj["attrs"] = m.Attrs
	}
	return obj
}

// ToJSON converts a slice to a JSON-serializable representation.
func (s *Slice) ToJSON() interface{} {
	if s.Content.Size == 0 {
		return nil
	}
	obj := map[string]interface{}{
		"content": s.Content.ToJSON(),
	}
	if s.OpenStart > 0 {
		obj["openStart"] = s.OpenStart
	}
	if s.OpenEnd > 0 {
		obj["openEnd"] = s.OpenEnd
	}
	return obj
}

// NodeFromJSON deserializes a node from its JSON representation, as decoded
// by encoding/json into a map.
func NodeFromJSON(schema *Schema, raw interface{}) (*Node, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.New("Invalid input for NodeFromJSON")
	}
	var marks []*Mark
	if rawMarks, ok := obj["marks"].([]interface{}); ok {
		for _, rm := range rawMarks {
			m, err := MarkFromJSON(schema, rm)
			if err != nil {
				return nil, err
			}
			marks = append(marks, m)
		}
	}
	typeName, _ := obj["type"].(string)
	if typeName == "text" {
		text, ok := obj["text"].(string)
		if !ok || text == "" {
			return nil, errors.New("Invalid text node in JSON")
		}
		return schema.Text(text, marks...), nil
	}
	typ, err := schema.NodeType(typeName)
	if err != nil {
		return nil, err
	}
	content, err := FragmentFromJSON(schema, obj["content"])
	if err != nil {
		return nil, err
	}
	attrs, _ := obj["attrs"].(map[string]interface{})
	return typ.Create(normalizeJSONAttrs(attrs), content, marks)
}

// FragmentFromJSON deserializes a fragment from its JSON representation.
func FragmentFromJSON(schema *Schema, raw interface{}) (*Fragment, error) {
	if raw == nil {
		return EmptyFragment, nil
	}
	array, ok := raw.([]interface{})
	if !ok {
		return nil, errors.New("Invalid input for FragmentFromJSON")
	}
	nodes := make([]*Node, len(array))
	for i, item := range array {
		node, err := NodeFromJSON(schema, item)
		if err != nil {
			return nil, err
		}
		nodes[i] = node
	}
	return FragmentFromArray(nodes), nil
}

// MarkFromJSON deserializes a mark from its JSON representation.
func MarkFromJSON(schema *Schema, raw interface{}) (*Mark, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.New("Invalid input for MarkFromJSON")
	}
	name, _ := obj["type"].(string)
	typ, err := schema.MarkType(name)
	if err != nil {
		return nil, fmt.Errorf("There is no mark type %s in this schema", name)
	}
	attrs, _ := obj["attrs"].(map[string]interface{})
	return typ.Create(normalizeJSONAttrs(attrs)), nil
}

// SliceFromJSON deserializes a slice from its JSON representation.
func SliceFromJSON(schema *Schema, raw interface{}) (*Slice, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return EmptySlice, nil
	}
	fragment, err := FragmentFromJSON(schema, obj["content"])
	if err != nil {
		return nil, err
	}
	return NewSlice(fragment, jsonInt(obj["openStart"]), jsonInt(obj["openEnd"])), nil
}

func jsonInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

// normalizeJSONAttrs turns integral JSON numbers back into ints, so that
// attributes survive a round trip unchanged.
func normalizeJSONAttrs(attrs map[string]interface{}) map[string]interface{} {
	if attrs == nil {
		return nil
	}
	result := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		if f, ok := v.(float64); ok && f == math.Trunc(f) && math.Abs(f) < math.MaxInt32 {
			v = int(f)
		}
		result[k] = v
	}
	return result
}
