package model

import (
	"fmt"
	"strconv"
	"unicode"
)

// exprType is a parsed content expression. Content expressions are small
// regular languages over node types ("paragraph block*", "inline*",
// "(heading | paragraph){1,3}"), matched against a node's children.
type exprType struct {
	Type  string
	Exprs []*exprType
	Expr  *exprType
	Min   int
	Max   int
	Value *NodeType

	isInline *bool
}

func parseContentExpr(str string, nodeTypes map[string]*NodeType) (*exprType, error) {
	stream := newTokenStream(str, nodeTypes)
	if stream.next() == nil {
		return &exprType{Type: "seq"}, nil
	}
	expr, err := parseExpr(stream)
	if err != nil {
		return nil, err
	}
	if stream.next() != nil {
		return nil, stream.err("Unexpected trailing text")
	}
	expr.isInline = stream.inline
	return expr, nil
}

func (e *exprType) inline() bool {
	return e.isInline != nil && *e.isInline
}

func (e *exprType) empty() bool {
	return e.Type == "seq" && len(e.Exprs) == 0
}

// mentions reports whether the expression can match the given type.
func (e *exprType) mentions(typ *NodeType) bool {
	if e.Type == "name" {
		return e.Value == typ
	}
	if e.Expr != nil && e.Expr.mentions(typ) {
		return true
	}
	for _, sub := range e.Exprs {
		if sub.mentions(typ) {
			return true
		}
	}
	return false
}

// matches tells whether the whole list of nodes is accepted.
func (e *exprType) matches(nodes []*Node) bool {
	for _, end := range e.match(nodes, 0) {
		if end == len(nodes) {
			return true
		}
	}
	return false
}

// match returns every position reachable after matching the expression
// against nodes, starting at index i.
func (e *exprType) match(nodes []*Node, i int) []int {
	switch e.Type {
	case "name":
		if i < len(nodes) && nodes[i].Type == e.Value {
			return []int{i + 1}
		}
		return nil
	case "seq":
		positions := []int{i}
		for _, sub := range e.Exprs {
			positions = matchAll(sub, nodes, positions)
			if len(positions) == 0 {
				return nil
			}
		}
		return positions
	case "choice":
		var result []int
		for _, sub := range e.Exprs {
			result = union(result, sub.match(nodes, i))
		}
		return result
	case "opt":
		return union([]int{i}, e.Expr.match(nodes, i))
	case "star":
		return repeat(e.Expr, nodes, i, 0, -1)
	case "plus":
		return repeat(e.Expr, nodes, i, 1, -1)
	case "range":
		return repeat(e.Expr, nodes, i, e.Min, e.Max)
	}
	return nil
}

func matchAll(e *exprType, nodes []*Node, positions []int) []int {
	var result []int
	for _, p := range positions {
		result = union(result, e.match(nodes, p))
	}
	return result
}

// repeat matches e between min and max times (max < 0 is unbounded).
func repeat(e *exprType, nodes []*Node, i, min, max int) []int {
	var result []int
	if min == 0 {
		result = []int{i}
	}
	current := []int{i}
	seen := map[int]bool{i: true}
	for count := 1; max < 0 || count <= max; count++ {
		current = matchAll(e, nodes, current)
		if len(current) == 0 {
			break
		}
		progress := false
		for _, p := range current {
			if !seen[p] {
				seen[p] = true
				progress = true
			}
		}
		if count >= min {
			result = union(result, current)
		}
		if !progress && count >= min {
			break
		}
	}
	return result
}

func union(a, b []int) []int {
	for _, x := range b {
		found := false
		for _, y := range a {
			if x == y {
				found = true
				break
			}
		}
		if !found {
			a = append(a, x)
		}
	}
	return a
}

type tokenStream struct {
	str       string
	nodeTypes map[string]*NodeType
	inline    *bool
	pos       int
	tokens    []string
}

func newTokenStream(str string, nodeTypes map[string]*NodeType) *tokenStream {
	return &tokenStream{
		str:       str,
		nodeTypes: nodeTypes,
		tokens:    tokenize(str),
	}
}

// tokenize splits a content expression into words and single punctuation
// characters, dropping whitespace.
func tokenize(str string) []string {
	var tokens []string
	runes := []rune(str)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isWordRune(r):
			j := i
			for j < len(runes) && isWordRune(runes[j]) {
				j++
			}
			tokens = append(tokens, string(runes[i:j]))
			i = j
		default:
			tokens = append(tokens, string(r))
			i++
		}
	}
	return tokens
}

func (ts *tokenStream) next() *string {
	if ts.pos >= len(ts.tokens) {
		return nil
	}
	return &ts.tokens[ts.pos]
}

func (ts *tokenStream) eat(tok string) bool {
	if s := ts.next(); s == nil || *s != tok {
		return false
	}
	ts.pos++
	return true
}

func (ts *tokenStream) err(format string, args ...interface{}) error {
	str := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s (in content expression %q)", str, ts.str)
}

func parseExpr(stream *tokenStream) (*exprType, error) {
	exprs := []*exprType{}
	for {
		seq, err := parseExprSeq(stream)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, seq)
		if !stream.eat("|") {
			break
		}
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &exprType{Type: "choice", Exprs: exprs}, nil
}

func parseExprSeq(stream *tokenStream) (*exprType, error) {
	exprs := []*exprType{}
	for {
		sub, err := parseExprSubscript(stream)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, sub)
		s := stream.next()
		if s == nil || *s == ")" || *s == "|" {
			break
		}
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &exprType{Type: "seq", Exprs: exprs}, nil
}

func parseExprSubscript(stream *tokenStream) (*exprType, error) {
	expr, err := parseExprAtom(stream)
	if err != nil {
		return nil, err
	}
	for {
		if stream.eat("+") {
			expr = &exprType{Type: "plus", Expr: expr}
		} else if stream.eat("*") {
			expr = &exprType{Type: "star", Expr: expr}
		} else if stream.eat("?") {
			expr = &exprType{Type: "opt", Expr: expr}
		} else if stream.eat("{") {
			expr, err = parseExprRange(stream, expr)
			if err != nil {
				return nil, err
			}
		} else {
			break
		}
	}
	return expr, nil
}

func parseNum(stream *tokenStream) (int, error) {
	s := stream.next()
	if s == nil {
		return 0, stream.err("Expected number, got nil")
	}
	result, err := strconv.Atoi(*s)
	if err != nil {
		return 0, stream.err("Expected number, got %q", *s)
	}
	stream.pos++
	return result, nil
}

func parseExprRange(stream *tokenStream, expr *exprType) (*exprType, error) {
	min, err := parseNum(stream)
	if err != nil {
		return nil, err
	}
	max := min
	if stream.eat(",") {
		if s := stream.next(); s != nil && *s != "}" {
			max, err = parseNum(stream)
			if err != nil {
				return nil, err
			}
		} else {
			max = -1
		}
	}
	if !stream.eat("}") {
		return nil, stream.err("Unclosed braced range")
	}
	return &exprType{Type: "range", Min: min, Max: max, Expr: expr}, nil
}

func resolveName(stream *tokenStream, name string) ([]*NodeType, error) {
	types := stream.nodeTypes
	if typ, ok := types[name]; ok {
		return []*NodeType{typ}, nil
	}
	var result []*NodeType
	for _, typ := range types {
		if typ.InGroup(name) {
			result = append(result, typ)
		}
	}
	if len(result) == 0 {
		return nil, stream.err("No node type or group %q found", name)
	}
	sortNodeTypes(result)
	return result, nil
}

// sortNodeTypes orders group members by their position in the schema spec
// so that resolution does not depend on map iteration.
func sortNodeTypes(types []*NodeType) {
	order := func(t *NodeType) int {
		for i, ns := range t.Schema.Spec.Nodes {
			if ns.Key == t.Name {
				return i
			}
		}
		return len(t.Schema.Spec.Nodes)
	}
	for i := 1; i < len(types); i++ {
		for j := i; j > 0 && order(types[j]) < order(types[j-1]); j-- {
			types[j], types[j-1] = types[j-1], types[j]
		}
	}
}

func isWordRune(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}

func parseExprAtom(stream *tokenStream) (*exprType, error) {
	if stream.eat("(") {
		expr, err := parseExpr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.eat(")") {
			return nil, stream.err("Missing closing paren")
		}
		return expr, nil
	}

	s := stream.next()
	if s == nil {
		return nil, stream.err("Unexpected end of expression")
	}
	if !isWordRune([]rune(*s)[0]) {
		return nil, stream.err("Unexpected token %q", *s)
	}
	types, err := resolveName(stream, *s)
	if err != nil {
		return nil, err
	}
	var exprs []*exprType
	for _, typ := range types {
		inline := typ.IsInline()
		if stream.inline == nil {
			stream.inline = &inline
		} else if *stream.inline != inline {
			return nil, stream.err("Mixing inline and block content")
		}
		exprs = append(exprs, &exprType{Type: "name", Value: typ})
	}
	stream.pos++
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &exprType{Type: "choice", Exprs: exprs}, nil
}
