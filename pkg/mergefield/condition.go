package mergefield

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Conditions of #if markers use a small closed grammar:
//
//	$ref, "string", 'string', 12, 1.5, true, false, null
//	!x  not x  x && y  x and y  x || y  x or y
//	==  !=  <  <=  >  >=  ( )
//
// References are looked up in the context before parsing and the expression
// sees nothing else.

var conditionRefRegex = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z0-9_]+)*)`)

// EvaluateCondition evaluates src against ctx.
func EvaluateCondition(src string, ctx *Context) (bool, error) {
	code, scope := bindReferences(src, ctx)
	node, err := parseCondition(code)
	if err != nil {
		return false, NewEvaluationError(src, err)
	}
	v, err := node.eval(scope)
	if err != nil {
		return false, NewEvaluationError(src, err)
	}
	return isTruthy(v), nil
}

// bindReferences replaces each $path with a private name bound to its value.
func bindReferences(src string, ctx *Context) (string, map[string]interface{}) {
	scope := make(map[string]interface{})
	n := 0
	code := conditionRefRegex.ReplaceAllStringFunc(src, func(ref string) string {
		name := fmt.Sprintf("var%d", n)
		n++
		scope[name] = ctx.Resolve(ref[1:])
		return name
	})
	return code, scope
}

type condTokenType int

const (
	condIdent condTokenType = iota
	condNumber
	condString
	condOperator
	condLeftParen
	condRightParen
	condEOF
)

type condToken struct {
	Type  condTokenType
	Value string
	Pos   int
}

var (
	condIdentRegex  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)
	condNumberRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?`)
	condOperators   = []string{"&&", "||", "==", "!=", "<=", ">=", "<", ">", "!"}
)

func tokenizeCondition(expr string) ([]condToken, error) {
	var tokens []condToken
	pos := 0

	for pos < len(expr) {
		c := expr[pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			pos++
			continue
		}
		remaining := expr[pos:]

		if match := condIdentRegex.FindString(remaining); match != "" {
			tokens = append(tokens, condToken{Type: condIdent, Value: match, Pos: pos})
			pos += len(match)
			continue
		}

		if match := condNumberRegex.FindString(remaining); match != "" {
			tokens = append(tokens, condToken{Type: condNumber, Value: match, Pos: pos})
			pos += len(match)
			continue
		}

		if c == '"' || c == '\'' {
			end := strings.IndexByte(remaining[1:], c)
			if end < 0 {
				return nil, fmt.Errorf("unterminated string at position %d", pos)
			}
			tokens = append(tokens, condToken{Type: condString, Value: remaining[1 : end+1], Pos: pos})
			pos += end + 2
			continue
		}

		if c == '(' || c == ')' {
			tt := condLeftParen
			if c == ')' {
				tt = condRightParen
			}
			tokens = append(tokens, condToken{Type: tt, Value: string(c), Pos: pos})
			pos++
			continue
		}

		matched := false
		for _, op := range condOperators {
			if strings.HasPrefix(remaining, op) {
				tokens = append(tokens, condToken{Type: condOperator, Value: op, Pos: pos})
				pos += len(op)
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("unexpected character '%c' at position %d", c, pos)
		}
	}

	return append(tokens, condToken{Type: condEOF, Pos: pos}), nil
}

type condNode interface {
	eval(scope map[string]interface{}) (interface{}, error)
}

type condLiteral struct{ Value interface{} }

type condName struct{ Name string }

type condUnary struct {
	Operand condNode
}

type condBinary struct {
	Left     condNode
	Operator string
	Right    condNode
}

func (n *condLiteral) eval(map[string]interface{}) (interface{}, error) {
	return n.Value, nil
}

func (n *condName) eval(scope map[string]interface{}) (interface{}, error) {
	v, ok := scope[n.Name]
	if !ok {
		return nil, fmt.Errorf("unknown name %q (references start with $)", n.Name)
	}
	return v, nil
}

func (n *condUnary) eval(scope map[string]interface{}) (interface{}, error) {
	v, err := n.Operand.eval(scope)
	if err != nil {
		return nil, err
	}
	return !isTruthy(v), nil
}

func (n *condBinary) eval(scope map[string]interface{}) (interface{}, error) {
	left, err := n.Left.eval(scope)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case "&&":
		if !isTruthy(left) {
			return false, nil
		}
		right, err := n.Right.eval(scope)
		if err != nil {
			return nil, err
		}
		return isTruthy(right), nil
	case "||":
		if isTruthy(left) {
			return true, nil
		}
		right, err := n.Right.eval(scope)
		if err != nil {
			return nil, err
		}
		return isTruthy(right), nil
	}

	right, err := n.Right.eval(scope)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case "==":
		return evaluateEquals(left, right), nil
	case "!=":
		return !evaluateEquals(left, right), nil
	}
	cmp, err := compareOrdered(left, right)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	}
	return nil, fmt.Errorf("unknown operator %s", n.Operator)
}

func evaluateEquals(left, right interface{}) bool {
	if left == nil || right == nil {
		return left == nil && right == nil
	}
	if l, ok := toFloat64(left); ok {
		if r, ok := toFloat64(right); ok {
			return l == r
		}
	}
	return reflect.DeepEqual(left, right)
}

func compareOrdered(left, right interface{}) (int, error) {
	if l, ok := toFloat64(left); ok {
		if r, ok := toFloat64(right); ok {
			switch {
			case l < r:
				return -1, nil
			case l > r:
				return 1, nil
			}
			return 0, nil
		}
	}
	if l, ok := left.(string); ok {
		if r, ok := right.(string); ok {
			return strings.Compare(l, r), nil
		}
	}
	return 0, fmt.Errorf("cannot compare %T and %T", left, right)
}

type conditionParser struct {
	tokens []condToken
	pos    int
}

func parseCondition(expr string) (condNode, error) {
	tokens, err := tokenizeCondition(expr)
	if err != nil {
		return nil, err
	}
	p := &conditionParser{tokens: tokens}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.Type != condEOF {
		return nil, fmt.Errorf("unexpected %q at position %d", tok.Value, tok.Pos)
	}
	return node, nil
}

func (p *conditionParser) current() condToken {
	if p.pos >= len(p.tokens) {
		return condToken{Type: condEOF}
	}
	return p.tokens[p.pos]
}

func (p *conditionParser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

// isOp reports whether the current token is one of ops. Keyword spellings
// (and, or, not) count as their symbolic operator.
func (p *conditionParser) isOp(ops ...string) (string, bool) {
	tok := p.current()
	value := tok.Value
	switch {
	case tok.Type == condIdent && value == "and":
		value = "&&"
	case tok.Type == condIdent && value == "or":
		value = "||"
	case tok.Type == condIdent && value == "not":
		value = "!"
	case tok.Type != condOperator:
		return "", false
	}
	for _, op := range ops {
		if op == value {
			return op, true
		}
	}
	return "", false
}

func (p *conditionParser) parseOr() (condNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.isOp("||")
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &condBinary{Left: left, Operator: op, Right: right}
	}
}

func (p *conditionParser) parseAnd() (condNode, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.isOp("&&")
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &condBinary{Left: left, Operator: op, Right: right}
	}
}

func (p *conditionParser) parseNot() (condNode, error) {
	if _, ok := p.isOp("!"); ok {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &condUnary{Operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *conditionParser) parseComparison() (condNode, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if op, ok := p.isOp("==", "!=", "<", "<=", ">", ">="); ok {
		p.advance()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &condBinary{Left: left, Operator: op, Right: right}, nil
	}
	return left, nil
}

func (p *conditionParser) parsePrimary() (condNode, error) {
	tok := p.current()

	switch tok.Type {
	case condNumber:
		p.advance()
		if i, err := strconv.Atoi(tok.Value); err == nil {
			return &condLiteral{Value: i}, nil
		}
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number: %s", tok.Value)
		}
		return &condLiteral{Value: f}, nil

	case condString:
		p.advance()
		return &condLiteral{Value: tok.Value}, nil

	case condIdent:
		switch tok.Value {
		case "true", "True":
			p.advance()
			return &condLiteral{Value: true}, nil
		case "false", "False":
			p.advance()
			return &condLiteral{Value: false}, nil
		case "null", "None":
			p.advance()
			return &condLiteral{Value: nil}, nil
		case "and", "or", "not":
			return nil, fmt.Errorf("unexpected %q at position %d", tok.Value, tok.Pos)
		}
		p.advance()
		return &condName{Name: tok.Value}, nil

	case condLeftParen:
		p.advance()
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.current().Type != condRightParen {
			return nil, fmt.Errorf("expected ')' at position %d", p.current().Pos)
		}
		p.advance()
		return node, nil
	}

	if tok.Type == condEOF {
		return nil, fmt.Errorf("unexpected end of expression")
	}
	return nil, fmt.Errorf("unexpected %q at position %d", tok.Value, tok.Pos)
}
