package tools

import (
	"strconv"
	"strings"
	"unicode"
)

// Aggregate kinds usable in a column expression.
const (
	AggMin   = "min"
	AggMax   = "max"
	AggAvg   = "av"
	AggCount = "cnt"
	AggTotal = "tot"
	AggFirst = "first"
	AggLast  = "last"
	AggSD    = "sd"
	AggKey   = "k"
)

var aggKinds = map[string]bool{
	AggMin: true, AggMax: true, AggAvg: true, AggCount: true, AggTotal: true,
	AggFirst: true, AggLast: true, AggSD: true, AggKey: true,
}

// colRef is a "<column>:<kind>" term. Negative columns count from the end
// of the line.
type colRef struct {
	column int
	kind   string
}

type node interface {
	eval(lookup func(colRef) float64) (float64, error)
}

type numberNode float64

func (n numberNode) eval(func(colRef) float64) (float64, error) { return float64(n), nil }

type refNode colRef

func (n refNode) eval(lookup func(colRef) float64) (float64, error) { return lookup(colRef(n)), nil }

type negNode struct{ x node }

func (n negNode) eval(lookup func(colRef) float64) (float64, error) {
	v, err := n.x.eval(lookup)
	return -v, err
}

type binaryNode struct {
	op   byte
	l, r node
}

func (n binaryNode) eval(lookup func(colRef) float64) (float64, error) {
	l, err := n.l.eval(lookup)
	if err != nil {
		return 0, err
	}
	r, err := n.r.eval(lookup)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	}
	if r == 0 {
		return 0, errDivByZero
	}
	return l / r, nil
}

var errDivByZero = &DataError{Msg: "division by zero"}

// columnExpr is one compiled output column of aggregate.
type columnExpr struct {
	text string
	root node
	refs []colRef
}

// isKey reports whether the expression names a key column. Key columns
// group the output rather than producing a value.
func (e *columnExpr) isKey() bool {
	for _, r := range e.refs {
		if r.kind == AggKey {
			return true
		}
	}
	return false
}

type token struct {
	kind byte // 'n' number, 'r' column ref, or the operator itself
	num  float64
	ref  colRef
}

// parseColumnExpr compiles expressions like "1:max", "1:tot - 3:tot" or
// "2:av - -1:av". A minus sign directly before a column number makes it
// negative; with a space between it is subtraction or negation.
func parseColumnExpr(text string) (*columnExpr, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &exprParser{toks: toks}
	root, err := p.sum()
	if err != nil || p.pos != len(toks) {
		return nil, invalidf("Invalid expression: %s", text)
	}
	e := &columnExpr{text: text, root: root}
	for _, t := range toks {
		if t.kind == 'r' {
			e.refs = append(e.refs, t.ref)
		}
	}
	if len(e.refs) == 0 {
		return nil, invalidf("Invalid expression: %s", text)
	}
	return e, nil
}

func tokenize(text string) ([]token, error) {
	var toks []token
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case isDigit(c) || c == '.' || c == '-' && i+1 < len(text) && isDigit(text[i+1]):
			j := i
			if c == '-' {
				j++
			}
			for j < len(text) && (isDigit(text[j]) || text[j] == '.') {
				j++
			}
			if j < len(text) && text[j] == ':' {
				k := j + 1
				for k < len(text) && unicode.IsLetter(rune(text[k])) {
					k++
				}
				column, err := strconv.Atoi(text[i:j])
				kind := text[j+1 : k]
				if err != nil || !aggKinds[kind] {
					return nil, invalidf("Invalid expression: %s", text)
				}
				toks = append(toks, token{kind: 'r', ref: colRef{column: column, kind: kind}})
				i = k
				continue
			}
			if c == '-' {
				toks = append(toks, token{kind: '-'})
				i++
				continue
			}
			num, err := strconv.ParseFloat(text[i:j], 64)
			if err != nil {
				return nil, invalidf("Invalid expression: %s", text)
			}
			toks = append(toks, token{kind: 'n', num: num})
			i = j
		case strings.IndexByte("+-*/()", c) >= 0:
			toks = append(toks, token{kind: c})
			i++
		default:
			return nil, invalidf("Invalid expression: %s", text)
		}
	}
	return toks, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

type exprParser struct {
	toks []token
	pos  int
}

func (p *exprParser) peek() byte {
	if p.pos < len(p.toks) {
		return p.toks[p.pos].kind
	}
	return 0
}

func (p *exprParser) sum() (node, error) {
	l, err := p.product()
	if err != nil {
		return nil, err
	}
	for op := p.peek(); op == '+' || op == '-'; op = p.peek() {
		p.pos++
		r, err := p.product()
		if err != nil {
			return nil, err
		}
		l = binaryNode{op: op, l: l, r: r}
	}
	return l, nil
}

func (p *exprParser) product() (node, error) {
	l, err := p.unary()
	if err != nil {
		return nil, err
	}
	for op := p.peek(); op == '*' || op == '/'; op = p.peek() {
		p.pos++
		r, err := p.unary()
		if err != nil {
			return nil, err
		}
		l = binaryNode{op: op, l: l, r: r}
	}
	return l, nil
}

func (p *exprParser) unary() (node, error) {
	if p.peek() == '-' {
		p.pos++
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return negNode{x}, nil
	}
	return p.primary()
}

func (p *exprParser) primary() (node, error) {
	if p.pos >= len(p.toks) {
		return nil, errBadExpr
	}
	t := p.toks[p.pos]
	p.pos++
	switch t.kind {
	case 'n':
		return numberNode(t.num), nil
	case 'r':
		return refNode(t.ref), nil
	case '(':
		x, err := p.sum()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, errBadExpr
		}
		p.pos++
		return x, nil
	}
	return nil, errBadExpr
}

var errBadExpr = invalidf("malformed expression")
