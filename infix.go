package rpn

import "io"

// InfixHandler is implemented by nodes that take over infix parsing when they
// are read, instead of being emitted or pushed onto the operator stack.
type InfixHandler interface {
	InfixParse(p *InfixParser, tok Token) error
}

// InfixParser converts infix notation to evaluation order with the
// shunting-yard algorithm.
type InfixParser struct {
	scan *lexer
	ctx  *Context
	out  *Expression
	// stack holds operators, functions, and brackets not yet emitted.
	stack []entry
	// start is the depth of out when parsing began.
	start int
	// expect is set when the next token must begin an operand.
	expect bool
	// fn is set when the previous token was a function name.
	fn bool
	// open is set when the previous token was an open bracket.
	open bool
}

type entry struct {
	node Node
	tok  Token
	// call is set on a bracket that encloses a function's argument list.
	call bool
	// mark is the output depth when the bracket or its last separator was
	// read.
	mark int
	// args is the number of separators read in the bracket.
	args int
}

func bracketNodes(s []string, open bool) []*BracketNode {
	r := make([]*BracketNode, len(s))
	for i, t := range s {
		r[i] = &BracketNode{text: t, kind: i, open: open}
	}
	return r
}

var (
	openNodes  = bracketNodes(openbrackets, true)
	closeNodes = bracketNodes(closebrackets, false)
)

// bracketIndex finds a bracket in a list of brackets.
func bracketIndex(b string, in []string) int {
	for i, s := range in {
		if s == b {
			return i
		}
	}
	panic("rpn: invalid bracket " + b)
}

// NewInfixParser creates a parser reading infix notation from src and
// resolving names with ctx.
func NewInfixParser(src io.RuneScanner, ctx *Context) *InfixParser {
	return &InfixParser{scan: lex(src), ctx: ctx}
}

// Store parses the entire input and appends the result to e.
func (p *InfixParser) Store(e *Expression) error {
	p.out = e
	p.start = e.depth
	p.expect = true
	for {
		tok, err := p.scan.next()
		if err != nil {
			return err
		}
		if p.fn && tok.kind != tokenOpen {
			if err := p.niladic(tok); err != nil {
				return err
			}
		}
		if tok.kind == tokenEOF {
			return p.finish(tok)
		}
		n, err := p.resolve(tok)
		if err != nil {
			return err
		}
		if err := p.read(n, tok); err != nil {
			return err
		}
	}
}

// HasStack reports whether the operator stack is non-empty.
func (p *InfixParser) HasStack() bool {
	return len(p.stack) > 0
}

// Top returns the node on top of the operator stack. Panics if the stack is
// empty.
func (p *InfixParser) Top() Node {
	return p.stack[len(p.stack)-1].node
}

// Shunt pops the top of the operator stack to the output. A function name
// written without brackets takes a single argument. It is an error to shunt a
// bracket, since that means it was never closed.
func (p *InfixParser) Shunt() error {
	top := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	n := top.node
	if n.Flags()&Bracket != 0 {
		return &BracketError{Col: top.tok.Pos, Left: top.tok.Text}
	}
	if c, ok := n.(callable); ok {
		m, ok := c.bind(1)
		if !ok {
			return &CallError{Col: top.tok.Pos, Func: c.callName(), Len: 1}
		}
		n = m
	}
	return emit(p.out, p.start, n, top.tok)
}

// Separate ends an argument of the function call whose bracket is on top of
// the operator stack.
func (p *InfixParser) Separate(tok Token) error {
	if !p.HasStack() || p.Top().Flags()&Bracket == 0 {
		return &SeparatorError{Col: tok.Pos, Sep: tok.Text}
	}
	b := &p.stack[len(p.stack)-1]
	if !b.call {
		return &SeparatorError{Col: tok.Pos, Sep: tok.Text}
	}
	if err := p.argument(b, tok); err != nil {
		return err
	}
	b.args++
	b.mark = p.out.depth
	return nil
}

func (p *InfixParser) resolve(tok Token) (Node, error) {
	switch tok.kind {
	case tokenNum:
		return p.ctx.number(tok)
	case tokenIdent:
		return p.ctx.ident(tok)
	case tokenArg:
		return p.ctx.argument(tok)
	case tokenOp:
		return p.ctx.operator(tok, p.expect)
	case tokenOpen:
		return openNodes[bracketIndex(tok.Text, openbrackets)], nil
	case tokenClose:
		return closeNodes[bracketIndex(tok.Text, closebrackets)], nil
	case tokenSep:
		return p.ctx.comma, nil
	default:
		panic("rpn: unknown token: " + tok.String())
	}
}

// read handles one resolved token.
func (p *InfixParser) read(n Node, tok Token) error {
	f := n.Flags()
	fn, open := p.fn, p.open
	p.fn, p.open = false, false
	if f&Bracket != 0 && f&SucceedsOp == 0 {
		return p.close(n, tok, open)
	}
	switch {
	case p.expect && f&SucceedsOp == 0:
		return &OperandError{Col: tok.Pos, Token: tok.Text, Missing: "operand"}
	case !p.expect && f&Infix == 0:
		return &OperandError{Col: tok.Pos, Token: tok.Text, Missing: "operator"}
	}
	if h, ok := n.(InfixHandler); ok {
		if err := h.InfixParse(p, tok); err != nil {
			return err
		}
		p.expect = f&PresentsOp != 0
		return nil
	}
	switch {
	case f&Bracket != 0:
		p.stack = append(p.stack, entry{node: n, tok: tok, call: fn, mark: p.out.depth})
		p.open = true
	case f&Infix != 0:
		if err := p.shuntFor(n); err != nil {
			return err
		}
		p.stack = append(p.stack, entry{node: n, tok: tok})
	case f&PresentsOp != 0:
		// Prefix operators and functions pop nothing, since they have no
		// left operand.
		p.stack = append(p.stack, entry{node: n, tok: tok})
		_, p.fn = n.(callable)
	default:
		if err := emit(p.out, p.start, n, tok); err != nil {
			return err
		}
	}
	p.expect = f&PresentsOp != 0
	return nil
}

// shuntFor pops operators that bind at least as tightly as the incoming
// infix node. Equal precedence pops only if the incoming node is
// left-associative.
func (p *InfixParser) shuntFor(n Node) error {
	prec := 0
	if op, ok := n.(Operator); ok {
		prec = op.Precedence()
	}
	right := n.Flags()&RightAssoc != 0
	for p.HasStack() {
		top := p.Top()
		if top.Flags()&Bracket != 0 {
			return nil
		}
		if op, ok := top.(Operator); ok {
			tp := op.Precedence()
			if tp < prec || tp == prec && right {
				return nil
			}
		}
		if err := p.Shunt(); err != nil {
			return err
		}
	}
	return nil
}

// close handles a close bracket. open is set if the previous token was an
// open bracket.
func (p *InfixParser) close(n Node, tok Token, open bool) error {
	if p.expect && !open {
		return &OperandError{Col: tok.Pos, Token: tok.Text, Missing: "operand"}
	}
	for {
		if !p.HasStack() {
			return &BracketError{Col: tok.Pos, Right: tok.Text}
		}
		if p.Top().Flags()&Bracket != 0 {
			break
		}
		if err := p.Shunt(); err != nil {
			return err
		}
	}
	b := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	ob, _ := b.node.(*BracketNode)
	if cb := n.(*BracketNode); ob == nil || ob.kind != cb.kind {
		return &BracketError{Col: tok.Pos, Left: b.tok.Text, Right: tok.Text}
	}
	p.expect = false
	if !b.call {
		if open {
			return &EmptyExpressionError{Col: tok.Pos, End: tok.Text}
		}
		return p.argument(&b, tok)
	}
	argc := 0
	if !open {
		if err := p.argument(&b, tok); err != nil {
			return err
		}
		argc = b.args + 1
	}
	f := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	c := f.node.(callable)
	m, ok := c.bind(argc)
	if !ok {
		return &CallError{Col: tok.Pos, Func: c.callName(), Len: argc}
	}
	return emit(p.out, p.start, m, f.tok)
}

// argument checks that exactly one operand was produced since the bracket's
// mark.
func (p *InfixParser) argument(b *entry, tok Token) error {
	switch p.out.depth - b.mark {
	case 1:
		return nil
	case 0:
		return &EmptyExpressionError{Col: tok.Pos, End: tok.Text}
	default:
		return &OperandError{Col: tok.Pos, Token: tok.Text, Missing: "operator"}
	}
}

// niladic handles a function name that is not followed by an argument list.
// If the next token can begin an operand and the function takes one argument,
// it stays on the stack as a prefix operator. Otherwise, it is called with no
// arguments.
func (p *InfixParser) niladic(tok Token) error {
	p.fn = false
	top := p.stack[len(p.stack)-1]
	c := top.node.(callable)
	operand := false
	switch tok.kind {
	case tokenNum, tokenIdent, tokenArg, tokenOp:
		operand = true
		if c.canCall(1) {
			return nil
		}
	}
	m, ok := c.bind(0)
	if !ok {
		n := 0
		if operand {
			n = 1
		}
		return &CallError{Col: top.tok.Pos, Func: c.callName(), Len: n}
	}
	p.stack = p.stack[:len(p.stack)-1]
	p.expect = false
	return emit(p.out, p.start, m, top.tok)
}

// finish pops the remaining stack at the end of input.
func (p *InfixParser) finish(tok Token) error {
	if p.expect {
		if !p.HasStack() && p.out.depth == p.start {
			return &EmptyExpressionError{Col: tok.Pos}
		}
		return &OperandError{Col: tok.Pos, Missing: "operand"}
	}
	for p.HasStack() {
		if err := p.Shunt(); err != nil {
			return err
		}
	}
	return checkDepth(p.out, p.start, tok)
}

// emit appends n to e, checking that the nodes appended since the depth of e
// was start provide its operands.
func emit(e *Expression, start int, n Node, tok Token) error {
	if e.depth-start < n.Arity() {
		return &OperandError{Col: tok.Pos, Token: tok.Text, Missing: "operand"}
	}
	e.Append(n)
	return nil
}

// checkDepth checks that the nodes appended since the depth of e was start
// produce exactly one value.
func checkDepth(e *Expression, start int, tok Token) error {
	switch e.depth - start {
	case 1:
		return nil
	case 0:
		return &EmptyExpressionError{Col: tok.Pos}
	default:
		return &OperandError{Col: tok.Pos, Missing: "operator"}
	}
}
