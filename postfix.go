package rpn

import "io"

// PostfixParser reads reverse Polish notation. Since postfix notation is
// already in evaluation order, the parser resolves each token to a node and
// appends it directly.
type PostfixParser struct {
	scan *lexer
	ctx  *Context
}

// NewPostfixParser creates a parser reading postfix notation from src and
// resolving names with ctx.
func NewPostfixParser(src io.RuneScanner, ctx *Context) *PostfixParser {
	return &PostfixParser{scan: lex(src), ctx: ctx}
}

// Store parses the entire input and appends the result to e.
func (p *PostfixParser) Store(e *Expression) error {
	start := e.depth
	for {
		tok, err := p.scan.next()
		if err != nil {
			return err
		}
		var n Node
		switch tok.kind {
		case tokenEOF:
			return checkDepth(e, start, tok)
		case tokenNum:
			n, err = p.ctx.number(tok)
		case tokenIdent:
			n, err = p.ident(tok, e.depth-start)
		case tokenArg:
			n, err = p.ctx.argument(tok)
		case tokenOp:
			n, err = p.ctx.operator(tok, false)
		case tokenOpen:
			return &BracketError{Col: tok.Pos, Left: tok.Text}
		case tokenClose:
			return &BracketError{Col: tok.Pos, Right: tok.Text}
		case tokenSep:
			return &SeparatorError{Col: tok.Pos, Sep: tok.Text}
		default:
			panic("rpn: unknown token: " + tok.String())
		}
		if err != nil {
			return err
		}
		if err := emit(e, start, n, tok); err != nil {
			return err
		}
	}
}

// ident resolves a name with avail operands on the stack. Functions take as
// many operands as they can.
func (p *PostfixParser) ident(tok Token, avail int) (Node, error) {
	n, err := p.ctx.ident(tok)
	if err != nil {
		return nil, err
	}
	c, ok := n.(callable)
	if !ok {
		return n, nil
	}
	for k := avail; k >= 0; k-- {
		if m, ok := c.bind(k); ok {
			return m, nil
		}
	}
	return nil, &CallError{Col: tok.Pos, Func: c.callName(), Len: avail}
}
