package rpn

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// Token is a single lexical token of an expression.
type Token struct {
	// Text is the source text of the token.
	Text string
	// Pos is the 1-based rune position of the start of the token.
	Pos  int
	kind tokenKind
}

func (t Token) String() string {
	return t.kind.String() + ":" + t.Text + "@" + strconv.Itoa(t.Pos)
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenNum is an integer or real token.
	tokenNum
	// tokenIdent is a variable, constant, or function name.
	tokenIdent
	// tokenArg is a reference to a function argument, e.g. $1.
	tokenArg
	// tokenOp is an operator.
	tokenOp
	// tokenOpen is an open bracket, e.g. (.
	tokenOpen
	// tokenClose is a close bracket, e.g. ).
	tokenClose
	// tokenSep is a function arguments separator.
	tokenSep
)

var tokenNames = [...]string{
	tokenNone:  "None",
	tokenEOF:   "EOF",
	tokenNum:   "Num",
	tokenIdent: "Ident",
	tokenArg:   "Arg",
	tokenOp:    "Op",
	tokenOpen:  "Open",
	tokenClose: "Close",
	tokenSep:   "Sep",
}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokenNames) {
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenNames[k]
}

// Operators contains the runes which are considered to be operators.
const Operators = "+-*/%^×÷"

// OpenBrackets and CloseBrackets contain the runes which group expressions.
// The parser checks that a bracket in byte position k in OpenBrackets is
// matched with the bracket in byte position k in CloseBrackets.
const (
	OpenBrackets  = "([{"
	CloseBrackets = ")]}"
)

func runestrs(s string) []string {
	v := make([]string, 0, len(s))
	for _, r := range s {
		v = append(v, string(r))
	}
	return v
}

var (
	operstrs      = runestrs(Operators)
	openbrackets  = runestrs(OpenBrackets)
	closebrackets = runestrs(CloseBrackets)
)

// runeIndex is like strings.IndexRune, but counts runes rather than bytes.
func runeIndex(s string, r rune) int {
	k := 0
	for _, c := range s {
		if c == r {
			return k
		}
		k++
	}
	return -1
}

type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	rune int
	eof  bool
}

func lex(src io.RuneScanner) *lexer {
	return &lexer{
		src:  src,
		rune: 1,
	}
}

// readRune reads a rune from the src and updates the lexer's position info.
func (l *lexer) readRune() (r rune, err error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.rune++
	}
	return r, err
}

// unreadRune unreads a rune from the src and updates the lexer's position
// info. Panics if unreading returns an error.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.rune--
}

// next scans the next token from the input. The first time EOF is encountered,
// the result is an EOF token with a nil error. Subsequent times, the result is
// an empty token with io.EOF.
func (l *lexer) next() (Token, error) {
	if l.eof {
		return Token{}, io.EOF
	}
	defer l.buf.Reset()
	tok := Token{Pos: l.rune}
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				tok.kind = tokenEOF
				l.eof = true
				return tok, nil
			}
			return tok, err
		}
		switch {
		case unicode.IsSpace(r):
			tok.Pos++
			continue
		case '0' <= r && r <= '9', r == '.':
			l.unreadRune()
			if err := l.scanNum(); err != nil {
				return tok, err
			}
			tok.Text = l.buf.String()
			tok.kind = tokenNum
			return tok, nil
		case r == '_', unicode.IsLetter(r):
			l.unreadRune()
			if err := l.scanIdent(); err != nil {
				return tok, err
			}
			tok.Text = l.buf.String()
			// inf looks like an identifier, so check for it here.
			switch tok.Text {
			case "inf", "Inf":
				tok.kind = tokenNum
			default:
				tok.kind = tokenIdent
			}
			return tok, nil
		case r == '$':
			l.buf.WriteRune(r)
			if err := l.scanArg(); err != nil {
				return tok, err
			}
			tok.Text = l.buf.String()
			tok.kind = tokenArg
			return tok, nil
		case r == ',':
			tok.Text = ","
			tok.kind = tokenSep
			return tok, nil
		case r == '∞':
			tok.Text = "∞"
			tok.kind = tokenNum
			return tok, nil
		default:
			if k := runeIndex(Operators, r); k >= 0 {
				tok.Text = operstrs[k]
				tok.kind = tokenOp
				return tok, nil
			}
			if k := runeIndex(OpenBrackets, r); k >= 0 {
				tok.Text = openbrackets[k]
				tok.kind = tokenOpen
				return tok, nil
			}
			if k := runeIndex(CloseBrackets, r); k >= 0 {
				tok.Text = closebrackets[k]
				tok.kind = tokenClose
				return tok, nil
			}
			// Write the rune so that it shows up in the error message.
			l.buf.WriteRune(r)
			return tok, l.error("")
		}
	}
}

func (l *lexer) scanNum() error {
	var dig, dot, e, le, ed bool
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if unicode.IsSpace(r) {
			l.unreadRune()
			break
		}
		if r == '+' || r == '-' {
			// + or - anywhere other than immediately following an exponent
			// marker means a new token, as it is an operator.
			if !le {
				l.unreadRune()
				break
			}
			le = false
			l.buf.WriteRune(r)
			continue
		}
		if strings.ContainsRune(Operators+OpenBrackets+CloseBrackets+",", r) {
			l.unreadRune()
			break
		}
		l.buf.WriteRune(r)
		switch r {
		case '.':
			if dot || e {
				return l.error("number")
			}
			dot = true
			le = false
		case 'e', 'E':
			if !dig || e {
				return l.error("number")
			}
			e = true
			le = true
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			if e {
				ed = true
			} else {
				dig = true
			}
			le = false
		default:
			return l.error("number")
		}
	}
	if (!dig && !ed) || (e && !ed) {
		return l.error("number")
	}
	return nil
}

func (l *lexer) scanIdent() error {
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// next unreads the rune that decides ident scanning before
				// calling scanIdent, so we have scanned at least one rune.
				return nil
			}
			return err
		}
		switch {
		case r == '_', r == '.', unicode.IsLetter(r), unicode.IsDigit(r):
			l.buf.WriteRune(r)
		default:
			l.unreadRune()
			return nil
		}
	}
}

// scanArg scans the digits of an argument reference. The $ has already been
// written to the buffer.
func (l *lexer) scanArg() error {
	n := 0
	for {
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if r < '0' || r > '9' {
			l.unreadRune()
			break
		}
		l.buf.WriteRune(r)
		n++
	}
	if n == 0 {
		return l.error("argument")
	}
	return nil
}

func (l *lexer) error(kind string) error {
	return &LexError{
		Text: l.buf.String(),
		Kind: kind,
		Col:  l.rune - 1,
	}
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the token the lexer was scanning when the invalid rune was
	// encountered, plus the invalid rune.
	Text string
	// Kind is the type of token the lexer was scanning. This may be "number",
	// "argument", or the empty string (if a token kind hadn't been decided).
	Kind string
	// Col is the position of the rune that caused the error.
	Col int
}

func (err *LexError) Error() string {
	pos := "column " + strconv.Itoa(err.Col)
	if err.Kind == "" {
		return "invalid token at " + pos + ": " + err.Text
	}
	return "invalid " + err.Kind + " token at " + pos + ": " + err.Text
}

func (err *LexError) Pos() int {
	return err.Col
}
