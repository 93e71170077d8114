package rpn

import (
	"io"
	"strings"
	"testing"
)

func TestLex(t *testing.T) {
	cases := []struct {
		src    string
		tokens []Token
		errs   int
	}{
		// spaces
		{"", nil, 0},
		{" \t \r\n ", nil, 0},
		// numbers
		{"0", []Token{{Text: "0", kind: tokenNum, Pos: 1}}, 0},
		{"9876543210", []Token{{Text: "9876543210", kind: tokenNum, Pos: 1}}, 0},
		{"1 0", []Token{{Text: "1", kind: tokenNum, Pos: 1}, {Text: "0", kind: tokenNum, Pos: 3}}, 0},
		{"1.0", []Token{{Text: "1.0", kind: tokenNum, Pos: 1}}, 0},
		{"-1", []Token{{Text: "-", kind: tokenOp, Pos: 1}, {Text: "1", kind: tokenNum, Pos: 2}}, 0},
		{"1e1", []Token{{Text: "1e1", kind: tokenNum, Pos: 1}}, 0},
		{"1e", []Token{{Pos: 1}}, 1},
		{"1e+1", []Token{{Text: "1e+1", kind: tokenNum, Pos: 1}}, 0},
		{"1e-1", []Token{{Text: "1e-1", kind: tokenNum, Pos: 1}}, 0},
		{"1.0e1", []Token{{Text: "1.0e1", kind: tokenNum, Pos: 1}}, 0},
		{".", []Token{{Pos: 1}}, 1},
		{".1", []Token{{Text: ".1", kind: tokenNum, Pos: 1}}, 0},
		{"1+0", []Token{{Text: "1", kind: tokenNum, Pos: 1}, {Text: "+", kind: tokenOp, Pos: 2}, {Text: "0", kind: tokenNum, Pos: 3}}, 0},
		{"1*0", []Token{{Text: "1", kind: tokenNum, Pos: 1}, {Text: "*", kind: tokenOp, Pos: 2}, {Text: "0", kind: tokenNum, Pos: 3}}, 0},
		{"(1)", []Token{{Text: "(", kind: tokenOpen, Pos: 1}, {Text: "1", kind: tokenNum, Pos: 2}, {Text: ")", kind: tokenClose, Pos: 3}}, 0},
		{"1a", []Token{{Pos: 1}}, 1},
		{"inf", []Token{{Text: "inf", kind: tokenNum, Pos: 1}}, 0},
		{"∞", []Token{{Text: "∞", kind: tokenNum, Pos: 1}}, 0},
		// identifiers
		{"e", []Token{{Text: "e", kind: tokenIdent, Pos: 1}}, 0},
		{"e1", []Token{{Text: "e1", kind: tokenIdent, Pos: 1}}, 0},
		{"π", []Token{{Text: "π", kind: tokenIdent, Pos: 1}}, 0},
		{"_1234_", []Token{{Text: "_1234_", kind: tokenIdent, Pos: 1}}, 0},
		{"e(", []Token{{Text: "e", kind: tokenIdent, Pos: 1}, {Text: "(", kind: tokenOpen, Pos: 2}}, 0},
		// operators
		{"++", []Token{{Text: "+", kind: tokenOp, Pos: 1}, {Text: "+", kind: tokenOp, Pos: 2}}, 0},
		{"a×b", []Token{{Text: "a", kind: tokenIdent, Pos: 1}, {Text: "×", kind: tokenOp, Pos: 2}, {Text: "b", kind: tokenIdent, Pos: 3}}, 0},
		{"÷", []Token{{Text: "÷", kind: tokenOp, Pos: 1}}, 0},
		// brackets and separators
		{"[]", []Token{{Text: "[", kind: tokenOpen, Pos: 1}, {Text: "]", kind: tokenClose, Pos: 2}}, 0},
		{"{}", []Token{{Text: "{", kind: tokenOpen, Pos: 1}, {Text: "}", kind: tokenClose, Pos: 2}}, 0},
		{"f(x,y)", []Token{
			{Text: "f", kind: tokenIdent, Pos: 1},
			{Text: "(", kind: tokenOpen, Pos: 2},
			{Text: "x", kind: tokenIdent, Pos: 3},
			{Text: ",", kind: tokenSep, Pos: 4},
			{Text: "y", kind: tokenIdent, Pos: 5},
			{Text: ")", kind: tokenClose, Pos: 6},
		}, 0},
		// arguments
		{"$1", []Token{{Text: "$1", kind: tokenArg, Pos: 1}}, 0},
		{"$12+1", []Token{{Text: "$12", kind: tokenArg, Pos: 1}, {Text: "+", kind: tokenOp, Pos: 4}, {Text: "1", kind: tokenNum, Pos: 5}}, 0},
		{"$", []Token{{Pos: 1}}, 1},
		{"$a", []Token{{Pos: 1}, {Text: "a", kind: tokenIdent, Pos: 2}}, 1},
		// erroneous symbols
		{"a#", []Token{{Text: "a", kind: tokenIdent, Pos: 1}, {Pos: 2}}, 1},
		{"##", []Token{{Pos: 1}, {Pos: 2}}, 2},
	}

	for _, c := range cases {
		scan := lex(strings.NewReader(c.src))
		for _, want := range c.tokens {
			got, err := scan.next()
			if err == io.EOF {
				t.Errorf("scanning %q: expected token %v but got EOF", c.src, want)
				continue
			}
			if got != want {
				t.Errorf("scanning %q: want %v, got %v", c.src, want, got)
			}
			if err != nil {
				if c.errs > 0 {
					c.errs--
					continue
				}
				t.Errorf("scanning %q: unexpected error %v", c.src, err)
			}
		}
		if tok, err := scan.next(); err != nil || tok.kind != tokenEOF {
			t.Errorf("scanning %q: want EOF, got %v with error %v", c.src, tok, err)
		}
		if _, err := scan.next(); err != io.EOF {
			t.Errorf("scanning %q: want io.EOF after EOF token, got %v", c.src, err)
		}
		if c.errs > 0 {
			t.Errorf("scanning %q: not enough errors", c.src)
		}
	}
}

func TestRuneIndex(t *testing.T) {
	for i, r := range []rune(Operators) {
		if k := runeIndex(Operators, r); k != i {
			t.Errorf("%c: want %d, got %d", r, i, k)
		}
		if operstrs[i] != string(r) {
			t.Errorf("operator string %d: want %q, got %q", i, string(r), operstrs[i])
		}
	}
	if k := runeIndex(Operators, 'x'); k != -1 {
		t.Errorf("x: want -1, got %d", k)
	}
}
