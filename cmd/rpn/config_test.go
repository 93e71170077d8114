package main

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/rpn"
	"github.com/zephyrtronium/rpn/internal/history"
)

const testConfig = `
prec: 128
format: infix
print: "%.3f"
vars:
  x: 2
consts:
  c: 10
functions:
  - name: sq
    args: 1
    body: $1 * $1
  - name: diff
    args: 2
    body: $1 $2 -
    format: postfix
`

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rpn.yaml")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSettings(t *testing.T) {
	s, err := loadSettings(writeConfig(t, testConfig))
	if err != nil {
		t.Fatal(err)
	}
	want := &settings{
		Prec:   128,
		Format: "infix",
		Print:  "%.3f",
		Vars:   map[string]float64{"x": 2},
		Consts: map[string]float64{"c": 10},
		Funcs: []funcDef{
			{Name: "sq", Args: 1, Body: "$1 * $1"},
			{Name: "diff", Args: 2, Body: "$1 $2 -", Format: "postfix"},
		},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("wrong settings (-want +got):\n%s", diff)
	}
}

func TestLoadSettingsErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"unknown-key", "precision: 64\n"},
		{"bad-type", "vars: [1, 2]\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := loadSettings(writeConfig(t, c.src)); err == nil {
				t.Errorf("%q loaded without error", c.src)
			}
		})
	}
	if _, err := loadSettings(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("missing file loaded without error")
	}
}

func TestSession(t *testing.T) {
	s, err := loadSettings(writeConfig(t, testConfig))
	if err != nil {
		t.Fatal(err)
	}
	sess, err := newSession(s)
	if err != nil {
		t.Fatal(err)
	}
	defer sess.close()
	cases := []struct {
		src  string
		want float64
		pf   string
	}{
		{"sq(x) + c", 14, "x sq c +"},
		{"diff(c, 3)", 7, "c 3 diff"},
		{"exp 0", 1, "0 exp"},
	}
	for _, c := range cases {
		r, pf, err := sess.eval(c.src)
		if err != nil {
			t.Errorf("%q: %v", c.src, err)
			continue
		}
		if r != c.want || pf != c.pf {
			t.Errorf("%q: want %g from %q, got %g from %q", c.src, c.want, c.pf, r, pf)
		}
	}
	var buf bytes.Buffer
	sess.printResult(&buf, 1.0/3)
	if got := buf.String(); got != "0.333\n" {
		t.Errorf("printed %q", got)
	}
}

func TestParseDefine(t *testing.T) {
	cases := []struct {
		src   string
		name  string
		nargs int
		body  string
		ok    bool
	}{
		{"sq/1=$1 * $1", "sq", 1, "$1 * $1", true},
		{" hyp / 2 = sqrt($1^2 + $2^2)", "hyp", 2, "sqrt($1^2 + $2^2)", true},
		{"seven=7", "seven", 0, "7", true},
		{"sq/1", "", 0, "", false},
		{"sq/x=1", "", 0, "", false},
		{"sq/-1=1", "", 0, "", false},
		{"/1=$1", "", 0, "", false},
	}
	for _, c := range cases {
		name, nargs, body, err := parseDefine(c.src)
		if (err == nil) != c.ok {
			t.Errorf("%q: want ok %t, got error %v", c.src, c.ok, err)
			continue
		}
		if name != c.name || nargs != c.nargs || body != c.body {
			t.Errorf("%q: want %s/%d=%q, got %s/%d=%q", c.src, c.name, c.nargs, c.body, name, nargs, body)
		}
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		src  string
		want rpn.Format
		ok   bool
	}{
		{"", rpn.FormatInfix, true},
		{"infix", rpn.FormatInfix, true},
		{"Postfix", rpn.FormatPostfix, true},
		{"rpn", rpn.FormatPostfix, true},
		{"prefix", 0, false},
	}
	for _, c := range cases {
		f, err := parseFormat(c.src)
		if (err == nil) != c.ok || f != c.want {
			t.Errorf("%q: want %v (ok %t), got %v, %v", c.src, c.want, c.ok, f, err)
		}
	}
}

func TestREPL(t *testing.T) {
	sess, err := newSession(defaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	defer sess.close()
	hist, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer hist.Close()
	input := strings.Join([]string{
		"1 + 2",
		"ans * 2",
		":set x 10",
		":define twice/1 $1 * 2",
		"twice(x)",
		"(1 + ",
		":bogus",
		":history 2",
		":redo 2",
		":redo 42",
		":quit",
		"99",
	}, "\n")
	var out bytes.Buffer
	r := &repl{
		sess: sess,
		hist: hist,
		in:   scanReader{bufio.NewScanner(strings.NewReader(input))},
		out:  &out,
	}
	if err := r.run(); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"3",
		"6",
		"20",
		"(1 +",
		"    ^",
		"5: missing operand at end",
		"unknown command :bogus",
		"    7  :bogus",
		"    8  :history 2",
		"ans * 2",
		"40",
		"42: no matching command line",
		"",
	}, "\n")
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("wrong output (-want +got):\n%s", diff)
	}
	var defs []history.Def
	hist.Defs(func(d history.Def) error {
		defs = append(defs, d)
		return nil
	})
	wantDefs := []history.Def{{Name: "twice", Format: "infix", Src: "twice/1=$1 * 2"}}
	if diff := cmp.Diff(wantDefs, defs); diff != "" {
		t.Errorf("wrong saved definitions (-want +got):\n%s", diff)
	}
}

func TestREPLRestore(t *testing.T) {
	hist, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer hist.Close()
	infix, err := newSession(defaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	defer infix.close()
	r := &repl{sess: infix, hist: hist, out: io.Discard}
	if err := r.define("twice/1 $1 * 2"); err != nil {
		t.Fatal(err)
	}

	s := defaultSettings()
	s.Format = "postfix"
	postfix, err := newSession(s)
	if err != nil {
		t.Fatal(err)
	}
	defer postfix.close()
	r = &repl{sess: postfix, hist: hist, out: io.Discard}
	r.restore()
	v, pf, err := postfix.eval("3 twice")
	if err != nil {
		t.Fatalf("definition saved in infix not restored: %v", err)
	}
	if v != 6 || pf != "3 twice" {
		t.Errorf("want 6 from 3 twice, got %g from %s", v, pf)
	}
}

func TestCollectExprs(t *testing.T) {
	cases := []struct {
		name  string
		args  []string
		in    string
		lines bool
		want  []string
	}{
		{"args", []string{"1 + 2", "3"}, "", false, []string{"1 + 2", "3"}},
		{"whole", []string{"1"}, "2 +\n3\n", false, []string{"1", "2 +\n3\n"}},
		{"lines", []string{"1", "2"}, "3\n\n  4 * 5 \n", true, []string{"1", "2", "3", "4 * 5"}},
		{"no-args", nil, "6\n", true, []string{"6"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var in io.Reader
			if c.in != "" {
				in = strings.NewReader(c.in)
			}
			got, err := collectExprs(c.args, in, c.lines)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("wrong expressions (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRootCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--given", "x=2", "--define", "sq/1=$1 * $1", "--echo", "sq(x) + 1", "3 4 +"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatalf("failing expression gave no error")
	}
	want := "x sq 1 + : 5\n3 4 +\n  ^\n3: missing operator at \"4\"\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("wrong output (-want +got):\n%s", diff)
	}
}
