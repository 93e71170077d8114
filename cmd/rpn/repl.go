package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zephyrtronium/rpn/internal/history"
)

var replCmd = &cobra.Command{
	Use:   "repl [flags]",
	Short: "Evaluate expressions interactively.",
	Long: `Read and evaluate one expression per line. The result of each is stored
in the variable ans. Lines beginning with a colon are commands:

	:set name expr         set a variable
	:define name/n body    define a function of n arguments
	:vars                  list variables
	:history [n]           list the last n lines
	:redo seq              repeat the line numbered seq in the history
	:quit                  exit`,
	Args: cobra.NoArgs,
	RunE: runREPL,
}

func init() {
	replCmd.Flags().String("history", "", "history database (default in the user cache directory)")
}

// lineReader reads input lines. *term.Terminal is a lineReader.
type lineReader interface {
	ReadLine() (string, error)
}

type scanReader struct {
	sc *bufio.Scanner
}

func (r scanReader) ReadLine() (string, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.sc.Text(), nil
}

// repl is an interactive session.
type repl struct {
	sess *session
	hist *history.Store
	in   lineReader
	out  io.Writer
}

func runREPL(cmd *cobra.Command, args []string) error {
	sess, err := newSessionFromFlags(cmd)
	if err != nil {
		return err
	}
	defer sess.close()
	r := &repl{sess: sess}
	if hist, err := openHistory(cmd); err != nil {
		log.Warnf("history disabled: %v", err)
	} else {
		defer hist.Close()
		r.hist = hist
		r.restore()
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return err
		}
		defer term.Restore(fd, state)
		screen := struct {
			io.Reader
			io.Writer
		}{os.Stdin, os.Stdout}
		t := term.NewTerminal(screen, "> ")
		r.in, r.out = t, t
	} else {
		r.in, r.out = scanReader{bufio.NewScanner(os.Stdin)}, cmd.OutOrStdout()
	}
	return r.run()
}

// openHistory opens the database named by --history, or the default one.
func openHistory(cmd *cobra.Command) (*history.Store, error) {
	path := ""
	if cmd.Flags().Lookup("history") != nil {
		path = getString(cmd, "history")
	}
	if path == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(dir, "rpn")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "history.db")
	}
	return history.Open(path)
}

// restore applies the function definitions saved by earlier sessions, each in
// the notation it was written in.
func (r *repl) restore() {
	err := r.hist.Defs(func(d history.Def) error {
		f := r.sess.format
		if d.Format != "" {
			var err error
			if f, err = parseFormat(d.Format); err != nil {
				log.Warnf("restoring %s: %v", d.Name, err)
				return nil
			}
		}
		if err := r.sess.define(d.Src, f); err != nil {
			log.Warnf("restoring %s: %v", d.Name, err)
		}
		return nil
	})
	if err != nil {
		log.Warnf("reading definitions: %v", err)
	}
}

func (r *repl) run() error {
	for {
		line, err := r.in.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r.hist != nil {
			if _, err := r.hist.Add(line); err != nil {
				log.Warnf("saving history: %v", err)
			}
		}
		if quit := r.line(line); quit {
			return nil
		}
	}
}

// line handles one line of input and reports whether the session is over.
func (r *repl) line(line string) bool {
	if !strings.HasPrefix(line, ":") {
		v, _, err := r.sess.eval(line)
		if err != nil {
			r.sess.printError(r.out, line, err)
			return false
		}
		r.sess.ctx.Set("ans", v)
		r.sess.printResult(r.out, v)
		return false
	}
	cmd, rest, _ := strings.Cut(line[1:], " ")
	rest = strings.TrimSpace(rest)
	var err error
	switch cmd {
	case "q", "quit", "exit":
		return true
	case "set":
		name, src, _ := strings.Cut(rest, " ")
		if name == "" || strings.TrimSpace(src) == "" {
			err = errors.New("usage: :set name expr")
			break
		}
		err = r.sess.set(name, src)
	case "define", "def":
		err = r.define(rest)
	case "vars":
		for _, name := range r.sess.ctx.Vars() {
			v, _ := r.sess.ctx.Lookup(name)
			fmt.Fprintf(r.out, "%s = ", name)
			r.sess.printResult(r.out, v)
		}
	case "history", "h":
		err = r.history(rest)
	case "redo", "r":
		return r.redo(rest)
	default:
		err = fmt.Errorf("unknown command :%s", cmd)
	}
	if err != nil {
		fmt.Fprintln(r.out, err)
	}
	return false
}

// define handles ":define name/n body", also accepting "name/n=body".
func (r *repl) define(rest string) error {
	def := rest
	if !strings.Contains(rest, "=") {
		head, body, ok := strings.Cut(rest, " ")
		if !ok {
			return errors.New("usage: :define name/n body")
		}
		def = head + "=" + body
	}
	if err := r.sess.define(def, r.sess.format); err != nil {
		return err
	}
	if r.hist != nil {
		name, _, _, _ := parseDefine(def)
		return r.hist.Define(history.Def{Name: name, Format: r.sess.format.String(), Src: def})
	}
	return nil
}

func (r *repl) history(rest string) error {
	if r.hist == nil {
		return errors.New("history is disabled")
	}
	n := 20
	if rest != "" {
		var err error
		if n, err = strconv.Atoi(rest); err != nil {
			return fmt.Errorf("bad count %q", rest)
		}
	}
	entries, err := r.hist.Recent(n)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(r.out, "%5d  %s\n", e.Seq, e.Text)
	}
	return nil
}

// redo handles ":redo seq", running a line again from the history.
func (r *repl) redo(rest string) bool {
	if r.hist == nil {
		fmt.Fprintln(r.out, "history is disabled")
		return false
	}
	seq, err := strconv.Atoi(rest)
	if err != nil {
		fmt.Fprintf(r.out, "bad sequence number %q\n", rest)
		return false
	}
	line, err := r.hist.Get(seq)
	if err != nil {
		fmt.Fprintf(r.out, "%d: %v\n", seq, err)
		return false
	}
	if cmd, _, _ := strings.Cut(line, " "); cmd == ":redo" || cmd == ":r" {
		fmt.Fprintf(r.out, "%d: cannot redo %s\n", seq, cmd)
		return false
	}
	fmt.Fprintln(r.out, line)
	return r.line(line)
}
