package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/zephyrtronium/rpn"
)

// session holds the names and settings shared by the expressions of one run.
type session struct {
	ctx    *rpn.Context
	ev     *rpn.Evaluator
	format rpn.Format
	print  string
}

func newSession(s *settings) (*session, error) {
	f, err := parseFormat(s.Format)
	if err != nil {
		return nil, err
	}
	opts := []rpn.ContextOption{rpn.Prec(s.Prec), rpn.SetVars(s.Vars)}
	for k, v := range s.Consts {
		opts = append(opts, rpn.Const(k, v))
	}
	sess := &session{
		ctx:    rpn.NewContext(opts...),
		ev:     rpn.NewEvaluator(16),
		format: f,
		print:  s.Print,
	}
	for _, d := range s.Funcs {
		df := f
		if d.Format != "" {
			if df, err = parseFormat(d.Format); err != nil {
				sess.close()
				return nil, fmt.Errorf("function %s: %w", d.Name, err)
			}
		}
		if err := sess.ctx.Define(d.Name, d.Args, d.Body, df); err != nil {
			sess.close()
			return nil, fmt.Errorf("function %s: %w", d.Name, err)
		}
	}
	log.Debugf("session with %s notation, precision %d, variables %v", f, s.Prec, sess.ctx.Vars())
	return sess, nil
}

// eval parses and evaluates one expression.
func (s *session) eval(src string) (float64, string, error) {
	e, err := rpn.ParseString(src, s.ctx, s.format)
	if err != nil {
		return 0, "", err
	}
	defer e.Clear()
	r, err := e.EvalWith(s.ev)
	return r, e.String(), err
}

// set evaluates src and assigns the result to a variable.
func (s *session) set(name, src string) error {
	r, _, err := s.eval(src)
	if err != nil {
		return fmt.Errorf("setting %s: %w", name, err)
	}
	s.ctx.Set(name, r)
	return nil
}

// define adds a function from a definition of the form name/n=body whose
// body is written in notation f.
func (s *session) define(def string, f rpn.Format) error {
	name, nargs, body, err := parseDefine(def)
	if err != nil {
		return err
	}
	if err := s.ctx.Define(name, nargs, body, f); err != nil {
		return fmt.Errorf("defining %s: %w", name, err)
	}
	return nil
}

// printResult writes a result with the session's formatting string.
func (s *session) printResult(w io.Writer, r float64) {
	fmt.Fprintf(w, s.print+"\n", r)
}

// printError writes an error, pointing at its position in src if it has one.
func (s *session) printError(w io.Writer, src string, err error) {
	var ie rpn.InputError
	if errors.As(err, &ie) && ie.Pos() > 0 && !strings.Contains(src, "\n") {
		fmt.Fprintln(w, src)
		fmt.Fprintln(w, strings.Repeat(" ", ie.Pos()-1)+"^")
	}
	fmt.Fprintln(w, err)
}

func (s *session) close() {
	s.ctx.Release()
}
