package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// errFailed reports that at least one expression failed after all were
// attempted.
var errFailed = errors.New("some expressions failed")

func runRoot(cmd *cobra.Command, args []string) error {
	inname := getString(cmd, "in")
	if len(args) == 0 && inname == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		return runREPL(cmd, nil)
	}
	sess, err := newSessionFromFlags(cmd)
	if err != nil {
		return err
	}
	defer sess.close()

	in, err := infile(inname, len(args) == 0)
	if err != nil {
		return err
	}
	if f, ok := in.(*os.File); ok && f != os.Stdin {
		defer f.Close()
	}
	srcs, err := collectExprs(args, in, getFlag(cmd, "lines"))
	if err != nil {
		return err
	}

	echo := getFlag(cmd, "echo")
	out := cmd.OutOrStdout()
	failed := false
	for _, src := range srcs {
		r, pf, err := sess.eval(src)
		if err != nil {
			sess.printError(out, src, err)
			failed = true
			continue
		}
		if echo {
			fmt.Fprintf(out, "%s : ", pf)
		}
		sess.printResult(out, r)
	}
	if failed {
		return errFailed
	}
	return nil
}

// infile opens the input file, or stdin if inname is "-" or std is set.
func infile(inname string, std bool) (io.Reader, error) {
	switch {
	case inname != "" && inname != "-":
		return os.Open(inname)
	case inname == "-", std:
		return os.Stdin, nil
	}
	return nil, nil
}

// collectExprs lists the expressions given as arguments followed by those read
// from in, if it is not nil.
func collectExprs(args []string, in io.Reader, lines bool) ([]string, error) {
	srcs := append([]string(nil), args...)
	if in == nil {
		return srcs, nil
	}
	s, err := readExprs(in, lines)
	if err != nil {
		return nil, err
	}
	return append(srcs, s...), nil
}

// readExprs reads either one expression per non-blank line or the entire input
// as one expression.
func readExprs(r io.Reader, lines bool) ([]string, error) {
	if !lines {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return []string{string(b)}, nil
	}
	var srcs []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			srcs = append(srcs, line)
		}
	}
	return srcs, sc.Err()
}
