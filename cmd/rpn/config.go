package main

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/rpn"
)

// settings is the contents of a configuration file. Command-line flags
// override it.
type settings struct {
	// Prec is the precision of exponentials and logarithms in bits.
	Prec uint `yaml:"prec"`
	// Format is "infix" or "postfix".
	Format string `yaml:"format"`
	// Print is the result formatting string.
	Print  string             `yaml:"print"`
	Vars   map[string]float64 `yaml:"vars"`
	Consts map[string]float64 `yaml:"consts"`
	Funcs  []funcDef          `yaml:"functions"`
}

type funcDef struct {
	Name string `yaml:"name"`
	Args int    `yaml:"args"`
	Body string `yaml:"body"`
	// Format overrides the notation of the body.
	Format string `yaml:"format,omitempty"`
}

func defaultSettings() *settings {
	return &settings{Format: "infix", Print: "%g"}
}

// loadSettings reads a configuration file. Unknown keys are errors.
func loadSettings(path string) (*settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := defaultSettings()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return s, nil
}

// parseFormat converts a format name to a Format.
func parseFormat(s string) (rpn.Format, error) {
	switch strings.ToLower(s) {
	case "", "infix":
		return rpn.FormatInfix, nil
	case "postfix", "rpn":
		return rpn.FormatPostfix, nil
	default:
		return 0, fmt.Errorf("unknown format %q", s)
	}
}

// parseDefine splits a definition of the form name/n=body. Without /n, the
// function takes no arguments.
func parseDefine(s string) (name string, nargs int, body string, err error) {
	head, body, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, "", fmt.Errorf(`function definitions must be "name/n=body", not %q`, s)
	}
	name, n, ok := strings.Cut(strings.TrimSpace(head), "/")
	if ok {
		nargs, err = strconv.Atoi(strings.TrimSpace(n))
		if err != nil || nargs < 0 {
			return "", 0, "", fmt.Errorf("bad argument count in %q", s)
		}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", 0, "", fmt.Errorf("missing function name in %q", s)
	}
	return name, nargs, strings.TrimSpace(body), nil
}

// parseGiven splits a variable definition of the form name=value.
func parseGiven(s string) (name, value string, err error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return "", "", fmt.Errorf(`variable definitions must be "name=value", not %q`, s)
	}
	return strings.TrimSpace(name), strings.TrimSpace(value), nil
}

// newSessionFromFlags builds a session from the configuration file named by
// --config and the flags that override it.
func newSessionFromFlags(cmd *cobra.Command) (*session, error) {
	s := defaultSettings()
	if path := getString(cmd, "config"); path != "" {
		var err error
		s, err = loadSettings(path)
		if err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("prec") {
		s.Prec = getUint(cmd, "prec")
	}
	if getFlag(cmd, "postfix") {
		s.Format = "postfix"
	}
	if v := getString(cmd, "fmt"); v != "" {
		s.Print = v
	}
	sess, err := newSession(s)
	if err != nil {
		return nil, err
	}
	for _, g := range getStringArray(cmd, "given") {
		name, value, err := parseGiven(g)
		if err == nil {
			err = sess.set(name, value)
		}
		if err != nil {
			sess.close()
			return nil, err
		}
	}
	for _, d := range getStringArray(cmd, "define") {
		if err := sess.define(d, sess.format); err != nil {
			sess.close()
			return nil, err
		}
	}
	return sess, nil
}
