// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package script loads pipeline definitions from a Tubesfile, a Starlark
// file that builds expressions with cmd(), pipe(), and and_():
//
//	errors = cmd("grep", "-r", "ERROR", "logs/")
//	count_errors = pipe(errors, cmd("wc", "-l"))
//	release = and_(cmd("make", "test"), cmd("make", "dist"))
//
// Every global binding whose value is an expression (and whose name does
// not start with "_") becomes a named pipeline.
package script

import (
	"fmt"
	"strings"

	"go.starlark.net/starlark"

	"github.com/marcelocantos/tubes/internal/expr"
)

// value wraps an Expression as a Starlark value.
type value struct {
	e expr.Expression
}

func (v value) String() string        { return v.e.String() }
func (v value) Type() string          { return "expression" }
func (v value) Freeze()               {}
func (v value) Truth() starlark.Bool  { return starlark.True }
func (v value) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: expression") }

// Load reads a Tubesfile from disk and returns the pipelines it defines.
func Load(path string) (map[string]expr.Expression, error) {
	return LoadSource(path, nil)
}

// LoadSource is Load with the source supplied directly (src may be a
// string or []byte; nil reads filename from disk).
func LoadSource(filename string, src any) (map[string]expr.Expression, error) {
	thread := &starlark.Thread{Name: "tubes"}
	predeclared := starlark.StringDict{
		"cmd":  starlark.NewBuiltin("cmd", cmdFn),
		"pipe": starlark.NewBuiltin("pipe", foldFn(func(l, r expr.Expression) expr.Expression { return expr.NewPipe(l, r) })),
		"and_": starlark.NewBuiltin("and_", foldFn(func(l, r expr.Expression) expr.Expression { return expr.NewAnd(l, r) })),
	}

	globals, err := starlark.ExecFile(thread, filename, src, predeclared)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filename, err)
	}

	pipelines := make(map[string]expr.Expression)
	for name, v := range globals {
		if strings.HasPrefix(name, "_") {
			continue
		}
		if ev, ok := v.(value); ok {
			pipelines[name] = ev.e
		}
	}
	return pipelines, nil
}

// cmd(prog, *args) builds a Command leaf. All arguments must be strings.
func cmdFn(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%s: missing program name", b.Name())
	}
	argv := make([]string, len(args))
	for i, a := range args {
		s, ok := starlark.AsString(a)
		if !ok {
			return nil, fmt.Errorf("%s: argument %d is %s, want string", b.Name(), i+1, a.Type())
		}
		argv[i] = s
	}
	return value{expr.NewCommand(argv[0], argv[1:]...)}, nil
}

// foldFn builds pipe(*exprs) and and_(*exprs): at least two expression
// operands, folded left to right.
func foldFn(combine func(l, r expr.Expression) expr.Expression) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(kwargs) > 0 {
			return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
		}
		if len(args) < 2 {
			return nil, fmt.Errorf("%s: want at least 2 expressions, got %d", b.Name(), len(args))
		}
		operands := make([]expr.Expression, len(args))
		for i, a := range args {
			v, ok := a.(value)
			if !ok {
				return nil, fmt.Errorf("%s: argument %d is %s, want expression", b.Name(), i+1, a.Type())
			}
			operands[i] = v.e
		}
		root := operands[0]
		for _, e := range operands[1:] {
			root = combine(root, e)
		}
		return value{root}, nil
	}
}
