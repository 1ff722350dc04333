// Package expr implements the process expression engine: trees of
// Command, And, and Pipe nodes that execute as a coordinated group of
// child processes and aggregate into a single Result.
package expr

import (
	"context"
	"fmt"
	"strings"
)

// Expression is one node of a command composition tree. The variant set
// is closed — Command, And, and Pipe — so the exec contract lives on an
// unexported method.
type Expression interface {
	fmt.Stringer

	exec(ctx context.Context, ln Launcher, stdin, stdout, stderr Stream) (Result, error)
}

// Command is a leaf expression that launches exactly one OS process.
type Command struct {
	prog string
	args []string
}

// NewCommand builds a Command from a program name and its arguments.
func NewCommand(prog string, args ...string) *Command {
	return &Command{prog: prog, args: append([]string(nil), args...)}
}

// Argv returns the full argument vector, program first.
func (c *Command) Argv() []string {
	return append([]string{c.prog}, c.args...)
}

func (c *Command) String() string {
	return strings.Join(c.Argv(), " ")
}

func (c *Command) exec(ctx context.Context, ln Launcher, stdin, stdout, stderr Stream) (Result, error) {
	p, err := ln.Spawn(ctx, c.Argv(), stdin, stdout, stderr)
	if err != nil {
		return Result{}, err
	}
	return p.Wait()
}

// And runs left, then right only if left exited zero. Both children
// share the parent's stream endpoints; no pipes are created.
type And struct {
	left, right Expression
}

// NewAnd builds a short-circuiting sequence of two expressions.
func NewAnd(left, right Expression) *And {
	return &And{left: left, right: right}
}

func (a *And) String() string {
	return a.left.String() + " && " + a.right.String()
}

func (a *And) exec(ctx context.Context, ln Launcher, stdin, stdout, stderr Stream) (Result, error) {
	lres, err := a.left.exec(ctx, ln, stdin, stdout, stderr)
	if err != nil {
		return Result{}, err
	}
	// Non-zero short-circuits: right is never started.
	if lres.Code != 0 {
		return lres, nil
	}
	rres, err := a.right.exec(ctx, ln, stdin, stdout, stderr)
	if err != nil {
		return Result{}, err
	}
	return lres.Merge(rres), nil
}

// Pipe connects left's stdout to right's stdin through one kernel pipe
// and runs both sides concurrently.
type Pipe struct {
	left, right Expression
}

// NewPipe builds a pipe between two expressions.
func NewPipe(left, right Expression) *Pipe {
	return &Pipe{left: left, right: right}
}

func (p *Pipe) String() string {
	return p.left.String() + " | " + p.right.String()
}

func (p *Pipe) exec(ctx context.Context, ln Launcher, stdin, stdout, stderr Stream) (Result, error) {
	pair, err := newPipePair()
	if err != nil {
		return Result{}, err
	}

	// Either side may be a compound expression (like A && B), so each
	// end of the pipe stays open until that whole side has finished.
	// Closing the write end is what delivers EOF to the right side;
	// closing the read end is what lets the left side receive SIGPIPE if
	// it is still writing. Each close runs immediately upon its side's
	// completion, whatever the outcome, independent of the other side.
	type outcome struct {
		res Result
		err error
	}
	lch := make(chan outcome, 1)
	go func() {
		res, err := p.left.exec(ctx, ln, stdin, File(pair.w), stderr)
		pair.CloseWrite()
		lch <- outcome{res, err}
	}()
	rch := make(chan outcome, 1)
	go func() {
		res, err := p.right.exec(ctx, ln, File(pair.r), stdout, stderr)
		pair.CloseRead()
		rch <- outcome{res, err}
	}()

	// Await the consumer first: its natural termination is what
	// unblocks the producer's writes.
	r := <-rch
	l := <-lch
	if r.err != nil {
		return Result{}, r.err
	}
	if l.err != nil {
		return Result{}, l.err
	}

	// Report the rightmost non-zero exit code: right's code wins unless
	// it is zero, in which case left's code is used. This is a
	// deliberate departure from shell pipefail semantics.
	code := r.res.Code
	if code == 0 {
		code = l.res.Code
	}
	res := l.res.Merge(r.res)
	res.Code = code
	return res, nil
}
