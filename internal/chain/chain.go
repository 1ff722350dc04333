// Package chain is the linear pipeline convenience wrapper: a fluent
// builder for flat command chains that executes through the expression
// engine and turns checked failures into errors. The engine itself never
// errors on a non-zero exit; that policy lives here.
package chain

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/marcelocantos/tubes/internal/expr"
)

// Chain accumulates a flat list of commands connected by pipes.
type Chain struct {
	segments [][]string
}

// New starts a chain with its first command.
func New(prog string, args ...string) *Chain {
	c := &Chain{}
	return c.Pipe(prog, args...)
}

// Pipe appends a command whose stdin is the previous command's stdout.
func (c *Chain) Pipe(prog string, args ...string) *Chain {
	argv := append([]string{prog}, args...)
	c.segments = append(c.segments, argv)
	return c
}

// Segments returns a copy of the accumulated argv list.
func (c *Chain) Segments() [][]string {
	segs := make([][]string, len(c.segments))
	for i, s := range c.segments {
		segs[i] = append([]string(nil), s...)
	}
	return segs
}

// Expression folds the chain into a left-nested Pipe tree.
func (c *Chain) Expression() expr.Expression {
	var root expr.Expression = expr.NewCommand(c.segments[0][0], c.segments[0][1:]...)
	for _, seg := range c.segments[1:] {
		root = expr.NewPipe(root, expr.NewCommand(seg[0], seg[1:]...))
	}
	return root
}

type options struct {
	check         bool
	trim          bool
	captureStdout bool
	captureStderr bool
}

// Option adjusts how a chain executes and how its Result is shaped.
type Option func(*options)

// NoCheck keeps a non-zero exit as data instead of a CheckedError.
func NoCheck() Option { return func(o *options) { o.check = false } }

// Trim strips trailing newlines and carriage returns from captured
// streams.
func Trim() Option { return func(o *options) { o.trim = true } }

// CaptureStderr collects stderr into the Result instead of inheriting it.
func CaptureStderr() Option { return func(o *options) { o.captureStderr = true } }

// PassStdout leaves stdout attached to this process instead of capturing
// it.
func PassStdout() Option { return func(o *options) { o.captureStdout = false } }

// Result executes the chain. Defaults: stdin inherited, stdout captured,
// stderr inherited, check on — a non-zero exit comes back as a
// *CheckedError alongside the Result.
func (c *Chain) Result(ctx context.Context, opts ...Option) (expr.Result, error) {
	o := options{check: true, captureStdout: true}
	for _, opt := range opts {
		opt(&o)
	}

	stdout := expr.Inherit()
	if o.captureStdout {
		stdout = expr.Capture()
	}
	stderr := expr.Inherit()
	if o.captureStderr {
		stderr = expr.Capture()
	}

	res, err := expr.NewDriver().RunWith(ctx, c.Expression(), expr.Inherit(), stdout, stderr)
	if err != nil {
		return expr.Result{}, err
	}

	if o.trim {
		res.Stdout = trimNewlines(res.Stdout)
		res.Stderr = trimNewlines(res.Stderr)
	}

	if o.check && res.Code != 0 {
		return res, &CheckedError{Result: res, Pipeline: c.Segments()}
	}
	return res, nil
}

// Run executes the chain with stdout passed through to this process.
func (c *Chain) Run(ctx context.Context, opts ...Option) (expr.Result, error) {
	return c.Result(ctx, append([]Option{PassStdout()}, opts...)...)
}

// Read executes the chain and returns its trimmed stdout.
func (c *Chain) Read(ctx context.Context, opts ...Option) (string, error) {
	res, err := c.Result(ctx, append([]Option{Trim()}, opts...)...)
	if err != nil {
		return "", err
	}
	return string(res.Stdout), nil
}

// CheckedError reports a pipeline that ran but exited non-zero.
type CheckedError struct {
	Result   expr.Result
	Pipeline [][]string
}

func (e *CheckedError) Error() string {
	return fmt.Sprintf("command %q returned non-zero exit status %d",
		Format(e.Pipeline), e.Result.Code)
}

// Format renders a pipeline the way a user would type it: argv joined by
// spaces, segments joined by pipes.
func Format(pipeline [][]string) string {
	segs := make([]string, len(pipeline))
	for i, argv := range pipeline {
		segs[i] = strings.Join(argv, " ")
	}
	return strings.Join(segs, " | ")
}

func trimNewlines(b []byte) []byte {
	if b == nil {
		return nil
	}
	return bytes.TrimRight(b, "\r\n")
}
