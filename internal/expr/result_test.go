package expr

import (
	"bytes"
	"testing"
)

func TestMergeTakesSecondCode(t *testing.T) {
	a := Result{Code: 3, Stdout: []byte("a")}
	b := Result{Code: 7, Stdout: []byte("b")}
	m := a.Merge(b)
	if m.Code != 7 {
		t.Errorf("expected code 7, got %d", m.Code)
	}
}

func TestMergeConcatenatesCaptured(t *testing.T) {
	a := Result{Stdout: []byte("foo"), Stderr: []byte("x")}
	b := Result{Stdout: []byte("bar"), Stderr: []byte("y")}
	m := a.Merge(b)
	if !bytes.Equal(m.Stdout, []byte("foobar")) {
		t.Errorf("stdout: expected %q, got %q", "foobar", m.Stdout)
	}
	if !bytes.Equal(m.Stderr, []byte("xy")) {
		t.Errorf("stderr: expected %q, got %q", "xy", m.Stderr)
	}
}

func TestMergeUncapturedIsIdentity(t *testing.T) {
	captured := Result{Stdout: []byte("out")}
	absent := Result{}

	if m := absent.Merge(captured); !bytes.Equal(m.Stdout, []byte("out")) {
		t.Errorf("nil left: expected %q, got %q", "out", m.Stdout)
	}
	if m := captured.Merge(absent); !bytes.Equal(m.Stdout, []byte("out")) {
		t.Errorf("nil right: expected %q, got %q", "out", m.Stdout)
	}
	if m := absent.Merge(absent); m.Stdout != nil {
		t.Errorf("both nil: expected nil, got %q", m.Stdout)
	}
}

func TestMergeEmptyCapturedIsNotAbsent(t *testing.T) {
	// A stream that was captured but produced nothing must stay present
	// so later merges concatenate rather than drop it.
	empty := Result{Stdout: []byte{}}
	data := Result{Stdout: []byte("x")}
	if m := empty.Merge(data); m.Stdout == nil || string(m.Stdout) != "x" {
		t.Errorf("expected %q, got %v", "x", m.Stdout)
	}
}

func TestMergeAssociativeForOutputs(t *testing.T) {
	a := Result{Code: 1, Stdout: []byte("a"), Stderr: []byte("1")}
	b := Result{Code: 2, Stdout: nil, Stderr: []byte("2")}
	c := Result{Code: 3, Stdout: []byte("c")}

	left := a.Merge(b).Merge(c)
	right := a.Merge(b.Merge(c))

	if !bytes.Equal(left.Stdout, right.Stdout) {
		t.Errorf("stdout not associative: %q vs %q", left.Stdout, right.Stdout)
	}
	if !bytes.Equal(left.Stderr, right.Stderr) {
		t.Errorf("stderr not associative: %q vs %q", left.Stderr, right.Stderr)
	}
	if left.Code != 3 || right.Code != 3 {
		t.Errorf("expected final code 3, got %d and %d", left.Code, right.Code)
	}
}
