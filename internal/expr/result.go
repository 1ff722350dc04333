package expr

// Result is the aggregated outcome of executing an expression: the exit
// code plus whatever output was captured. A nil Stdout or Stderr means
// that stream was not captured for the node that produced the Result.
// Results are values; once produced they are never mutated.
type Result struct {
	Code   int
	Stdout []byte
	Stderr []byte
}

// Merge combines two results in textual order: the second result's exit
// code, and the captured outputs concatenated. An uncaptured stream is
// the identity — if one side is nil the other passes through unchanged,
// and two nils stay nil. Pipe overrides the merged code with its own
// rightmost-non-zero rule.
func (r Result) Merge(b Result) Result {
	return Result{
		Code:   b.Code,
		Stdout: concatOutput(r.Stdout, b.Stdout),
		Stderr: concatOutput(r.Stderr, b.Stderr),
	}
}

func concatOutput(a, b []byte) []byte {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
