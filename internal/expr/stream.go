package expr

import "os"

type streamMode int

const (
	modeInherit streamMode = iota
	modeCapture
	modeDiscard
	modeFile
)

// Stream designates where a child process's stdin, stdout, or stderr
// connects. Streams are passed down the expression tree but never own
// the descriptors they refer to: pipe ends belong to the Pipe node that
// created them, capture buffers to the launcher.
type Stream struct {
	mode streamMode
	file *os.File
}

// Inherit connects the stream to the corresponding stream of this
// process.
func Inherit() Stream { return Stream{mode: modeInherit} }

// Capture asks the launcher to collect the stream into memory and hand
// it back in the Result. Only output streams can be captured.
func Capture() Stream { return Stream{mode: modeCapture} }

// Discard connects the stream to the null device.
func Discard() Stream { return Stream{mode: modeDiscard} }

// File connects the stream directly to an open descriptor, such as one
// end of a pipe or a redirect target.
func File(f *os.File) Stream { return Stream{mode: modeFile, file: f} }

// IsCapture reports whether the endpoint requests in-memory capture.
func (s Stream) IsCapture() bool { return s.mode == modeCapture }

func (s Stream) String() string {
	switch s.mode {
	case modeCapture:
		return "capture"
	case modeDiscard:
		return "discard"
	case modeFile:
		return "fd " + s.file.Name()
	default:
		return "inherit"
	}
}
