package expr

import (
	"fmt"
	"os"
	"sync"
)

// pipePair owns one kernel pipe. The two ends are released
// independently — the write end when the producer side of a Pipe has
// fully finished, the read end when the consumer side has — and each
// exactly once. Closing an end twice is a contract violation, not a
// recoverable condition, so it panics.
type pipePair struct {
	r, w *os.File

	mu      sync.Mutex
	rClosed bool
	wClosed bool
}

func newPipePair() (*pipePair, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create pipe: %w", err)
	}
	return &pipePair{r: r, w: w}, nil
}

// CloseWrite releases the write end, delivering EOF to whoever holds the
// read end.
func (p *pipePair) CloseWrite() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.wClosed {
		panic("expr: pipe write end closed twice")
	}
	p.wClosed = true
	p.w.Close()
}

// CloseRead releases the read end. A producer still writing afterwards
// receives SIGPIPE.
func (p *pipePair) CloseRead() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rClosed {
		panic("expr: pipe read end closed twice")
	}
	p.rClosed = true
	p.r.Close()
}
