// Package capture implements per-test output capture.
//
// A Buffer is a mutex-guarded byte buffer shared between a running test body
// and the process-wide standard output for the duration of the test. Because
// standard output is a process global, capture is only cleanly attributable
// when one test at a time holds the redirect; under parallel execution every
// running test still swaps the sink, accepting that interleaved writes from
// other tests may land in its buffer.
package capture

import (
	"io"
	"os"
	"sync"
)

// Buffer is an append-only byte buffer safe for concurrent writers.
// It implements io.Writer; Flush-like behavior is a no-op by construction.
type Buffer struct {
	mu   sync.Mutex
	data []byte
}

// Write appends p to the buffer. It never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	b.data = append(b.data, p...)
	b.mu.Unlock()
	return len(p), nil
}

// Bytes returns a copy of the captured bytes.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.data...)
}

// Len returns the number of captured bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// swapMu serializes redirect/restore pairs so that concurrent swaps observe
// a consistent previous sink. It does not serialize the test bodies.
var (
	swapMu sync.Mutex
	depth  int
	// base is the sink that was installed before the outermost redirect.
	base *os.File
)

// Redirect installs buf as the process-wide standard output sink and returns
// a restore function. Restore must be called exactly once, including on the
// panic path; it reinstalls the sink that was in place before the outermost
// active redirect (when this redirect's pipe is still installed or it is the
// last one), closes the pipe, and waits for the drain goroutine so no
// captured bytes are lost.
//
// Writes issued through os.Stdout (fmt.Print and friends) land in buf.
func Redirect(buf *Buffer) (restore func(), err error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	swapMu.Lock()
	if depth == 0 {
		base = os.Stdout
	}
	depth++
	os.Stdout = w
	swapMu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = io.Copy(buf, r)
		_ = r.Close()
	}()

	return func() {
		swapMu.Lock()
		depth--
		// Restores can arrive in any order under parallel execution.
		// Falling back to the base sink keeps a pipe that is about to
		// close from staying installed; overlapping captures lose
		// attribution, not output.
		if depth == 0 || os.Stdout == w {
			os.Stdout = base
		}
		swapMu.Unlock()
		_ = w.Close()
		<-done
	}, nil
}
