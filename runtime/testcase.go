package runtime

import (
	"github.com/justapithecus/gauntlet/bench"
	"github.com/justapithecus/gauntlet/types"
)

// Concurrency selects whether the executor may run a body on its own
// worker goroutine.
type Concurrency int

const (
	// Serial runs the body synchronously on the caller's goroutine.
	Serial Concurrency = iota
	// Concurrent runs the body on a fresh worker goroutine when the
	// platform supports it.
	Concurrent
)

// TestCase pairs a descriptor with its body. Exactly one of Fn and
// BenchFn is set. Bodies may be closures owning captured state; each body
// is invoked at most once per run.
type TestCase struct {
	Desc types.TestDesc
	// Fn is the test body.
	Fn func()
	// BenchFn is the benchmark body.
	BenchFn func(*bench.B)
}

// IsBench reports whether the entry is a benchmark.
func (tc TestCase) IsBench() bool { return tc.BenchFn != nil }

// Padding returns the name padding implied by the entry's kind:
// benchmarks pad on the right, tests do not.
func (tc TestCase) Padding() types.NamePadding {
	if tc.IsBench() {
		return types.PadOnRight
	}
	return types.PadNone
}

// Completion is the message a worker sends back on the monitor channel:
// exactly one per executed entry. Ownership of the outcome and the
// captured bytes transfers with the send.
type Completion struct {
	Desc   types.TestDesc
	Result types.Result
	Stdout []byte
}
