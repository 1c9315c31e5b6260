package runtime

import (
	"fmt"
	"os"
	goruntime "runtime"
	"strings"

	"github.com/justapithecus/gauntlet/bench"
	"github.com/justapithecus/gauntlet/capture"
	"github.com/justapithecus/gauntlet/stats"
	"github.com/justapithecus/gauntlet/types"
)

// supportsConcurrency reports whether worker goroutines may run truly in
// parallel. Single-threaded targets fall back to synchronous execution
// regardless of the requested concurrency.
var supportsConcurrency = goruntime.GOARCH != "wasm"

// RunTest executes one entry and sends exactly one Completion on monitor.
// It never panics out of the executor: the body runs inside a recover
// boundary and its outcome is classified against the descriptor's
// contract.
func RunTest(opts *Options, forceIgnore bool, tc TestCase, monitor chan<- Completion, conc Concurrency) {
	desc := tc.Desc

	if forceIgnore || desc.Ignore {
		monitor <- Completion{Desc: desc, Result: types.Ignored()}
		return
	}

	if tc.BenchFn != nil {
		runBenchmark(desc, monitor, opts.Nocapture, tc.BenchFn)
		return
	}

	runTestInner(desc, monitor, opts.Nocapture, tc.Fn, conc)
}

func runTestInner(desc types.TestDesc, monitor chan<- Completion, nocapture bool, body func(), conc Concurrency) {
	// Shared between the worker and the process-wide sink for the
	// lifetime of the test; ownership collapses into the completion
	// message once the worker returns.
	buf := new(capture.Buffer)

	runtest := func() {
		var restore func()
		if !nocapture {
			if r, err := capture.Redirect(buf); err == nil {
				restore = r
			}
		}

		panicked, payload := runBody(body)

		if panicked {
			reportPanic(buf, nocapture, desc, payload)
		}
		if restore != nil {
			restore()
		}

		result := classifyResult(desc, panicked, payload)
		monitor <- Completion{Desc: desc, Result: result, Stdout: buf.Bytes()}
	}

	if conc == Concurrent && supportsConcurrency {
		go runtest()
	} else {
		runtest()
	}
}

// runBody invokes body inside a synchronous recover boundary and reports
// whether it panicked and with what payload.
func runBody(body func()) (panicked bool, payload any) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			payload = r
		}
	}()
	invoke(body)
	return false, nil
}

// invoke is a fixed no-inline frame so panic traces out of test bodies
// have a recognizable boundary to cut at.
//
//go:noinline
func invoke(body func()) { body() }

// reportPanic writes the panic message where the test's output goes: the
// capture buffer, or stderr when capture is bypassed.
func reportPanic(buf *capture.Buffer, nocapture bool, desc types.TestDesc, payload any) {
	line := fmt.Sprintf("test %s panicked: %v\n", desc.Name, payload)
	if nocapture {
		fmt.Fprint(os.Stderr, line)
		return
	}
	_, _ = buf.Write([]byte(line))
}

// classifyResult maps (contract, panicked, payload, allow_fail) onto an
// outcome. The mapping is total.
func classifyResult(desc types.TestDesc, panicked bool, payload any) types.Result {
	sp := desc.ShouldPanic
	switch {
	case sp.Kind == types.PanicNone && !panicked,
		sp.Kind == types.PanicAny && panicked:
		return types.Ok()
	case sp.Kind == types.PanicWithMessage && panicked:
		if msg, ok := panicMessage(payload); ok && strings.Contains(msg, sp.Message) {
			return types.Ok()
		}
		if desc.AllowFail {
			return types.AllowedFail()
		}
		return types.FailedMsg(fmt.Sprintf(
			"Panic did not include expected string '%s'", sp.Message))
	case desc.AllowFail:
		return types.AllowedFail()
	default:
		return types.Failed()
	}
}

// panicMessage extracts a matchable message from a panic payload. Strings
// and errors carry messages; anything else is treated as non-matching.
func panicMessage(payload any) (string, bool) {
	switch v := payload.(type) {
	case string:
		return v, true
	case error:
		return v.Error(), true
	}
	return "", false
}

// runBenchmark samples a benchmark body and sends its completion.
// A panic during sampling is a failure, not a measurement; a body that
// never calls Iter produces a zero-sample measurement.
func runBenchmark(desc types.TestDesc, monitor chan<- Completion, nocapture bool, body func(*bench.B)) {
	b := bench.New(bench.Auto)
	buf := new(capture.Buffer)

	var restore func()
	if !nocapture {
		if r, err := capture.Redirect(buf); err == nil {
			restore = r
		}
	}

	var summary *stats.Summary
	panicked, payload := runBody(func() {
		summary = b.Run(body)
	})

	if panicked {
		reportPanic(buf, nocapture, desc, payload)
	}
	if restore != nil {
		restore()
	}

	var result types.Result
	switch {
	case panicked:
		result = types.Failed()
	case summary != nil:
		nsIter := uint64(summary.Median)
		if nsIter < 1 {
			nsIter = 1
		}
		result = types.Bench(types.BenchSamples{
			NsIterSumm: *summary,
			MBPerSec:   b.Bytes * 1000 / nsIter,
		})
	default:
		// Iter was never called, so there is no data.
		result = types.Bench(types.BenchSamples{
			NsIterSumm: stats.NewSummary([]float64{0}),
		})
	}

	monitor <- Completion{Desc: desc, Result: result, Stdout: buf.Bytes()}
}
