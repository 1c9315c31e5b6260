// Package bench implements the micro-benchmark sampling loop.
//
// A benchmark body receives a *B and calls Iter with the closure to
// measure. In Auto mode the harness runs an adaptive loop that grows the
// batch size geometrically until the per-iteration median stabilizes or the
// wall-clock budget runs out; in Single mode the closure runs exactly once
// and the timing is discarded (the convert-benchmarks-to-tests path).
package bench

import (
	"math"
	"time"

	"github.com/justapithecus/gauntlet/stats"
)

// Mode selects the sampling strategy.
type Mode int

const (
	// Auto runs the adaptive sampling loop.
	Auto Mode = iota
	// Single runs the closure once with k=1 and records no summary.
	Single
)

// B is the handle passed to benchmark bodies. It allows set-up and
// tear-down around the measured region via a call to Iter.
type B struct {
	mode    Mode
	summary *stats.Summary

	// Bytes hints the number of bytes processed per iteration; when
	// non-zero the harness derives an MB/s figure from it.
	Bytes uint64
}

// New returns a bencher in the given mode.
func New(mode Mode) *B {
	return &B{mode: mode}
}

// Iter measures fn. The closure performs one unit of work and returns its
// result; the result is routed through an optimizer barrier so the measured
// call cannot be eliminated as dead code.
func (b *B) Iter(fn func() any) {
	if b.mode == Single {
		nsIter(fn, 1)
		return
	}
	s := sample(fn)
	b.summary = &s
}

// Run invokes the benchmark body with b and returns the recorded summary,
// or nil if the body never called Iter.
func (b *B) Run(body func(*B)) *stats.Summary {
	body(b)
	return b.summary
}

// RunOnce executes body in Single mode: its Iter closure runs exactly once
// and no timing is kept.
func RunOnce(body func(*B)) {
	New(Single).Run(body)
}

// sink receives every measured result. The indirection through a
// no-inline function plus a package-level store is the optimizer barrier.
var sink any

//go:noinline
func blackBox(v any) any {
	sink = v
	return v
}

// nsIter runs fn k times and returns the elapsed wall time in nanoseconds.
func nsIter(fn func() any, k uint64) uint64 {
	start := time.Now()
	for i := uint64(0); i < k; i++ {
		blackBox(fn())
	}
	return uint64(time.Since(start).Nanoseconds())
}

const (
	// nsTargetTotal aims each sample at roughly one millisecond.
	nsTargetTotal = 1_000_000
	// sampleCount is the fixed size of the per-round sample vector.
	sampleCount = 50
	// winsorizePct strips the 5% tails before summarizing.
	winsorizePct = 5.0
	// convergeAfter is the minimum round wall time before the convergence
	// rule may stop the loop.
	convergeAfter = 100 * time.Millisecond
	// totalBudget bounds the whole sampling run.
	totalBudget = 3 * time.Second
)

// sample runs the adaptive loop and returns the summary of the final
// 5n-batch round.
func sample(fn func() any) stats.Summary {
	// Ballpark run to size the first batch.
	nsSingle := nsIter(fn, 1)
	if nsSingle < 1 {
		nsSingle = 1
	}
	n := uint64(nsTargetTotal) / nsSingle
	if n < 1 {
		n = 1
	}

	var total time.Duration
	samples := make([]float64, sampleCount)
	for {
		loopStart := time.Now()

		for i := range samples {
			samples[i] = float64(nsIter(fn, n)) / float64(n)
		}
		stats.Winsorize(samples, winsorizePct)
		summ := stats.NewSummary(samples)

		for i := range samples {
			samples[i] = float64(nsIter(fn, 5*n)) / float64(5*n)
		}
		stats.Winsorize(samples, winsorizePct)
		summ5 := stats.NewSummary(samples)

		loopRun := time.Since(loopStart)

		// Converged: the run is long enough to trust and the medians of
		// the n and 5n batches agree within the noise.
		if loopRun > convergeAfter &&
			summ.MedianAbsDevPct < 1.0 &&
			summ.Median-summ5.Median < summ5.MedianAbsDev {
			return summ5
		}

		total += loopRun
		if total > totalBudget {
			return summ5
		}

		// The next round multiplies by 2 and measures 5n batches; guard
		// the full 10x headroom before growing.
		if n > math.MaxUint64/10 {
			return summ5
		}
		n *= 2
	}
}
