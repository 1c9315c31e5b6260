package types

import (
	"fmt"
	"strings"

	"github.com/justapithecus/gauntlet/stats"
)

// ResultKind discriminates the classified outcome of executing an entry.
type ResultKind int

const (
	// ResultOk: the body met its contract.
	ResultOk ResultKind = iota
	// ResultIgnored: the entry was not executed.
	ResultIgnored
	// ResultAllowedFail: the body failed but the entry allows failure.
	ResultAllowedFail
	// ResultFailed: the body broke its contract.
	ResultFailed
	// ResultFailedMsg: failed, with an explanatory message.
	ResultFailedMsg
	// ResultBench: a measured benchmark.
	ResultBench
)

// BenchSamples carries the statistical summary of a benchmark's
// per-iteration timings plus the derived throughput.
type BenchSamples struct {
	// NsIterSumm summarizes nanoseconds per iteration.
	NsIterSumm stats.Summary
	// MBPerSec is the throughput derived from the bencher's bytes hint,
	// zero when no hint was set.
	MBPerSec uint64
}

// String formats the samples as "%11s ns/iter (+/- %s)" with
// thousands-separated median and (max - min), followed by " = N MB/s" when
// the throughput is non-zero.
func (bs BenchSamples) String() string {
	median := uint64(bs.NsIterSumm.Median)
	deviation := uint64(bs.NsIterSumm.Max - bs.NsIterSumm.Min)
	out := fmt.Sprintf("%11s ns/iter (+/- %s)",
		FmtThousands(median), FmtThousands(deviation))
	if bs.MBPerSec != 0 {
		out += fmt.Sprintf(" = %d MB/s", bs.MBPerSec)
	}
	return out
}

// FmtThousands formats n with comma thousands separators.
func FmtThousands(n uint64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// Result is the immutable classified outcome of one executed entry.
type Result struct {
	Kind ResultKind
	// Message is set only for ResultFailedMsg.
	Message string
	// Bench is set only for ResultBench.
	Bench BenchSamples
}

// Ok returns a passing result.
func Ok() Result { return Result{Kind: ResultOk} }

// Ignored returns the result of a skipped entry.
func Ignored() Result { return Result{Kind: ResultIgnored} }

// AllowedFail returns the result of a tolerated failure.
func AllowedFail() Result { return Result{Kind: ResultAllowedFail} }

// Failed returns a failing result.
func Failed() Result { return Result{Kind: ResultFailed} }

// FailedMsg returns a failing result carrying a message.
func FailedMsg(msg string) Result {
	return Result{Kind: ResultFailedMsg, Message: msg}
}

// Bench returns a measured benchmark result.
func Bench(bs BenchSamples) Result {
	return Result{Kind: ResultBench, Bench: bs}
}

// LogString renders the result for the per-test log file:
// "ok" | "failed" | "failed: <msg>" | "ignored" | "failed (allowed)" |
// the benchmark sample line.
func (r Result) LogString() string {
	switch r.Kind {
	case ResultOk:
		return "ok"
	case ResultFailed:
		return "failed"
	case ResultFailedMsg:
		return "failed: " + r.Message
	case ResultIgnored:
		return "ignored"
	case ResultAllowedFail:
		return "failed (allowed)"
	case ResultBench:
		return r.Bench.String()
	default:
		return "failed"
	}
}
