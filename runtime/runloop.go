package runtime

import (
	"sort"
	"time"

	"github.com/justapithecus/gauntlet/types"
)

// EventCallback receives every run-loop event, in order. A non-nil error
// aborts the run (IO errors from formatters propagate this way).
type EventCallback func(types.Event) error

// RunTests is the scheduler. It filters and orders the entries, emits the
// FilteredOut and Filtered events, dispatches tests under the concurrency
// policy with timeout supervision, and runs benchmarks serially at the
// end. Every scheduled entry yields exactly one Wait and one Result; a
// test that outlives the warn deadline additionally yields Timeout events
// but keeps running.
func RunTests(opts *Options, cases []TestCase, notify EventCallback) error {
	diag := opts.diag()

	total := len(cases)
	filtered := FilterTests(opts, cases)
	if !opts.BenchBenchmarks {
		filtered = ConvertBenchmarksToTests(filtered)
	}
	for i := range filtered {
		filtered[i].Desc.Padding = filtered[i].Padding()
	}

	if err := notify(types.EventFilteredOut{Count: total - len(filtered)}); err != nil {
		return err
	}
	descs := make([]types.TestDesc, len(filtered))
	for i, tc := range filtered {
		descs[i] = tc.Desc
	}
	if err := notify(types.EventFiltered{Descs: descs}); err != nil {
		return err
	}

	var tests, benchs []TestCase
	for _, tc := range filtered {
		if tc.IsBench() {
			benchs = append(benchs, tc)
		} else {
			tests = append(tests, tc)
		}
	}

	concurrency := opts.Concurrency()
	warn := opts.warnTimeout()
	diag.Debug("run loop starting", map[string]any{
		"tests":       len(tests),
		"benchmarks":  len(benchs),
		"concurrency": concurrency,
	})

	// Admission is bounded by the concurrency limit, so the channel never
	// holds more than that many undelivered completions plus any
	// harvested-but-still-running stragglers.
	monitor := make(chan Completion, len(filtered)+1)

	if concurrency == 1 {
		for _, tc := range tests {
			if err := notify(types.EventWait{Desc: tc.Desc}); err != nil {
				return err
			}
			RunTest(opts, !opts.RunTests, tc, monitor, Serial)
			comp := <-monitor
			if err := notify(types.EventResult{Desc: comp.Desc, Result: comp.Result, Stdout: comp.Stdout}); err != nil {
				return err
			}
		}
	} else {
		// Deadlines for in-flight tests. Every in-flight test appears
		// exactly once; harvested tests are removed but keep running.
		running := make(map[types.TestDesc]time.Time)
		// pending counts live (un-harvested) workers and bounds admission;
		// outstanding counts every completion still owed, harvested or not.
		pending, outstanding := 0, 0
		next := 0

		for outstanding > 0 || next < len(tests) {
			for pending < concurrency && next < len(tests) {
				tc := tests[next]
				next++
				running[tc.Desc] = time.Now().Add(warn)
				if err := notify(types.EventWait{Desc: tc.Desc}); err != nil {
					return err
				}
				diag.Debug("admitted test", map[string]any{
					"name":    tc.Desc.Name,
					"pending": pending + 1,
				})
				RunTest(opts, !opts.RunTests, tc, monitor, Concurrent)
				pending++
				outstanding++
			}

			var comp Completion
			for {
				wait, anyRunning := nextDeadline(running)
				if !anyRunning {
					comp = <-monitor
					break
				}
				received, got := recvTimeout(monitor, wait)
				for _, desc := range harvestTimedOut(running) {
					pending--
					diag.Debug("test exceeded warn deadline", map[string]any{
						"name": desc.Name,
					})
					if err := notify(types.EventTimeout{Desc: desc}); err != nil {
						return err
					}
				}
				if got {
					comp = received
					break
				}
			}

			// Absent when the test was already harvested; tolerated.
			_, live := running[comp.Desc]
			delete(running, comp.Desc)

			if err := notify(types.EventResult{Desc: comp.Desc, Result: comp.Result, Stdout: comp.Stdout}); err != nil {
				return err
			}
			if live {
				pending--
			}
			outstanding--
		}
	}

	// All benchmarks run at the end, in serial, even in concurrent mode.
	for _, tc := range benchs {
		if err := notify(types.EventWait{Desc: tc.Desc}); err != nil {
			return err
		}
		RunTest(opts, false, tc, monitor, Serial)
		comp := <-monitor
		if err := notify(types.EventResult{Desc: comp.Desc, Result: comp.Result, Stdout: comp.Stdout}); err != nil {
			return err
		}
	}

	diag.Debug("run loop finished", map[string]any{"scheduled": len(filtered)})
	return nil
}

// nextDeadline returns the shortest remaining timeout among running
// tests, floored at zero, and whether any test is in flight.
func nextDeadline(running map[types.TestDesc]time.Time) (time.Duration, bool) {
	if len(running) == 0 {
		return 0, false
	}
	var min time.Time
	first := true
	for _, deadline := range running {
		if first || deadline.Before(min) {
			min = deadline
			first = false
		}
	}
	wait := time.Until(min)
	if wait < 0 {
		wait = 0
	}
	return wait, true
}

// recvTimeout receives a completion or gives up after d.
func recvTimeout(monitor <-chan Completion, d time.Duration) (Completion, bool) {
	if d <= 0 {
		select {
		case comp := <-monitor:
			return comp, true
		default:
			return Completion{}, false
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case comp := <-monitor:
		return comp, true
	case <-timer.C:
		return Completion{}, false
	}
}

// harvestTimedOut removes and returns every entry whose deadline has
// passed, in name order. The workers themselves keep running; their
// completions are still accepted when they arrive.
func harvestTimedOut(running map[types.TestDesc]time.Time) []types.TestDesc {
	now := time.Now()
	var timedOut []types.TestDesc
	for desc, deadline := range running {
		if !now.Before(deadline) {
			timedOut = append(timedOut, desc)
		}
	}
	sort.Slice(timedOut, func(i, j int) bool {
		return timedOut[i].Name < timedOut[j].Name
	})
	for _, desc := range timedOut {
		delete(running, desc)
	}
	return timedOut
}
