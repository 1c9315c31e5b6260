package runtime

import (
	"testing"
	"time"

	"github.com/justapithecus/gauntlet/bench"
	"github.com/justapithecus/gauntlet/types"
)

func benchNoop(b *bench.B) {
	b.Iter(func() any { return 0 })
}

// collect runs the loop and gathers the emitted events.
func collect(t *testing.T, opts *Options, cases []TestCase) []types.Event {
	t.Helper()
	var events []types.Event
	err := RunTests(opts, cases, func(ev types.Event) error {
		events = append(events, ev)
		return nil
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return events
}

func TestRunLoop_EmitsFilteredEventsFirst(t *testing.T) {
	opts := &Options{RunTests: true, TestThreads: 1, Filter: "keep"}
	cases := namedCases("keep::a", "keep::b", "drop::c")

	events := collect(t, opts, cases)

	fo, ok := events[0].(types.EventFilteredOut)
	if !ok {
		t.Fatalf("first event = %T, want filtered-out", events[0])
	}
	if fo.Count != 1 {
		t.Errorf("filtered out = %d, want 1", fo.Count)
	}
	fl, ok := events[1].(types.EventFiltered)
	if !ok {
		t.Fatalf("second event = %T, want filtered", events[1])
	}
	if len(fl.Descs) != 2 {
		t.Errorf("filtered len = %d, want 2", len(fl.Descs))
	}
}

func TestRunLoop_SerialResultsInSortedOrder(t *testing.T) {
	opts := &Options{RunTests: true, TestThreads: 1}
	cases := namedCases("c::z", "a::m", "b::q")

	events := collect(t, opts, cases)

	var results []string
	for _, ev := range events {
		if r, ok := ev.(types.EventResult); ok {
			results = append(results, r.Desc.Name)
		}
	}
	want := []string{"a::m", "b::q", "c::z"}
	if len(results) != len(want) {
		t.Fatalf("results = %v, want %v", results, want)
	}
	for i := range want {
		if results[i] != want[i] {
			t.Fatalf("results = %v, want %v", results, want)
		}
	}
}

func TestRunLoop_OneWaitOneResultPerEntry(t *testing.T) {
	opts := &Options{RunTests: true, TestThreads: 4}
	cases := namedCases("a", "b", "c", "d", "e", "f")

	events := collect(t, opts, cases)

	waits := make(map[string]int)
	results := make(map[string]int)
	for _, ev := range events {
		switch e := ev.(type) {
		case types.EventWait:
			waits[e.Desc.Name]++
			if results[e.Desc.Name] != 0 {
				t.Errorf("wait for %q after its result", e.Desc.Name)
			}
		case types.EventResult:
			results[e.Desc.Name]++
		}
	}
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		if waits[name] != 1 {
			t.Errorf("waits[%q] = %d, want 1", name, waits[name])
		}
		if results[name] != 1 {
			t.Errorf("results[%q] = %d, want 1", name, results[name])
		}
	}
}

func TestRunLoop_TimeoutSupervision(t *testing.T) {
	opts := &Options{
		RunTests:    true,
		TestThreads: 2,
		Nocapture:   true,
		WarnTimeout: 50 * time.Millisecond,
	}
	cases := []TestCase{
		{Desc: types.TestDesc{Name: "slow"}, Fn: func() {
			time.Sleep(200 * time.Millisecond)
		}},
		{Desc: types.TestDesc{Name: "fast"}, Fn: func() {}},
	}

	events := collect(t, opts, cases)

	timeoutAt, resultAt := -1, -1
	counts := map[string]int{}
	for i, ev := range events {
		switch e := ev.(type) {
		case types.EventTimeout:
			if e.Desc.Name == "slow" && timeoutAt == -1 {
				timeoutAt = i
			}
		case types.EventResult:
			counts[e.Desc.Name]++
			if e.Desc.Name == "slow" {
				resultAt = i
			}
		}
	}

	if timeoutAt == -1 {
		t.Fatal("no timeout event for the slow test")
	}
	if resultAt == -1 {
		t.Fatal("no result event for the slow test")
	}
	if timeoutAt > resultAt {
		t.Errorf("timeout at %d after result at %d", timeoutAt, resultAt)
	}
	if counts["slow"] != 1 || counts["fast"] != 1 {
		t.Errorf("result counts = %v, want one each", counts)
	}
}

func TestRunLoop_BenchmarksRunAfterTests(t *testing.T) {
	opts := &Options{RunTests: true, BenchBenchmarks: true, TestThreads: 4, Nocapture: true}
	cases := []TestCase{
		{Desc: types.TestDesc{Name: "aa::bench"}, BenchFn: benchNoop},
		{Desc: types.TestDesc{Name: "zz::test"}, Fn: func() {}},
	}

	events := collect(t, opts, cases)

	var order []string
	for _, ev := range events {
		if r, ok := ev.(types.EventResult); ok {
			order = append(order, r.Desc.Name)
		}
	}
	if len(order) != 2 {
		t.Fatalf("results = %v, want 2", order)
	}
	// The benchmark sorts first by name but still runs last.
	if order[0] != "zz::test" || order[1] != "aa::bench" {
		t.Errorf("order = %v, want tests before benchmarks", order)
	}
}

func TestRunLoop_ConvertedBenchmarkReportsOk(t *testing.T) {
	opts := &Options{RunTests: true, TestThreads: 1, Nocapture: true}
	cases := []TestCase{
		{Desc: types.TestDesc{Name: "bench::quick"}, BenchFn: benchNoop},
	}

	events := collect(t, opts, cases)

	var result types.EventResult
	found := false
	for _, ev := range events {
		if r, ok := ev.(types.EventResult); ok {
			result = r
			found = true
		}
	}
	if !found {
		t.Fatal("no result event")
	}
	if result.Result.Kind != types.ResultOk {
		t.Errorf("converted benchmark result = %v, want ok", result.Result.Kind)
	}
	if result.Desc.Padding != types.PadNone {
		t.Errorf("padding = %v, want none after conversion", result.Desc.Padding)
	}
}

func TestRunLoop_ForceIgnoreWhenNotRunningTests(t *testing.T) {
	opts := &Options{RunTests: false, BenchBenchmarks: true, TestThreads: 1, Nocapture: true}
	cases := namedCases("only::test")

	events := collect(t, opts, cases)

	for _, ev := range events {
		if r, ok := ev.(types.EventResult); ok {
			if r.Result.Kind != types.ResultIgnored {
				t.Errorf("result = %v, want ignored when tests are not run", r.Result.Kind)
			}
		}
	}
}
