package console

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/justapithecus/gauntlet/bench"
	"github.com/justapithecus/gauntlet/journal"
	"github.com/justapithecus/gauntlet/runtime"
	"github.com/justapithecus/gauntlet/types"
)

func sampleSuite() []runtime.TestCase {
	return []runtime.TestCase{
		{Desc: types.TestDesc{Name: "a::pass"}, Fn: func() {}},
		{Desc: types.TestDesc{Name: "b::fail"}, Fn: func() { panic("broken") }},
		{Desc: types.TestDesc{Name: "c::skip", Ignore: true}, Fn: func() {}},
		{Desc: types.TestDesc{Name: "d::tolerated", AllowFail: true}, Fn: func() { panic("meh") }},
	}
}

func TestRunTests_FailingSuite(t *testing.T) {
	opts := &runtime.Options{
		RunTests:    true,
		TestThreads: 1,
		Nocapture:   true,
		Color:       runtime.ColorNever,
	}

	var out bytes.Buffer
	success, err := RunTestsTo(opts, sampleSuite(), &out)
	if err != nil {
		t.Fatal(err)
	}
	if success {
		t.Error("suite with a failure reported success")
	}

	s := out.String()
	if !strings.Contains(s, "running 4 tests") {
		t.Errorf("run start missing: %q", s)
	}
	if !strings.Contains(s, "test result: FAILED. 1 passed; 2 failed (1 allowed); 1 ignored; 0 measured; 0 filtered out") {
		t.Errorf("summary wrong: %q", s)
	}
}

func TestRunTests_PassingSuite(t *testing.T) {
	opts := &runtime.Options{
		RunTests:    true,
		TestThreads: 1,
		Nocapture:   true,
		Color:       runtime.ColorNever,
	}
	cases := []runtime.TestCase{
		{Desc: types.TestDesc{Name: "only::one"}, Fn: func() {}},
	}

	var out bytes.Buffer
	success, err := RunTestsTo(opts, cases, &out)
	if err != nil {
		t.Fatal(err)
	}
	if !success {
		t.Errorf("passing suite reported failure: %q", out.String())
	}
}

func TestRunTests_WritesLogfile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	opts := &runtime.Options{
		RunTests:    true,
		TestThreads: 1,
		Nocapture:   true,
		Color:       runtime.ColorNever,
		Logfile:     logPath,
	}

	var out bytes.Buffer
	if _, err := RunTestsTo(opts, sampleSuite(), &out); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	want := []string{
		"ok a::pass",
		"failed b::fail",
		"ignored c::skip",
		"failed (allowed) d::tolerated",
	}
	if len(lines) != len(want) {
		t.Fatalf("logfile lines = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRunTests_WritesJournal(t *testing.T) {
	journalPath := filepath.Join(t.TempDir(), "run.journal")
	opts := &runtime.Options{
		RunTests:    true,
		TestThreads: 1,
		Nocapture:   true,
		Color:       runtime.ColorNever,
		JournalPath: journalPath,
	}

	var out bytes.Buffer
	if _, err := RunTestsTo(opts, sampleSuite(), &out); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(journalPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := journal.NewReader(f)
	var records []*journal.Record
	for {
		rec, err := r.ReadRecord()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		records = append(records, rec)
	}

	if records[0].Type != journal.TypeRunStart || records[0].TestCount != 4 {
		t.Errorf("first record = %+v", records[0])
	}
	last := records[len(records)-1]
	if last.Type != journal.TypeRunFinish {
		t.Fatalf("last record = %+v", last)
	}
	if last.Counters["passed"] != 1 || last.Counters["failed"] != 1 ||
		last.Counters["ignored"] != 1 || last.Counters["allowed_fail"] != 1 {
		t.Errorf("counters = %v", last.Counters)
	}
}

func TestRunTests_FailedMsgAppendsNote(t *testing.T) {
	opts := &runtime.Options{
		RunTests:    true,
		TestThreads: 1,
		Color:       runtime.ColorNever,
	}
	cases := []runtime.TestCase{
		{
			Desc: types.TestDesc{Name: "x", ShouldPanic: types.PanicsWith("wanted")},
			Fn:   func() { panic("other") },
		},
	}

	var out bytes.Buffer
	success, err := RunTestsTo(opts, cases, &out)
	if err != nil {
		t.Fatal(err)
	}
	if success {
		t.Error("mismatched panic message reported success")
	}
	if !strings.Contains(out.String(), "note: Panic did not include expected string 'wanted'") {
		t.Errorf("note missing from failure output: %q", out.String())
	}
}

func TestListTests_HonorsFilters(t *testing.T) {
	opts := &runtime.Options{RunTests: true, Filter: "a::"}

	var out bytes.Buffer
	if err := ListTestsTo(opts, sampleSuite(), &out); err != nil {
		t.Fatal(err)
	}

	s := out.String()
	if !strings.Contains(s, "a::pass: test\n") {
		t.Errorf("listing missing entry: %q", s)
	}
	if strings.Contains(s, "b::fail") {
		t.Errorf("filtered entry listed: %q", s)
	}
	if !strings.Contains(s, "1 test, 0 benchmarks") {
		t.Errorf("tally missing: %q", s)
	}
}

func TestListTests_TerseOmitsTally(t *testing.T) {
	opts := &runtime.Options{RunTests: true, Format: runtime.FormatTerse}

	var out bytes.Buffer
	if err := ListTestsTo(opts, sampleSuite(), &out); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "benchmarks") {
		t.Errorf("terse listing shows tally: %q", out.String())
	}
}

func TestMaxNameLen_OnlyCountsPaddedEntries(t *testing.T) {
	cases := []runtime.TestCase{
		{Desc: types.TestDesc{Name: "a_very_long_test_name"}, Fn: func() {}},
		{Desc: types.TestDesc{Name: "bench::x"}, BenchFn: func(*bench.B) {}},
	}

	if got := maxNameLen(cases); got != len("bench::x") {
		t.Errorf("maxNameLen = %d, want %d", got, len("bench::x"))
	}
}
