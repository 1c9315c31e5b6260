// Package console drives a run end-to-end: it instantiates the formatter
// selected by the options, owns the RunState, dispatches run-loop events,
// maintains the log file and event journal, and computes the final
// success verdict.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/justapithecus/gauntlet/iox"
	"github.com/justapithecus/gauntlet/journal"
	"github.com/justapithecus/gauntlet/log"
	"github.com/justapithecus/gauntlet/render"
	"github.com/justapithecus/gauntlet/runtime"
	"github.com/justapithecus/gauntlet/types"
)

// RunTests executes the whole suite against stdout and reports whether
// the run succeeded. Errors are IO errors (formatter, log-file, or
// journal writes that failed) or a post-run mismatch between delivered
// results and scheduled entries.
func RunTests(opts *runtime.Options, cases []runtime.TestCase) (bool, error) {
	return RunTestsTo(opts, cases, os.Stdout)
}

// RunTestsTo is RunTests with an injectable formatter output. Tests use
// it to assert on rendered output.
func RunTestsTo(opts *runtime.Options, cases []runtime.TestCase, out io.Writer) (bool, error) {
	diag := log.NewLogger()
	if opts.Diag == nil {
		opts.Diag = diag
	}

	formatter := newFormatter(opts, out, maxNameLen(cases), opts.Concurrency() > 1)

	st := types.NewRunState()
	st.DisplayOutput = opts.DisplayOutput

	logfile, err := openLogfile(opts)
	if err != nil {
		return false, err
	}
	if logfile != nil {
		defer iox.DiscardClose(logfile)
	}

	var jw *journal.Writer
	if opts.JournalPath != "" {
		f, err := os.Create(opts.JournalPath)
		if err != nil {
			return false, err
		}
		defer iox.DiscardClose(f)
		jw = journal.NewWriter(f)
	}

	diag.Info("run starting", map[string]any{"entries": len(cases)})

	err = runtime.RunTests(opts, cases, func(ev types.Event) error {
		return dispatch(ev, st, formatter, logfile, jw)
	})
	if err != nil {
		return false, err
	}

	if st.CurrentTestCount() != st.Total {
		return false, fmt.Errorf(
			"delivered %d results for %d scheduled entries", st.CurrentTestCount(), st.Total)
	}

	if jw != nil {
		if err := jw.WriteFinish(map[string]int{
			"total":        st.Total,
			"passed":       st.Passed,
			"failed":       st.Failed,
			"ignored":      st.Ignored,
			"allowed_fail": st.AllowedFail,
			"measured":     st.Measured,
			"filtered_out": st.FilteredOut,
		}); err != nil {
			return false, err
		}
	}

	success, err := formatter.WriteRunFinish(st)
	diag.Info("run finished", map[string]any{
		"success": success,
		"passed":  st.Passed,
		"failed":  st.Failed,
	})
	return success, err
}

// dispatch routes one event: counters and storage into the state, lines
// into the log file, frames into the journal, rendering to the formatter.
func dispatch(ev types.Event, st *types.RunState, formatter render.Formatter, logfile io.Writer, jw *journal.Writer) error {
	if jw != nil {
		if err := jw.WriteEvent(ev); err != nil {
			return err
		}
	}

	switch e := ev.(type) {
	case types.EventFilteredOut:
		st.FilteredOut = e.Count
		return nil

	case types.EventFiltered:
		st.Total = len(e.Descs)
		return formatter.WriteRunStart(len(e.Descs))

	case types.EventWait:
		return formatter.WriteTestStart(e.Desc)

	case types.EventTimeout:
		return formatter.WriteTimeout(e.Desc)

	case types.EventResult:
		if logfile != nil {
			line := fmt.Sprintf("%s %s\n", e.Result.LogString(), e.Desc.Name)
			if _, err := io.WriteString(logfile, line); err != nil {
				return err
			}
		}
		if err := formatter.WriteResult(e.Desc, e.Result, e.Stdout); err != nil {
			return err
		}

		switch e.Result.Kind {
		case types.ResultOk:
			st.Passed++
			st.NotFailures = append(st.NotFailures, types.TestOutput{Desc: e.Desc, Stdout: e.Stdout})
		case types.ResultIgnored:
			st.Ignored++
		case types.ResultAllowedFail:
			st.AllowedFail++
		case types.ResultBench:
			summ := e.Result.Bench.NsIterSumm
			st.Metrics.Insert(e.Desc.Name, summ.Median, summ.Max-summ.Min)
			st.Measured++
		case types.ResultFailed:
			st.Failed++
			st.Failures = append(st.Failures, types.TestOutput{Desc: e.Desc, Stdout: e.Stdout})
		case types.ResultFailedMsg:
			st.Failed++
			stdout := append(append([]byte(nil), e.Stdout...), []byte("note: "+e.Result.Message)...)
			st.Failures = append(st.Failures, types.TestOutput{Desc: e.Desc, Stdout: stdout})
		}
		return nil
	}
	return nil
}

// newFormatter builds the formatter selected by the options.
func newFormatter(opts *runtime.Options, out io.Writer, maxName int, multithreaded bool) render.Formatter {
	switch opts.Format {
	case runtime.FormatTerse:
		return render.NewTerse(out, useColor(opts), maxName, multithreaded)
	case runtime.FormatJSON:
		return render.NewJSON(out)
	case runtime.FormatJUnit:
		return render.NewJUnit(out)
	default:
		return render.NewPretty(out, useColor(opts), maxName, multithreaded)
	}
}

// useColor resolves the color policy: auto colorizes only when capture is
// on and stdout is a terminal.
func useColor(opts *runtime.Options) bool {
	switch opts.Color {
	case runtime.ColorAlways:
		return true
	case runtime.ColorNever:
		return false
	default:
		return !opts.Nocapture && isTTY(os.Stdout)
	}
}

// isTTY returns true if the writer is a TTY.
func isTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// maxNameLen is the widest name among entries that pad; zero when none
// do. Formatters align the name column to it.
func maxNameLen(cases []runtime.TestCase) int {
	max := 0
	for _, tc := range cases {
		if tc.Padding() == types.PadOnRight && len(tc.Desc.Name) > max {
			max = len(tc.Desc.Name)
		}
	}
	return max
}

// openLogfile opens the per-test log file when one is configured.
func openLogfile(opts *runtime.Options) (io.WriteCloser, error) {
	if opts.Logfile == "" {
		return nil, nil
	}
	return os.Create(opts.Logfile)
}
