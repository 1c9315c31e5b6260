package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/justapithecus/gauntlet/types"
)

// maxColumn is how many one-character results fit on a line before the
// terse formatter inserts a newline.
const maxColumn = 100

// Terse prints one character per test.
type Terse struct {
	out             io.Writer
	maxNameLen      int
	isMultithreaded bool
	column          int

	pass lipgloss.Style
	fail lipgloss.Style
	warn lipgloss.Style
}

// NewTerse creates the terse formatter.
func NewTerse(out io.Writer, useColor bool, maxNameLen int, isMultithreaded bool) *Terse {
	r := lipgloss.NewRenderer(out)
	if useColor {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Terse{
		out:             out,
		maxNameLen:      maxNameLen,
		isMultithreaded: isMultithreaded,
		pass:            r.NewStyle().Foreground(lipgloss.Color("2")),
		fail:            r.NewStyle().Foreground(lipgloss.Color("1")),
		warn:            r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

func (t *Terse) plain(s string) error {
	_, err := io.WriteString(t.out, s)
	return err
}

func (t *Terse) writeChar(c string) error {
	if err := t.plain(c); err != nil {
		return err
	}
	t.column++
	if t.column%maxColumn == 0 {
		return t.plain("\n")
	}
	return nil
}

// WriteRunStart implements Formatter.
func (t *Terse) WriteRunStart(testCount int) error {
	noun := "tests"
	if testCount == 1 {
		noun = "test"
	}
	return t.plain(fmt.Sprintf("\nrunning %d %s\n", testCount, noun))
}

// WriteTestStart implements Formatter. Terse output has no start marker.
func (t *Terse) WriteTestStart(types.TestDesc) error { return nil }

// WriteTimeout implements Formatter.
func (t *Terse) WriteTimeout(desc types.TestDesc) error {
	return t.plain(fmt.Sprintf("test %s has been running for over 60 seconds\n", desc.Name))
}

// WriteResult implements Formatter.
func (t *Terse) WriteResult(desc types.TestDesc, result types.Result, _ []byte) error {
	switch result.Kind {
	case types.ResultOk:
		return t.writeChar(t.pass.Render("."))
	case types.ResultFailed, types.ResultFailedMsg:
		return t.writeChar(t.fail.Render("F"))
	case types.ResultIgnored:
		return t.writeChar(t.warn.Render("i"))
	case types.ResultAllowedFail:
		return t.writeChar(t.warn.Render("a"))
	case types.ResultBench:
		// Benchmarks get a full line; a single character loses the
		// measurement.
		return t.plain(fmt.Sprintf("bench: %s ... %s\n",
			desc.PaddedName(t.maxNameLen, desc.Padding), result.Bench))
	}
	return nil
}

// WriteRunFinish implements Formatter.
func (t *Terse) WriteRunFinish(state *types.RunState) (bool, error) {
	success := state.Success()
	if !success {
		if err := t.writeFailures(state.Failures); err != nil {
			return false, err
		}
	}

	if err := t.plain("\ntest result: "); err != nil {
		return false, err
	}
	verdict := t.pass.Render("ok")
	if !success {
		verdict = t.fail.Render("FAILED")
	}
	if err := t.plain(verdict); err != nil {
		return false, err
	}

	var counts string
	if state.AllowedFail > 0 {
		counts = fmt.Sprintf(
			". %d passed; %d failed (%d allowed); %d ignored; %d measured; %d filtered out\n\n",
			state.Passed, state.Failed+state.AllowedFail, state.AllowedFail,
			state.Ignored, state.Measured, state.FilteredOut)
	} else {
		counts = fmt.Sprintf(
			". %d passed; %d failed; %d ignored; %d measured; %d filtered out\n\n",
			state.Passed, state.Failed, state.Ignored, state.Measured, state.FilteredOut)
	}
	if err := t.plain(counts); err != nil {
		return false, err
	}
	return success, nil
}

func (t *Terse) writeFailures(failures []types.TestOutput) error {
	if err := t.plain("\nfailures:\n"); err != nil {
		return err
	}

	names := make([]string, 0, len(failures))
	var blocks string
	for _, f := range failures {
		names = append(names, f.Desc.Name)
		if len(f.Stdout) > 0 {
			blocks += fmt.Sprintf("---- %s stdout ----\n%s\n", f.Desc.Name, f.Stdout)
		}
	}
	if blocks != "" {
		if err := t.plain("\n" + blocks); err != nil {
			return err
		}
	}

	if err := t.plain("\nfailures:\n"); err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		if err := t.plain(fmt.Sprintf("    %s\n", name)); err != nil {
			return err
		}
	}
	return nil
}
