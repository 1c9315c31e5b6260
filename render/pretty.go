package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/justapithecus/gauntlet/types"
)

// Pretty prints one verbose line per test.
type Pretty struct {
	out             io.Writer
	maxNameLen      int
	isMultithreaded bool

	pass lipgloss.Style
	fail lipgloss.Style
	warn lipgloss.Style
}

// NewPretty creates the pretty formatter. maxNameLen is the widest padded
// name; isMultithreaded defers name printing to the result line so
// concurrent output stays aligned.
func NewPretty(out io.Writer, useColor bool, maxNameLen int, isMultithreaded bool) *Pretty {
	r := lipgloss.NewRenderer(out)
	if useColor {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Pretty{
		out:             out,
		maxNameLen:      maxNameLen,
		isMultithreaded: isMultithreaded,
		pass:            r.NewStyle().Foreground(lipgloss.Color("2")),
		fail:            r.NewStyle().Foreground(lipgloss.Color("1")),
		warn:            r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

func (p *Pretty) plain(s string) error {
	_, err := io.WriteString(p.out, s)
	return err
}

func (p *Pretty) writeTestName(desc types.TestDesc) error {
	return p.plain(fmt.Sprintf("test %s ... ", desc.PaddedName(p.maxNameLen, desc.Padding)))
}

// WriteRunStart implements Formatter.
func (p *Pretty) WriteRunStart(testCount int) error {
	noun := "tests"
	if testCount == 1 {
		noun = "test"
	}
	return p.plain(fmt.Sprintf("\nrunning %d %s\n", testCount, noun))
}

// WriteTestStart implements Formatter. Under concurrency the name is
// printed with the result instead, so lines do not interleave mid-row;
// serially it is printed here so a hanging test is identifiable.
func (p *Pretty) WriteTestStart(desc types.TestDesc) error {
	if !p.isMultithreaded {
		return p.writeTestName(desc)
	}
	return nil
}

// WriteTimeout implements Formatter.
func (p *Pretty) WriteTimeout(desc types.TestDesc) error {
	return p.plain(fmt.Sprintf("test %s has been running for over 60 seconds\n", desc.Name))
}

// WriteResult implements Formatter.
func (p *Pretty) WriteResult(desc types.TestDesc, result types.Result, _ []byte) error {
	if p.isMultithreaded {
		if err := p.writeTestName(desc); err != nil {
			return err
		}
	}

	var line string
	switch result.Kind {
	case types.ResultOk:
		line = p.pass.Render("ok")
	case types.ResultFailed, types.ResultFailedMsg:
		line = p.fail.Render("FAILED")
	case types.ResultIgnored:
		line = p.warn.Render("ignored")
	case types.ResultAllowedFail:
		line = p.warn.Render("FAILED (allowed)")
	case types.ResultBench:
		line = fmt.Sprintf("bench: %s", result.Bench)
	}
	return p.plain(line + "\n")
}

// WriteRunFinish implements Formatter.
func (p *Pretty) WriteRunFinish(state *types.RunState) (bool, error) {
	if state.DisplayOutput {
		if err := p.writeOutputs("successes", state.NotFailures); err != nil {
			return false, err
		}
	}

	success := state.Success()
	if !success {
		if err := p.writeOutputs("failures", state.Failures); err != nil {
			return false, err
		}
	}

	if err := p.plain("\ntest result: "); err != nil {
		return false, err
	}
	verdict := p.pass.Render("ok")
	if !success {
		verdict = p.fail.Render("FAILED")
	}
	if err := p.plain(verdict); err != nil {
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
	if err := p.plain(counts); err != nil {
		return false, err
	}
	return success, nil
}

// writeOutputs prints the captured output blocks for a group of entries,
// then the sorted name list under the group heading.
func (p *Pretty) writeOutputs(heading string, entries []types.TestOutput) error {
	if err := p.plain(fmt.Sprintf("\n%s:\n", heading)); err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	var blocks string
	for _, e := range entries {
		names = append(names, e.Desc.Name)
		if len(e.Stdout) > 0 {
			blocks += fmt.Sprintf("---- %s stdout ----\n%s\n", e.Desc.Name, e.Stdout)
		}
	}
	if blocks != "" {
		if err := p.plain("\n" + blocks); err != nil {
			return err
		}
	}

	if err := p.plain(fmt.Sprintf("\n%s:\n", heading)); err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		if err := p.plain(fmt.Sprintf("    %s\n", name)); err != nil {
			return err
		}
	}
	return nil
}
