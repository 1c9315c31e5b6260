package render

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/justapithecus/gauntlet/types"
)

// JUnit accumulates results and renders a JUnit XML document at run
// finish. The XML prologue is written exactly once.
type JUnit struct {
	out     io.Writer
	results []types.TestOutput
	kinds   []types.Result
}

// NewJUnit creates the JUnit formatter.
func NewJUnit(out io.Writer) *JUnit {
	return &JUnit{out: out}
}

func (u *JUnit) line(s string) error {
	_, err := io.WriteString(u.out, s+"\n")
	return err
}

// WriteRunStart implements Formatter. The document is rendered at finish.
func (u *JUnit) WriteRunStart(int) error { return nil }

// WriteTestStart implements Formatter.
func (u *JUnit) WriteTestStart(types.TestDesc) error { return nil }

// WriteTimeout implements Formatter.
func (u *JUnit) WriteTimeout(types.TestDesc) error { return nil }

// WriteResult implements Formatter.
func (u *JUnit) WriteResult(desc types.TestDesc, result types.Result, stdout []byte) error {
	u.results = append(u.results, types.TestOutput{Desc: desc, Stdout: stdout})
	u.kinds = append(u.kinds, result)
	return nil
}

// WriteRunFinish implements Formatter.
func (u *JUnit) WriteRunFinish(state *types.RunState) (bool, error) {
	if err := u.line(`<?xml version="1.0" encoding="UTF-8"?>`); err != nil {
		return false, err
	}
	if err := u.line("<testsuites>"); err != nil {
		return false, err
	}

	timestamp := time.Now().Format(time.RFC3339)
	elapsed := float64(time.Since(state.StartTime).Milliseconds()) / 1000.0
	if err := u.line(fmt.Sprintf(
		`<testsuite name="test" package="test" id="0" hostname="localhost" errors="0" failures="%d" tests="%d" time="%g" timestamp=%q>`,
		state.Failed, state.Total, elapsed, timestamp)); err != nil {
		return false, err
	}

	for i, r := range u.results {
		name := xmlEscape(r.Desc.Name)
		switch u.kinds[i].Kind {
		case types.ResultFailed:
			if err := u.line(fmt.Sprintf(`<testcase classname="test.global" name="%s" time="0">`, name)); err != nil {
				return false, err
			}
			if err := u.line(`<failure type="assert"/>`); err != nil {
				return false, err
			}
			if err := u.line(`</testcase>`); err != nil {
				return false, err
			}
		case types.ResultFailedMsg:
			if err := u.line(fmt.Sprintf(`<testcase classname="test.global" name="%s" time="0">`, name)); err != nil {
				return false, err
			}
			if err := u.line(fmt.Sprintf(`<failure message="%s" type="assert"/>`, xmlEscape(u.kinds[i].Message))); err != nil {
				return false, err
			}
			if err := u.line(`</testcase>`); err != nil {
				return false, err
			}
		case types.ResultBench:
			if err := u.line(fmt.Sprintf(`<testcase classname="test.global" name="%s" time="%g" />`,
				name, u.kinds[i].Bench.NsIterSumm.Sum)); err != nil {
				return false, err
			}
		default:
			if err := u.line(fmt.Sprintf(`<testcase classname="test.global" name="%s" time="0"/>`, name)); err != nil {
				return false, err
			}
		}
	}

	for _, tail := range []string{"<system-out/>", "<system-err/>", "</testsuite>", "</testsuites>"} {
		if err := u.line(tail); err != nil {
			return false, err
		}
	}
	return state.Success(), nil
}

// xmlEscape escapes s for use inside an XML attribute value.
func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
