package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/justapithecus/gauntlet/types"
)

// JSON streams one JSON object per event, newline-delimited.
type JSON struct {
	out io.Writer
}

// NewJSON creates the JSON formatter.
func NewJSON(out io.Writer) *JSON {
	return &JSON{out: out}
}

func (j *JSON) writeLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := j.out.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(j.out, "\n")
	return err
}

type jsonSuite struct {
	Type        string `json:"type"`
	Event       string `json:"event"`
	TestCount   *int   `json:"test_count,omitempty"`
	Passed      *int   `json:"passed,omitempty"`
	Failed      *int   `json:"failed,omitempty"`
	AllowedFail *int   `json:"allowed_fail,omitempty"`
	Ignored     *int   `json:"ignored,omitempty"`
	Measured    *int   `json:"measured,omitempty"`
	FilteredOut *int   `json:"filtered_out,omitempty"`
}

type jsonTest struct {
	Type    string `json:"type"`
	Event   string `json:"event"`
	Name    string `json:"name"`
	Stdout  string `json:"stdout,omitempty"`
	Message string `json:"message,omitempty"`
}

type jsonBench struct {
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	Median    float64 `json:"median"`
	Deviation float64 `json:"deviation"`
	MBPerSec  uint64  `json:"mb_per_sec,omitempty"`
}

// WriteRunStart implements Formatter.
func (j *JSON) WriteRunStart(testCount int) error {
	return j.writeLine(jsonSuite{Type: "suite", Event: "started", TestCount: &testCount})
}

// WriteTestStart implements Formatter.
func (j *JSON) WriteTestStart(desc types.TestDesc) error {
	return j.writeLine(jsonTest{Type: "test", Event: "started", Name: desc.Name})
}

// WriteTimeout implements Formatter.
func (j *JSON) WriteTimeout(desc types.TestDesc) error {
	return j.writeLine(jsonTest{Type: "test", Event: "timeout", Name: desc.Name})
}

// WriteResult implements Formatter.
func (j *JSON) WriteResult(desc types.TestDesc, result types.Result, stdout []byte) error {
	switch result.Kind {
	case types.ResultOk:
		return j.writeLine(jsonTest{Type: "test", Event: "ok", Name: desc.Name})
	case types.ResultFailed:
		return j.writeLine(jsonTest{Type: "test", Event: "failed", Name: desc.Name, Stdout: string(stdout)})
	case types.ResultFailedMsg:
		return j.writeLine(jsonTest{
			Type: "test", Event: "failed", Name: desc.Name,
			Stdout: string(stdout), Message: result.Message,
		})
	case types.ResultIgnored:
		return j.writeLine(jsonTest{Type: "test", Event: "ignored", Name: desc.Name})
	case types.ResultAllowedFail:
		return j.writeLine(jsonTest{Type: "test", Event: "allowed_failure", Name: desc.Name})
	case types.ResultBench:
		summ := result.Bench.NsIterSumm
		return j.writeLine(jsonBench{
			Type: "bench", Name: desc.Name,
			Median:    summ.Median,
			Deviation: summ.Max - summ.Min,
			MBPerSec:  result.Bench.MBPerSec,
		})
	}
	return fmt.Errorf("unknown result kind %d", result.Kind)
}

// WriteRunFinish implements Formatter.
func (j *JSON) WriteRunFinish(state *types.RunState) (bool, error) {
	success := state.Success()
	event := "ok"
	if !success {
		event = "failed"
	}
	err := j.writeLine(jsonSuite{
		Type: "suite", Event: event,
		Passed:      &state.Passed,
		Failed:      &state.Failed,
		AllowedFail: &state.AllowedFail,
		Ignored:     &state.Ignored,
		Measured:    &state.Measured,
		FilteredOut: &state.FilteredOut,
	})
	return success, err
}
