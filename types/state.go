package types

import (
	"time"

	"github.com/justapithecus/gauntlet/metrics"
)

// TestOutput pairs a descriptor with the output captured while it ran.
type TestOutput struct {
	Desc   TestDesc
	Stdout []byte
}

// RunState is the single-owner aggregate held by the console driver. It is
// created at run start, mutated only by the event dispatcher, and consumed
// by the terminal summary. It is never shared across goroutines.
type RunState struct {
	Total       int
	Passed      int
	Failed      int
	Ignored     int
	AllowedFail int
	FilteredOut int
	Measured    int

	// Metrics maps benchmark names to their measured value and noise.
	Metrics *metrics.Map
	// Failures accumulates failing entries with their captured output.
	Failures []TestOutput
	// NotFailures accumulates passing entries for formatters that show
	// passing output.
	NotFailures []TestOutput

	// StartTime anchors the run's elapsed-time reporting.
	StartTime time.Time

	// DisplayOutput makes formatters show output of passing tests.
	DisplayOutput bool
}

// NewRunState returns an empty state anchored at now.
func NewRunState() *RunState {
	return &RunState{
		Metrics:   metrics.NewMap(),
		StartTime: time.Now(),
	}
}

// CurrentTestCount is the number of delivered results so far.
func (s *RunState) CurrentTestCount() int {
	return s.Passed + s.Failed + s.Ignored + s.Measured + s.AllowedFail
}

// Success reports whether the run passed: no hard failures.
func (s *RunState) Success() bool {
	return s.Failed == 0
}
