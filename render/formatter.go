// Package render implements the formatter layer consumed by the console
// driver. A Formatter receives the run-loop event stream, already in total
// order, and owns the wire encoding of the pretty, terse, JSON, and JUnit
// outputs.
package render

import (
	"github.com/justapithecus/gauntlet/types"
)

// Formatter is the protocol between the console driver and an output
// encoding. Calls arrive in event order; WriteRunFinish is called exactly
// once at the end and reports whether the run succeeded.
type Formatter interface {
	// WriteRunStart announces the number of scheduled entries.
	WriteRunStart(testCount int) error
	// WriteTestStart announces that an entry has been dispatched.
	WriteTestStart(desc types.TestDesc) error
	// WriteTimeout reports an entry that exceeded the warn deadline.
	WriteTimeout(desc types.TestDesc) error
	// WriteResult reports one classified outcome with captured output.
	WriteResult(desc types.TestDesc, result types.Result, stdout []byte) error
	// WriteRunFinish renders the terminal summary and reports success.
	WriteRunFinish(state *types.RunState) (bool, error)
}
