// Package types defines the harness data model: test descriptors, outcomes,
// benchmark samples, and the run-loop event stream.
//
// It depends only on the stats and metrics packages.
package types

import "strings"

// NamePadding governs right-alignment of the name column in formatters.
// Benchmarks pad on the right so timing columns line up.
type NamePadding int

const (
	// PadNone leaves the name unpadded.
	PadNone NamePadding = iota
	// PadOnRight fills the name with trailing spaces up to the column width.
	PadOnRight
)

// ShouldPanicKind discriminates the panic expectation of a test.
type ShouldPanicKind int

const (
	// PanicNone: a panic is a failure.
	PanicNone ShouldPanicKind = iota
	// PanicAny: the test passes only if the body panics.
	PanicAny
	// PanicWithMessage: the body must panic and the panic message must
	// contain ShouldPanic.Message as a substring.
	PanicWithMessage
)

// ShouldPanic is the panic contract of a test body.
type ShouldPanic struct {
	Kind    ShouldPanicKind
	Message string
}

// NoPanic returns the default contract: a panic fails the test.
func NoPanic() ShouldPanic { return ShouldPanic{Kind: PanicNone} }

// Panics returns the contract that the body must panic.
func Panics() ShouldPanic { return ShouldPanic{Kind: PanicAny} }

// PanicsWith returns the contract that the body must panic with a message
// containing msg.
func PanicsWith(msg string) ShouldPanic {
	return ShouldPanic{Kind: PanicWithMessage, Message: msg}
}

// TestDesc describes one schedulable test or benchmark. It is a comparable
// value type: the run loop keys its timeout table on the whole descriptor,
// so duplicate names are tolerated provided the descriptors differ in some
// field.
//
// Name is a dotted path: ASCII identifier segments joined by "::". The
// harness does not enforce uniqueness.
type TestDesc struct {
	Name        string
	Ignore      bool
	ShouldPanic ShouldPanic
	AllowFail   bool
	Padding     NamePadding
}

// PaddedName returns the name padded with trailing spaces to column width
// when align is PadOnRight, or the bare name otherwise.
func (d TestDesc) PaddedName(column int, align NamePadding) string {
	if align != PadOnRight || len(d.Name) >= column {
		return d.Name
	}
	return d.Name + strings.Repeat(" ", column-len(d.Name))
}
