// Package runtime implements the harness core: filtering and ordering,
// per-test execution with panic isolation, the benchmark sampler wiring,
// and the bounded run loop with timeout supervision.
package runtime

import (
	"fmt"
	goruntime "runtime"
	"strconv"
	"time"

	"github.com/justapithecus/gauntlet/log"
)

// Environment variables honored by the options model.
const (
	// EnvTestThreads overrides the worker count when --test-threads is
	// absent. Must parse as an integer >= 1.
	EnvTestThreads = "GAUNTLET_TEST_THREADS"
	// EnvNocapture disables output capture when set to anything but "0".
	EnvNocapture = "GAUNTLET_NOCAPTURE"
)

// RunIgnored selects how the ignore bit interacts with filtering.
type RunIgnored int

const (
	// RunIgnoredNo runs only non-ignored entries.
	RunIgnoredNo RunIgnored = iota
	// RunIgnoredYes runs every surviving entry, clearing its ignore bit.
	RunIgnoredYes
	// RunIgnoredOnly keeps only ignored entries, clearing their bits.
	RunIgnoredOnly
)

// ColorChoice is the output coloring policy.
type ColorChoice int

const (
	// ColorAuto colorizes when stdout is a terminal and capture is on.
	ColorAuto ColorChoice = iota
	// ColorAlways always colorizes.
	ColorAlways
	// ColorNever never colorizes.
	ColorNever
)

// OutputFormat selects the formatter.
type OutputFormat int

const (
	// FormatPretty prints one verbose line per test.
	FormatPretty OutputFormat = iota
	// FormatTerse prints one character per test.
	FormatTerse
	// FormatJSON streams one JSON object per event.
	FormatJSON
	// FormatJUnit accumulates results and emits a JUnit XML document.
	FormatJUnit
)

// DefaultWarnTimeout is the deadline after which a running test is
// reported as timed out. The test is not cancelled; its result is still
// accepted when it arrives.
const DefaultWarnTimeout = 60 * time.Second

// Options is the validated configuration consumed by the filter, the run
// loop, and the console driver. The CLI layer builds it; tests construct
// it directly.
type Options struct {
	List               bool
	Filter             string // empty means no filter
	FilterExact        bool
	ExcludeShouldPanic bool
	RunIgnored         RunIgnored
	RunTests           bool
	BenchBenchmarks    bool
	Logfile            string
	JournalPath        string
	Nocapture          bool
	Color              ColorChoice
	Format             OutputFormat
	// TestThreads is the worker bound; zero means detect from the
	// environment or the CPU count.
	TestThreads int
	Skip        []string
	// DisplayOutput makes the pretty formatter show passing output too.
	DisplayOutput bool
	// WarnTimeout overrides DefaultWarnTimeout when positive. The CLI
	// never sets it; timeout-supervision tests do.
	WarnTimeout time.Duration
	// Diag receives structured scheduling diagnostics. Nil means an
	// environment-gated logger is created on first use.
	Diag *log.Logger
}

// ResolveEnv applies environment overrides to unset fields. lookup is
// os.LookupEnv in production. A malformed thread count is an option error.
func (o *Options) ResolveEnv(lookup func(string) (string, bool)) error {
	if o.TestThreads == 0 {
		if s, ok := lookup(EnvTestThreads); ok {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				return fmt.Errorf("%s is %q, should be a positive integer", EnvTestThreads, s)
			}
			o.TestThreads = n
		}
	}
	if !o.Nocapture {
		if s, ok := lookup(EnvNocapture); ok && s != "0" {
			o.Nocapture = true
		}
	}
	return nil
}

// Concurrency returns the worker bound: TestThreads when set, otherwise
// the detected CPU count.
func (o *Options) Concurrency() int {
	if o.TestThreads > 0 {
		return o.TestThreads
	}
	n := goruntime.NumCPU()
	if n < 1 {
		n = 1
	}
	return n
}

func (o *Options) warnTimeout() time.Duration {
	if o.WarnTimeout > 0 {
		return o.WarnTimeout
	}
	return DefaultWarnTimeout
}

func (o *Options) diag() *log.Logger {
	if o.Diag == nil {
		o.Diag = log.NewLogger()
	}
	return o.Diag
}
