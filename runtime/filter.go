package runtime

import (
	"sort"
	"strings"

	"github.com/justapithecus/gauntlet/bench"
	"github.com/justapithecus/gauntlet/types"
)

// FilterTests applies the name filter, the skip patterns, the
// should-panic exclusion, and the run-ignored policy, then sorts the
// survivors by name in ascending byte order. The input slice is not
// modified; ignore bits may differ on the returned copies.
//
// FilterTests is idempotent under unchanged options, except with
// RunIgnoredOnly: that policy clears the ignore bit on its survivors, so a
// second pass keeps none of them.
func FilterTests(opts *Options, cases []TestCase) []TestCase {
	filtered := append([]TestCase(nil), cases...)

	matches := func(tc TestCase, pattern string) bool {
		if opts.FilterExact {
			return tc.Desc.Name == pattern
		}
		return strings.Contains(tc.Desc.Name, pattern)
	}

	if opts.Filter != "" {
		filtered = retain(filtered, func(tc TestCase) bool {
			return matches(tc, opts.Filter)
		})
	}

	for _, skip := range opts.Skip {
		filtered = retain(filtered, func(tc TestCase) bool {
			return !matches(tc, skip)
		})
	}

	if opts.ExcludeShouldPanic {
		filtered = retain(filtered, func(tc TestCase) bool {
			return tc.Desc.ShouldPanic.Kind == types.PanicNone
		})
	}

	switch opts.RunIgnored {
	case RunIgnoredYes:
		for i := range filtered {
			filtered[i].Desc.Ignore = false
		}
	case RunIgnoredOnly:
		filtered = retain(filtered, func(tc TestCase) bool {
			return tc.Desc.Ignore
		})
		for i := range filtered {
			filtered[i].Desc.Ignore = false
		}
	case RunIgnoredNo:
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Desc.Name < filtered[j].Desc.Name
	})

	return filtered
}

// retain keeps the elements for which keep returns true, preserving order.
func retain(cases []TestCase, keep func(TestCase) bool) []TestCase {
	out := cases[:0]
	for _, tc := range cases {
		if keep(tc) {
			out = append(out, tc)
		}
	}
	return out
}

// ConvertBenchmarksToTests rewrites every benchmark entry into a test
// entry whose body runs the benchmark once in single-shot mode with the
// timing discarded. Used when benchmarks are not being measured.
func ConvertBenchmarksToTests(cases []TestCase) []TestCase {
	out := make([]TestCase, len(cases))
	for i, tc := range cases {
		if tc.BenchFn != nil {
			body := tc.BenchFn
			tc.Fn = func() { bench.RunOnce(body) }
			tc.BenchFn = nil
		}
		out[i] = tc
	}
	return out
}
