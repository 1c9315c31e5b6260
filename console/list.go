package console

import (
	"fmt"
	"io"
	"os"

	"github.com/justapithecus/gauntlet/iox"
	"github.com/justapithecus/gauntlet/runtime"
)

// ListTests prints the filtered entries to stdout, one "NAME: kind" line
// each, honoring the name and skip filters. When a log file is configured,
// each entry is also written to it as a "kind NAME" line.
func ListTests(opts *runtime.Options, cases []runtime.TestCase) error {
	return ListTestsTo(opts, cases, os.Stdout)
}

// ListTestsTo is ListTests with an injectable output.
func ListTestsTo(opts *runtime.Options, cases []runtime.TestCase, out io.Writer) error {
	logfile, err := openLogfile(opts)
	if err != nil {
		return err
	}
	if logfile != nil {
		defer iox.DiscardClose(logfile)
	}

	quiet := opts.Format == runtime.FormatTerse
	ntest, nbench := 0, 0

	for _, tc := range runtime.FilterTests(opts, cases) {
		kind := "test"
		if tc.IsBench() {
			kind = "benchmark"
			nbench++
		} else {
			ntest++
		}

		if _, err := fmt.Fprintf(out, "%s: %s\n", tc.Desc.Name, kind); err != nil {
			return err
		}
		if logfile != nil {
			if _, err := fmt.Fprintf(logfile, "%s %s\n", kind, tc.Desc.Name); err != nil {
				return err
			}
		}
	}

	if !quiet {
		if ntest != 0 || nbench != 0 {
			if _, err := fmt.Fprintln(out); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(out, "%s, %s\n",
			plural(ntest, "test"), plural(nbench, "benchmark")); err != nil {
			return err
		}
	}
	return nil
}

// plural renders "1 test" / "n tests".
func plural(count int, word string) string {
	if count == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", count, word)
}
