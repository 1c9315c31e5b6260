package cmd

import "github.com/urfave/cli/v2"

// flags returns the full flag surface. FILTER is the single optional
// positional argument.
func flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "include-ignored",
			Usage: "Run ignored and not ignored tests",
		},
		&cli.BoolFlag{
			Name:  "ignored",
			Usage: "Run only ignored tests",
		},
		&cli.BoolFlag{
			Name:  "exclude-should-panic",
			Usage: "Exclude tests expected to panic",
		},
		&cli.BoolFlag{
			Name:  "test",
			Usage: "Run tests and not benchmarks",
		},
		&cli.BoolFlag{
			Name:  "bench",
			Usage: "Run benchmarks instead of tests",
		},
		&cli.BoolFlag{
			Name:  "list",
			Usage: "List all tests and benchmarks",
		},
		&cli.StringFlag{
			Name:  "logfile",
			Usage: "Also write one line per test result to the specified file",
		},
		&cli.BoolFlag{
			Name:  "nocapture",
			Usage: "Don't capture stdout of each test, allow printing directly",
		},
		&cli.IntFlag{
			Name:  "test-threads",
			Usage: "Number of threads used for running tests in parallel",
		},
		&cli.StringSliceFlag{
			Name:  "skip",
			Usage: "Skip tests whose names contain FILTER (repeatable)",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Display one character per test instead of one line. Alias to --format=terse",
		},
		&cli.BoolFlag{
			Name:  "exact",
			Usage: "Exactly match filters rather than by substring",
		},
		&cli.StringFlag{
			Name:  "color",
			Usage: "Configure coloring of output: auto, always, never",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Configure formatting of output: pretty, terse, json, junit",
		},
		&cli.StringFlag{
			Name:  "Z",
			Usage: "Enable unstable flags: unstable-options",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to YAML config file with flag defaults",
		},
		&cli.StringFlag{
			Name:  "journal",
			Usage: "Write the event stream to PATH as a msgpack journal",
		},
	}
}
