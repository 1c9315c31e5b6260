package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/gauntlet/cli/config"
	"github.com/justapithecus/gauntlet/runtime"
)

// optionsFromContext validates the parsed flags against the conflict
// rules and folds in the environment and config-file defaults.
// Precedence: flags, then environment, then config file.
func optionsFromContext(c *cli.Context) (*runtime.Options, error) {
	allowUnstable := false
	if z := c.String("Z"); z != "" {
		if !unstableAllowed(os.LookupEnv) {
			return nil, errors.New("the option `Z` is only accepted on builds with unstable features")
		}
		if z != "unstable-options" {
			return nil, errors.New("unrecognized option to `Z`")
		}
		allowUnstable = true
	}

	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	includeIgnored := c.Bool("include-ignored")
	if includeIgnored && !allowUnstable {
		return nil, errors.New(`the "include-ignored" flag is only accepted with -Z unstable-options`)
	}
	excludeShouldPanic := c.Bool("exclude-should-panic")
	if excludeShouldPanic && !allowUnstable {
		return nil, errors.New(`the "exclude-should-panic" flag is only accepted with -Z unstable-options`)
	}

	var runIgnored runtime.RunIgnored
	switch {
	case includeIgnored && c.Bool("ignored"):
		return nil, errors.New("the options --include-ignored and --ignored are mutually exclusive")
	case includeIgnored:
		runIgnored = runtime.RunIgnoredYes
	case c.Bool("ignored"):
		runIgnored = runtime.RunIgnoredOnly
	default:
		runIgnored = runtime.RunIgnoredNo
	}

	quiet := c.Bool("quiet") || cfg.Quiet

	colorName := c.String("color")
	if colorName == "" {
		colorName = cfg.Color
	}
	color, err := parseColor(colorName)
	if err != nil {
		return nil, err
	}

	formatName := c.String("format")
	if formatName == "" {
		formatName = cfg.Format
	}
	format, err := parseFormat(formatName, quiet, allowUnstable)
	if err != nil {
		return nil, err
	}

	testThreads := 0
	if c.IsSet("test-threads") {
		testThreads = c.Int("test-threads")
		if testThreads < 1 {
			return nil, fmt.Errorf("argument for --test-threads must be a number > 0 (was %d)", testThreads)
		}
	}

	logfile := c.String("logfile")
	if logfile == "" {
		logfile = cfg.Logfile
	}

	benchBenchmarks := c.Bool("bench")

	opts := &runtime.Options{
		List:               c.Bool("list"),
		Filter:             c.Args().First(),
		FilterExact:        c.Bool("exact"),
		ExcludeShouldPanic: excludeShouldPanic,
		RunIgnored:         runIgnored,
		RunTests:           !benchBenchmarks || c.Bool("test"),
		BenchBenchmarks:    benchBenchmarks,
		Logfile:            logfile,
		JournalPath:        c.String("journal"),
		Nocapture:          c.Bool("nocapture"),
		Color:              color,
		Format:             format,
		TestThreads:        testThreads,
		Skip:               append(append([]string(nil), cfg.Skip...), c.StringSlice("skip")...),
	}

	if err := opts.ResolveEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	// Config-file defaults apply only when neither flag nor environment
	// decided.
	if opts.TestThreads == 0 && cfg.TestThreads > 0 {
		opts.TestThreads = cfg.TestThreads
	}
	if !opts.Nocapture && cfg.Nocapture {
		opts.Nocapture = true
	}

	return opts, nil
}

// parseColor maps a --color value onto the policy; an unknown value is an
// error naming the valid set.
func parseColor(s string) (runtime.ColorChoice, error) {
	switch s {
	case "", "auto":
		return runtime.ColorAuto, nil
	case "always":
		return runtime.ColorAlways, nil
	case "never":
		return runtime.ColorNever, nil
	default:
		return 0, fmt.Errorf("argument for --color must be auto, always, or never (was %s)", s)
	}
}

// parseFormat maps a --format value onto the formatter; json and junit
// require the unstable gate.
func parseFormat(s string, quiet, allowUnstable bool) (runtime.OutputFormat, error) {
	switch s {
	case "":
		if quiet {
			return runtime.FormatTerse, nil
		}
		return runtime.FormatPretty, nil
	case "pretty":
		return runtime.FormatPretty, nil
	case "terse":
		return runtime.FormatTerse, nil
	case "json":
		if !allowUnstable {
			return 0, errors.New(`the "json" format is only accepted with -Z unstable-options`)
		}
		return runtime.FormatJSON, nil
	case "junit":
		if !allowUnstable {
			return 0, errors.New(`the "junit" format is only accepted with -Z unstable-options`)
		}
		return runtime.FormatJUnit, nil
	default:
		return 0, fmt.Errorf("argument for --format must be pretty, terse, json, or junit (was %s)", s)
	}
}

// unstableAllowed reports whether the -Z gate is open: refused on builds
// with EnvDisableUnstable set unless EnvBootstrap re-enables it.
func unstableAllowed(lookup func(string) (string, bool)) bool {
	_, disabled := lookup(EnvDisableUnstable)
	_, bootstrap := lookup(EnvBootstrap)
	return bootstrap || !disabled
}
