// Package cmd wires the CLI surface to the harness core.
//
// The surface is flags-only: one optional positional FILTER plus the run
// control flags. Option errors, IO errors, and failed runs all exit 101;
// a clean run exits 0.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/gauntlet/console"
	"github.com/justapithecus/gauntlet/runtime"
)

// Exit codes.
const (
	exitSuccess = 0
	exitFailure = 101
)

// Environment variables gating unstable features.
const (
	// EnvDisableUnstable refuses -Z when set, unless EnvBootstrap is
	// also set.
	EnvDisableUnstable = "GAUNTLET_DISABLE_UNSTABLE_FEATURES"
	// EnvBootstrap re-enables unstable features on gated builds.
	EnvBootstrap = "GAUNTLET_BOOTSTRAP"
)

// Main parses os.Args, runs or lists the given entries, and exits the
// process with the harness exit code.
func Main(cases []runtime.TestCase) {
	os.Exit(Execute(os.Args, cases))
}

// Execute parses args and runs or lists the entries, returning the
// process exit code. It never calls os.Exit, so tests can drive it.
func Execute(args []string, cases []runtime.TestCase) int {
	app := &cli.App{
		Name:            "gauntlet",
		Usage:           "unit-test and micro-benchmark harness",
		ArgsUsage:       "[FILTER]",
		HideHelpCommand: true,
		Flags:           flags(),
		// Keep control of the exit path; errors are mapped below.
		ExitErrHandler: func(*cli.Context, error) {},
		Action: func(c *cli.Context) error {
			opts, err := optionsFromContext(c)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), exitFailure)
			}

			if opts.List {
				if err := console.ListTests(opts, cases); err != nil {
					return cli.Exit(fmt.Sprintf("error: io error when listing tests: %v", err), exitFailure)
				}
				return nil
			}

			success, err := console.RunTests(opts, cases)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: io error when running tests: %v", err), exitFailure)
			}
			if !success {
				return cli.Exit("", exitFailure)
			}
			return nil
		},
	}

	if err := app.Run(args); err != nil {
		var coder cli.ExitCoder
		if errors.As(err, &coder) {
			if msg := coder.Error(); msg != "" {
				fmt.Fprintln(os.Stderr, msg)
			}
			return coder.ExitCode()
		}
		// Flag parse errors arrive unwrapped.
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitFailure
	}
	return exitSuccess
}
