package cmd

import (
	"testing"

	"github.com/justapithecus/gauntlet/runtime"
	"github.com/justapithecus/gauntlet/types"
)

func passingSuite() []runtime.TestCase {
	return []runtime.TestCase{
		{Desc: types.TestDesc{Name: "pkg::ok"}, Fn: func() {}},
	}
}

func failingSuite() []runtime.TestCase {
	return []runtime.TestCase{
		{Desc: types.TestDesc{Name: "pkg::bad"}, Fn: func() { panic("broken") }},
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in      string
		want    runtime.ColorChoice
		wantErr bool
	}{
		{"", runtime.ColorAuto, false},
		{"auto", runtime.ColorAuto, false},
		{"always", runtime.ColorAlways, false},
		{"never", runtime.ColorNever, false},
		{"sometimes", 0, true},
	}
	for _, tc := range cases {
		got, err := parseColor(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("parseColor(%q) err = %v", tc.in, err)
			continue
		}
		if err == nil && got != tc.want {
			t.Errorf("parseColor(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if got, err := parseFormat("", false, false); err != nil || got != runtime.FormatPretty {
		t.Errorf("default = %v, %v", got, err)
	}
	if got, err := parseFormat("", true, false); err != nil || got != runtime.FormatTerse {
		t.Errorf("quiet default = %v, %v", got, err)
	}
	if _, err := parseFormat("json", false, false); err == nil {
		t.Error("json accepted without the unstable gate")
	}
	if got, err := parseFormat("json", false, true); err != nil || got != runtime.FormatJSON {
		t.Errorf("gated json = %v, %v", got, err)
	}
	if _, err := parseFormat("junit", false, false); err == nil {
		t.Error("junit accepted without the unstable gate")
	}
	if _, err := parseFormat("xml", false, true); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestUnstableAllowed(t *testing.T) {
	env := map[string]string{}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	if !unstableAllowed(lookup) {
		t.Error("default build should allow unstable features")
	}
	env[EnvDisableUnstable] = "1"
	if unstableAllowed(lookup) {
		t.Error("gated build should refuse unstable features")
	}
	env[EnvBootstrap] = "1"
	if !unstableAllowed(lookup) {
		t.Error("bootstrap should re-enable unstable features")
	}
}

func TestExecute_PassingSuite(t *testing.T) {
	t.Chdir(t.TempDir())
	code := Execute([]string{"gauntlet", "--color", "never", "-q"}, passingSuite())
	if code != exitSuccess {
		t.Errorf("exit = %d, want %d", code, exitSuccess)
	}
}

func TestExecute_FailingSuite(t *testing.T) {
	t.Chdir(t.TempDir())
	code := Execute([]string{"gauntlet", "--color", "never", "-q", "--nocapture"}, failingSuite())
	if code != exitFailure {
		t.Errorf("exit = %d, want %d", code, exitFailure)
	}
}

func TestExecute_FilterSkipsFailure(t *testing.T) {
	t.Chdir(t.TempDir())
	suite := append(passingSuite(), failingSuite()...)
	code := Execute([]string{"gauntlet", "--color", "never", "-q", "--nocapture", "pkg::ok"}, suite)
	if code != exitSuccess {
		t.Errorf("exit = %d, want %d", code, exitSuccess)
	}
}

func TestExecute_MutuallyExclusiveIgnoreFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	code := Execute(
		[]string{"gauntlet", "-Z", "unstable-options", "--include-ignored", "--ignored"},
		passingSuite(),
	)
	if code != exitFailure {
		t.Errorf("exit = %d, want %d", code, exitFailure)
	}
}

func TestExecute_IncludeIgnoredNeedsGate(t *testing.T) {
	t.Chdir(t.TempDir())
	code := Execute([]string{"gauntlet", "--include-ignored"}, passingSuite())
	if code != exitFailure {
		t.Errorf("exit = %d, want %d", code, exitFailure)
	}
}

func TestExecute_ZeroThreadsRejected(t *testing.T) {
	t.Chdir(t.TempDir())
	code := Execute([]string{"gauntlet", "--test-threads", "0"}, passingSuite())
	if code != exitFailure {
		t.Errorf("exit = %d, want %d", code, exitFailure)
	}
}

func TestExecute_BadColorRejected(t *testing.T) {
	t.Chdir(t.TempDir())
	code := Execute([]string{"gauntlet", "--color", "sometimes"}, passingSuite())
	if code != exitFailure {
		t.Errorf("exit = %d, want %d", code, exitFailure)
	}
}

func TestExecute_BadThreadEnvRejected(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(runtime.EnvTestThreads, "zero")
	code := Execute([]string{"gauntlet", "-q"}, passingSuite())
	if code != exitFailure {
		t.Errorf("exit = %d, want %d", code, exitFailure)
	}
}

func TestExecute_ListMode(t *testing.T) {
	t.Chdir(t.TempDir())
	code := Execute([]string{"gauntlet", "--list"}, failingSuite())
	if code != exitSuccess {
		t.Errorf("listing must not execute bodies; exit = %d", code)
	}
}
