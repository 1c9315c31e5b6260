package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/justapithecus/gauntlet/types"
)

func TestJUnit_PrologueWrittenExactlyOnce(t *testing.T) {
	var out bytes.Buffer
	u := NewJUnit(&out)

	if err := u.WriteRunStart(1); err != nil {
		t.Fatal(err)
	}
	if err := u.WriteResult(types.TestDesc{Name: "a"}, types.Ok(), nil); err != nil {
		t.Fatal(err)
	}

	st := types.NewRunState()
	st.Total = 1
	st.Passed = 1
	if _, err := u.WriteRunFinish(st); err != nil {
		t.Fatal(err)
	}

	prologue := `<?xml version="1.0" encoding="UTF-8"?>`
	if got := strings.Count(out.String(), prologue); got != 1 {
		t.Errorf("prologue written %d times, want 1:\n%s", got, out.String())
	}
}

func TestJUnit_FailureCases(t *testing.T) {
	var out bytes.Buffer
	u := NewJUnit(&out)

	_ = u.WriteResult(types.TestDesc{Name: "pass"}, types.Ok(), nil)
	_ = u.WriteResult(types.TestDesc{Name: "fail"}, types.Failed(), nil)
	_ = u.WriteResult(types.TestDesc{Name: "msg"}, types.FailedMsg(`expected <x>`), nil)

	st := types.NewRunState()
	st.Total = 3
	st.Passed = 1
	st.Failed = 2

	success, err := u.WriteRunFinish(st)
	if err != nil {
		t.Fatal(err)
	}
	if success {
		t.Error("failing run reported success")
	}

	s := out.String()
	if !strings.Contains(s, `failures="2" tests="3"`) {
		t.Errorf("testsuite attributes wrong:\n%s", s)
	}
	if !strings.Contains(s, `<failure type="assert"/>`) {
		t.Errorf("plain failure missing:\n%s", s)
	}
	if !strings.Contains(s, `expected &lt;x&gt;`) {
		t.Errorf("message not XML-escaped:\n%s", s)
	}
	if !strings.Contains(s, "</testsuites>") {
		t.Errorf("document not closed:\n%s", s)
	}
}
