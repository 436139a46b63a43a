// Copyright (c) 2026, The quizzig Authors
// See LICENSE for licensing information

package shellrun

import (
	"context"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/piranha/quizzig/block"
	"github.com/piranha/quizzig/internal"
)

func testEnv(t *testing.T) []string {
	t.Helper()
	return append(os.Environ(), "LANG=C")
}

func TestRunBasic(t *testing.T) {
	cmds := block.Parse([]byte("  $ echo one\n  one\n  $ echo two\n  two\n"), 2)
	if len(cmds) != 2 {
		t.Fatalf("got %d commands", len(cmds))
	}
	results, err := Run(context.Background(), cmds, Options{Env: testEnv(t)})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Output != "one\n" || results[0].ExitCode != 0 {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Output != "two\n" || results[1].ExitCode != 0 {
		t.Errorf("results[1] = %+v", results[1])
	}
}

func TestRunExitCode(t *testing.T) {
	cmds := block.Parse([]byte("  $ (exit 42)\n"), 2)
	results, err := Run(context.Background(), cmds, Options{Env: testEnv(t)})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].ExitCode != 42 {
		t.Errorf("ExitCode = %d, want 42", results[0].ExitCode)
	}
}

func TestRunMergesStderr(t *testing.T) {
	cmds := block.Parse([]byte("  $ echo out; echo err 1>&2\n"), 2)
	results, err := Run(context.Background(), cmds, Options{Env: testEnv(t)})
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(results[0].Output, "\n")
	if len(lines) != 3 || lines[0] != "out" || lines[1] != "err" || lines[2] != "" {
		t.Errorf("Output = %q", results[0].Output)
	}
}

func TestRunSharedState(t *testing.T) {
	cmds := block.Parse([]byte("  $ X=hi\n  $ echo $X\n  hi\n"), 2)
	results, err := Run(context.Background(), cmds, Options{Env: testEnv(t)})
	if err != nil {
		t.Fatal(err)
	}
	if results[1].Output != "hi\n" {
		t.Errorf("Output = %q, want shell variables to carry across commands", results[1].Output)
	}
}

func TestRunMissingMarkersLeaveZeroResults(t *testing.T) {
	// A shell that dies mid-script (no "sh" left to read the remaining
	// script) never emits markers for the commands after the one that
	// killed it; those results stay at the zero value.
	cmds := block.Parse([]byte("  $ kill -KILL $$\n  $ echo never\n  never\n"), 2)
	results, err := Run(context.Background(), cmds, Options{Env: testEnv(t)})
	if err != nil {
		t.Fatal(err)
	}
	if results[1] != (Result{}) {
		t.Errorf("results[1] = %+v, want zero value", results[1])
	}
}

func TestRunDebugReportsZeroValueResults(t *testing.T) {
	// Debug mode connects the child's stdout straight through to opts.Stdout
	// via os/exec's own internal copying goroutine, so a test-owned buffer
	// needs to be safe for the race detector even though this test only
	// reads it after Run (and so after cmd.Wait) returns.
	var out internal.ConcBuffer
	cmds := block.Parse([]byte("  $ echo hi\n  hi\n"), 2)
	results, err := Run(context.Background(), cmds, Options{Env: testEnv(t), Debug: true, Stdout: &out})
	if err != nil {
		t.Fatal(err)
	}
	if results[0] != (Result{}) {
		t.Errorf("results[0] = %+v, want zero value in debug mode", results[0])
	}
	if !strings.Contains(out.String(), "hi") {
		t.Errorf("debug output = %q, want it to contain command output", out.String())
	}
}

func TestRunDebugLineOrder(t *testing.T) {
	var lines []string
	lw := internal.NewLineWriter(func(s string) { lines = append(lines, s) })
	cmds := block.Parse([]byte("  $ printf 'a\\nb\\nc\\n'\n  a\n  b\n  c\n"), 2)
	_, err := Run(context.Background(), cmds, Options{Env: testEnv(t), Debug: true, Stdout: lw})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b", "c"}
	if len(lines) != len(want) {
		t.Fatalf("lines = %v, want %v", lines, want)
	}
	for i, l := range want {
		if lines[i] != l {
			t.Errorf("lines[%d] = %q, want %q", i, lines[i], l)
		}
	}
}

func TestParseMarker(t *testing.T) {
	idx, code, ok := parseMarker("QUIZZIGabc 3 42\n", "QUIZZIGabc ")
	if !ok || idx != 3 || code != 42 {
		t.Errorf("parseMarker = (%d, %d, %v)", idx, code, ok)
	}
	if _, _, ok := parseMarker("not a marker\n", "QUIZZIGabc "); ok {
		t.Errorf("parseMarker matched a non-marker line")
	}
	if _, _, ok := parseMarker("QUIZZIGabc nope\n", "QUIZZIGabc "); ok {
		t.Errorf("parseMarker matched malformed payload")
	}
}

func TestBuildScriptEmbedsSaltAndIndex(t *testing.T) {
	cmds := block.Parse([]byte("  $ true\n  $ false\n"), 2)
	script := buildScript(cmds, "QUIZZIGdeadbeef", false)
	for i := range cmds {
		if !strings.Contains(script, "QUIZZIGdeadbeef "+strconv.Itoa(i)+" %d") {
			t.Errorf("script missing marker for command %d:\n%s", i, script)
		}
	}
}

func TestBuildScriptDebugOmitsMarkers(t *testing.T) {
	cmds := block.Parse([]byte("  $ true\n"), 2)
	script := buildScript(cmds, "QUIZZIGdeadbeef", true)
	if strings.Contains(script, "QUIZZIGdeadbeef") {
		t.Errorf("debug script should omit marker emitters:\n%s", script)
	}
}
