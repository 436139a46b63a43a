// Copyright (c) 2026, The quizzig Authors
// See LICENSE for licensing information

// Package cram is the orchestrator (§4.5): per file it parses, sets up a
// scratch environment, runs the commands through a real shell, aligns
// actual against expected output, and reports a unified diff or a patch.
package cram

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/piranha/quizzig/block"
	"github.com/piranha/quizzig/shellrun"
	"github.com/piranha/quizzig/udiff"
)

// Status mirrors udiff.CommandStatus at file granularity, plus two
// outcomes udiff has no counterpart for: Patched (a failing file rewritten
// in patch mode) and OrchError (the file could not be processed).
type Status int

const (
	Passed Status = iota
	Failed
	Skipped
	Patched
	OrchError
)

func (s Status) Char() byte {
	switch s {
	case Passed:
		return '.'
	case Skipped:
		return 's'
	case Failed:
		return '!'
	case Patched:
		return 'P'
	default:
		return 'E'
	}
}

// Options configures an Orchestrator, collecting the CLI-level knobs
// named in §6 that shape the per-file environment and execution.
type Options struct {
	Shell       string
	InheritEnv  bool
	ExtraEnv    []string // "VAR=VAL", applied last, highest precedence
	BinDirs     []string // applied in flag order; the last one wins (prepended last)
	KeepTmpdir  bool
	Debug       bool
	Patch       bool
	DebugOutput io.Writer // where debug-mode child output goes; nil means os.Stdout
}

// Orchestrator owns the per-run scratch directory tree and runs files
// against it.
type Orchestrator struct {
	opts    Options
	rootDir string // cwd at invocation time, for ROOTDIR
	tmpRoot string // /tmp/cramtests-<epoch>-<hex>/
}

// New creates the per-run temp directory tree, per §5.
func New(opts Options) (*Orchestrator, error) {
	if opts.Shell == "" {
		opts.Shell = "/bin/sh"
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getwd: %w", err)
	}

	var nonce [8]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("generating tmpdir nonce: %w", err)
	}
	tmpRoot := filepath.Join(os.TempDir(), fmt.Sprintf("cramtests-%d-%s", time.Now().Unix(), hex.EncodeToString(nonce[:])))
	if err := os.MkdirAll(tmpRoot, 0o700); err != nil {
		return nil, fmt.Errorf("creating tmp root: %w", err)
	}
	return &Orchestrator{opts: opts, rootDir: cwd, tmpRoot: tmpRoot}, nil
}

// Close removes the per-run scratch tree unless the caller asked to keep it.
func (o *Orchestrator) Close() error {
	if o.opts.KeepTmpdir {
		return nil
	}
	return os.RemoveAll(o.tmpRoot)
}

// buildEnv assembles the fixed environment block for one file's shell
// session, per §6: normalized locale, per-file temp dirs, QUIZZIG=1, a
// PATH built from the default (or inherited) base plus --bindir prepends,
// the per-test TESTDIR/TESTFILE/TESTSHELL/CRAMTMP/ROOTDIR quintet, and
// finally -e overrides layered on top of everything else.
func (o *Orchestrator) buildEnv(path, fileTmp string) ([]string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	env := map[string]string{}
	var order []string
	set := func(k, v string) {
		if _, ok := env[k]; !ok {
			order = append(order, k)
		}
		env[k] = v
	}

	if o.opts.InheritEnv {
		for _, kv := range os.Environ() {
			if i := strings.IndexByte(kv, '='); i >= 0 {
				set(kv[:i], kv[i+1:])
			}
		}
	}

	set("LANG", "C")
	set("LC_ALL", "C")
	set("LANGUAGE", "C")
	set("TZ", "GMT")
	set("CDPATH", "")
	set("COLUMNS", "80")
	set("GREP_OPTIONS", "")

	set("TMPDIR", fileTmp)
	set("TEMP", fileTmp)
	set("TMP", fileTmp)
	set("HOME", fileTmp)

	set("QUIZZIG", "1")

	base := "/usr/local/bin:/usr/bin:/bin"
	if o.opts.InheritEnv {
		if v, ok := env["PATH"]; ok {
			base = v
		}
	}
	for _, dir := range o.opts.BinDirs {
		base = dir + string(os.PathListSeparator) + base
	}
	set("PATH", base)

	set("TESTDIR", filepath.Dir(absPath))
	set("TESTFILE", filepath.Base(absPath))
	set("TESTSHELL", o.opts.Shell)
	set("CRAMTMP", fileTmp)
	set("ROOTDIR", o.rootDir)

	for _, kv := range o.opts.ExtraEnv {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			set(kv[:i], kv[i+1:])
		}
	}

	out := make([]string, 0, len(order))
	for _, k := range order {
		out = append(out, k+"="+env[k])
	}
	return out, nil
}

// Report is one file's outcome.
type Report struct {
	Path        string
	Status      Status
	Diff        string
	SkipReason  string
	Err         error
	Evals       []udiff.CommandEval
}

// RunFile parses, sets up, executes, and diffs one file, per §4.5. indent
// is the dialect's indentation width (2 for .t, 4 for .md, unless
// overridden).
func (o *Orchestrator) RunFile(ctx context.Context, path string, indent int) Report {
	src, err := os.ReadFile(path)
	if err != nil {
		return Report{Path: path, Status: OrchError, Err: fmt.Errorf("reading %s: %w", path, err)}
	}

	cmds := block.Parse(src, indent)
	if len(cmds) == 0 {
		return Report{Path: path, Status: Skipped, SkipReason: "(no commands)"}
	}

	fileTmp := filepath.Join(o.tmpRoot, filepath.Base(path))
	if err := os.MkdirAll(fileTmp, 0o700); err != nil {
		return Report{Path: path, Status: OrchError, Err: fmt.Errorf("creating tmp dir for %s: %w", path, err)}
	}

	env, err := o.buildEnv(path, fileTmp)
	if err != nil {
		return Report{Path: path, Status: OrchError, Err: err}
	}

	results, err := shellrun.Run(ctx, cmds, shellrun.Options{
		Shell:  o.opts.Shell,
		Dir:    fileTmp,
		Env:    env,
		Debug:  o.opts.Debug,
		Stdout: o.opts.DebugOutput,
	})
	if err != nil {
		return Report{Path: path, Status: OrchError, Err: fmt.Errorf("running %s: %w", path, err)}
	}

	evals := udiff.Eval(cmds, results)
	status := fileStatus(evals)
	rep := Report{Path: path, Status: status, Evals: evals}

	if status == Skipped {
		rep.SkipReason = firstSkippedLine(evals)
		return rep
	}
	if status != Failed {
		return rep
	}

	lines := block.SplitLines(src)
	if o.opts.Patch {
		corrections := udiff.Corrections(evals, indent)
		info, statErr := os.Stat(path)
		perm := os.FileMode(0o644)
		if statErr == nil {
			perm = info.Mode().Perm()
		}
		if err := udiff.Apply(path, lines, endsWithNewline(src), corrections, perm); err != nil {
			rep.Status = OrchError
			rep.Err = fmt.Errorf("patching %s: %w", path, err)
			return rep
		}
		rep.Status = Patched
		return rep
	}

	rep.Diff = udiff.Render(path, lines, evals)
	return rep
}

func fileStatus(evals []udiff.CommandEval) Status {
	switch udiff.FileStatus(evals) {
	case udiff.Failed:
		return Failed
	case udiff.Skipped:
		return Skipped
	default:
		return Passed
	}
}

func firstSkippedLine(evals []udiff.CommandEval) string {
	for _, e := range evals {
		if e.Status == udiff.Skipped && len(e.Command.Lines) > 0 {
			return e.Command.Lines[0]
		}
	}
	return ""
}

func endsWithNewline(src []byte) bool {
	return len(src) > 0 && src[len(src)-1] == '\n'
}

// Summary aggregates Reports across a run.
type Summary struct {
	Passed, Failed, Skipped, Patched, Errored int
}

// Add folds one Report into the summary and returns its progress character.
func (s *Summary) Add(r Report) byte {
	switch r.Status {
	case Passed:
		s.Passed++
	case Failed:
		s.Failed++
	case Skipped:
		s.Skipped++
	case Patched:
		s.Patched++
	default:
		s.Errored++
	}
	return r.Status.Char()
}

// ExitCode is 0 iff no file failed or errored, per §6.
func (s Summary) ExitCode() int {
	if s.Failed > 0 || s.Errored > 0 {
		return 1
	}
	return 0
}
