// Copyright (c) 2026, The quizzig Authors
// See LICENSE for licensing information

// Command quizzig runs cram-style shell-session test files and reports
// differences between expected and actual output as a unified diff.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"runtime/debug"
	"sort"

	"golang.org/x/term"
	"mvdan.cc/editorconfig"

	"github.com/piranha/quizzig/cram"
	"github.com/piranha/quizzig/fileutil"
)

// multiFlag binds one boolean/string/int value to a short and a long flag
// name, following the teacher's cmd/shfmt convention of aliasing both
// without pulling in a third-party flag library.
type multiFlag[T any] struct {
	short, long string
	val         T
}

type stringList []string

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
func (s *stringList) String() string {
	if s == nil {
		return ""
	}
	return fmt.Sprint([]string(*s))
}

var (
	versionFlag = &multiFlag[bool]{"V", "version", false}
	helpFlag    = &multiFlag[bool]{"h", "help", false}
	quiet       = &multiFlag[bool]{"q", "quiet", false}
	verbose     = &multiFlag[bool]{"v", "verbose", false}
	debugFlag   = &multiFlag[bool]{"d", "debug", false}
	patchFlag   = &multiFlag[bool]{"i", "patch", false}
	shellFlag   = &multiFlag[string]{"", "shell", "/bin/sh"}
	indentFlag  = &multiFlag[int]{"", "indent", 0}
	inheritEnv  = &multiFlag[bool]{"E", "inherit-env", false}
	keepTmpdir  = &multiFlag[bool]{"", "keep-tmpdir", false}

	envOverrides stringList
	binDirs      stringList

	allBoolFlags = []*multiFlag[bool]{
		versionFlag, helpFlag, quiet, verbose, debugFlag, patchFlag,
		inheritEnv, keepTmpdir,
	}
)

// newFlagSet builds a fresh, ContinueOnError flag set each call so that
// run (and so the whole binary) stays testable: a parse error becomes a
// returned error rather than an os.Exit buried inside the flag package.
func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("quizzig", flag.ContinueOnError)
	for _, f := range allBoolFlags {
		if f.short != "" {
			fs.BoolVar(&f.val, f.short, f.val, "")
		}
		if f.long != "" {
			fs.BoolVar(&f.val, f.long, f.val, "")
		}
	}
	fs.StringVar(&shellFlag.val, "shell", shellFlag.val, "")
	fs.IntVar(&indentFlag.val, "indent", indentFlag.val, "")
	fs.Var(&envOverrides, "e", "")
	fs.Var(&envOverrides, "env", "")
	fs.Var(&binDirs, "bindir", "")
	fs.Usage = usage
	return fs
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: quizzig [flags] path ...

quizzig runs cram-style shell-session test files (*.t, *.md) under a real
shell and reports differences between expected and actual output.

  -V, --version         show version and exit
  -h, --help            show this help and exit
  -q, --quiet           suppress diff output; counts and progress still emitted
  -v, --verbose         one progress line per file, with path
  -d, --debug           pass child output through to the terminal; report all as passed
  -i, --patch           rewrite failing files in place with actual output
  --shell PATH          shell binary to run commands with (default "/bin/sh")
  --indent N            indentation width override (default: 2 for .t, 4 for .md)
  -E, --inherit-env     inherit the parent environment as the base
  -e, --env VAR=VAL     set an environment variable (repeatable, applied last)
  --bindir DIR          prepend DIR to PATH (repeatable; last flag wins)
  --keep-tmpdir         do not delete the per-run scratch directory

Exit status is 1 if any test file failed or a file could not be processed.
`)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// resetFlags restores every flag var to its zero/default value so run can
// be invoked more than once within a single process (tests do this; a
// real invocation only ever calls it once from main).
func resetFlags() {
	*versionFlag = multiFlag[bool]{"V", "version", false}
	*helpFlag = multiFlag[bool]{"h", "help", false}
	*quiet = multiFlag[bool]{"q", "quiet", false}
	*verbose = multiFlag[bool]{"v", "verbose", false}
	*debugFlag = multiFlag[bool]{"d", "debug", false}
	*patchFlag = multiFlag[bool]{"i", "patch", false}
	*shellFlag = multiFlag[string]{"", "shell", "/bin/sh"}
	*indentFlag = multiFlag[int]{"", "indent", 0}
	*inheritEnv = multiFlag[bool]{"E", "inherit-env", false}
	*keepTmpdir = multiFlag[bool]{"", "keep-tmpdir", false}
	envOverrides = nil
	binDirs = nil
}

func run(args []string, stdout, stderr io.Writer) int {
	resetFlags()
	fs := newFlagSet()
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if versionFlag.val {
		version := "(unknown)"
		if info, ok := debug.ReadBuildInfo(); ok {
			mod := &info.Main
			if mod.Replace != nil {
				mod = mod.Replace
			}
			version = mod.Version
		}
		fmt.Fprintln(stdout, version)
		return 0
	}
	if helpFlag.val {
		usage()
		return 0
	}

	paths := fs.Args()
	if len(paths) == 0 {
		usage()
		return 2
	}

	files, err := discover(paths)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if len(files) == 0 {
		fmt.Fprintln(stderr, "quizzig: no test files found")
		return 1
	}

	orch, err := cram.New(cram.Options{
		Shell:       shellFlag.val,
		InheritEnv:  inheritEnv.val,
		ExtraEnv:    []string(envOverrides),
		BinDirs:     []string(binDirs),
		KeepTmpdir:  keepTmpdir.val,
		Debug:       debugFlag.val,
		Patch:       patchFlag.val,
		DebugOutput: stdout,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer orch.Close()

	errLog := log.New(stderr, "", 0)
	progressColor := term.IsTerminal(int(os.Stderr.Fd()))

	var summary cram.Summary
	var diffs []string
	ctx := context.Background()

	for _, tf := range files {
		indent := tf.dialect.Indent()
		if indentFlag.val != 0 {
			indent = indentFlag.val
		} else {
			indent = editorConfigIndent(tf.path, indent)
		}

		rep := orch.RunFile(ctx, tf.path, indent)
		ch := summary.Add(rep)

		if verbose.val {
			fmt.Fprintf(stderr, "%s: %s\n", tf.path, verboseWord(rep.Status))
		} else if progressColor {
			fmt.Fprintf(stderr, "%s%c\x1b[0m", progressANSI(rep.Status), ch)
		} else {
			fmt.Fprintf(stderr, "%c", ch)
		}

		switch rep.Status {
		case cram.OrchError:
			errLog.Printf("%s: %v", tf.path, rep.Err)
		case cram.Failed:
			if !quiet.val && rep.Diff != "" {
				diffs = append(diffs, rep.Diff)
			}
		}
	}
	if !verbose.val {
		fmt.Fprintln(stderr)
	}

	for _, d := range diffs {
		fmt.Fprint(stdout, d)
	}

	fmt.Fprintf(stderr, "# Ran %d tests, %d skipped, %d failed, %d patched.\n",
		summary.Passed+summary.Failed+summary.Skipped+summary.Patched,
		summary.Skipped, summary.Failed, summary.Patched)

	return summary.ExitCode()
}

// progressANSI picks the color the teacher-style progress character is
// printed in when stderr is a tty, per SPEC_FULL.md §11 ("disable
// ANSI/color progress output when stderr isn't a tty").
func progressANSI(s cram.Status) string {
	switch s {
	case cram.Passed:
		return "\x1b[32m" // green
	case cram.Skipped:
		return "\x1b[33m" // yellow
	case cram.Failed:
		return "\x1b[31m" // red
	case cram.Patched:
		return "\x1b[36m" // cyan
	default:
		return "\x1b[31;1m" // bold red
	}
}

func verboseWord(s cram.Status) string {
	switch s {
	case cram.Passed:
		return "passed"
	case cram.Failed:
		return "failed"
	case cram.Skipped:
		return "skipped"
	case cram.Patched:
		return "patched"
	default:
		return "error"
	}
}

// testFile is one discovered path paired with its dialect.
type testFile struct {
	path    string
	dialect fileutil.Dialect
}

// discover expands the CLI's path arguments into a sorted list of test
// files: a file argument is used directly if it's a recognized dialect,
// and a directory argument is walked recursively, matching the teacher's
// own filepath.WalkDir-based discovery in cmd/shfmt/main.go.
func discover(paths []string) ([]testFile, error) {
	var out []testFile
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			d := fileutil.ClassifyName(filepath.Base(p))
			if d == fileutil.NotATestFile {
				return nil, fmt.Errorf("%s: not a recognized test file (want .t or .md)", p)
			}
			out = append(out, testFile{p, d})
			continue
		}
		err = filepath.WalkDir(p, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				if entry.Name() != "." && len(entry.Name()) > 0 && entry.Name()[0] == '.' && path != p {
					return filepath.SkipDir
				}
				return nil
			}
			d, ok := fileutil.CouldBeTestFile(entry)
			if !ok {
				return nil
			}
			out = append(out, testFile{path, d})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out, nil
}

// ecQuery caches parsed EditorConfig files across the run, same pattern
// as cmd/shfmt's own ecQuery.
var ecQuery = editorconfig.Query{
	FileCache:   make(map[string]*editorconfig.File),
	RegexpCache: make(map[string]*regexp.Regexp),
}

// editorConfigIndent lets a .editorconfig entry override a file's default
// indent width via indent_size (or the quizzig-specific x-quizzig-indent),
// supplementing --indent per SPEC_FULL.md §10.4/§11. Falls back to def
// when no EditorConfig file applies or sets either property.
func editorConfigIndent(path string, def int) int {
	props, err := ecQuery.Find(path, []string{"quizzig"})
	if err != nil {
		return def
	}
	if v := props.Get("x-quizzig-indent"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			return n
		}
	}
	if n := props.IndentSize(); n > 0 {
		return n
	}
	return def
}

func parsePositiveInt(s string) (int, error) {
	n := 0
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a number: %q", s)
		}
		n = n*10 + int(c-'0')
	}
	if n == 0 {
		return 0, fmt.Errorf("not positive: %q", s)
	}
	return n, nil
}
