// Copyright (c) 2026, The quizzig Authors
// See LICENSE for licensing information

// Package block parses a test file — prose interleaved with indented
// shell-session blocks — into an ordered sequence of commands and their
// expected output.
package block

import "github.com/piranha/quizzig/match"

// Command is one executable unit in a test file: a shell command, possibly
// continued over several physical lines, plus the expected-output lines
// that follow it.
type Command struct {
	// SourceLine is the 1-based line number of the command's first
	// physical line in the file.
	SourceLine int
	// Lines holds the command text: Lines[0] is the text after the "$ "
	// (or bare "$") marker, and any further entries are continuation
	// lines introduced by "> ".
	Lines []string
	// Expected holds the command's annotated expected-output lines, in
	// file order.
	Expected []match.Line
}

// Text joins Lines with newlines, producing the script fed to the shell.
func (c Command) Text() string {
	switch len(c.Lines) {
	case 0:
		return ""
	case 1:
		return c.Lines[0]
	}
	n := len(c.Lines) - 1 // separating newlines
	for _, l := range c.Lines {
		n += len(l)
	}
	out := make([]byte, 0, n)
	for i, l := range c.Lines {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, l...)
	}
	return string(out)
}

// kind classifies one physical line of a test file.
type kind int

const (
	kindComment kind = iota
	kindCommand
	kindContinuation
	kindOutput
)

// classify determines the kind of line and, for command/continuation/output
// lines, the byte offset where the line's payload begins (after the
// indent and marker).
func classify(line string, indent int) (k kind, payload int) {
	if len(line) < indent {
		return kindComment, 0
	}
	for i := 0; i < indent; i++ {
		if line[i] != ' ' {
			return kindComment, 0
		}
	}
	rest := line[indent:]
	switch {
	case rest == "$":
		return kindCommand, len(line)
	case len(rest) >= 2 && rest[0] == '$' && rest[1] == ' ':
		return kindCommand, indent + 2
	case rest == ">":
		return kindContinuation, len(line)
	case len(rest) >= 2 && rest[0] == '>' && rest[1] == ' ':
		return kindContinuation, indent + 2
	default:
		return kindOutput, indent
	}
}

// Parse extracts the ordered sequence of commands from the bytes of a test
// file, using indent as the fixed indentation width of the dialect (2 for
// the legacy .t dialect, 4 for the markdown .md dialect).
//
// Parse never fails: malformed input simply yields whatever the
// classification rules produce, including an empty command slice for a
// file with no commands at all.
func Parse(src []byte, indent int) []Command {
	var cmds []Command
	var cur *Command
	lineNo := 0

	for _, line := range splitLines(src) {
		lineNo++
		k, payload := classify(line, indent)
		switch k {
		case kindCommand:
			cmds = append(cmds, Command{SourceLine: lineNo})
			cur = &cmds[len(cmds)-1]
			cur.Lines = append(cur.Lines, line[payload:])
		case kindContinuation:
			if cur == nil {
				// A continuation line with nothing to continue is
				// classified but has no command to attach to; treat it
				// like a comment.
				continue
			}
			cur.Lines = append(cur.Lines, line[payload:])
		case kindOutput:
			if cur == nil {
				continue
			}
			cur.Expected = append(cur.Expected, parseExpected(line[payload:]))
		case kindComment:
			cur = nil
		}
	}
	return cmds
}

// SplitLines splits src on '\n' without copying, matching the file's
// physical lines. A trailing newline does not produce a spurious empty
// final line; a file missing its trailing newline still yields its last
// (partial) line. Line N (1-based) of the result is the line that
// Command.SourceLine and the diff/patch builder's line numbers refer to.
func SplitLines(src []byte) []string {
	return splitLines(src)
}

func splitLines(src []byte) []string {
	s := string(src)
	if s == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

const noEOLSuffix = " (no-eol)"

var annotations = [...]struct {
	suffix  string
	dialect match.Dialect
}{
	{" (re)", match.Regex},
	{" (glob)", match.Glob},
	{" (esc)", match.Escape},
}

// parseExpected builds an annotated expected line from the post-indent
// bytes of an output line, per the two-step annotation grammar: a trailing
// "(no-eol)" is stripped first, then at most one of "(re)"/"(glob)"/"(esc)".
func parseExpected(s string) match.Line {
	el := match.Line{Original: s, Dialect: match.Literal}

	text := s
	if hasSuffix(text, noEOLSuffix) {
		el.NoEOL = true
		text = text[:len(text)-len(noEOLSuffix)]
	}
	for _, a := range annotations {
		if hasSuffix(text, a.suffix) {
			el.Dialect = a.dialect
			text = text[:len(text)-len(a.suffix)]
			break
		}
	}
	el.Text = text
	return el
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
