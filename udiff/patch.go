// Copyright (c) 2026, The quizzig Authors
// See LICENSE for licensing information

package udiff

import (
	"fmt"
	"os"
	"strings"

	maybeio "github.com/google/renameio/v2/maybe"
)

// Correction is one failing command's replacement expected-output block,
// per §4.4's patch mode.
type Correction struct {
	// StartLine, EndLine are the 1-based, half-open [StartLine, EndLine)
	// range of original-file lines the correction replaces.
	StartLine, EndLine int
	// NewLines are the replacement lines, already indented and escaped,
	// without a trailing newline on each individual string.
	NewLines []string
}

// Corrections computes one Correction per failed command, in file order.
func Corrections(evals []CommandEval, indent int) []Correction {
	var out []Correction
	ind := strings.Repeat(" ", indent)
	for _, e := range evals {
		if e.Status != Failed {
			continue
		}
		cmd := e.Command
		start := cmd.SourceLine + len(cmd.Lines)
		end := start + len(cmd.Expected)

		lines := splitActual(e.Result.Output)
		newLines := make([]string, 0, len(lines)+1)
		for _, l := range lines {
			newLines = append(newLines, ind+formatAdded(l))
		}
		if e.Result.ExitCode != 0 {
			newLines = append(newLines, fmt.Sprintf("%s[%d]", ind, e.Result.ExitCode))
		}
		out = append(out, Correction{StartLine: start, EndLine: end, NewLines: newLines})
	}
	return out
}

// Apply rewrites originalLines by substituting each correction's
// [StartLine, EndLine) range with its NewLines, preserving every other
// line and the file's trailing-newline state, then atomically rewrites
// path with the result.
func Apply(path string, originalLines []string, trailingNewline bool, corrections []Correction, perm os.FileMode) error {
	var b strings.Builder
	ci := 0
	for i := 0; i < len(originalLines); {
		lineNo := i + 1
		if ci < len(corrections) && corrections[ci].StartLine == lineNo {
			c := corrections[ci]
			for _, l := range c.NewLines {
				b.WriteString(l)
				b.WriteByte('\n')
			}
			i = c.EndLine - 1
			ci++
			continue
		}
		b.WriteString(originalLines[i])
		b.WriteByte('\n')
		i++
	}
	// A correction that starts just past the last line (a command on the
	// file's final line with no expected output) is appended.
	if ci < len(corrections) && corrections[ci].StartLine == len(originalLines)+1 {
		for _, l := range corrections[ci].NewLines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	out := b.String()
	if !trailingNewline {
		out = strings.TrimSuffix(out, "\n")
	}
	return maybeio.WriteFile(path, []byte(out), perm)
}
