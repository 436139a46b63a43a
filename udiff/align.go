// Copyright (c) 2026, The quizzig Authors
// See LICENSE for licensing information

// Package udiff aligns a command's expected output against what the shell
// actually produced, assembles the resulting mismatches into unified-diff
// hunks, and can compute the in-place corrections a patch mode needs.
package udiff

import (
	"fmt"
	"strings"

	"github.com/piranha/quizzig/match"
)

// placement is one diff line produced by the alignment walk, anchored at
// the original file's line number it belongs under. Context and removal
// lines always name a real source line; addition lines that have no real
// source line of their own (extra actual output, the exit-code trailer)
// share the line of the last non-addition line emitted before them.
type placement struct {
	line    int
	prefix  byte
	content string // only meaningful for prefix == '+'
}

// align walks expected against actual per §4.4: matches emit a context
// line and advance both sides; a run of mismatches is grouped and emitted
// as its removals followed by its additions; once one side is exhausted,
// the rest of the other side is emitted as pure removals or additions.
func align(expectedStart int, expected []match.Line, output string, exitCode int) []placement {
	actual := splitActual(output)
	if exitCode != 0 {
		actual = append(actual, fmt.Sprintf("[%d]", exitCode))
	}

	var out []placement
	bucket := expectedStart - 1
	ei, ai := 0, 0
	for ei < len(expected) && ai < len(actual) {
		if match.Match(expected[ei], actual[ai]) {
			bucket = expectedStart + ei
			out = append(out, placement{line: bucket, prefix: ' '})
			ei++
			ai++
			continue
		}

		var added []string
		for ei < len(expected) && ai < len(actual) && !match.Match(expected[ei], actual[ai]) {
			bucket = expectedStart + ei
			out = append(out, placement{line: bucket, prefix: '-'})
			added = append(added, actual[ai])
			ei++
			ai++
		}
		for _, a := range added {
			out = append(out, placement{line: bucket, prefix: '+', content: formatAdded(a)})
		}
	}
	for ; ei < len(expected); ei++ {
		bucket = expectedStart + ei
		out = append(out, placement{line: bucket, prefix: '-'})
	}
	for ; ai < len(actual); ai++ {
		out = append(out, placement{line: bucket, prefix: '+', content: formatAdded(actual[ai])})
	}
	return out
}

// splitActual splits a command's captured output into its actual lines,
// per §4.4: split on '\n', and drop the trailing empty element the split
// produces when the output ended with a newline.
func splitActual(output string) []string {
	lines := strings.Split(output, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// formatAdded renders one actual-output line for the '+' side of a diff,
// escaping it per §4.4's predicate when it contains bytes that would not
// survive as a literal diff line.
func formatAdded(line string) string {
	if match.NeedsEscaping([]byte(line)) {
		return match.Escape([]byte(line)) + " (esc)"
	}
	return line
}
