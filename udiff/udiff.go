// Copyright (c) 2026, The quizzig Authors
// See LICENSE for licensing information

package udiff

import (
	"fmt"
	"strings"

	"github.com/piranha/quizzig/block"
	"github.com/piranha/quizzig/shellrun"
)

// CommandStatus is the outcome of one command's alignment.
type CommandStatus int

const (
	// Passed means the command's alignment produced no non-context diff line.
	Passed CommandStatus = iota
	// Failed means at least one diff line in the alignment was a removal or addition.
	Failed
	// Skipped means the command exited with the skip code (80).
	Skipped
)

// SkipCode is the exit status that marks a command as skipped rather than
// passed or failed, per §6.
const SkipCode = 80

// CommandEval is one command's alignment result against the file it came from.
type CommandEval struct {
	Command    block.Command
	Result     shellrun.Result
	Status     CommandStatus
	Placements []placement
}

// Eval aligns every command of a file against its execution results and
// classifies each one, per §4.4 and §4.5.
func Eval(cmds []block.Command, results []shellrun.Result) []CommandEval {
	evals := make([]CommandEval, len(cmds))
	for i, cmd := range cmds {
		res := results[i]
		evals[i] = CommandEval{Command: cmd, Result: res}
		if res.ExitCode == SkipCode {
			evals[i].Status = Skipped
			continue
		}
		expectedStart := cmd.SourceLine + len(cmd.Lines)
		placements := align(expectedStart, cmd.Expected, res.Output, res.ExitCode)
		evals[i].Placements = placements
		status := Passed
		for _, p := range placements {
			if p.prefix != ' ' {
				status = Failed
				break
			}
		}
		evals[i].Status = status
	}
	return evals
}

// FileStatus folds a file's command evaluations into one of the same
// three statuses, per SPEC_FULL.md §12: skipped iff every command
// skipped (or there were none), failed iff any command failed, passed
// otherwise.
func FileStatus(evals []CommandEval) CommandStatus {
	if len(evals) == 0 {
		return Skipped
	}
	allSkipped := true
	for _, e := range evals {
		if e.Status == Failed {
			return Failed
		}
		if e.Status != Skipped {
			allSkipped = false
		}
	}
	if allSkipped {
		return Skipped
	}
	return Passed
}

// Render produces the unified-diff text for a file's failing commands, or
// the empty string if no command failed. originalLines is the file's
// physical lines (see block.SplitLines); path is used verbatim on both the
// "---" and "+++" preamble lines, per §6.
func Render(path string, originalLines []string, evals []CommandEval) string {
	var placements []placement
	for _, e := range evals {
		if e.Status != Failed {
			continue
		}
		// Added lines take the command line's indentation, so that the
		// patched file keeps them inside the command's output block.
		cmdLine := originalLines[e.Command.SourceLine-1]
		ind := cmdLine[:len(cmdLine)-len(strings.TrimLeft(cmdLine, " "))]
		for _, p := range e.Placements {
			if p.prefix == '+' {
				p.content = ind + p.content
			}
			placements = append(placements, p)
		}
	}
	hunks := buildHunks(placements, originalLines)
	if len(hunks) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", path, path)
	for _, h := range hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		for _, l := range h.Lines {
			b.WriteByte(l.Prefix)
			b.WriteString(l.Content)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
