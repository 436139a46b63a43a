// Copyright (c) 2026, The quizzig Authors
// See LICENSE for licensing information

//go:build windows

package shellrun

import (
	"os"
	"os/exec"
)

// prepareCommand is a no-op on Windows: there's no process-group concept
// to set up before starting the child.
func prepareCommand(cmd *exec.Cmd) {}

// interruptCommand is cmd.Cancel's escalation hook (see Run). Windows has
// no SIGINT/process-group semantics, so a cancelled context goes straight
// to killing the child shell outright rather than asking it to unwind.
func interruptCommand(cmd *exec.Cmd) error {
	return cmd.Process.Signal(os.Kill)
}
