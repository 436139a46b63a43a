// Copyright (c) 2026, The quizzig Authors
// See LICENSE for licensing information

//go:build unix

package shellrun

import (
	"os/exec"
	"syscall"
)

// prepareCommand puts the child shell in its own process group, so that
// any subshells or pipelines it spawns while running a file's commands
// can be interrupted or killed as one unit instead of leaking behind.
func prepareCommand(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// interruptCommand is cmd.Cancel's escalation hook (see Run): a
// cancelled context sends SIGINT to the whole group first, giving the
// shell a chance to unwind cleanly before killGrace elapses and
// os/exec's own WaitDelay logic falls back to SIGKILL.
func interruptCommand(cmd *exec.Cmd) error {
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGINT)
}
