// Copyright (c) 2026, The quizzig Authors
// See LICENSE for licensing information

// Package shellrun executes a sequence of test commands in a single real
// shell subprocess, demultiplexing each command's combined stdout/stderr
// and exit status back out via a per-run salt marker.
package shellrun

import (
	"bufio"
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/piranha/quizzig/block"
)

// maxOutput bounds the bytes read from the child's stdout per file, per
// §5's stated 10 MiB streaming cap.
const maxOutput = 10 << 20

// killGrace is how long Run waits, after asking the process group to
// interrupt, before os/exec escalates to killing the shell outright.
const killGrace = 2 * time.Second

// Result is one command's outcome: its combined output with the trailing
// newline that the marker emitter printed removed, and its exit status.
type Result struct {
	Output   string
	ExitCode int
}

// Options configures one Run invocation.
type Options struct {
	// Shell is the shell binary to invoke (default "/bin/sh").
	Shell string
	// Dir is the working directory for the child shell.
	Dir string
	// Env is the full environment passed to the child.
	Env []string
	// Debug disables marker emission: the child's merged stdout/stderr
	// stream is connected straight through to Stdout (or os.Stdout),
	// and every command is reported with an empty, zero-exit Result
	// since no demultiplexing happens.
	Debug bool
	// Stdout, when Debug is set, is where the child's merged output is
	// connected; when unset, os.Stdout is used.
	Stdout io.Writer
}

// Run starts one shell subprocess, feeds it a script built from cmds in
// order, and returns one Result per command. Commands that never reach a
// marker (shell died early) keep the zero Result.
func Run(ctx context.Context, cmds []block.Command, opts Options) ([]Result, error) {
	results := make([]Result, len(cmds))
	if len(cmds) == 0 {
		return results, nil
	}

	shell := opts.Shell
	if shell == "" {
		shell = "/bin/sh"
	}

	salt, err := newSalt()
	if err != nil {
		return results, fmt.Errorf("generating salt: %w", err)
	}

	script := buildScript(cmds, salt, opts.Debug)

	cmd := exec.CommandContext(ctx, shell, "-c", "exec 2>&1; "+shell)
	cmd.Dir = opts.Dir
	cmd.Env = opts.Env
	prepareCommand(cmd)
	// A cancelled context means SIGINT during wait: interrupt the whole
	// process group first, and escalate to a hard kill if it lingers.
	cmd.Cancel = func() error { return interruptCommand(cmd) }
	cmd.WaitDelay = killGrace

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return results, fmt.Errorf("opening stdin pipe: %w", err)
	}

	var stdout io.ReadCloser
	if opts.Debug {
		out := opts.Stdout
		if out == nil {
			out = os.Stdout
		}
		cmd.Stdout = out
	} else {
		stdout, err = cmd.StdoutPipe()
		if err != nil {
			return results, fmt.Errorf("opening stdout pipe: %w", err)
		}
	}

	if err := cmd.Start(); err != nil {
		return results, fmt.Errorf("starting %s: %w", shell, err)
	}

	var g errgroup.Group
	g.Go(func() error {
		_, err := io.WriteString(stdin, script)
		if closeErr := stdin.Close(); err == nil {
			err = closeErr
		}
		return err
	})

	if !opts.Debug {
		demux(stdout, salt, results)
	}

	_ = g.Wait()
	_ = cmd.Wait()

	return results, nil
}

// newSalt renders a 64-bit random nonce as the per-run salt marker
// prefix, per §4.2's step 1.
func newSalt() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return "QUIZZIG" + hex.EncodeToString(buf[:]), nil
}

// buildScript renders the shell script for one file's commands: each
// command's physical lines verbatim, followed by a marker emitter line
// unless debug is set.
func buildScript(cmds []block.Command, salt string, debug bool) string {
	var b strings.Builder
	for i, cmd := range cmds {
		for _, line := range cmd.Lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		if debug {
			continue
		}
		fmt.Fprintf(&b, "quizzig_ec=$?\nenv printf '\\n%s %d %%d\\n' \"$quizzig_ec\"\n", salt, i)
	}
	return b.String()
}

// demux scans stdout line by line, accumulating non-marker lines into a
// running buffer and, on each marker line, resolving it to the
// corresponding Result. It never materializes the whole stream at once,
// bounding memory by the running buffer plus a capped total read.
func demux(stdout io.Reader, salt string, results []Result) {
	prefix := salt + " "
	r := bufio.NewReaderSize(io.LimitReader(stdout, maxOutput), 64*1024)

	var buf bytes.Buffer
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			if idx, code, ok := parseMarker(line, prefix); ok {
				out := buf.String()
				out = strings.TrimSuffix(out, "\n")
				if idx >= 0 && idx < len(results) {
					results[idx] = Result{Output: out, ExitCode: code}
				}
				buf.Reset()
			} else {
				buf.WriteString(line)
			}
		}
		if err != nil {
			break
		}
	}
	// Drain whatever remains of stdout so the child never blocks writing
	// past the 10 MiB cap; the tail (if any) belongs to no command.
	_, _ = io.Copy(io.Discard, stdout)
}

// parseMarker reports whether line is a salt marker of the form
// "<salt> <index> <exit-code>\n", returning the parsed index and code.
func parseMarker(line, prefix string) (index, code int, ok bool) {
	if !strings.HasPrefix(line, prefix) {
		return 0, 0, false
	}
	rest := strings.TrimSuffix(line[len(prefix):], "\n")
	sp := strings.IndexByte(rest, ' ')
	if sp < 0 {
		return 0, 0, false
	}
	idx, err := strconv.Atoi(rest[:sp])
	if err != nil {
		return 0, 0, false
	}
	ec, err := strconv.Atoi(rest[sp+1:])
	if err != nil {
		return 0, 0, false
	}
	return idx, ec, true
}
