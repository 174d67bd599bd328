// Package spawn runs external tools (compilers, ar, dlltool, mdso,
// ranlib) the way the link planner and host tool-probe need: capture
// stdout and stderr separately, retry transient EINTR, and translate the child's
// exit status into a plain int the way gosbt's driver expects.
package spawn

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"syscall"

	"github.com/golang/glog"
	"golang.org/x/sys/unix"
)

// Result carries a spawned tool's outcome.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Run execs argv[0] with argv[1:], waiting for completion. A nonzero
// ExitCode is reported via Result, not error; error is reserved for
// conditions that prevented the child from running or being waited on
// (a missing binary, or a context already done when the child is
// started). A child killed by a later cancellation is reported through
// ExitCode (-1), not error. Wait is retried on EINTR without a limit.
func Run(ctx context.Context, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, errors.New("spawn: empty argv")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	glog.V(1).Infof("spawn: %v", argv)

	err := runRetryEINTR(cmd)
	res := Result{
		ExitCode: exitStatus(err),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return res, nil
		}
		return res, err
	}
	return res, nil
}

// runRetryEINTR runs cmd to completion, retrying Wait when the
// kernel reports a spurious EINTR rather than the child's own exit.
func runRetryEINTR(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	for {
		err := cmd.Wait()
		if err == nil {
			return nil
		}
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return err
	}
}

func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		if w, ok := exitErr.ProcessState.Sys().(syscall.WaitStatus); ok {
			return w.ExitStatus()
		}
	}
	return -1
}
