// Package runner spawns external tool invocations and captures their output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"scopeidx/internal/logsink"
)

type Options struct {
	Logger logsink.Logger

	// Timeout bounds each invocation. Zero means the process runs until it exits.
	Timeout time.Duration
}

type Runner struct {
	log     logsink.Logger
	timeout time.Duration
}

func New(opts Options) *Runner {
	log := opts.Logger
	if log == nil {
		log = logsink.Discard()
	}
	return &Runner{log: log, timeout: opts.Timeout}
}

// Run executes name with args in dir and returns the trimmed stdout.
func (r *Runner) Run(ctx context.Context, name string, args []string, dir string) (string, error) {
	return r.run(ctx, name, args, dir, nil)
}

// Stream is Run with each complete stdout line delivered to onLine as it
// arrives. onLine is called from a single goroutine, in output order.
func (r *Runner) Stream(ctx context.Context, name string, args []string, dir string, onLine func(line string)) (string, error) {
	return r.run(ctx, name, args, dir, onLine)
}

func (r *Runner) run(ctx context.Context, name string, args []string, dir string, onLine func(string)) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.log.Info("command:", name)
	r.log.Info("args:", strings.Join(args, " "))
	r.log.Info("cwd:", dir)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = nil
	if r.timeout > 0 {
		cmd.WaitDelay = time.Second
	}

	var stdout, stderr bytes.Buffer
	var lw *LineWriter
	cmd.Stdout = &stdout
	if onLine != nil {
		lw = NewLineWriter(onLine)
		cmd.Stdout = io.MultiWriter(&stdout, lw)
	}
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		lerr := &LaunchError{Cmd: name, Cause: err}
		r.log.Err("launch failed:", lerr.Error())
		r.logStreams("", "")
		return "", lerr
	}

	waitErr := cmd.Wait()
	if lw != nil {
		lw.Flush()
	}

	outText := strings.TrimSpace(stdout.String())
	errText := strings.TrimSpace(stderr.String())
	r.logStreams(outText, errText)

	if waitErr != nil {
		perr := &ProcessError{Cmd: name, ExitCode: exitCode(waitErr), Stderr: errText, Cause: waitErr}
		if ctxErr := ctx.Err(); ctxErr != nil && errText == "" {
			perr.Cause = ctxErr
		}
		r.log.Err("exit:", perr.ExitCode, perr.Error())
		return "", perr
	}
	return outText, nil
}

func (r *Runner) logStreams(stdout, stderr string) {
	r.log.Info("stdout:", stdout)
	r.log.Info("stderr:", stderr)
}

func exitCode(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}
