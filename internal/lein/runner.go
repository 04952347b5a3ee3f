package lein

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
)

// Output is what a finished process wrote.
type Output struct {
	Stdout string
	Stderr string
}

// Combined returns stdout and stderr joined by a newline, skipping empty streams.
func (o Output) Combined() string {
	switch {
	case o.Stdout == "":
		return o.Stderr
	case o.Stderr == "":
		return o.Stdout
	default:
		return o.Stdout + "\n" + o.Stderr
	}
}

// Runner executes build commands. Swapping the runner lets tests and dry runs
// exercise orchestration without a JVM.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Output, error)
}

// BinaryRunner executes commands as child processes.
type BinaryRunner struct{}

func (BinaryRunner) Run(ctx context.Context, c Command) (Output, error) {
	path, err := exec.LookPath(c.Program)
	if err != nil {
		return Output{}, fmt.Errorf("%w: %w", ErrBinaryNotFound, err)
	}

	cmd := exec.CommandContext(ctx, path, c.Args...)
	cmd.Dir = c.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	slog.Debug("Invoking build tool", "program", path, "dir", c.Dir)

	err = cmd.Run()

	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if out.Stdout != "" {
		slog.Debug("lein stdout", "output", out.Stdout)
	}
	if out.Stderr != "" {
		slog.Debug("lein stderr", "error_output", out.Stderr)
	}

	if err != nil {
		if combined := out.Combined(); combined != "" {
			return out, fmt.Errorf("%w: %w: %s", ErrExecutionFailed, err, combined)
		}
		return out, fmt.Errorf("%w: %w", ErrExecutionFailed, err)
	}
	return out, nil
}

// NoopRunner performs no build; useful for dry runs.
type NoopRunner struct{}

func (NoopRunner) Run(_ context.Context, c Command) (Output, error) {
	slog.Debug("NoopRunner skipping build", "command", c.String())
	return Output{}, nil
}

// RecordingRunner records every command and returns a canned result.
type RecordingRunner struct {
	mu       sync.Mutex
	Commands []Command
	Output   Output
	Err      error
}

func (r *RecordingRunner) Run(_ context.Context, c Command) (Output, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Commands = append(r.Commands, c)
	return r.Output, r.Err
}

// Last returns the most recent command.
func (r *RecordingRunner) Last() (Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Commands) == 0 {
		return Command{}, false
	}
	return r.Commands[len(r.Commands)-1], true
}
