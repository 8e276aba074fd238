// Package process spawns the external backend tools. It captures their output,
// feeds secrets through stdin and bounds how long a caller waits for them.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// ErrTimeout is returned when a child outlives the runner's timeout
var ErrTimeout = errors.New("process timed out")

const outputWaitDelay = 2 * time.Second

// Command describes one invocation of an external tool
type Command struct {
	Name  string
	Args  []string
	Env   []string // extra KEY=VALUE pairs for the child
	Stdin []byte   // nil means no stdin
}

// String renders the command line without stdin
func (c Command) String() string {
	var b bytes.Buffer
	b.WriteString(c.Name)
	for _, a := range c.Args {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	return b.String()
}

// Outcome is the result of a child that was started
type Outcome struct {
	ExitCode    int
	HasExitCode bool // false when the child was killed by a signal
	Stdout      []byte
	Stderr      []byte
}

// Success reports whether the child exited with status zero
func (o *Outcome) Success() bool {
	return o != nil && o.HasExitCode && o.ExitCode == 0
}

// SpawnError means the executable could not be started at all
type SpawnError struct {
	Name string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Name, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Runner starts a command and waits for it to exit
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Outcome, error)
}

// ExecRunner runs commands on the host with os/exec
type ExecRunner struct {
	// Timeout bounds every run; zero means only ctx bounds it.
	Timeout time.Duration
	// HostSpawn selects the host-spawn indirection.
	HostSpawn HostSpawnMode
}

// NewExecRunner creates a runner with the given timeout and host-spawn mode
func NewExecRunner(timeout time.Duration, mode HostSpawnMode) *ExecRunner {
	return &ExecRunner{Timeout: timeout, HostSpawn: mode}
}

// Run spawns cmd, writes its stdin, and blocks until it exits
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Outcome, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	name, args, env := wrapForHost(r.HostSpawn, cmd)

	c := exec.CommandContext(ctx, name, args...)
	if len(env) > 0 {
		c.Env = append(os.Environ(), env...)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	// Mount tools daemonize and the daemon may inherit the output pipes.
	c.WaitDelay = outputWaitDelay

	var stdin io.WriteCloser
	if cmd.Stdin != nil {
		var err error
		stdin, err = c.StdinPipe()
		if err != nil {
			return nil, &SpawnError{Name: cmd.Name, Err: err}
		}
	}

	if err := c.Start(); err != nil {
		if stdin != nil {
			_ = stdin.Close()
		}
		return nil, &SpawnError{Name: cmd.Name, Err: err}
	}

	written := make(chan struct{})
	if stdin != nil {
		go func() {
			defer close(written)
			// The child may exit before reading everything; EPIPE is expected then.
			_, _ = stdin.Write(cmd.Stdin)
			_ = stdin.Close()
		}()
	} else {
		close(written)
	}

	waitErr := c.Wait()
	<-written

	out := &Outcome{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if code := c.ProcessState.ExitCode(); code >= 0 {
		out.ExitCode = code
		out.HasExitCode = true
	}

	if err := waitError(cmd.Name, ctx.Err(), waitErr, out.HasExitCode); err != nil {
		return out, err
	}
	return out, nil
}

// waitError classifies how Wait ended. A child that exited normally wins over
// a deadline that expired after it.
func waitError(name string, ctxErr, waitErr error, exited bool) error {
	failed := waitErr != nil && !errors.Is(waitErr, exec.ErrWaitDelay)

	if ctxErr != nil && (failed || !exited) {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w", name, ErrTimeout)
		}
		return fmt.Errorf("%s: %w", name, ctxErr)
	}

	if failed {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return fmt.Errorf("failed to wait for %s: %w", name, waitErr)
		}
	}
	return nil
}
