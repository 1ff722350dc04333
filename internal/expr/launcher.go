package expr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	osexec "os/exec"
	"syscall"
)

// SpawnError reports that a process could not be created at all —
// missing binary, permission denied, resource exhaustion. It is distinct
// from a non-zero exit, which is ordinary data in a Result.
type SpawnError struct {
	Prog string
	Err  error
}

func (e *SpawnError) Error() string {
	if e.Prog == "" {
		return fmt.Sprintf("spawn: %v", e.Err)
	}
	return fmt.Sprintf("spawn %s: %v", e.Prog, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Process is a handle on one spawned child.
type Process interface {
	// Wait blocks until the child exits and every captured stream has
	// been drained, then returns the child's Result.
	Wait() (Result, error)
}

// Launcher spawns one OS process with the given argv and stream
// endpoints. Command accepts any Launcher, so tests can substitute a
// fake that records spawns instead of forking.
type Launcher interface {
	Spawn(ctx context.Context, argv []string, stdin, stdout, stderr Stream) (Process, error)
}

// OSLauncher runs real processes via os/exec. The zero value is ready to
// use.
type OSLauncher struct{}

// Spawn starts argv[0] with the endpoints attached: inherited streams
// pass this process's fds through, File endpoints attach the descriptor
// directly, and Capture endpoints drain into a buffer handed back by
// Wait. Capturing stdin is a usage error.
func (OSLauncher) Spawn(ctx context.Context, argv []string, stdin, stdout, stderr Stream) (Process, error) {
	if len(argv) == 0 {
		return nil, &SpawnError{Err: errors.New("empty argv")}
	}

	cmd := osexec.CommandContext(ctx, argv[0], argv[1:]...)
	p := &osProcess{cmd: cmd}

	switch stdin.mode {
	case modeInherit:
		cmd.Stdin = os.Stdin
	case modeFile:
		cmd.Stdin = stdin.file
	case modeDiscard:
		// nil reader attaches the null device.
	case modeCapture:
		return nil, &SpawnError{Prog: argv[0], Err: errors.New("stdin cannot be captured")}
	}

	switch stdout.mode {
	case modeInherit:
		cmd.Stdout = os.Stdout
	case modeFile:
		cmd.Stdout = stdout.file
	case modeCapture:
		p.stdout = &bytes.Buffer{}
		cmd.Stdout = p.stdout
	case modeDiscard:
	}

	switch stderr.mode {
	case modeInherit:
		cmd.Stderr = os.Stderr
	case modeFile:
		cmd.Stderr = stderr.file
	case modeCapture:
		p.stderr = &bytes.Buffer{}
		cmd.Stderr = p.stderr
	case modeDiscard:
	}

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Prog: argv[0], Err: err}
	}
	return p, nil
}

type osProcess struct {
	cmd    *osexec.Cmd
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func (p *osProcess) Wait() (Result, error) {
	err := p.cmd.Wait()

	var res Result
	// A captured-but-empty stream is present (empty), not absent.
	if p.stdout != nil {
		res.Stdout = append([]byte{}, p.stdout.Bytes()...)
	}
	if p.stderr != nil {
		res.Stderr = append([]byte{}, p.stderr.Bytes()...)
	}

	if err != nil {
		var exitErr *osexec.ExitError
		if !errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("wait %s: %w", p.cmd.Path, err)
		}
		res.Code = exitCode(exitErr)
	}
	return res, nil
}

// exitCode maps a wait status to a shell-style code: the exit status for
// a normal exit, 128+signal for a signal death (so a SIGPIPE'd producer
// reports 141 rather than the -1 that ProcessState.ExitCode gives).
func exitCode(err *osexec.ExitError) int {
	if ws, ok := err.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return err.ExitCode()
}
