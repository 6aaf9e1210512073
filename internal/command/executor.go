// Package command runs external commands on behalf of the control surface.
// Commands are always structured argv slices; nothing ever passes through a
// shell. Failures are contained here: callers get booleans, empty output, or
// a handle, never a panic.
package command

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/logging"
)

// Executor abstracts process execution so the supervisor, player, and
// telemetry collector can be tested with fakes.
type Executor interface {
	// Run executes argv to completion with output discarded.
	// Returns true iff the command exited zero. Spawn failures return false.
	Run(argv []string) bool

	// RunCaptured executes argv to completion and returns stdout split into
	// lines. Any failure, spawn or non-zero exit, returns an empty slice;
	// callers cannot distinguish failure from genuinely empty output.
	RunCaptured(argv []string) []string

	// RunWithTimeout executes argv with a wall-clock bound. On timeout the
	// process is killed and an error returned with no partial output.
	RunWithTimeout(ctx context.Context, argv []string, timeout time.Duration) (string, error)

	// SpawnDetached starts a pipeline of one or more stages, each stage's
	// stdout feeding the next stage's stdin. All stages join one process
	// group led by the first stage. The pipeline is not waited on; liveness
	// is queried through the returned Handle.
	SpawnDetached(stages [][]string) (*Handle, error)
}

type execRunner struct {
	logger logging.Logger
}

// NewExecutor returns the Executor backed by os/exec.
func NewExecutor() Executor {
	return &execRunner{logger: logging.GetLogger("command")}
}

func (e *execRunner) Run(argv []string) bool {
	if len(argv) == 0 {
		return false
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	// nil Stdout/Stderr connect the child to the null device

	if err := cmd.Run(); err != nil {
		e.logger.Debug("Command failed", "command", argv[0], "error", err)
		return false
	}
	return true
}

func (e *execRunner) RunCaptured(argv []string) []string {
	if len(argv) == 0 {
		return []string{}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	out, err := cmd.Output()
	if err != nil {
		e.logger.Debug("Captured command failed", "command", argv[0], "error", err)
		return []string{}
	}

	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "\n")
}

func (e *execRunner) RunWithTimeout(ctx context.Context, argv []string, timeout time.Duration) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("empty command")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			e.logger.Debug("Command timed out", "command", argv[0], "timeout", timeout)
			return "", fmt.Errorf("command %s timed out after %s", argv[0], timeout)
		}
		e.logger.Debug("Timed command failed", "command", argv[0], "error", err)
		return "", err
	}
	return string(out), nil
}

func (e *execRunner) SpawnDetached(stages [][]string) (*Handle, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("empty pipeline")
	}

	cmds := make([]*exec.Cmd, len(stages))
	for i, argv := range stages {
		if len(argv) == 0 {
			return nil, fmt.Errorf("empty pipeline stage %d", i)
		}
		cmds[i] = exec.Command(argv[0], argv[1:]...)
	}

	// Connect the stages with explicit pipes so the parent can close its
	// copies after the children inherit them. Output of the final stage is
	// discarded via the exec defaults.
	var parentFiles []*os.File
	closeParentFiles := func() {
		for _, f := range parentFiles {
			f.Close()
		}
	}
	for i := 0; i < len(cmds)-1; i++ {
		pr, pw, err := os.Pipe()
		if err != nil {
			closeParentFiles()
			return nil, fmt.Errorf("failed to create pipe: %w", err)
		}
		cmds[i].Stdout = pw
		cmds[i+1].Stdin = pr
		parentFiles = append(parentFiles, pr, pw)
	}

	// The first stage leads a fresh process group; the remaining stages
	// join it so stray pipelines can be found and killed as one unit.
	cmds[0].SysProcAttr = newProcessGroupAttr(0)
	if err := cmds[0].Start(); err != nil {
		closeParentFiles()
		e.logger.Debug("Pipeline spawn failed", "command", stages[0][0], "error", err)
		return nil, fmt.Errorf("failed to start %s: %w", stages[0][0], err)
	}

	pgid := cmds[0].Process.Pid
	for i := 1; i < len(cmds); i++ {
		cmds[i].SysProcAttr = newProcessGroupAttr(pgid)
		if err := cmds[i].Start(); err != nil {
			killProcessGroup(pgid)
			closeParentFiles()
			// Reap the stages that did start; they were just killed
			for j := range i {
				_ = cmds[j].Wait()
			}
			e.logger.Debug("Pipeline spawn failed", "command", stages[i][0], "error", err)
			return nil, fmt.Errorf("failed to start %s: %w", stages[i][0], err)
		}
	}

	closeParentFiles()

	// Later stages are reaped as they exit; the first stage is reaped
	// opportunistically by Handle.Alive.
	for i := 1; i < len(cmds); i++ {
		go func(c *exec.Cmd) { _ = c.Wait() }(cmds[i])
	}

	e.logger.Debug("Pipeline spawned", "command", stages[0][0], "pid", pgid, "stages", len(stages))
	return &Handle{pid: pgid}, nil
}
