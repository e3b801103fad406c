package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Command describes one child-process invocation.
type Command struct {
	Binary string
	Args   []string
	Dir    string
	Env    []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Binary + " " + strings.Join(c.Args, " "))
}

// Executor runs a command and reports its merged stdout/stderr one line at a
// time. onLine is always called on the goroutine that called Run.
type Executor interface {
	Run(ctx context.Context, cmd Command, onLine func(string)) error
}

// ExitError reports a child that ran and exited non-zero.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// killGrace bounds how long Wait lingers on inherited pipes after a kill.
const killGrace = 5 * time.Second

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, c Command, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, c.Binary, c.Args...) //nolint:gosec
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return killProcessGroup(cmd)
	}
	cmd.WaitDelay = killGrace

	// One pipe for both streams keeps lines in the order the child wrote them.
	reader, writer, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("output pipe: %w", err)
	}
	defer reader.Close()
	cmd.Stdout = writer
	cmd.Stderr = writer

	if err := cmd.Start(); err != nil {
		_ = writer.Close()
		return fmt.Errorf("start command: %w", err)
	}
	_ = writer.Close()

	scanErr := forwardLines(reader, onLine)
	if scanErr != nil {
		_ = killProcessGroup(cmd)
	}

	waitErr := cmd.Wait()
	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.As(waitErr, &exitErr):
		return &ExitError{Code: exitErr.ExitCode()}
	case waitErr != nil:
		return fmt.Errorf("wait command: %w", waitErr)
	case scanErr != nil:
		return fmt.Errorf("read output: %w", scanErr)
	}
	return nil
}

func forwardLines(r io.Reader, onLine func(string)) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" && onLine != nil {
			onLine(strings.TrimRight(line, "\r\n"))
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return err
		}
	}
}

// killProcessGroup takes down the child and anything it spawned (ffmpeg,
// model workers) so the output pipe closes.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	pid := cmd.Process.Pid
	if pgid, err := unix.Getpgid(pid); err == nil && pgid > 0 {
		return unix.Kill(-pgid, unix.SIGKILL)
	}
	return cmd.Process.Kill()
}
