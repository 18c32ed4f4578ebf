package app

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/bft-labs/snapsync/internal/ports"
)

// Writer runs the foreground writer process: the actual database engine that
// owns the live file while it runs.
//
// snapsync never calls into the writer beyond the optional checkpoint
// capability; it only launches it, forwards termination signals, and observes
// its exit code, which becomes the exit code of the whole process.
type Writer struct {
	cmd    *exec.Cmd
	logger ports.Logger
}

// NewWriter creates a Writer for the given command line, run with the
// workspace as its working directory. The command is split on whitespace;
// arguments containing spaces are not supported.
func NewWriter(command, dir string, logger ports.Logger) (*Writer, error) {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return nil, fmt.Errorf("writer command is empty")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return &Writer{cmd: cmd, logger: logger}, nil
}

// Start launches the writer. A startup failure is fatal to the whole
// process; the caller must not proceed without a running writer.
func (w *Writer) Start() error {
	if err := w.cmd.Start(); err != nil {
		return fmt.Errorf("start writer: %w", err)
	}
	w.logger.Info("writer started",
		ports.String("command", w.cmd.Path),
		ports.Int("pid", w.cmd.Process.Pid))
	return nil
}

// Signal forwards a termination signal to the writer.
func (w *Writer) Signal(sig os.Signal) {
	if w.cmd.Process == nil {
		return
	}
	if err := w.cmd.Process.Signal(sig); err != nil {
		w.logger.Warn("failed to signal writer", ports.Err(err))
	}
}

// Wait blocks until the writer exits and returns its exit code. A writer
// killed by an uncaught signal reports exit code 1.
func (w *Writer) Wait() int {
	err := w.cmd.Wait()
	code := w.cmd.ProcessState.ExitCode()
	if code < 0 {
		code = 1
	}
	if err != nil {
		w.logger.Info("writer exited", ports.Int("code", code), ports.Err(err))
	} else {
		w.logger.Info("writer exited", ports.Int("code", code))
	}
	return code
}
