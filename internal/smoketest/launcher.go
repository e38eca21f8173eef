package smoketest

import (
	"context"
	"io"
	"os/exec"
	"syscall"
)

// Launcher starts the application server as a background process.
type Launcher interface {
	Start(ctx context.Context, dir string, stream io.Writer, name string, args ...string) (Process, error)
}

// Process is a handle on a launched test server.
type Process interface {
	Terminate() error
}

// ExecLauncher starts real host processes.
type ExecLauncher struct{}

func NewExecLauncher() *ExecLauncher {
	return &ExecLauncher{}
}

func (el *ExecLauncher) Start(ctx context.Context, dir string, stream io.Writer, name string, args ...string) (Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if stream != nil {
		cmd.Stdout = stream
		cmd.Stderr = stream
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Terminate() error {
	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return err
	}
	// Reap the child; the exit status of a killed test server is irrelevant.
	go p.cmd.Wait()
	return nil
}
