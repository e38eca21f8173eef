package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runner executes host commands. Every host mutation in the pipeline goes
// through this interface so tests can substitute a scripted implementation.
type Runner interface {
	Run(ctx context.Context, stream io.Writer, name string, args ...string) (string, error)
}

// ExecRunner runs commands on the local host.
type ExecRunner struct{}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (er *ExecRunner) Run(ctx context.Context, stream io.Writer, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var buf bytes.Buffer
	if stream != nil {
		cmd.Stdout = io.MultiWriter(&buf, stream)
		cmd.Stderr = io.MultiWriter(&buf, stream)
	} else {
		cmd.Stdout = &buf
		cmd.Stderr = &buf
	}

	if err := cmd.Run(); err != nil {
		return buf.String(), fmt.Errorf("command '%s' failed: %w", renderCommand(name, args), err)
	}
	return buf.String(), nil
}

func renderCommand(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
