package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/Andrew-Schwartz/typset-image/internal/logger"
)

// ExecRunner invokes tools as local child processes.
type ExecRunner struct{}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, workdir string, exe string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Dir = workdir
	hideWindow(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log := logger.WithComponent("exec-runner")
	log.Debugf("running %s %v in %s", exe, args, workdir)

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return "", &SpawnError{Command: exe, Err: err}
	}

	log.Debugf("%s stdout: %s", exe, stdout.String())
	log.Debugf("%s stderr: %s", exe, stderr.String())

	return "", &ExitError{
		Command: exe,
		Status:  exitErr.ExitCode(),
		Message: ExtractDiagnostic(stdout.String(), stderr.String()),
	}
}
