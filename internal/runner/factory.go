package runner

import (
	"fmt"

	"github.com/Andrew-Schwartz/typset-image/internal/config"
)

const (
	RunnerKindExec   = "exec"
	RunnerKindDocker = "docker"
)

// NewRunnerFromConfig creates a Runner based on the configured kind.
// "exec" (default) runs local binaries, "docker" runs them inside the
// configured toolchain container.
func NewRunnerFromConfig(cfg config.RunnerConfig) (Runner, error) {
	switch cfg.Kind {
	case RunnerKindExec, "":
		return NewExecRunner(), nil
	case RunnerKindDocker:
		return NewDockerRunner(cfg.Container, cfg.Docker)
	default:
		return nil, fmt.Errorf("unknown runner kind: %s (supported: %s, %s)", cfg.Kind, RunnerKindExec, RunnerKindDocker)
	}
}
