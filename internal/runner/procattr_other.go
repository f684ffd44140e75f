//go:build !windows

package runner

import "os/exec"

func hideWindow(_ *exec.Cmd) {}
