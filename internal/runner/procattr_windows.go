//go:build windows

package runner

import (
	"os/exec"
	"syscall"
)

// hideWindow keeps console tools from flashing a window when the binary is
// built as a desktop (non-console) application.
func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}
