//go:build !windows

package main

import (
	"os/exec"
	"syscall"
)

// setSysProcAttr sets platform-specific process attributes for detaching
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}
}
