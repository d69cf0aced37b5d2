//go:build !windows

// Package process terminates process trees left behind by headless browsers.
package process

import "syscall"

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID). Chrome spawns renderer and GPU
// helper processes that survive a plain kill of the parent.
func KillProcessGroup(pid int) {
	// Best-effort cleanup; error ignored as launcher.Kill() provides fallback
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
