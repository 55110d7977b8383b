//go:build !windows

package supervisor

import (
	"errors"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// detach places the child in a new session so it survives the parent's
// terminal and receives no signals aimed at the parent's process group.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

// terminatePID asks pid to exit. Only pid is signalled, never its process
// group.
func terminatePID(pid int) error {
	return signalPID(pid, unix.SIGTERM)
}

// killPID forcibly ends pid.
func killPID(pid int) error {
	return signalPID(pid, unix.SIGKILL)
}

// alivePID reports whether pid still exists. EPERM means the process
// exists but belongs to someone else.
func alivePID(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

func signalPID(pid int, sig unix.Signal) error {
	err := unix.Kill(pid, sig)
	if errors.Is(err, unix.ESRCH) {
		return errProcessGone
	}
	return err
}
