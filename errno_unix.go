//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package ignore

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// errnoCode returns the symbolic name of a syscall.Errno, e.g. "ENOENT".
func errnoCode(err error) (string, bool) {
	errno, ok := err.(syscall.Errno)
	if !ok {
		return "", false
	}
	name := unix.ErrnoName(errno)
	return name, name != ""
}
