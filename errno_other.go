//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)

package ignore

// errnoCode has no symbolic name table on this platform.
func errnoCode(error) (string, bool) {
	return "", false
}
