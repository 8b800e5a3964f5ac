// +build linux darwin freebsd netbsd openbsd

package engine

import (
	"golang.org/x/sys/unix"
)

// platform returns "<sysname> <machine>" as reported by uname
func platform() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "Unknown"
	}
	return unix.ByteSliceToString(u.Sysname[:]) + " " + unix.ByteSliceToString(u.Machine[:])
}
