// +build !linux,!darwin,!freebsd,!netbsd,!openbsd

package engine

import (
	"runtime"
)

func platform() string {
	return runtime.GOOS + " " + runtime.GOARCH
}
