package amz

import (
	"unsafe"
)

// b2s converts a byte slice to a string without copying. b must not be modified afterwards
func b2s(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}

func cloneString(s string) string {
	if s == "" {
		return ""
	}
	return string(append([]byte(nil), s...))
}
