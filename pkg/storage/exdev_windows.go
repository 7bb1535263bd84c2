//go:build windows

package storage

import (
	"errors"
	"os"
	"syscall"
)

// errNotSameDevice is ERROR_NOT_SAME_DEVICE on Windows
const errNotSameDevice = syscall.Errno(17)

func isEXDEV(err error) bool {
	var le *os.LinkError
	if errors.As(err, &le) {
		err = le.Err
	}
	var errno syscall.Errno
	return errors.As(err, &errno) && errno == errNotSameDevice
}
