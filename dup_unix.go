//go:build unix

package sqllog

import (
	"os"

	"golang.org/x/sys/unix"
)

// dupFile returns a second descriptor for f's open file description,
// sharing its O_APPEND offset
func dupFile(f *os.File) (*os.File, error) {
	raw, err := f.SyscallConn()
	if err != nil {
		return nil, err
	}

	var fd int
	var dupErr error
	if err := raw.Control(func(orig uintptr) {
		fd, dupErr = unix.Dup(int(orig))
	}); err != nil {
		return nil, err
	}
	if dupErr != nil {
		return nil, os.NewSyscallError("dup", dupErr)
	}
	unix.CloseOnExec(fd)
	return os.NewFile(uintptr(fd), f.Name()), nil
}
