//go:build !unix

package sqllog

import (
	"os"
)

// dupFile reopens f's path in append mode where descriptor duplication is unavailable
func dupFile(f *os.File) (*os.File, error) {
	return os.OpenFile(f.Name(), os.O_WRONLY|os.O_APPEND, filePerm)
}
