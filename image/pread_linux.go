//go:build linux

package image

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// newReaderAt reads host files with pread so concurrent readers never share
// a file offset.
func newReaderAt(f io.ReaderAt) io.ReaderAt {
	osFile, ok := f.(*os.File)
	if !ok {
		return f
	}
	return &preader{file: osFile, fd: int(osFile.Fd())}
}

type preader struct {
	// file keeps the descriptor alive.
	file *os.File
	fd   int
}

func (p *preader) ReadAt(b []byte, off int64) (int, error) {
	n := 0
	for n < len(b) {
		m, err := unix.Pread(p.fd, b[n:], off+int64(n))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return n, &os.PathError{Op: "pread", Path: p.file.Name(), Err: err}
		}
		if m == 0 {
			return n, io.EOF
		}
		n += m
	}
	return n, nil
}
