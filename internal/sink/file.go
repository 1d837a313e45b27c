package sink

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// File is a sink that writes raw wire bytes to a file. It is useful with
// kernel drivers that accept WS2812 frames through a character device, and
// for inspecting frames on stdout.
type File struct {
	idle
	w io.Writer
	c io.Closer
}

// OpenFile opens path for writing. "-" writes to stdout, which is not
// closed.
func OpenFile(path string) (*File, error) {
	if path == "-" {
		return &File{w: os.Stdout}, nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sink file")
	}
	return &File{w: f, c: f}, nil
}

func (f *File) Write(b []byte) (int, error) {
	return f.w.Write(b)
}

func (f *File) Close() error {
	if f.c == nil {
		return nil
	}
	return f.c.Close()
}
