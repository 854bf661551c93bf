package feeds

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
)

// readCloser closes a decompressor and the underlying file.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (rc *readCloser) Close() error {
	var err error
	for _, f := range rc.closers {
		if e := f(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// OpenFile opens a file for reading, transparently decompressing zstd and
// gzip files, judged by the file extension.
func OpenFile(filename string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".zst":
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readCloser{Reader: dec, closers: []func() error{
			func() error { dec.Close(); return nil },
			f.Close,
		}}, nil
	case ".gz":
		zr, err := pgzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readCloser{Reader: zr, closers: []func() error{zr.Close, f.Close}}, nil
	default:
		return f, nil
	}
}
