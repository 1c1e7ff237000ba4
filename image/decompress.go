package image

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
	"github.com/ulikunitz/xz"
)

type codec struct {
	name string
	open func(r io.Reader) (io.ReadCloser, error)
}

var codecs = map[string]codec{
	".gz": {name: "gzip", open: func(r io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(r)
	}},
	".zst":  {name: "zstd", open: openZstd},
	".zstd": {name: "zstd", open: openZstd},
	".xz": {name: "xz", open: func(r io.Reader) (io.ReadCloser, error) {
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	}},
}

func openZstd(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}

// codecFor picks the decompressor from the file extension, or nil.
func codecFor(path string) *codec {
	c, ok := codecs[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil
	}
	return &c
}

// unpack decompresses src into a new temporary file on fs.
func unpack(fs afero.Fs, src io.Reader, c *codec, opts Options) (afero.File, error) {
	rc, err := c.open(src)
	if err != nil {
		return nil, fmt.Errorf("open %s stream: %w", c.name, err)
	}
	defer rc.Close()

	tmp, err := afero.TempFile(fs, opts.TempDir, "fatnav-*.img")
	if err != nil {
		return nil, fmt.Errorf("create temporary image: %w", err)
	}
	fail := func(err error) (afero.File, error) {
		_ = tmp.Close()
		_ = fs.Remove(tmp.Name())
		return nil, err
	}

	var n int64
	if opts.MaxDecompressedSize > 0 {
		n, err = io.CopyN(tmp, rc, opts.MaxDecompressedSize+1)
		if err == io.EOF {
			err = nil
		}
	} else {
		n, err = io.Copy(tmp, rc)
	}
	if err != nil {
		return fail(fmt.Errorf("decompress %s image: %w", c.name, err))
	}
	if opts.MaxDecompressedSize > 0 && n > opts.MaxDecompressedSize {
		return fail(fmt.Errorf("%w: more than %d bytes", ErrTooLarge, opts.MaxDecompressedSize))
	}
	return tmp, nil
}
