package popcov

import (
	"io"

	"github.com/carbocation/pfx"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// decompressingReader wraps r according to c. Closing the returned reader
// closes r as well.
func decompressingReader(r io.ReadCloser, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionGZIP:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return &stackedReader{Reader: gz, closers: []io.Closer{gz, r}}, nil

	case CompressionZStandard:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return &stackedReader{Reader: dec, closers: []io.Closer{dec.IOReadCloser(), r}}, nil
	}

	return r, nil
}

type stackedReader struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedReader) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
