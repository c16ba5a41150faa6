package popcov

import (
	"context"
	"io"
	"os"

	"github.com/carbocation/pfx"
)

// OpenInput opens a local file or a gs:// object for reading, decompressing
// it when its name ends in .gz or .zst.
func OpenInput(ctx context.Context, name string) (io.ReadCloser, error) {
	var (
		r   io.ReadCloser
		err error
	)

	if IsGCSPath(name) {
		r, err = openGCS(ctx, name)
	} else {
		r, err = os.Open(name)
	}
	if err != nil {
		return nil, pfx.Err(err)
	}

	out, err := decompressingReader(r, DetectCompression(name))
	if err != nil {
		r.Close()
		return nil, err
	}

	return out, nil
}
