package popcov

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

const gcsScheme = "gs://"

// IsGCSPath reports whether name refers to a Google Cloud Storage object.
func IsGCSPath(name string) bool {
	return strings.HasPrefix(name, gcsScheme)
}

// parseGCSPath splits gs://bucket/path/to/object into bucket and object.
func parseGCSPath(name string) (bucket, object string, err error) {
	if !IsGCSPath(name) {
		return "", "", fmt.Errorf("%s is not a %s path", name, gcsScheme)
	}

	parts := strings.SplitN(strings.TrimPrefix(name, gcsScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%s does not name both a bucket and an object", name)
	}

	return parts[0], parts[1], nil
}

// gcsObjectReader holds the client open for as long as the object is read.
type gcsObjectReader struct {
	*storage.Reader
	client *storage.Client
}

func (g *gcsObjectReader) Close() error {
	err := g.Reader.Close()
	if cerr := g.client.Close(); err == nil {
		err = cerr
	}
	return err
}

func openGCS(ctx context.Context, name string) (io.ReadCloser, error) {
	bucket, object, err := parseGCSPath(name)
	if err != nil {
		return nil, pfx.Err(err)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, pfx.Err(err)
	}

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		client.Close()
		return nil, pfx.Err(fmt.Errorf("%s: %w", name, err))
	}

	return &gcsObjectReader{Reader: r, client: client}, nil
}

// LocalizeFile returns a local path for name. Local paths are returned
// unchanged; GCS objects are copied into dir, since SQLite needs a seekable
// local file.
func LocalizeFile(ctx context.Context, name, dir string) (string, error) {
	if !IsGCSPath(name) {
		return name, nil
	}

	r, err := openGCS(ctx, name)
	if err != nil {
		return "", err
	}
	defer r.Close()

	f, err := os.CreateTemp(dir, "*-"+filepath.Base(name))
	if err != nil {
		return "", pfx.Err(err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", pfx.Err(err)
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", pfx.Err(err)
	}

	return f.Name(), nil
}
