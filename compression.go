package popcov

import (
	"path"
	"strings"
)

// Compression indicates how (and whether) an input table is compressed
type Compression uint32

const (
	CompressionDisabled Compression = iota
	CompressionGZIP
	CompressionZStandard
)

func (c Compression) String() string {
	switch c {
	case CompressionDisabled:
		return "none"
	case CompressionGZIP:
		return "gzip"
	case CompressionZStandard:
		return "zstd"

	default:
		return "Illegal selection"
	}
}

// DetectCompression infers the compression of an input from its file
// extension.
func DetectCompression(name string) Compression {
	switch strings.ToLower(path.Ext(name)) {
	case ".gz", ".bgz":
		return CompressionGZIP
	case ".zst", ".zstd":
		return CompressionZStandard
	}
	return CompressionDisabled
}
