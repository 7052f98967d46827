package aws

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// decodePayload decompresses gzip or zstd payloads, detected by their magic
// bytes. Anything else is returned as is. The decoded size is capped at
// maxBytes
func decodePayload(data []byte, maxBytes int64) ([]byte, error) {
	var r io.Reader
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("invalid gzip payload: %w", err)
		}
		defer zr.Close()
		r = zr
	case bytes.HasPrefix(data, zstdMagic):
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("invalid zstd payload: %w", err)
		}
		defer zr.Close()
		r = zr
	default:
		return data, nil
	}

	out, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress payload: %w", err)
	}
	if int64(len(out)) > maxBytes {
		return nil, fmt.Errorf("decompressed payload exceeds %d bytes", maxBytes)
	}
	return out, nil
}
