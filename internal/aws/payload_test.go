package aws

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

const offloadedBody = `{"messages":[{"role":"user","content":[{"text":"long prompt"}]}]}`

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func zstded(t *testing.T, s string) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll([]byte(s), nil)
}

func TestDecodePayload(t *testing.T) {
	out, err := decodePayload([]byte(offloadedBody), 1024)
	require.NoError(t, err)
	require.Equal(t, offloadedBody, string(out))

	out, err = decodePayload(gzipped(t, offloadedBody), 1024)
	require.NoError(t, err)
	require.Equal(t, offloadedBody, string(out))

	out, err = decodePayload(zstded(t, offloadedBody), 1024)
	require.NoError(t, err)
	require.Equal(t, offloadedBody, string(out))
}

func TestDecodePayload_Limits(t *testing.T) {
	_, err := decodePayload(gzipped(t, strings.Repeat("x", 64)), 16)
	require.ErrorContains(t, err, "exceeds 16 bytes")

	_, err = decodePayload([]byte{0x1f, 0x8b, 0x00}, 16)
	require.ErrorContains(t, err, "gzip")
}

func TestObjectStore_GetObjectGzip(t *testing.T) {
	api := &fakeS3API{body: string(gzipped(t, offloadedBody))}
	store := NewObjectStore(api, nil)

	data, err := store.GetObject(context.Background(), "s3://logs-bucket/input.json.gz")
	require.NoError(t, err)
	require.Equal(t, offloadedBody, string(data))
}
