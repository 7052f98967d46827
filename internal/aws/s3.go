package aws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/bedrocksmith/bsmith/pkg/provider"
)

// DefaultMaxObjectBytes caps how much of an offloaded payload is read
const DefaultMaxObjectBytes = 32 << 20

// S3API is the subset of the S3 client used here
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ObjectStore implements provider.ObjectStore on S3
type ObjectStore struct {
	api      S3API
	logger   *slog.Logger
	maxBytes int64
}

// NewObjectStore creates an ObjectStore. A nil logger uses slog.Default
func NewObjectStore(api S3API, logger *slog.Logger) *ObjectStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ObjectStore{
		api:      api,
		logger:   logger,
		maxBytes: DefaultMaxObjectBytes,
	}
}

// GetObject reads the object at an s3://bucket/key URI. Compressed
// objects are decompressed
func (s *ObjectStore) GetObject(ctx context.Context, uri string) ([]byte, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}

	output, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", provider.ErrNotFound, uri)
		}
		return nil, fmt.Errorf("failed to get %s: %w", uri, err)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(io.LimitReader(output.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", uri, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("object %s exceeds %d bytes", uri, s.maxBytes)
	}

	decoded, err := decodePayload(data, s.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", uri, err)
	}

	s.logger.Debug("loaded offloaded payload", "uri", uri, "bytes", len(data), "decoded_bytes", len(decoded))

	return decoded, nil
}

// ParseS3URI splits s3://bucket/key into bucket and key
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("%w: %q has no s3:// scheme", provider.ErrInvalidS3Path, uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q must be s3://bucket/key", provider.ErrInvalidS3Path, uri)
	}
	return bucket, key, nil
}
