package provider

import (
	"context"
	"errors"

	"github.com/bedrocksmith/bsmith/pkg/types"
)

// Common errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrNoLogStreams  = errors.New("log group has no log streams")
	ErrInvalidS3Path = errors.New("invalid S3 path")
)

// Invocation operations recorded by Bedrock model invocation logging that
// the viewer understands
const (
	OperationConverse       = "Converse"
	OperationConverseStream = "ConverseStream"
)

// DefaultOperations is the operation filter applied when a query leaves
// Operations empty
var DefaultOperations = []string{OperationConverse, OperationConverseStream}

// LogsQuery describes a single fetch of recent invocation logs
type LogsQuery struct {
	LogGroup      string   // Log group name or ARN
	LookbackHours int      // Only events newer than now - LookbackHours
	Limit         int      // Max events returned
	Operations    []string // Allowed values of the operation field
}

// LogsProvider defines the interface for fetching invocation logs
type LogsProvider interface {
	// ListRecentEvents returns events of the most recently active stream of
	// the log group, newest first
	ListRecentEvents(ctx context.Context, q *LogsQuery) ([]types.LogRecord, error)
}

// ObjectStore defines the interface for reading externally stored payloads
type ObjectStore interface {
	// GetObject returns the content of an object addressed as s3://bucket/key
	GetObject(ctx context.Context, uri string) ([]byte, error)
}

// IdentityProvider reports who the ambient credentials belong to
type IdentityProvider interface {
	CallerIdentity(ctx context.Context) (*types.CallerIdentity, error)
}
