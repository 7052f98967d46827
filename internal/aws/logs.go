package aws

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"

	"github.com/bedrocksmith/bsmith/pkg/provider"
	"github.com/bedrocksmith/bsmith/pkg/types"
)

// LogsAPI is the subset of the CloudWatch Logs client used here
type LogsAPI interface {
	DescribeLogStreams(ctx context.Context, params *cloudwatchlogs.DescribeLogStreamsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogStreamsOutput, error)
	FilterLogEvents(ctx context.Context, params *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error)
}

// LogsProvider implements provider.LogsProvider on CloudWatch Logs
type LogsProvider struct {
	api    LogsAPI
	logger *slog.Logger
	now    func() time.Time
}

// NewLogsProvider creates a LogsProvider. A nil logger uses slog.Default
func NewLogsProvider(api LogsAPI, logger *slog.Logger) *LogsProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogsProvider{
		api:    api,
		logger: logger,
		now:    time.Now,
	}
}

// ListRecentEvents returns the events of the most recently active stream
// in the log group, filtered to the query operations, newest first
func (p *LogsProvider) ListRecentEvents(ctx context.Context, q *provider.LogsQuery) ([]types.LogRecord, error) {
	stream, err := p.latestStream(ctx, q.LogGroup)
	if err != nil {
		return nil, err
	}

	start := p.now().Add(-time.Duration(q.LookbackHours) * time.Hour)
	operations := q.Operations
	if len(operations) == 0 {
		operations = provider.DefaultOperations
	}

	input := &cloudwatchlogs.FilterLogEventsInput{
		LogGroupIdentifier: aws.String(q.LogGroup),
		LogStreamNames:     []string{stream},
		StartTime:          aws.Int64(start.UnixMilli()),
		FilterPattern:      aws.String(OperationFilterPattern(operations)),
	}
	if q.Limit > 0 {
		input.Limit = aws.Int32(int32(q.Limit))
	}

	p.logger.Debug("filtering log events",
		"log_group", q.LogGroup,
		"log_stream", stream,
		"start", start.UTC().Format(time.RFC3339),
		"limit", q.Limit)

	output, err := p.api.FilterLogEvents(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to filter log events in %s: %w", q.LogGroup, err)
	}

	records := make([]types.LogRecord, 0, len(output.Events))
	for _, ev := range output.Events {
		records = append(records, types.LogRecord{
			EventID:   aws.ToString(ev.EventId),
			Timestamp: aws.ToInt64(ev.Timestamp),
			Message:   aws.ToString(ev.Message),
			LogStream: aws.ToString(ev.LogStreamName),
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})

	p.logger.Info("fetched invocation logs", "log_group", q.LogGroup, "log_stream", stream, "events", len(records))

	return records, nil
}

// latestStream returns the name of the stream with the newest event
func (p *LogsProvider) latestStream(ctx context.Context, logGroup string) (string, error) {
	output, err := p.api.DescribeLogStreams(ctx, &cloudwatchlogs.DescribeLogStreamsInput{
		LogGroupIdentifier: aws.String(logGroup),
		OrderBy:            cwTypes.OrderByLastEventTime,
		Descending:         aws.Bool(true),
		Limit:              aws.Int32(1),
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe log streams of %s: %w", logGroup, err)
	}

	if len(output.LogStreams) == 0 || aws.ToString(output.LogStreams[0].LogStreamName) == "" {
		return "", fmt.Errorf("%w: %s", provider.ErrNoLogStreams, logGroup)
	}

	return aws.ToString(output.LogStreams[0].LogStreamName), nil
}

// OperationFilterPattern builds a JSON filter pattern matching any of the
// given operation names
func OperationFilterPattern(operations []string) string {
	terms := make([]string, 0, len(operations))
	for _, op := range operations {
		terms = append(terms, fmt.Sprintf("($.operation = %q)", op))
	}
	return "{" + strings.Join(terms, " || ") + "}"
}
