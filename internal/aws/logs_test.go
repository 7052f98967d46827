package aws

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/stretchr/testify/require"

	"github.com/bedrocksmith/bsmith/pkg/provider"
)

type fakeLogsAPI struct {
	streams  []cwTypes.LogStream
	events   []cwTypes.FilteredLogEvent
	err      error
	describe *cloudwatchlogs.DescribeLogStreamsInput
	filter   *cloudwatchlogs.FilterLogEventsInput
}

func (f *fakeLogsAPI) DescribeLogStreams(_ context.Context, in *cloudwatchlogs.DescribeLogStreamsInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogStreamsOutput, error) {
	f.describe = in
	if f.err != nil {
		return nil, f.err
	}
	return &cloudwatchlogs.DescribeLogStreamsOutput{LogStreams: f.streams}, nil
}

func (f *fakeLogsAPI) FilterLogEvents(_ context.Context, in *cloudwatchlogs.FilterLogEventsInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error) {
	f.filter = in
	return &cloudwatchlogs.FilterLogEventsOutput{Events: f.events}, nil
}

func event(id string, ts int64) cwTypes.FilteredLogEvent {
	return cwTypes.FilteredLogEvent{
		EventId:       aws.String(id),
		Timestamp:     aws.Int64(ts),
		Message:       aws.String(`{"operation":"Converse"}`),
		LogStreamName: aws.String("aws/bedrock/modelinvocations"),
	}
}

func TestListRecentEvents(t *testing.T) {
	api := &fakeLogsAPI{
		streams: []cwTypes.LogStream{{LogStreamName: aws.String("aws/bedrock/modelinvocations")}},
		events:  []cwTypes.FilteredLogEvent{event("a", 100), event("c", 300), event("b", 200)},
	}
	p := NewLogsProvider(api, nil)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	records, err := p.ListRecentEvents(context.Background(), &provider.LogsQuery{
		LogGroup:      "bedrock-invoke-logging-us-east-1",
		LookbackHours: 6,
		Limit:         50,
	})
	require.NoError(t, err)

	require.Len(t, records, 3)
	require.Equal(t, []string{"c", "b", "a"}, []string{records[0].EventID, records[1].EventID, records[2].EventID})
	require.Equal(t, "aws/bedrock/modelinvocations", records[0].LogStream)

	require.Equal(t, "bedrock-invoke-logging-us-east-1", aws.ToString(api.describe.LogGroupIdentifier))
	require.Equal(t, cwTypes.OrderByLastEventTime, api.describe.OrderBy)
	require.True(t, aws.ToBool(api.describe.Descending))

	require.Equal(t, []string{"aws/bedrock/modelinvocations"}, api.filter.LogStreamNames)
	require.Equal(t, now.Add(-6*time.Hour).UnixMilli(), aws.ToInt64(api.filter.StartTime))
	require.Equal(t, int32(50), aws.ToInt32(api.filter.Limit))
	require.Equal(t, `{($.operation = "Converse") || ($.operation = "ConverseStream")}`, aws.ToString(api.filter.FilterPattern))
}

func TestListRecentEvents_NoStreams(t *testing.T) {
	p := NewLogsProvider(&fakeLogsAPI{}, nil)

	_, err := p.ListRecentEvents(context.Background(), &provider.LogsQuery{LogGroup: "empty", LookbackHours: 1, Limit: 1})
	require.ErrorIs(t, err, provider.ErrNoLogStreams)
}

func TestListRecentEvents_APIError(t *testing.T) {
	denied := errors.New("AccessDeniedException")
	p := NewLogsProvider(&fakeLogsAPI{err: denied}, nil)

	_, err := p.ListRecentEvents(context.Background(), &provider.LogsQuery{LogGroup: "g", LookbackHours: 1, Limit: 1})
	require.ErrorIs(t, err, denied)
}

func TestOperationFilterPattern(t *testing.T) {
	require.Equal(t, `{($.operation = "InvokeModel")}`, OperationFilterPattern([]string{"InvokeModel"}))
}
