package invocation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildTags(t *testing.T) {
	ev, err := Parse(converseRecord)
	require.NoError(t, err)

	tags := BuildTags(ev.Metadata, ev.ErrorCode)
	require.Equal(t, []Tag{
		{Label: "m1", Color: ColorBlue},
		{Label: "0.5 s", Color: ColorGreen},
		{Label: "3 tokens", Color: ColorOrange},
		{Label: "Converse", Color: ColorGray},
	}, tags)
}

func TestBuildTags_Error(t *testing.T) {
	ev, err := Parse(throttledRecord)
	require.NoError(t, err)

	tags := BuildTags(ev.Metadata, ev.ErrorCode)
	require.Len(t, tags, 5)
	require.Equal(t, "0 s", tags[1].Label)
	require.Equal(t, "0 tokens", tags[2].Label)
	require.Equal(t, Tag{Label: ErrorTagLabel, Color: ColorRed}, tags[4])
}

func TestBuildTags_FractionalTokenCount(t *testing.T) {
	ev, err := Parse(`{"timestamp":1,"modelId":"m1","operation":"Converse",` +
		`"output":{"outputBodyJson":{"stopReason":"end","usage":{"inputTokens":1,"outputTokens":2.0,"totalTokens":3.0},"metrics":{"latencyMs":250}}}}`)
	require.NoError(t, err)

	require.Equal(t, Usage{InputTokens: 1, OutputTokens: 2, TotalTokens: 3}, ev.Metadata.Usage())
	require.Equal(t, "3 tokens", BuildTags(ev.Metadata, ev.ErrorCode)[2].Label)
}

func TestColorString(t *testing.T) {
	require.Equal(t, "ORANGE", ColorOrange.String())
	require.Equal(t, "Color(9)", Color(9).String())

	text, err := ColorRed.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "RED", string(text))
}
