package invocation

import (
	"fmt"
	"strconv"
)

// Color is the display category of a summary tag
type Color int

const (
	ColorBlue Color = iota
	ColorGreen
	ColorOrange
	ColorGray
	ColorRed
)

var colorNames = [...]string{"BLUE", "GREEN", "ORANGE", "GRAY", "RED"}

func (c Color) String() string {
	if c < 0 || int(c) >= len(colorNames) {
		return fmt.Sprintf("Color(%d)", int(c))
	}
	return colorNames[c]
}

// MarshalText implements encoding.TextMarshaler
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ErrorTagLabel is the label of the tag appended to failed invocations
const ErrorTagLabel = "ERROR"

// Tag is one summary chip shown for an event
type Tag struct {
	Label string `json:"label"`
	Color Color  `json:"color"`
}

// BuildTags returns the summary tags of an event: model, latency, total
// tokens and operation, plus an error tag when errorCode is set
func BuildTags(md Metadata, errorCode string) []Tag {
	tags := []Tag{
		{Label: md.ModelID(), Color: ColorBlue},
		{Label: FormatSeconds(md.LatencyMs()) + " s", Color: ColorGreen},
		{Label: strconv.FormatInt(md.Usage().TotalTokens, 10) + " tokens", Color: ColorOrange},
		{Label: md.Operation(), Color: ColorGray},
	}
	if errorCode != "" {
		tags = append(tags, Tag{Label: ErrorTagLabel, Color: ColorRed})
	}
	return tags
}

// FormatSeconds renders a millisecond latency in seconds
func FormatSeconds(ms float64) string {
	return strconv.FormatFloat(ms/1000, 'f', -1, 64)
}
