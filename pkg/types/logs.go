package types

import "time"

// LogRecord represents a single CloudWatch Logs event carrying one
// model invocation log
type LogRecord struct {
	EventID   string `json:"eventId"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
	Message   string `json:"message"`   // JSON-encoded invocation log
	LogStream string `json:"logStream,omitempty"`
}

// Time returns the event timestamp as a time.Time in UTC
func (r LogRecord) Time() time.Time {
	return time.UnixMilli(r.Timestamp).UTC()
}
