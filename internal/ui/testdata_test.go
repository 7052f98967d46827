package ui

import "github.com/bedrocksmith/bsmith/pkg/types"

const converseMessage = `{"timestamp":"2024-06-01T00:00:02Z","accountId":"123456789012","region":"us-east-1",` +
	`"modelId":"anthropic.claude-3-haiku","operation":"Converse",` +
	`"input":{"inputBodyJson":{"system":[{"text":"Answer briefly."}],"messages":[{"role":"user","content":[{"text":"What is Go?"}]}],` +
	`"inferenceConfig":{"maxTokens":256}}},` +
	`"output":{"outputBodyJson":{"output":{"message":{"role":"assistant","content":[{"text":"A programming language."}]}},` +
	`"stopReason":"end_turn","usage":{"inputTokens":12,"outputTokens":5,"totalTokens":17},"metrics":{"latencyMs":820}}}}`

const offloadedMessage = `{"timestamp":"2024-06-01T00:00:01Z","modelId":"anthropic.claude-3-haiku","operation":"ConverseStream",` +
	`"input":{"inputBodyS3Path":"s3://invocation-logs/AWSLogs/input/1.json"},"errorCode":"ThrottlingException"}`

func testRecords() []types.LogRecord {
	return []types.LogRecord{
		{EventID: "e2", Timestamp: 1717200002000, Message: converseMessage},
		{EventID: "e1", Timestamp: 1717200001000, Message: offloadedMessage},
	}
}
