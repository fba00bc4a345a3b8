package ratelimited

import "github.com/randalmurphal/llmrate/llm"

// UsageExtractor reads the actual token usage from a completed response
// or from the terminal chunk of a stream, returning 0 when no usage
// information is present.
type UsageExtractor interface {
	FromResponse(resp *llm.Response) int
	FromChunk(chunk llm.StreamChunk) int
}

// TotalUsageExtractor reads the provider-reported total token count,
// deriving it from input plus output tokens when no total was reported.
type TotalUsageExtractor struct{}

// FromResponse implements UsageExtractor.
func (TotalUsageExtractor) FromResponse(resp *llm.Response) int {
	if resp == nil {
		return 0
	}
	return resp.Usage.Total()
}

// FromChunk implements UsageExtractor.
func (TotalUsageExtractor) FromChunk(chunk llm.StreamChunk) int {
	if chunk.Usage == nil {
		return 0
	}
	return chunk.Usage.Total()
}
