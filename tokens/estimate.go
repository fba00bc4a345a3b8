package tokens

// Surcharges applied when estimating chat payloads, mirroring the
// accounting of OpenAI-style chat tokenization.
const (
	// MessageOverheadTokens is the framing cost every message carries.
	MessageOverheadTokens = 4

	// NameTokens is the extra cost of a named message.
	NameTokens = 1

	// ImageTokens is the flat approximation charged per image part.
	// Actual cost varies by model and image size.
	ImageTokens = 85

	// ReplyPrimerTokens is the cost of the assistant reply primer
	// appended after the last message.
	ReplyPrimerTokens = 2

	// MinResponseTokens is the floor for reply-size estimates.
	MinResponseTokens = 50
)

// EstimateResponse estimates the reply size a prompt of the given token
// count is likely to provoke: roughly a quarter of the prompt, never
// less than MinResponseTokens.
func EstimateResponse(promptTokens int) int {
	if est := promptTokens / 4; est > MinResponseTokens {
		return est
	}
	return MinResponseTokens
}
