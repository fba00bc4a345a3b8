package llm

import "time"

// Role identifies the message sender.
type Role string

// Standard message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Content part types.
const (
	ContentText  = "text"
	ContentImage = "image"
)

// Message is a conversation turn. For simple text use Content; for
// multimodal messages (text plus images) use ContentParts, which takes
// precedence when set.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"` // for tool results

	// ContentParts enables multimodal content. Each part is text or an
	// image reference.
	ContentParts []ContentPart `json:"content_parts,omitempty"`
}

// ContentPart is a piece of multimodal content.
type ContentPart struct {
	// Type is ContentText or ContentImage.
	Type string `json:"type"`

	// Text content (when Type == ContentText).
	Text string `json:"text,omitempty"`

	// ImageURL for remote images (when Type == ContentImage).
	ImageURL string `json:"image_url,omitempty"`

	// ImageBase64 for inline images (when Type == ContentImage).
	ImageBase64 string `json:"image_base64,omitempty"`

	// MediaType is the MIME type for inline images.
	MediaType string `json:"media_type,omitempty"`
}

// NewTextMessage creates a simple text message.
func NewTextMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// NewImageMessage creates a message with a text part and a remote image.
func NewImageMessage(role Role, text, imageURL string) Message {
	return Message{
		Role: role,
		ContentParts: []ContentPart{
			{Type: ContentText, Text: text},
			{Type: ContentImage, ImageURL: imageURL},
		},
	}
}

// IsMultimodal returns true if the message carries content parts.
func (m Message) IsMultimodal() bool {
	return len(m.ContentParts) > 0
}

// GetText returns the text content of the message. For multimodal
// messages it concatenates all text parts.
func (m Message) GetText() string {
	if !m.IsMultimodal() {
		return m.Content
	}
	var text string
	for _, part := range m.ContentParts {
		if part.Type == ContentText {
			text += part.Text
		}
	}
	return text
}

// Request configures a completion call.
type Request struct {
	// Messages is the conversation history to send to the model.
	Messages []Message `json:"messages"`

	// Model specifies which model to use (provider-specific name).
	Model string `json:"model,omitempty"`

	// MaxTokens limits the response length.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls response randomness.
	Temperature float64 `json:"temperature,omitempty"`

	// Options holds provider-specific configuration not covered by the
	// standard fields.
	Options map[string]any `json:"options,omitempty"`
}

// Response is the output of a completion call.
type Response struct {
	// Content is the text response from the model.
	Content string `json:"content"`

	// Usage tracks token consumption for this request.
	Usage Usage `json:"usage"`

	// Model is the actual model used (may differ from requested).
	Model string `json:"model"`

	// FinishReason indicates why the model stopped generating.
	// Common values: "stop", "length".
	FinishReason string `json:"finish_reason"`

	// Duration is the time taken for the completion.
	Duration time.Duration `json:"duration"`
}

// Usage tracks token consumption reported by the remote side.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add combines usage from another Usage.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}

// Total returns the total token count, deriving it from input and
// output when the provider did not report a total.
func (u Usage) Total() int {
	if u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return u.InputTokens + u.OutputTokens
}

// StreamChunk is a piece of a streaming response. The chunk with Done
// set is the terminal event: it is the only place the true token usage
// of a streamed call is reported.
type StreamChunk struct {
	// Content is the text delta in this chunk.
	Content string `json:"content,omitempty"`

	// Usage is the cumulative token usage (only set on the Done chunk).
	Usage *Usage `json:"usage,omitempty"`

	// Done indicates this is the final chunk.
	Done bool `json:"done"`

	// Error is non-nil if streaming failed.
	Error error `json:"-"`
}
