package llm

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a JSON-only data analysis assistant. " +
	"Input: a problem description and optionally small CSV/JSON content. " +
	"Output STRICTLY: JSON with keys 'type' and 'answer'. " +
	"type is one of 'number','string','json','file'. No explanation."

var jsonBlockPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// Result is the model's typed answer.
type Result struct {
	Type   string `json:"type"`
	Answer any    `json:"answer"`
}

// Asker is the optional text-generation fallback. A nil *Result with a nil
// error means "no usable answer, use the built-in strategy".
type Asker interface {
	Ask(ctx context.Context, prompt string) (*Result, error)
}

// OpenAIAsker asks a chat-completion model for an answer.
type OpenAIAsker struct {
	client *openai.Client
	model  string
}

// NewOpenAIAsker returns nil when no API key is configured, which callers
// treat as "fallback unavailable", not as an error.
func NewOpenAIAsker(apiKey, model string) *OpenAIAsker {
	if apiKey == "" {
		return nil
	}
	return &OpenAIAsker{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (a *OpenAIAsker) Ask(ctx context.Context, prompt string) (*Result, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
		MaxTokens:   1024,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}

	return parseResult(resp.Choices[0].Message.Content), nil
}

// parseResult pulls {type, answer} out of the reply, tolerating models that
// wrap the JSON in prose. Unparseable replies yield nil.
func parseResult(content string) *Result {
	var res Result
	if err := json.Unmarshal([]byte(content), &res); err == nil {
		return &res
	}

	if block := jsonBlockPattern.FindString(content); block != "" {
		if err := json.Unmarshal([]byte(block), &res); err == nil {
			return &res
		}
	}
	return nil
}
