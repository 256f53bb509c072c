package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"matchfoundry/pkg/types"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const systemPrompt = "You extract startup founder weekly updates into 'needs' and 'learnings'. " +
	"Each need is something they want help with. Each learning is something they can offer others."

// itemSchema constrains the structured output to the closed category set.
var resultSchema = json.RawMessage(fmt.Sprintf(`{
	"type": "object",
	"properties": {
		"needs": {"type": "array", "items": %[1]s},
		"learnings": {"type": "array", "items": %[1]s}
	},
	"required": ["needs", "learnings"],
	"additionalProperties": false
}`, fmt.Sprintf(`{
	"type": "object",
	"properties": {
		"label": {"type": "string"},
		"category": {"type": "string", "enum": [%s]}
	},
	"required": ["label", "category"],
	"additionalProperties": false
}`, categoryEnumJSON())))

func categoryEnumJSON() string {
	quoted := make([]string, len(types.Categories))
	for i, c := range types.Categories {
		quoted[i] = `"` + string(c) + `"`
	}
	return strings.Join(quoted, ", ")
}

// OpenAI extracts via a structured-output chat completion and falls back to
// the heuristic when the call fails.
type OpenAI struct {
	client   *openai.Client
	model    string
	fallback *Heuristic
	logger   *logrus.Logger
}

func NewOpenAI(apiKey, model string, logger *logrus.Logger) *OpenAI {
	return &OpenAI{
		client:   openai.NewClient(apiKey),
		model:    model,
		fallback: NewHeuristic(),
		logger:   logger,
	}
}

func (o *OpenAI) Extract(ctx context.Context, text string) (*Result, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return nil, fmt.Errorf("%w: text is required", types.ErrInvalidInput)
	}

	result, err := o.complete(ctx, raw)
	if err != nil {
		o.logger.WithError(err).Warn("llm extraction failed, falling back to heuristic")
		return o.fallback.Extract(ctx, raw)
	}

	return result, nil
}

func (o *OpenAI) complete(ctx context.Context, raw string) (*Result, error) {
	userPrompt := strings.Join([]string{
		"Given this weekly update from a founder, extract:",
		"- 1–3 'needs' (things they want help with)",
		"- 1–3 'learnings' (things they can help others with)",
		"",
		"Assign each item to ONE of these categories:",
		categoryList(),
		"",
		"Weekly update:",
		raw,
	}, "\n")

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "needs_learnings",
				Schema: resultSchema,
				Strict: true,
			},
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	var result Result
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &result); err != nil {
		return nil, fmt.Errorf("decode structured output: %w", err)
	}

	result.Needs = capItems(result.Needs)
	result.Learnings = capItems(result.Learnings)

	return &result, nil
}

func categoryList() string {
	names := make([]string, len(types.Categories))
	for i, c := range types.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
