package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

const systemTemplate = "You are a document annotation assistant. When asked for JSON, respond with strict JSON and nothing else. Stay grounded in the provided text."

// generateChat runs one chat completion against a langchaingo model:
// system template first, then the prompt with any context blocks appended.
func generateChat(ctx context.Context, model llms.Model, req GenerateRequest) (GenerateResponse, error) {
	prompt := req.Prompt
	if len(req.Context) > 0 {
		prompt += "\n\nText:\n" + strings.Join(req.Context, "\n\n")
	}
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemTemplate),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}
	resp, err := model.GenerateContent(ctx, content, llms.WithTemperature(0.2))
	if err != nil {
		return GenerateResponse{}, err
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return GenerateResponse{}, fmt.Errorf("empty model response")
	}
	return GenerateResponse{Text: resp.Choices[0].Content}, nil
}
