package providers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqProvider talks to Groq's OpenAI-compatible chat API.
type GroqProvider struct {
	keyName string
	model   string
	llm     llms.Model
}

func NewGroqProvider(keyName string) *GroqProvider {
	model := strings.TrimSpace(os.Getenv("CHUNKFORGE_GROQ_MODEL"))
	if model == "" {
		model = "llama-3.1-8b-instant"
	}
	p := &GroqProvider{keyName: keyName, model: model}
	if key := resolveGroqKey(keyName); key != "" {
		llm, err := openai.New(
			openai.WithToken(key),
			openai.WithModel(model),
			openai.WithBaseURL(groqBaseURL),
		)
		if err == nil {
			p.llm = llm
		}
	}
	return p
}

func (g *GroqProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "groq", Model: g.model, Key: g.keyName}
	if g.llm == nil {
		return GenerateResponse{}, info, fmt.Errorf("groq key missing for alias %q", g.keyName)
	}
	resp, err := generateChat(ctx, g.llm, req)
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("groq generate: %w", err)
	}
	return resp, info, nil
}

func resolveGroqKey(alias string) string {
	if alias != "" {
		if v := os.Getenv("CHUNKFORGE_GROQ_KEY_" + sanitizeEnvToken(alias)); v != "" {
			return v
		}
	}
	return os.Getenv("GROQ_API_KEY")
}
