package providers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIProvider uses the OpenAI chat API when a key is configured. A
// missing key fails at use, not at construction, so a provider list may
// mention openai before the key exists in the environment.
type OpenAIProvider struct {
	keyName string
	model   string
	llm     llms.Model
}

func NewOpenAIProvider(keyName string) *OpenAIProvider {
	p := &OpenAIProvider{keyName: keyName, model: resolveOpenAIModel()}
	if key := resolveOpenAIKey(keyName); key != "" {
		if llm, err := openai.New(openai.WithToken(key), openai.WithModel(p.model)); err == nil {
			p.llm = llm
		}
	}
	return p
}

func (o *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "openai", Model: o.model, Key: o.keyName}
	if o.llm == nil {
		return GenerateResponse{}, info, fmt.Errorf("openai key missing for alias %q", o.keyName)
	}
	resp, err := generateChat(ctx, o.llm, req)
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("openai generate: %w", err)
	}
	return resp, info, nil
}

func resolveOpenAIModel() string {
	if v := strings.TrimSpace(os.Getenv("CHUNKFORGE_OPENAI_MODEL")); v != "" {
		return v
	}
	return "gpt-4o-mini"
}

func resolveOpenAIKey(alias string) string {
	if alias != "" {
		if v := os.Getenv("CHUNKFORGE_OPENAI_KEY_" + sanitizeEnvToken(alias)); v != "" {
			return v
		}
	}
	return os.Getenv("OPENAI_API_KEY")
}
