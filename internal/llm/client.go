// Package llm wraps the eino chat models behind a tiered step executor. Every
// generative step in the pipeline (outline, slide content, review agents)
// goes through the same run-validate-retry contract; only the prompt and the
// expected shape differ.
package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"deckforge/internal/config"
)

// Tier selects which model a step runs on: fast for per-slide content and
// review batches, smart for outline planning and narrative analysis.
type Tier string

const (
	TierFast  Tier = "fast"
	TierSmart Tier = "smart"
)

// Default model names per provider, fast/smart.
const (
	claudeFastModel  = "claude-3-5-haiku-latest"
	claudeSmartModel = "claude-sonnet-4-20250514"
	openaiFastModel  = "gpt-4o-mini"
	openaiSmartModel = "gpt-4o"
	geminiFastModel  = "gemini-2.0-flash"
	geminiSmartModel = "gemini-2.5-pro"
)

func NewClaudeModel(ctx context.Context, apiKey, modelName string) (model.BaseChatModel, error) {
	return claude.NewChatModel(ctx, &claude.Config{
		APIKey:    apiKey,
		Model:     modelName,
		MaxTokens: 8192,
	})
}

func NewOpenAIModel(ctx context.Context, apiKey, modelName string) (model.BaseChatModel, error) {
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey: apiKey,
		Model:  modelName,
	})
}

func NewGeminiModel(ctx context.Context, apiKey, modelName string) (model.BaseChatModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return gemini.NewChatModel(ctx, &gemini.Config{
		Client: client,
		Model:  modelName,
	})
}

// BuildTierModels instantiates the fast and smart chat models from whichever
// provider has an API key configured, preferring anthropic, then openai, then
// gemini.
func BuildTierModels(ctx context.Context, cfg *config.Config) (map[Tier]model.BaseChatModel, error) {
	type provider struct {
		key        string
		fast, smrt string
		build      func(ctx context.Context, apiKey, modelName string) (model.BaseChatModel, error)
	}
	providers := []provider{
		{cfg.AnthropicAPIKey, claudeFastModel, claudeSmartModel, NewClaudeModel},
		{cfg.OpenAIAPIKey, openaiFastModel, openaiSmartModel, NewOpenAIModel},
		{cfg.GeminiAPIKey, geminiFastModel, geminiSmartModel, NewGeminiModel},
	}
	for _, p := range providers {
		if p.key == "" {
			continue
		}
		fast, err := p.build(ctx, p.key, p.fast)
		if err != nil {
			return nil, err
		}
		smart, err := p.build(ctx, p.key, p.smrt)
		if err != nil {
			return nil, err
		}
		return map[Tier]model.BaseChatModel{TierFast: fast, TierSmart: smart}, nil
	}
	return nil, fmt.Errorf("no LLM provider API key configured")
}
