package coach

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAI completes chats through the OpenAI chat completions API.
type OpenAI struct {
	llm         *openai.LLM
	maxTokens   int
	temperature float64
}

func NewOpenAI(cfg Config) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoCredentials
	}
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.model()),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, openai.WithHTTPClient(cfg.HTTPClient))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return &OpenAI{llm: llm, maxTokens: cfg.maxTokens(), temperature: cfg.Temperature}, nil
}

func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	msgs := make([]llms.MessageContent, 0, len(req.History)+2)
	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	for _, m := range req.History {
		role := llms.ChatMessageTypeHuman
		if m.Sender == SenderAI {
			role = llms.ChatMessageTypeAI
		}
		msgs = append(msgs, llms.TextParts(role, m.Text))
	}
	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, req.Message))

	resp, err := o.llm.GenerateContent(ctx, msgs,
		llms.WithMaxTokens(o.maxTokens),
		llms.WithTemperature(o.temperature),
	)
	if err != nil {
		if llms.IsRateLimitError(openai.MapError(err)) {
			return "", fmt.Errorf("openai: %w: %v", ErrRateLimited, err)
		}
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}
