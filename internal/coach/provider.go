package coach

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	defaultOpenAIModel = "gpt-3.5-turbo"
	defaultGeminiModel = "gemini-2.5-flash"
	defaultMaxTokens   = 150
)

// Config selects and tunes the upstream provider.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	UserAgent   string

	// HTTPClient overrides the transport. When nil a client with Timeout
	// is used.
	HTTPClient *http.Client
}

func (c Config) model() string {
	if c.Model != "" {
		return c.Model
	}
	if strings.EqualFold(c.Provider, ProviderGemini) {
		return defaultGeminiModel
	}
	return defaultOpenAIModel
}

func (c Config) maxTokens() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return defaultMaxTokens
}

// NewCompleter builds the configured provider. A missing API key yields a
// nil Completer and no error, so callers fall back to local questions.
func NewCompleter(ctx context.Context, cfg Config) (Completer, error) {
	if cfg.HTTPClient == nil && (cfg.Timeout > 0 || cfg.UserAgent != "") {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
		if cfg.UserAgent != "" {
			cfg.HTTPClient.Transport = userAgentTransport{base: http.DefaultTransport, agent: cfg.UserAgent}
		}
	}

	var (
		c   Completer
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderOpenAI:
		c, err = NewOpenAI(cfg)
	case ProviderGemini:
		c, err = NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", cfg.Provider)
	}
	if errors.Is(err, ErrNoCredentials) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

type userAgentTransport struct {
	base  http.RoundTripper
	agent string
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(req)
}
