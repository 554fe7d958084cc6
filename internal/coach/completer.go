package coach

import (
	"context"
	"errors"
)

var (
	// ErrRateLimited marks an upstream response that asked us to slow down.
	ErrRateLimited = errors.New("coach: rate limited")
	// ErrNoCredentials means no API key is configured for the provider.
	ErrNoCredentials = errors.New("coach: api key not configured")
	// ErrEmptyResponse is a successful call that produced no usable text.
	ErrEmptyResponse = errors.New("coach: empty response")
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one transcript entry.
type Message struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// Request is everything a provider needs for one completion.
type Request struct {
	System  string
	History []Message
	Message string
}

// Completer is an upstream text-completion service. Implementations wrap
// ErrRateLimited when the provider signals rate limiting.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
