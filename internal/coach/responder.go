package coach

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FallbackReason says why a reply came from the local question set.
type FallbackReason string

const (
	ReasonNone               FallbackReason = ""
	ReasonUpstreamError      FallbackReason = "upstream_error"
	ReasonMissingCredentials FallbackReason = "missing_credentials"
)

// Turn is one user message plus the context needed to answer it.
type Turn struct {
	Topic        string
	Message      string
	MessageCount int
	History      []Message

	// OnRetry is called before each wait between attempts.
	OnRetry func(attempt int, wait time.Duration, err error)
}

// Reply is the coach's answer to a Turn.
type Reply struct {
	Text     string
	Stage    Stage
	Fallback bool
	Reason   FallbackReason
	Attempts int
}

// Responder answers single turns against a Completer with retries and a
// local fallback. It holds no conversation state.
type Responder struct {
	completer Completer
	policy    RetryPolicy
	sleep     Sleeper
	logger    *zap.Logger
	metrics   *Metrics

	rndMu sync.Mutex
	rnd   *rand.Rand
}

type ResponderOption func(*Responder)

func WithPolicy(p RetryPolicy) ResponderOption { return func(r *Responder) { r.policy = p } }

func WithSleeper(s Sleeper) ResponderOption { return func(r *Responder) { r.sleep = s } }

func WithRand(rnd *rand.Rand) ResponderOption { return func(r *Responder) { r.rnd = rnd } }

func WithLogger(l *zap.Logger) ResponderOption { return func(r *Responder) { r.logger = l } }

func WithMetrics(m *Metrics) ResponderOption { return func(r *Responder) { r.metrics = m } }

// NewResponder builds a Responder. A nil completer means no credentials
// are configured and every turn is answered locally.
func NewResponder(c Completer, opts ...ResponderOption) *Responder {
	r := &Responder{
		completer: c,
		policy:    DefaultRetryPolicy(),
		sleep:     SleepContext,
		logger:    zap.NewNop(),
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(r)
	}
	if r.policy.MaxAttempts < 1 {
		r.policy.MaxAttempts = 1
	}
	return r
}

// Respond produces the next coaching question. It never fails: when the
// upstream is exhausted or unconfigured the reply is a fallback question
// for the turn's stage.
func (r *Responder) Respond(ctx context.Context, t Turn) Reply {
	stage := StageFor(t.MessageCount)
	log := r.logger.With(zap.String("stage", string(stage)), zap.Int("message_count", t.MessageCount))

	if r.completer == nil {
		log.Warn("chat provider has no api key, using fallback")
		return r.fallback(stage, ReasonMissingCredentials, 0)
	}

	req := Request{
		System:  SystemPrompt(t.Topic, stage),
		History: t.History,
		Message: t.Message,
	}

	attempts := 0
	for attempt := 0; attempt < r.policy.MaxAttempts; attempt++ {
		attempts++
		text, err := r.completer.Complete(ctx, req)
		if err == nil {
			if text = strings.TrimSpace(text); text != "" {
				r.metrics.attempt("success")
				log.Debug("chat reply received", zap.Int("attempt", attempt+1))
				return Reply{Text: text, Stage: stage, Attempts: attempts}
			}
			err = ErrEmptyResponse
		}
		if errors.Is(err, ErrNoCredentials) {
			log.Warn("chat provider rejected credentials, using fallback", zap.Error(err))
			return r.fallback(stage, ReasonMissingCredentials, attempts)
		}

		var wait time.Duration
		if errors.Is(err, ErrRateLimited) {
			r.metrics.attempt("rate_limited")
			wait = r.policy.rateLimitDelay(attempt)
		} else {
			r.metrics.attempt("error")
			if attempt == r.policy.MaxAttempts-1 {
				log.Warn("chat attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
				break
			}
			wait = r.policy.FailureDelay
		}
		log.Warn("chat attempt failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err))
		if t.OnRetry != nil {
			t.OnRetry(attempt+1, wait, err)
		}
		if err := r.sleep(ctx, wait); err != nil {
			break
		}
	}

	return r.fallback(stage, ReasonUpstreamError, attempts)
}

func (r *Responder) fallback(stage Stage, reason FallbackReason, attempts int) Reply {
	r.metrics.fallback(reason)
	r.rndMu.Lock()
	text := pickFallback(stage, r.rnd)
	r.rndMu.Unlock()
	return Reply{Text: text, Stage: stage, Fallback: true, Reason: reason, Attempts: attempts}
}
