package coach

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one coaching conversation about a single topic.
type Session struct {
	mu         sync.Mutex
	responder  *Responder
	topic      string
	messages   []Message
	responding bool
	status     string

	persist func()
	newID   func() string
}

type SessionOption func(*Session)

// WithPersist registers a callback run after every transcript change.
func WithPersist(fn func()) SessionOption { return func(s *Session) { s.persist = fn } }

// WithIDs overrides message id generation.
func WithIDs(fn func() string) SessionOption { return func(s *Session) { s.newID = fn } }

func NewSession(r *Responder, opts ...SessionOption) *Session {
	s := &Session{responder: r, newID: uuid.NewString}
	for _, o := range opts {
		o(s)
	}
	return s
}

// InitializeChat starts a conversation about topic with the opening
// question. No upstream call is made.
func (s *Session) InitializeChat(topic string) {
	s.mu.Lock()
	s.topic = topic
	s.messages = []Message{{ID: s.newID(), Text: Opening(topic), Sender: SenderAI}}
	s.responding = false
	s.status = ""
	s.mu.Unlock()
}

// Restore replaces the conversation with a stored one.
func (s *Session) Restore(topic string, msgs []Message) {
	s.mu.Lock()
	s.topic = topic
	s.messages = append([]Message(nil), msgs...)
	s.responding = false
	s.status = ""
	s.mu.Unlock()
}

// Reset clears topic and transcript. A reply still in flight will land in
// whatever conversation is current when it arrives.
func (s *Session) Reset() {
	s.mu.Lock()
	s.topic = ""
	s.messages = nil
	s.responding = false
	s.status = ""
	s.mu.Unlock()
}

func (s *Session) Topic() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic
}

func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

func (s *Session) IsResponding() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.responding
}

// Status is a human readable note while retries are in progress.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SendMessage appends the user's text and then the coach's reply. It
// blocks for the whole retry window. Blank text, or a call made while
// another reply is outstanding, is dropped and reports false.
func (s *Session) SendMessage(ctx context.Context, text string) (Reply, bool) {
	s.mu.Lock()
	if strings.TrimSpace(text) == "" || s.responding {
		s.mu.Unlock()
		return Reply{}, false
	}
	history := append([]Message(nil), s.messages...)
	prior := 0
	for _, m := range history {
		if m.Sender == SenderUser {
			prior++
		}
	}
	s.messages = append(s.messages, Message{ID: s.newID(), Text: text, Sender: SenderUser})
	s.responding = true
	topic := s.topic
	s.mu.Unlock()
	s.notify()

	reply := s.responder.Respond(ctx, Turn{
		Topic:        topic,
		Message:      text,
		MessageCount: prior,
		History:      history,
		OnRetry: func(attempt int, wait time.Duration, err error) {
			s.mu.Lock()
			s.status = fmt.Sprintf("retrying in %s (attempt %d failed)", wait, attempt)
			s.mu.Unlock()
		},
	})

	s.mu.Lock()
	s.messages = append(s.messages, Message{ID: s.newID(), Text: reply.Text, Sender: SenderAI})
	s.responding = false
	s.status = ""
	s.mu.Unlock()
	s.notify()
	return reply, true
}

func (s *Session) notify() {
	if s.persist != nil {
		s.persist()
	}
}
