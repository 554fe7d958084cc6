package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ramanasai/reflectboard/internal/autosave"
	"github.com/ramanasai/reflectboard/internal/board"
	"github.com/ramanasai/reflectboard/internal/coach"
	"github.com/ramanasai/reflectboard/internal/db"
)

// Step is a screen of the daily flow.
type Step string

const (
	StepInput   Step = "input"
	StepSelect  Step = "select"
	StepChat    Step = "chat"
	StepHistory Step = "history"
)

var (
	ErrNoNotes        = errors.New("write at least one note first")
	ErrNoTopic        = errors.New("pick a note with text as the topic")
	ErrWrongStep      = errors.New("not available on this step")
	ErrNoConversation = errors.New("record has no conversation")
)

// Saver is the part of the record store the flow writes to.
type Saver interface {
	Upsert(ctx context.Context, rec db.Record) (db.Record, error)
}

// Flow drives input -> select -> chat, with history reachable from
// anywhere. The in-memory state is authoritative; saves are best effort.
type Flow struct {
	mu    sync.Mutex
	step  Step
	prev  Step
	topic *board.Note

	board    *board.Board
	chat     *coach.Session
	store    Saver
	autosave *autosave.Scheduler

	now    func() time.Time
	loc    *time.Location
	logger *zap.Logger
	delay  time.Duration
}

type Option func(*Flow)

func WithClock(now func() time.Time) Option { return func(f *Flow) { f.now = now } }

// WithLocation sets the zone that decides which calendar day "today" is.
func WithLocation(loc *time.Location) Option { return func(f *Flow) { f.loc = loc } }

func WithLogger(l *zap.Logger) Option { return func(f *Flow) { f.logger = l } }

func WithAutosaveDelay(d time.Duration) Option { return func(f *Flow) { f.delay = d } }

func New(b *board.Board, r *coach.Responder, store Saver, opts ...Option) *Flow {
	f := &Flow{
		step:   StepInput,
		board:  b,
		store:  store,
		now:    time.Now,
		loc:    time.Local,
		logger: zap.NewNop(),
		delay:  autosave.DefaultDelay,
	}
	for _, o := range opts {
		o(f)
	}
	f.autosave = autosave.New(f.delay, f.Save, autosave.WithLogger(f.logger.Named("autosave")))
	f.chat = coach.NewSession(r, coach.WithPersist(f.autosave.Schedule))
	return f
}

func (f *Flow) Board() *board.Board   { return f.board }
func (f *Flow) Chat() *coach.Session { return f.chat }

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Topic returns the note chosen for today's conversation.
func (f *Flow) Topic() (board.Note, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.topic == nil {
		return board.Note{}, false
	}
	return *f.topic, true
}

// Today is the date key records are saved under.
func (f *Flow) Today() string {
	return f.now().In(f.loc).Format(db.DateLayout)
}

// Next moves from note capture to topic selection.
func (f *Flow) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepInput {
		return fmt.Errorf("next from %s: %w", f.step, ErrWrongStep)
	}
	if len(f.board.FilledNotes()) == 0 {
		return ErrNoNotes
	}
	f.step = StepSelect
	return nil
}

// SelectTopic starts the conversation about one of today's notes.
func (f *Flow) SelectTopic(noteID string) error {
	f.mu.Lock()
	if f.step != StepSelect {
		step := f.step
		f.mu.Unlock()
		return fmt.Errorf("select topic on %s: %w", step, ErrWrongStep)
	}
	n, ok := f.board.Note(noteID)
	if !ok || !n.Filled() {
		f.mu.Unlock()
		return ErrNoTopic
	}
	f.topic = &n
	f.step = StepChat
	f.mu.Unlock()

	f.chat.InitializeChat(n.Text)
	f.autosave.Schedule()
	return nil
}

// Send passes the user's message to the coach and blocks until the reply
// is in the transcript. Dropped sends report false.
func (f *Flow) Send(ctx context.Context, text string) (coach.Reply, bool, error) {
	if step := f.Step(); step != StepChat {
		return coach.Reply{}, false, fmt.Errorf("send on %s: %w", step, ErrWrongStep)
	}
	reply, ok := f.chat.SendMessage(ctx, text)
	return reply, ok, nil
}

// Back steps one screen back. Leaving the chat drops the conversation and
// the topic; leaving selection keeps the notes.
func (f *Flow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.step {
	case StepChat:
		f.chat.Reset()
		f.topic = nil
		f.step = StepSelect
	case StepSelect:
		f.step = StepInput
	case StepHistory:
		f.step = f.prev
	}
}

// ShowHistory switches to the history screen; Back returns to where the
// user was.
func (f *Flow) ShowHistory() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepHistory {
		f.prev = f.step
		f.step = StepHistory
	}
}

// NewDay clears the board and the conversation.
func (f *Flow) NewDay() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.board.Reset()
	f.chat.Reset()
	f.topic = nil
	f.step = StepInput
}

// Resume loads a stored day onto the board. With conversation set the
// stored chat is continued, otherwise the user starts again from the
// board.
func (f *Flow) Resume(rec db.Record, conversation bool) error {
	if conversation && (rec.SelectedItem == nil || len(rec.ChatMessages) == 0) {
		return ErrNoConversation
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.board.Restore(rec.Items, rec.Connections)
	if !conversation {
		f.chat.Reset()
		f.topic = nil
		f.step = StepInput
		return nil
	}
	topic := *rec.SelectedItem
	f.topic = &topic
	f.chat.Restore(topic.Text, rec.ChatMessages)
	f.step = StepChat
	return nil
}

// Record snapshots the session as today's record.
func (f *Flow) Record() db.Record {
	f.mu.Lock()
	var topic *board.Note
	if f.topic != nil {
		t := *f.topic
		topic = &t
	}
	f.mu.Unlock()
	return db.Record{
		Date:         f.Today(),
		Items:        f.board.FilledNotes(),
		Connections:  f.board.Connections(),
		SelectedItem: topic,
		ChatMessages: f.chat.Messages(),
	}
}

// Save writes the current snapshot right away.
func (f *Flow) Save(ctx context.Context) error {
	if f.store == nil {
		return nil
	}
	rec := f.Record()
	if _, err := f.store.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("save %s: %w", rec.Date, err)
	}
	return nil
}

// Touch schedules a save after the board was edited directly.
func (f *Flow) Touch() { f.autosave.Schedule() }

// Flush waits for scheduled saves.
func (f *Flow) Flush() { f.autosave.Flush() }

// Close writes pending saves and stops autosaving.
func (f *Flow) Close() { f.autosave.Close() }
