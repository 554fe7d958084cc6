package journal

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ramanasai/reflectboard/internal/board"
	"github.com/ramanasai/reflectboard/internal/coach"
	"github.com/ramanasai/reflectboard/internal/db"
	"github.com/ramanasai/reflectboard/internal/encryption"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testNow = time.Date(2026, 10, 19, 18, 30, 0, 0, time.UTC)

func testOptions() []Option {
	return []Option{
		WithClock(func() time.Time { return testNow }),
		WithLocation(time.UTC),
		WithAutosaveDelay(time.Millisecond),
	}
}

func newBoard() *board.Board {
	return board.New(board.DefaultLayout(), board.WithRand(rand.New(rand.NewSource(3))))
}

func openStore(t *testing.T) *db.Store {
	t.Helper()
	dbh, err := db.Open(filepath.Join(t.TempDir(), "reflectboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })
	return db.NewStore(dbh)
}

// unavailable always fails like an unreachable upstream.
var unavailable = coach.CompleterFunc(func(context.Context, coach.Request) (string, error) {
	return "", errors.New("dial tcp: connection refused")
})

func noSleep(context.Context, time.Duration) error { return nil }

func TestDailyReflectionEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	// every snapshot is taken after the exchange settles
	opts := append(testOptions(), WithAutosaveDelay(50*time.Millisecond))
	f := New(newBoard(), coach.NewResponder(unavailable, coach.WithSleeper(noSleep)), store, opts...)
	defer f.Close()

	note, err := f.Board().AddNoteWithText(board.CategoryGood, "Shipped the feature on time")
	require.NoError(t, err)
	require.NoError(t, f.Next())
	require.NoError(t, f.SelectTopic(note.ID))

	opening := f.Chat().Messages()
	require.Len(t, opening, 1)
	assert.Equal(t, coach.Opening("Shipped the feature on time"), opening[0].Text)
	assert.Contains(t, opening[0].Text, "Shipped the feature on time")

	reply, ok, err := f.Send(ctx, "It felt great")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, reply.Fallback)
	assert.Contains(t, coach.FallbackQuestions(coach.StageInitial), reply.Text)

	f.Flush()
	rec, err := store.Get(ctx, "2026-10-19")
	require.NoError(t, err)
	require.Len(t, rec.ChatMessages, 3)
	assert.Equal(t, coach.SenderAI, rec.ChatMessages[0].Sender)
	assert.Equal(t, coach.SenderUser, rec.ChatMessages[1].Sender)
	assert.Equal(t, coach.SenderAI, rec.ChatMessages[2].Sender)
	assert.Equal(t, reply.Text, rec.ChatMessages[2].Text)
	require.NotNil(t, rec.SelectedItem)
	assert.Equal(t, note.ID, rec.SelectedItem.ID)
}

func TestNextNeedsANoteWithText(t *testing.T) {
	f := New(newBoard(), coach.NewResponder(nil), nil, testOptions()...)
	defer f.Close()

	assert.ErrorIs(t, f.Next(), ErrNoNotes)
	_, err := f.Board().AddNote(board.CategoryGrowth)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Next(), ErrNoNotes, "blank notes do not count")
	assert.Equal(t, StepInput, f.Step())

	_, err = f.Board().AddNoteWithText(board.CategoryInsight, "Pairing helps")
	require.NoError(t, err)
	require.NoError(t, f.Next())
	assert.Equal(t, StepSelect, f.Step())
}

func TestSelectTopicValidation(t *testing.T) {
	f := New(newBoard(), coach.NewResponder(nil), nil, testOptions()...)
	defer f.Close()
	blank, _ := f.Board().AddNote(board.CategoryGood)
	filled, _ := f.Board().AddNoteWithText(board.CategoryGood, "Demo day")

	assert.ErrorIs(t, f.SelectTopic(filled.ID), ErrWrongStep)
	require.NoError(t, f.Next())
	assert.ErrorIs(t, f.SelectTopic(blank.ID), ErrNoTopic)
	assert.ErrorIs(t, f.SelectTopic("ghost"), ErrNoTopic)
	require.NoError(t, f.SelectTopic(filled.ID))

	topic, ok := f.Topic()
	require.True(t, ok)
	assert.Equal(t, "Demo day", topic.Text)
}

func TestBackCollapsesState(t *testing.T) {
	f := New(newBoard(), coach.NewResponder(nil), nil, testOptions()...)
	defer f.Close()
	n, _ := f.Board().AddNoteWithText(board.CategoryGood, "Demo day")
	require.NoError(t, f.Next())
	require.NoError(t, f.SelectTopic(n.ID))

	f.ShowHistory()
	assert.Equal(t, StepHistory, f.Step())
	f.Back()
	assert.Equal(t, StepChat, f.Step())

	f.Back()
	assert.Equal(t, StepSelect, f.Step())
	assert.Empty(t, f.Chat().Messages())
	_, ok := f.Topic()
	assert.False(t, ok)

	f.Back()
	assert.Equal(t, StepInput, f.Step())
	assert.Len(t, f.Board().Notes(), 1, "notes survive going back")

	_, _, err := f.Send(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrWrongStep)

	f.NewDay()
	assert.Empty(t, f.Board().Notes())
}

func TestResume(t *testing.T) {
	f := New(newBoard(), coach.NewResponder(nil), nil, testOptions()...)
	defer f.Close()
	topic := board.Note{ID: "1", Text: "Demo day", Category: board.CategoryGood}
	rec := db.Record{
		Date:  "2026-10-12",
		Items: []board.Note{topic, {ID: "2", Text: "Slow CI", Category: board.CategoryGrowth}},
		Connections: []board.Connection{
			{ID: "c", From: "1", FromPoint: board.AnchorRight, To: "2", ToPoint: board.AnchorLeft},
		},
		SelectedItem: &topic,
		ChatMessages: []coach.Message{
			{ID: "a", Text: coach.Opening("Demo day"), Sender: coach.SenderAI},
			{ID: "b", Text: "It went fine", Sender: coach.SenderUser},
		},
	}

	require.NoError(t, f.Resume(rec, true))
	assert.Equal(t, StepChat, f.Step())
	assert.Len(t, f.Chat().Messages(), 2)
	assert.Len(t, f.Board().Connections(), 1)

	require.NoError(t, f.Resume(rec, false))
	assert.Equal(t, StepInput, f.Step())
	assert.Empty(t, f.Chat().Messages())
	assert.Len(t, f.Board().Notes(), 2)

	rec.ChatMessages = nil
	assert.ErrorIs(t, f.Resume(rec, true), ErrNoConversation)
}

type failingSaver struct {
	mu    sync.Mutex
	calls int
}

func (s *failingSaver) Upsert(context.Context, db.Record) (db.Record, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return db.Record{}, errors.New("database is locked")
}

func TestSaveFailuresDoNotRollBack(t *testing.T) {
	saver := &failingSaver{}
	f := New(newBoard(), coach.NewResponder(nil), saver, testOptions()...)
	n, _ := f.Board().AddNoteWithText(board.CategoryGood, "Demo day")
	require.NoError(t, f.Next())
	require.NoError(t, f.SelectTopic(n.ID))
	_, ok, err := f.Send(context.Background(), "It felt great")
	require.NoError(t, err)
	require.True(t, ok)
	f.Close()

	assert.Len(t, f.Chat().Messages(), 3)
	saver.mu.Lock()
	defer saver.mu.Unlock()
	assert.Equal(t, 3, saver.calls, "topic selection plus one save per transcript change")
}

func TestGroupByMonthAndFilter(t *testing.T) {
	recs := []db.Record{
		{Date: "2026-09-30", Items: []board.Note{{Text: "Gym"}}},
		{Date: "2026-10-02"},
		{Date: "2026-10-19", Items: []board.Note{{Text: "Demo day"}}},
	}
	groups := GroupByMonth(recs)
	require.Len(t, groups, 2)
	assert.Equal(t, "2026-10", groups[0].Month)
	assert.Equal(t, "2026-10-19", groups[0].Records[0].Date)
	assert.Equal(t, "2026-09", groups[1].Month)

	assert.Len(t, Filter(recs, "DEMO"), 1)
	assert.Len(t, Filter(recs, ""), 3)
}

func TestSaveLeavesSealedRecordIntact(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(filepath.Join(t.TempDir(), "reflectboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })
	enc, err := encryption.NewEncryptor("passphrase", filepath.Join(t.TempDir(), "salt"))
	require.NoError(t, err)

	sealed := db.NewStore(dbh, db.WithEncryptor(enc))
	original, err := sealed.Upsert(ctx, db.Record{
		Date:  "2026-10-19",
		Items: []board.Note{{ID: "1", Text: "Shipped the feature on time", Category: board.CategoryGood}},
	})
	require.NoError(t, err)

	// same database, no passphrase configured
	f := New(newBoard(), coach.NewResponder(unavailable, coach.WithSleeper(noSleep)), db.NewStore(dbh), testOptions()...)
	defer f.Close()

	_, err = f.Board().AddNoteWithText(board.CategoryGrowth, "Ask for review earlier")
	require.NoError(t, err)
	f.Touch()
	f.Flush()

	assert.ErrorIs(t, f.Save(ctx), db.ErrLocked)

	got, err := sealed.Get(ctx, "2026-10-19")
	require.NoError(t, err)
	assert.Equal(t, original.Items, got.Items)
	assert.Equal(t, original.UpdatedAt, got.UpdatedAt)
}
