package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramanasai/reflectboard/internal/board"
	"github.com/ramanasai/reflectboard/internal/coach"
	"github.com/ramanasai/reflectboard/internal/db"
)

var now = time.Date(2026, 10, 21, 15, 4, 0, 0, time.UTC) // Wednesday

func TestParseDay(t *testing.T) {
	tests := map[string]string{
		"today":       "2026-10-21",
		"Yesterday":   "2026-10-20",
		"3 days ago":  "2026-10-18",
		"2w":          "2026-10-07",
		"1 month":     "2026-09-21",
		"this week":   "2026-10-19",
		"this month":  "2026-10-01",
		"last week":   "2026-10-14",
		"2026-01-15":  "2026-01-15",
		"2026/01/15":  "2026-01-15",
		"Jan 5, 2026": "2026-01-05",
	}
	for in, want := range tests {
		got, err := ParseDay(in, now)
		require.NoError(t, err, in)
		assert.Equal(t, want, FormatDay(got), in)
	}

	_, err := ParseDay("someday", now)
	assert.Error(t, err)
	_, err = ParseDay("  ", now)
	assert.Error(t, err)
}

func TestDayRange(t *testing.T) {
	since, until, err := DayRange("last7days", now)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-15", FormatDay(since))
	assert.Equal(t, "2026-10-21", FormatDay(until))

	since, until, err = DayRange("week", now)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", FormatDay(since))
	assert.Equal(t, "2026-10-21", FormatDay(until))

	_, _, err = DayRange("fortnight", now)
	assert.Error(t, err)
}

func TestPage(t *testing.T) {
	p := NewPage(45, 20, 3)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 40, p.Offset)
	start, end := p.Range()
	assert.Equal(t, 41, start)
	assert.Equal(t, 45, end)
	assert.False(t, p.HasNext())
	assert.Equal(t, "use --page 2 for previous", p.Navigation())
	assert.Equal(t, "Showing 41-45 of 45 days (page 3 of 3)", p.Summary())

	p = NewPage(0, 20, 9)
	assert.Equal(t, 1, p.Current)
	assert.Equal(t, "No reflections", p.Summary())
	assert.Empty(t, p.Navigation())
}

func sample() db.Record {
	topic := board.Note{ID: "1", Text: "Shipped, on time", Category: board.CategoryGood}
	return db.Record{
		Date: "2026-10-20",
		Items: []board.Note{
			topic,
			{ID: "2", Text: "Review\nearlier", Category: board.CategoryGrowth},
		},
		Connections:  []board.Connection{{ID: "c", From: "1", FromPoint: board.AnchorRight, To: "2", ToPoint: board.AnchorLeft, Label: "because"}},
		SelectedItem: &topic,
		ChatMessages: []coach.Message{
			{ID: "a", Text: "Why this?", Sender: coach.SenderAI},
			{ID: "b", Text: "It felt good", Sender: coach.SenderUser},
		},
	}
}

func TestRenderListFormats(t *testing.T) {
	list := RecordList{Records: []db.Record{sample()}, Page: NewPage(1, 20, 1)}

	out, err := NewRenderer(RenderConfig{Format: FormatCSV}).RenderList(list)
	require.NoError(t, err)
	assert.Equal(t, "date,good,growth,insight,connections,topic,turns\n2026-10-20,1,1,0,1,\"Shipped, on time\",1\n", out)

	out, err = NewRenderer(RenderConfig{Format: FormatQuiet}).RenderList(list)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-20\n", out)

	out, err = NewRenderer(RenderConfig{Format: FormatJSON}).RenderList(list)
	require.NoError(t, err)
	assert.Contains(t, out, `"date": "2026-10-20"`)
	assert.Contains(t, out, `"total_pages": 1`)

	out, err = NewRenderer(RenderConfig{Format: FormatDefault}).RenderList(list)
	require.NoError(t, err)
	assert.Contains(t, out, "★ Shipped, on time")
	assert.Contains(t, out, "· Review earlier")
	assert.Contains(t, out, "Showing 1-1 of 1 day")
}

func TestRenderRecord(t *testing.T) {
	out, err := NewRenderer(RenderConfig{}).RenderRecord(sample())
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	assert.Contains(t, lines, "  Shipped, on time → Review earlier  (because)")
	assert.Contains(t, out, "coach Why this?")
	assert.Contains(t, out, "you   It felt good")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}
