package db

import (
	"context"
	"sort"
	"time"

	"github.com/ramanasai/reflectboard/internal/board"
	"github.com/ramanasai/reflectboard/internal/coach"
)

// Stats summarizes the journal.
type Stats struct {
	Days            int                    `json:"days"`
	FirstDate       string                 `json:"firstDate,omitempty"`
	LastDate        string                 `json:"lastDate,omitempty"`
	CurrentStreak   int                    `json:"currentStreak"` // consecutive days ending today, or yesterday if today is still empty
	LongestStreak   int                    `json:"longestStreak"`
	NotesByCategory map[board.Category]int `json:"notesByCategory"`
	Connections     int                    `json:"connections"`
	Topics          int                    `json:"topics"`    // days with a chosen topic
	ChatTurns       int                    `json:"chatTurns"` // user messages
	AvgChatTurns    float64                `json:"avgChatTurns"`
}

func (s *Store) Stats(ctx context.Context, today time.Time) (Stats, error) {
	recs, err := s.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(recs, today), nil
}

// ComputeStats works on records in any order.
func ComputeStats(recs []Record, today time.Time) Stats {
	st := Stats{NotesByCategory: make(map[board.Category]int, len(board.Categories))}
	for _, c := range board.Categories {
		st.NotesByCategory[c] = 0
	}
	if len(recs) == 0 {
		return st
	}

	days := make([]time.Time, 0, len(recs))
	present := make(map[string]bool, len(recs))
	for _, r := range recs {
		d, err := time.Parse(DateLayout, r.Date)
		if err != nil {
			continue
		}
		days = append(days, d)
		present[r.Date] = true

		for _, n := range r.Items {
			st.NotesByCategory[n.Category]++
		}
		st.Connections += len(r.Connections)
		if r.SelectedItem != nil {
			st.Topics++
		}
		for _, m := range r.ChatMessages {
			if m.Sender == coach.SenderUser {
				st.ChatTurns++
			}
		}
	}
	if len(days) == 0 {
		return st
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	st.Days = len(days)
	st.FirstDate = days[0].Format(DateLayout)
	st.LastDate = days[len(days)-1].Format(DateLayout)
	if st.Topics > 0 {
		st.AvgChatTurns = float64(st.ChatTurns) / float64(st.Topics)
	}

	run := 1
	st.LongestStreak = 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > st.LongestStreak {
			st.LongestStreak = run
		}
	}

	y, m, d := today.Date()
	cur := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if !present[cur.Format(DateLayout)] {
		cur = cur.AddDate(0, 0, -1)
	}
	for present[cur.Format(DateLayout)] {
		st.CurrentStreak++
		cur = cur.AddDate(0, 0, -1)
	}
	return st
}
