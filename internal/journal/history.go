package journal

import (
	"sort"

	"github.com/ramanasai/reflectboard/internal/db"
)

// MonthGroup is the history listing for one YYYY-MM.
type MonthGroup struct {
	Month   string
	Records []db.Record
}

// GroupByMonth buckets records by month, newest month and day first.
func GroupByMonth(recs []db.Record) []MonthGroup {
	byMonth := map[string][]db.Record{}
	for _, r := range recs {
		if len(r.Date) < 7 {
			continue
		}
		m := r.Date[:7]
		byMonth[m] = append(byMonth[m], r)
	}
	out := make([]MonthGroup, 0, len(byMonth))
	for m, rs := range byMonth {
		sort.Slice(rs, func(i, j int) bool { return rs[i].Date > rs[j].Date })
		out = append(out, MonthGroup{Month: m, Records: rs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out
}

// Filter keeps records matching keyword.
func Filter(recs []db.Record, keyword string) []db.Record {
	out := make([]db.Record, 0, len(recs))
	for _, r := range recs {
		if r.Matches(keyword) {
			out = append(out, r)
		}
	}
	return out
}
