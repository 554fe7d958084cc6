package schedule

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ramanasai/reflectboard/internal/config"
	"github.com/ramanasai/reflectboard/internal/notify"
)

// NextAt computes the next reminder time that falls on a configured
// workday and is not a holiday. A malformed time falls back to 17:00.
func NextAt(now time.Time, r config.ReminderConfig, loc *time.Location) time.Time {
	now = now.In(loc)

	hour, min := 17, 0
	if t, err := time.ParseInLocation("15:04", strings.TrimSpace(r.Time), loc); err == nil {
		hour, min = t.Hour(), t.Minute()
	}

	workdays := map[string]bool{}
	for _, d := range r.Workdays {
		d = strings.TrimSpace(d)
		if len(d) < 3 {
			continue
		}
		workdays[strings.ToLower(d[:3])] = true
	}
	holidays := map[string]bool{}
	for _, h := range r.Holidays {
		holidays[strings.TrimSpace(h)] = true
	}
	eligible := func(t time.Time) bool {
		if len(workdays) > 0 && !workdays[strings.ToLower(t.Weekday().String()[:3])] {
			return false
		}
		return !holidays[t.Format("2006-01-02")]
	}

	cand := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, loc)
	if !now.Before(cand) {
		cand = cand.AddDate(0, 0, 1)
	}
	// a year of holidays is the most we ever skip
	for i := 0; i < 366; i++ {
		if eligible(cand) {
			return cand
		}
		cand = cand.AddDate(0, 0, 1)
	}
	return cand
}

// RunConfigured calls f at every reminder time until ctx is cancelled.
func RunConfigured(ctx context.Context, cfg config.Config, f func(at time.Time)) {
	loc := cfg.Location()
	next := NextAt(time.Now(), cfg.Reminder, loc)
	t := time.NewTimer(time.Until(next))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case at := <-t.C:
			f(at)
			next = NextAt(time.Now(), cfg.Reminder, loc)
			t.Reset(time.Until(next))
		}
	}
}

// Reminder nudges the user when the day's board is still empty.
type Reminder struct {
	// Pending reports whether nothing has been journaled for date yet.
	Pending  func(ctx context.Context, date string) (bool, error)
	Notify   func(title, message string) error
	Location *time.Location
	Logger   *zap.Logger
}

// Fire checks the day containing at and notifies if it is pending.
// It reports whether a notification was sent.
func (r Reminder) Fire(ctx context.Context, at time.Time) bool {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	date := at.In(loc).Format("2006-01-02")

	pending, err := r.Pending(ctx, date)
	if err != nil {
		log.Warn("reminder check failed", zap.String("date", date), zap.Error(err))
		return false
	}
	if !pending {
		log.Debug("reminder skipped, already journaled", zap.String("date", date))
		return false
	}
	title, msg := notify.FormatDailyPrompt(date)
	if err := r.Notify(title, msg); err != nil {
		log.Warn("reminder notification failed", zap.Error(err))
		return false
	}
	return true
}
