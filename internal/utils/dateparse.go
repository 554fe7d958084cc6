package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

var relativeRe = regexp.MustCompile(`^(\d+)\s*(d|day|days|w|week|weeks|m|month|months|y|year|years)(\s+ago)?$`)

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDay resolves user input to a calendar day. It accepts ISO and a
// few common layouts, today/yesterday/tomorrow, "last week|month|year",
// "this week|month|year" and "N days ago" style offsets.
func ParseDay(input string, now time.Time) (time.Time, error) {
	in := strings.TrimSpace(strings.ToLower(input))
	if in == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	today := startOfDay(now)
	loc := now.Location()

	switch in {
	case "today", "now":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "last week":
		return today.AddDate(0, 0, -7), nil
	case "last month":
		return today.AddDate(0, -1, 0), nil
	case "last year":
		return today.AddDate(-1, 0, 0), nil
	case "this week":
		return weekStart(today), nil
	case "this month":
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc), nil
	case "this year":
		return time.Date(today.Year(), 1, 1, 0, 0, 0, 0, loc), nil
	}

	if m := relativeRe.FindStringSubmatch(in); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch m[2][0] {
		case 'd':
			return today.AddDate(0, 0, -n), nil
		case 'w':
			return today.AddDate(0, 0, -7*n), nil
		case 'm':
			return today.AddDate(0, -n, 0), nil
		case 'y':
			return today.AddDate(-n, 0, 0), nil
		}
	}

	for _, layout := range []string{dayLayout, "2006/01/02", "Jan 2, 2006", "2 Jan 2006", "January 2, 2006"} {
		if t, err := time.ParseInLocation(layout, input, loc); err == nil {
			return startOfDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", input)
}

// DayRange returns the inclusive first and last day for a preset.
func DayRange(preset string, now time.Time) (since, until time.Time, err error) {
	today := startOfDay(now)
	switch strings.ToLower(strings.TrimSpace(preset)) {
	case "today":
		return today, today, nil
	case "yesterday":
		y := today.AddDate(0, 0, -1)
		return y, y, nil
	case "week":
		return weekStart(today), today, nil
	case "month":
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()), today, nil
	case "year":
		return time.Date(today.Year(), 1, 1, 0, 0, 0, 0, today.Location()), today, nil
	case "last7days", "last-7-days":
		return today.AddDate(0, 0, -6), today, nil
	case "last30days", "last-30-days":
		return today.AddDate(0, 0, -29), today, nil
	case "last90days", "last-90-days":
		return today.AddDate(0, 0, -89), today, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("unknown date preset: %s", preset)
}

// FormatDay is the store's date key for t.
func FormatDay(t time.Time) string { return t.Format(dayLayout) }

// weekStart is the Monday on or before t.
func weekStart(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return t.AddDate(0, 0, -(wd - 1))
}
