package utils

import (
	"fmt"
	"strings"
)

// Page is one page of a listing.
type Page struct {
	Total      int `json:"total"`
	PerPage    int `json:"per_page"`
	Current    int `json:"page"`
	Offset     int `json:"-"`
	TotalPages int `json:"total_pages"`
}

// NewPage clamps current into [1, TotalPages]. An empty listing still has
// one page.
func NewPage(total, perPage, current int) Page {
	if perPage < 1 {
		perPage = 1
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}
	return Page{
		Total:      total,
		PerPage:    perPage,
		Current:    current,
		Offset:     (current - 1) * perPage,
		TotalPages: totalPages,
	}
}

// Range returns the 1-indexed span of items on the page.
func (p Page) Range() (start, end int) {
	start = p.Offset + 1
	end = p.Offset + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

func (p Page) HasNext() bool { return p.Current < p.TotalPages }
func (p Page) HasPrev() bool { return p.Current > 1 }

func (p Page) Summary() string {
	if p.Total == 0 {
		return "No reflections"
	}
	start, end := p.Range()
	s := fmt.Sprintf("Showing %d-%d of %d day%s", start, end, p.Total, plural(p.Total))
	if p.TotalPages > 1 {
		s += fmt.Sprintf(" (page %d of %d)", p.Current, p.TotalPages)
	}
	return s
}

// Navigation returns --page hints for the CLI.
func (p Page) Navigation() string {
	var hints []string
	if p.HasPrev() {
		hints = append(hints, fmt.Sprintf("use --page %d for previous", p.Current-1))
	}
	if p.HasNext() {
		hints = append(hints, fmt.Sprintf("use --page %d for next", p.Current+1))
	}
	return strings.Join(hints, ", ")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
