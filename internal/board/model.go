package board

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoteNotFound       = errors.New("note not found")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrSelfLoop           = errors.New("a note cannot connect to itself")
	ErrBusy               = errors.New("another gesture is in progress")
	ErrNotConnecting      = errors.New("no connection in progress")
)

// Category classifies a note.
type Category string

const (
	CategoryGood    Category = "good"
	CategoryGrowth  Category = "growth"
	CategoryInsight Category = "insight"
)

// Categories lists every category in toolbar order.
var Categories = []Category{CategoryGood, CategoryGrowth, CategoryInsight}

func (c Category) Valid() bool {
	switch c {
	case CategoryGood, CategoryGrowth, CategoryInsight:
		return true
	}
	return false
}

// ParseCategory accepts the category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q (want good|growth|insight)", s)
	}
	return c, nil
}

// Anchor is one of the four edge midpoints of a note.
type Anchor string

const (
	AnchorTop    Anchor = "top"
	AnchorRight  Anchor = "right"
	AnchorBottom Anchor = "bottom"
	AnchorLeft   Anchor = "left"
)

var Anchors = []Anchor{AnchorTop, AnchorRight, AnchorBottom, AnchorLeft}

func (a Anchor) Valid() bool {
	switch a {
	case AnchorTop, AnchorRight, AnchorBottom, AnchorLeft:
		return true
	}
	return false
}

func ParseAnchor(s string) (Anchor, error) {
	a := Anchor(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("unknown anchor %q (want top|right|bottom|left)", s)
	}
	return a, nil
}

// Point is a board-local pixel coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Rect is an axis-aligned box in board coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Note is a positioned, categorized text entity on the board.
type Note struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Category Category `json:"category"`
	Position Point    `json:"position"`
}

// Filled reports whether the note carries any non-blank text.
func (n Note) Filled() bool { return strings.TrimSpace(n.Text) != "" }

// Connection is a directed link between anchors of two distinct notes.
type Connection struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	FromPoint Anchor `json:"fromPoint"`
	To        string `json:"to"`
	ToPoint   Anchor `json:"toPoint"`
	Label     string `json:"label,omitempty"`
}

// Touches reports whether either endpoint is noteID.
func (c Connection) Touches(noteID string) bool {
	return c.From == noteID || c.To == noteID
}
