package board

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Board holds the notes and connections of one day's reflection.
// It is safe for concurrent use.
type Board struct {
	mu          sync.RWMutex
	layout      Layout
	oracle      LayoutOracle
	notes       []Note
	connections []Connection
	heights     map[string]float64

	now    func() time.Time
	rnd    *rand.Rand
	lastID int64
}

type Option func(*Board)

// WithOracle installs a renderer-backed geometry source.
func WithOracle(o LayoutOracle) Option {
	return func(b *Board) { b.oracle = o }
}

// WithClock replaces time.Now for note id generation.
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// WithRand makes note placement deterministic.
func WithRand(r *rand.Rand) Option {
	return func(b *Board) { b.rnd = r }
}

func New(layout Layout, opts ...Option) *Board {
	b := &Board{
		layout:  layout,
		heights: make(map[string]float64),
		now:     time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Board) Layout() Layout { return b.layout }

// SetOracle swaps the layout oracle; nil disables measured geometry.
func (b *Board) SetOracle(o LayoutOracle) {
	b.mu.Lock()
	b.oracle = o
	b.mu.Unlock()
}

// nextID returns a creation-ordered id derived from the clock. Ids created
// within the same millisecond are bumped so they stay unique.
func (b *Board) nextID() string {
	ms := b.now().UnixMilli()
	if ms <= b.lastID {
		ms = b.lastID + 1
	}
	b.lastID = ms
	return strconv.FormatInt(ms, 10)
}

// AddNote creates an empty note of the given category at a random spot.
func (b *Board) AddNote(c Category) (Note, error) {
	if !c.Valid() {
		return Note{}, fmt.Errorf("add note: invalid category %q", c)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	pos := Point{X: b.rnd.Float64()*700 + 50, Y: b.rnd.Float64()*500 + 50}
	n := Note{
		ID:       b.nextID(),
		Category: c,
		Position: b.layout.Clamp(pos, b.layout.NoteHeight),
	}
	b.notes = append(b.notes, n)
	return n, nil
}

// AddNoteWithText is AddNote followed by UpdateText.
func (b *Board) AddNoteWithText(c Category, text string) (Note, error) {
	n, err := b.AddNote(c)
	if err != nil {
		return Note{}, err
	}
	if err := b.UpdateText(n.ID, text); err != nil {
		return Note{}, err
	}
	n.Text = text
	return n, nil
}

func (b *Board) UpdateText(id, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(id)
	if i < 0 {
		return fmt.Errorf("update %s: %w", id, ErrNoteNotFound)
	}
	b.notes[i].Text = text
	return nil
}

// MoveNote repositions a note, clamped so it stays fully on the board.
func (b *Board) MoveNote(id string, x, y float64) (Point, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(id)
	if i < 0 {
		return Point{}, fmt.Errorf("move %s: %w", id, ErrNoteNotFound)
	}
	p := b.layout.Clamp(Point{X: x, Y: y}, b.heightLocked(id))
	b.notes[i].Position = p
	return p, nil
}

// CopyNote duplicates a note 20px down and to the right.
func (b *Board) CopyNote(id string) (Note, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(id)
	if i < 0 {
		return Note{}, fmt.Errorf("copy %s: %w", id, ErrNoteNotFound)
	}
	src := b.notes[i]
	n := Note{
		ID:       b.nextID(),
		Text:     src.Text,
		Category: src.Category,
		Position: b.layout.Clamp(Point{X: src.Position.X + 20, Y: src.Position.Y + 20}, b.heightLocked(src.ID)),
	}
	b.notes = append(b.notes, n)
	return n, nil
}

// DeleteNote removes the note and every connection touching it in one step.
func (b *Board) DeleteNote(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNoteNotFound)
	}
	b.notes = append(b.notes[:i:i], b.notes[i+1:]...)
	kept := b.connections[:0:0]
	for _, c := range b.connections {
		if !c.Touches(id) {
			kept = append(kept, c)
		}
	}
	b.connections = kept
	delete(b.heights, id)
	return nil
}

// Connect links two distinct notes. It is the commit step behind
// Controller.CompleteConnection and is also used when restoring records.
func (b *Board) Connect(from string, fromPoint Anchor, to string, toPoint Anchor) (Connection, error) {
	if from == to {
		return Connection{}, ErrSelfLoop
	}
	if !fromPoint.Valid() || !toPoint.Valid() {
		return Connection{}, fmt.Errorf("connect: invalid anchors %q -> %q", fromPoint, toPoint)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.indexOf(from) < 0 {
		return Connection{}, fmt.Errorf("connect from %s: %w", from, ErrNoteNotFound)
	}
	if b.indexOf(to) < 0 {
		return Connection{}, fmt.Errorf("connect to %s: %w", to, ErrNoteNotFound)
	}
	c := Connection{
		ID:        uuid.NewString(),
		From:      from,
		FromPoint: fromPoint,
		To:        to,
		ToPoint:   toPoint,
	}
	b.connections = append(b.connections, c)
	return c, nil
}

func (b *Board) DeleteConnection(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, c := range b.connections {
		if c.ID == id {
			b.connections = append(b.connections[:i:i], b.connections[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete connection %s: %w", id, ErrConnectionNotFound)
}

// SetLabel attaches a caption to a connection.
func (b *Board) SetLabel(id, label string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.connections {
		if b.connections[i].ID == id {
			b.connections[i].Label = label
			return nil
		}
	}
	return fmt.Errorf("label connection %s: %w", id, ErrConnectionNotFound)
}

// ReportHeight records a measured note height for the computed fallback.
func (b *Board) ReportHeight(id string, h float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if h > 0 {
		b.heights[id] = h
	}
}

func (b *Board) heightLocked(id string) float64 {
	if h, ok := b.heights[id]; ok {
		return h
	}
	return b.layout.NoteHeight
}

// Bounds returns the rectangle a note occupies, preferring the oracle.
func (b *Board) Bounds(id string) (Rect, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.boundsLocked(id)
}

func (b *Board) boundsLocked(id string) (Rect, bool) {
	i := b.indexOf(id)
	if i < 0 {
		return Rect{}, false
	}
	if b.oracle != nil {
		if r, ok := b.oracle.NoteBounds(id); ok && r.Width > 0 && r.Height > 0 {
			return r, true
		}
	}
	n := b.notes[i]
	return Rect{X: n.Position.X, Y: n.Position.Y, Width: b.layout.NoteWidth, Height: b.heightLocked(id)}, true
}

// AnchorPosition returns the board coordinate of a note's anchor. The
// measured geometry from the oracle wins; otherwise it is computed from the
// stored position, the fixed width and the measured-or-default height.
func (b *Board) AnchorPosition(id string, a Anchor) (Point, bool) {
	r, ok := b.Bounds(id)
	if !ok {
		return Point{}, false
	}
	return AnchorOf(r, a), true
}

// ConnectionPath routes a connection between its two anchors.
func (b *Board) ConnectionPath(c Connection) (Path, error) {
	start, ok := b.AnchorPosition(c.From, c.FromPoint)
	if !ok {
		return Path{}, fmt.Errorf("path from %s: %w", c.From, ErrNoteNotFound)
	}
	end, ok := b.AnchorPosition(c.To, c.ToPoint)
	if !ok {
		return Path{}, fmt.Errorf("path to %s: %w", c.To, ErrNoteNotFound)
	}
	return Route(start, end), nil
}

// HitTest returns the topmost note under p.
func (b *Board) HitTest(p Point) (Note, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := len(b.notes) - 1; i >= 0; i-- {
		if r, ok := b.boundsLocked(b.notes[i].ID); ok && r.Contains(p) {
			return b.notes[i], true
		}
	}
	return Note{}, false
}

func (b *Board) Note(id string) (Note, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := b.indexOf(id)
	if i < 0 {
		return Note{}, false
	}
	return b.notes[i], true
}

// Notes returns a copy of the notes in creation order.
func (b *Board) Notes() []Note {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Note(nil), b.notes...)
}

// FilledNotes returns the notes with non-blank text.
func (b *Board) FilledNotes() []Note {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Note, 0, len(b.notes))
	for _, n := range b.notes {
		if n.Filled() {
			out = append(out, n)
		}
	}
	return out
}

func (b *Board) Connections() []Connection {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Connection(nil), b.connections...)
}

// Reset discards every note and connection.
func (b *Board) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notes = nil
	b.connections = nil
	b.heights = make(map[string]float64)
}

// Restore replaces the board contents with previously saved state.
// Connections whose endpoints are missing, or that loop back onto the same
// note, are dropped.
func (b *Board) Restore(notes []Note, conns []Connection) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notes = append([]Note(nil), notes...)
	b.heights = make(map[string]float64)
	b.connections = nil
	for _, c := range conns {
		if c.From == c.To || b.indexOf(c.From) < 0 || b.indexOf(c.To) < 0 {
			continue
		}
		b.connections = append(b.connections, c)
	}
	for _, n := range b.notes {
		if v, err := strconv.ParseInt(n.ID, 10, 64); err == nil && v > b.lastID {
			b.lastID = v
		}
	}
}

func (b *Board) indexOf(id string) int {
	for i := range b.notes {
		if b.notes[i].ID == id {
			return i
		}
	}
	return -1
}
