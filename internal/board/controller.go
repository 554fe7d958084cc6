package board

import (
	"fmt"
	"sync"
)

// Mode is the single input focus of the board.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDragging
	ModeConnecting
)

func (m Mode) String() string {
	switch m {
	case ModeDragging:
		return "dragging"
	case ModeConnecting:
		return "connecting"
	default:
		return "idle"
	}
}

// Origin is the anchor a pending connection starts from.
type Origin struct {
	NoteID string
	Anchor Anchor
}

// Controller turns pointer and keyboard input into board mutations. Only
// one gesture is active at a time. Each gesture subscribes to the surface
// when it starts and drops every subscription when it ends, so an idle
// board listens to nothing.
type Controller struct {
	mu      sync.Mutex
	board   *Board
	surface Surface

	mode    Mode
	dragID  string
	grab    Point
	origin  Origin
	preview Point
	unsubs  []func()

	selected  string
	clipboard *Note
}

func NewController(b *Board, s Surface) *Controller {
	return &Controller{board: b, surface: s}
}

func (c *Controller) Board() *Board { return c.board }

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// BeginDrag starts moving a note; at is the pointer position in board
// coordinates, so the note keeps its offset under the pointer.
func (c *Controller) BeginDrag(noteID string, at Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeIdle {
		return fmt.Errorf("drag %s: %w", noteID, ErrBusy)
	}
	n, ok := c.board.Note(noteID)
	if !ok {
		return fmt.Errorf("drag %s: %w", noteID, ErrNoteNotFound)
	}
	c.mode = ModeDragging
	c.dragID = noteID
	c.grab = at.Sub(n.Position)
	c.selected = noteID
	c.subscribeLocked(EventPointerMove, c.onDragMove)
	c.subscribeLocked(EventPointerUp, c.onDragEnd)
	c.subscribeLocked(EventPointerLeave, c.onDragEnd)
	return nil
}

// Dragging returns the id of the note being dragged, if any.
func (c *Controller) Dragging() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dragID, c.mode == ModeDragging
}

func (c *Controller) onDragMove(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeDragging {
		return
	}
	target := e.Point.Sub(c.grab)
	_, _ = c.board.MoveNote(c.dragID, target.X, target.Y)
}

func (c *Controller) onDragEnd(Event) { c.EndDrag() }

// EndDrag finishes a drag; it is a no-op when nothing is being dragged.
func (c *Controller) EndDrag() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeDragging {
		return
	}
	c.resetLocked()
}

// StartConnection enters connecting mode from a note's anchor. The preview
// follows the pointer until the connection is completed or cancelled.
func (c *Controller) StartConnection(noteID string, a Anchor) error {
	if !a.Valid() {
		return fmt.Errorf("start connection: invalid anchor %q", a)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeIdle {
		return fmt.Errorf("start connection: %w", ErrBusy)
	}
	p, ok := c.board.AnchorPosition(noteID, a)
	if !ok {
		return fmt.Errorf("start connection %s: %w", noteID, ErrNoteNotFound)
	}
	c.mode = ModeConnecting
	c.origin = Origin{NoteID: noteID, Anchor: a}
	c.preview = p
	c.subscribeLocked(EventPointerMove, c.onConnectMove)
	c.subscribeLocked(EventKey, c.onConnectKey)
	return nil
}

func (c *Controller) onConnectMove(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == ModeConnecting {
		c.preview = e.Point
	}
}

func (c *Controller) onConnectKey(e Event) {
	if e.Key == "esc" || e.Key == "escape" {
		c.CancelConnection()
	}
}

// CompleteConnection commits a connection to the target anchor. Targeting
// any anchor of the origin note returns ErrSelfLoop and leaves connecting
// mode active so another note can still be picked.
func (c *Controller) CompleteConnection(targetID string, a Anchor) (Connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeConnecting {
		return Connection{}, ErrNotConnecting
	}
	if targetID == c.origin.NoteID {
		return Connection{}, ErrSelfLoop
	}
	conn, err := c.board.Connect(c.origin.NoteID, c.origin.Anchor, targetID, a)
	if err != nil {
		return Connection{}, err
	}
	c.resetLocked()
	return conn, nil
}

// CancelConnection leaves connecting mode without side effects.
func (c *Controller) CancelConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeConnecting {
		return
	}
	c.resetLocked()
}

// Connecting returns the pending origin while in connecting mode.
func (c *Controller) Connecting() (Origin, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.origin, c.mode == ModeConnecting
}

// Preview returns the live segment from the origin anchor to the pointer.
func (c *Controller) Preview() (from, to Point, ok bool) {
	c.mu.Lock()
	origin, to, connecting := c.origin, c.preview, c.mode == ModeConnecting
	c.mu.Unlock()
	if !connecting {
		return Point{}, Point{}, false
	}
	from, ok = c.board.AnchorPosition(origin.NoteID, origin.Anchor)
	return from, to, ok
}

func (c *Controller) Select(noteID string) {
	c.mu.Lock()
	c.selected = noteID
	c.mu.Unlock()
}

func (c *Controller) Selected() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == "" {
		return "", false
	}
	if _, ok := c.board.Note(c.selected); !ok {
		return "", false
	}
	return c.selected, true
}

// Copy puts the selected note on the clipboard.
func (c *Controller) Copy() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.board.Note(c.selected)
	if !ok {
		return fmt.Errorf("copy: %w", ErrNoteNotFound)
	}
	c.clipboard = &n
	return nil
}

// Paste duplicates the clipboard note and selects the copy.
func (c *Controller) Paste() (Note, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeIdle {
		return Note{}, fmt.Errorf("paste: %w", ErrBusy)
	}
	if c.clipboard == nil {
		return Note{}, fmt.Errorf("paste: clipboard empty")
	}
	n, err := c.board.CopyNote(c.clipboard.ID)
	if err != nil {
		return Note{}, err
	}
	c.selected = n.ID
	return n, nil
}

// DeleteSelected removes the selected note and its connections.
func (c *Controller) DeleteSelected() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeIdle {
		return fmt.Errorf("delete: %w", ErrBusy)
	}
	if err := c.board.DeleteNote(c.selected); err != nil {
		return err
	}
	if c.clipboard != nil && c.clipboard.ID == c.selected {
		c.clipboard = nil
	}
	c.selected = ""
	return nil
}

// Shortcut maps the board's keyboard shortcuts onto controller actions.
// It reports whether the key was handled.
func (c *Controller) Shortcut(key string) (bool, error) {
	switch key {
	case "ctrl+c":
		return true, c.Copy()
	case "ctrl+v":
		_, err := c.Paste()
		return true, err
	case "delete", "backspace":
		return true, c.DeleteSelected()
	}
	return false, nil
}

// Close drops every live subscription.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *Controller) subscribeLocked(kind EventKind, h Handler) {
	if c.surface == nil {
		return
	}
	c.unsubs = append(c.unsubs, c.surface.Subscribe(kind, h))
}

func (c *Controller) resetLocked() {
	for _, u := range c.unsubs {
		u()
	}
	c.unsubs = nil
	c.mode = ModeIdle
	c.dragID = ""
	c.grab = Point{}
	c.origin = Origin{}
	c.preview = Point{}
}
