package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T) (*Controller, *Dispatcher, Note, Note) {
	t.Helper()
	b := newTestBoard()
	a, err := b.AddNoteWithText(CategoryGood, "Shipped the feature on time")
	require.NoError(t, err)
	c, err := b.AddNoteWithText(CategoryGrowth, "Ask for review earlier")
	require.NoError(t, err)
	_, _ = b.MoveNote(a.ID, 0, 0)
	_, _ = b.MoveNote(c.ID, 400, 300)
	d := NewDispatcher()
	ctrl := NewController(b, d)
	t.Cleanup(ctrl.Close)
	return ctrl, d, a, c
}

func TestCompleteConnectionNeverSelfLoops(t *testing.T) {
	ctrl, d, a, c := newTestController(t)

	for _, from := range Anchors {
		for _, to := range Anchors {
			require.NoError(t, ctrl.StartConnection(a.ID, from))
			_, err := ctrl.CompleteConnection(a.ID, to)
			assert.ErrorIs(t, err, ErrSelfLoop)

			// still connecting, another note can be picked
			origin, ok := ctrl.Connecting()
			require.True(t, ok)
			assert.Equal(t, Origin{NoteID: a.ID, Anchor: from}, origin)
			ctrl.CancelConnection()
		}
	}
	assert.Empty(t, ctrl.Board().Connections())
	assert.Equal(t, 0, d.Len())

	require.NoError(t, ctrl.StartConnection(a.ID, AnchorRight))
	_, err := ctrl.CompleteConnection(a.ID, AnchorLeft)
	require.ErrorIs(t, err, ErrSelfLoop)
	conn, err := ctrl.CompleteConnection(c.ID, AnchorLeft)
	require.NoError(t, err)
	assert.Equal(t, a.ID, conn.From)
	assert.Equal(t, AnchorRight, conn.FromPoint)
	assert.Equal(t, c.ID, conn.To)
	assert.Equal(t, AnchorLeft, conn.ToPoint)
	assert.Equal(t, ModeIdle, ctrl.Mode())
	assert.Equal(t, 0, d.Len())
}

func TestCompleteWithoutStart(t *testing.T) {
	ctrl, _, _, c := newTestController(t)
	_, err := ctrl.CompleteConnection(c.ID, AnchorTop)
	assert.ErrorIs(t, err, ErrNotConnecting)
}

func TestConnectingSubscriptionsAreScoped(t *testing.T) {
	ctrl, d, a, _ := newTestController(t)
	assert.Equal(t, 0, d.Len())

	require.NoError(t, ctrl.StartConnection(a.ID, AnchorBottom))
	assert.Equal(t, 2, d.Len())

	// a second start is blocked and does not register again
	assert.ErrorIs(t, ctrl.StartConnection(a.ID, AnchorTop), ErrBusy)
	assert.Equal(t, 2, d.Len())

	from, to, ok := ctrl.Preview()
	require.True(t, ok)
	assert.Equal(t, Point{112, 112}, from)
	assert.Equal(t, from, to)

	d.Dispatch(Event{Kind: EventPointerMove, Point: Point{300, 240}})
	_, to, _ = ctrl.Preview()
	assert.Equal(t, Point{300, 240}, to)

	d.Dispatch(Event{Kind: EventKey, Key: "x"})
	assert.Equal(t, ModeConnecting, ctrl.Mode())

	d.Dispatch(Event{Kind: EventKey, Key: "esc"})
	assert.Equal(t, ModeIdle, ctrl.Mode())
	assert.Equal(t, 0, d.Len())
	_, _, ok = ctrl.Preview()
	assert.False(t, ok)
	assert.Empty(t, ctrl.Board().Connections())

	// cancelling again is harmless
	ctrl.CancelConnection()
	assert.Equal(t, 0, d.Len())
}

func TestDragMovesContinuously(t *testing.T) {
	ctrl, d, a, _ := newTestController(t)

	require.NoError(t, ctrl.BeginDrag(a.ID, Point{50, 20}))
	assert.Equal(t, 3, d.Len())
	id, dragging := ctrl.Dragging()
	assert.True(t, dragging)
	assert.Equal(t, a.ID, id)

	d.Dispatch(Event{Kind: EventPointerMove, Point: Point{150, 70}})
	n, _ := ctrl.Board().Note(a.ID)
	assert.Equal(t, Point{100, 50}, n.Position)

	d.Dispatch(Event{Kind: EventPointerMove, Point: Point{5000, 70}})
	n, _ = ctrl.Board().Note(a.ID)
	assert.Equal(t, Point{576, 50}, n.Position)

	d.Dispatch(Event{Kind: EventPointerLeave})
	assert.Equal(t, ModeIdle, ctrl.Mode())
	assert.Equal(t, 0, d.Len())

	// moves after the drag ended are ignored
	d.Dispatch(Event{Kind: EventPointerMove, Point: Point{0, 0}})
	n, _ = ctrl.Board().Note(a.ID)
	assert.Equal(t, Point{576, 50}, n.Position)
}

func TestGesturesAreMutuallyExclusive(t *testing.T) {
	ctrl, d, a, c := newTestController(t)

	require.NoError(t, ctrl.BeginDrag(a.ID, Point{10, 10}))
	assert.ErrorIs(t, ctrl.StartConnection(c.ID, AnchorTop), ErrBusy)
	assert.ErrorIs(t, ctrl.BeginDrag(c.ID, Point{410, 310}), ErrBusy)
	assert.ErrorIs(t, ctrl.DeleteSelected(), ErrBusy)
	d.Dispatch(Event{Kind: EventPointerUp})

	require.NoError(t, ctrl.StartConnection(c.ID, AnchorTop))
	assert.ErrorIs(t, ctrl.BeginDrag(a.ID, Point{10, 10}), ErrBusy)
	ctrl.CancelConnection()

	require.NoError(t, ctrl.BeginDrag(a.ID, Point{10, 10}))
	ctrl.EndDrag()
	assert.Equal(t, 0, d.Len())
}

func TestShortcuts(t *testing.T) {
	ctrl, _, a, c := newTestController(t)
	_, err := ctrl.Board().Connect(a.ID, AnchorRight, c.ID, AnchorLeft)
	require.NoError(t, err)

	ctrl.Select(a.ID)
	handled, err := ctrl.Shortcut("ctrl+c")
	require.True(t, handled)
	require.NoError(t, err)

	handled, err = ctrl.Shortcut("ctrl+v")
	require.True(t, handled)
	require.NoError(t, err)
	assert.Len(t, ctrl.Board().Notes(), 3)

	sel, ok := ctrl.Selected()
	require.True(t, ok)
	assert.NotEqual(t, a.ID, sel)

	ctrl.Select(a.ID)
	handled, err = ctrl.Shortcut("delete")
	require.True(t, handled)
	require.NoError(t, err)
	assert.Len(t, ctrl.Board().Notes(), 2)
	assert.Empty(t, ctrl.Board().Connections())

	_, err = ctrl.Paste()
	assert.Error(t, err, "clipboard is cleared with its note")

	handled, _ = ctrl.Shortcut("q")
	assert.False(t, handled)
}
