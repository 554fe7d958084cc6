package board

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayout() Layout {
	return Layout{BoardWidth: 800, BoardHeight: 600, NoteWidth: 224, NoteHeight: 112}
}

func fixedClock() func() time.Time {
	t0 := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return t0 }
}

func newTestBoard(opts ...Option) *Board {
	opts = append([]Option{WithClock(fixedClock()), WithRand(rand.New(rand.NewSource(1)))}, opts...)
	return New(testLayout(), opts...)
}

type stubOracle map[string]Rect

func (s stubOracle) NoteBounds(id string) (Rect, bool) {
	r, ok := s[id]
	return r, ok
}

func TestMoveNoteClamps(t *testing.T) {
	b := newTestBoard()
	n, err := b.AddNote(CategoryGood)
	require.NoError(t, err)

	p, err := b.MoveNote(n.ID, -50, 10)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.X)

	p, err = b.MoveNote(n.ID, 1000, 10)
	require.NoError(t, err)
	assert.Equal(t, 576.0, p.X)

	p, err = b.MoveNote(n.ID, 100, 10000)
	require.NoError(t, err)
	assert.Equal(t, 600.0-112, p.Y)

	// taller measured notes clamp higher up
	b.ReportHeight(n.ID, 200)
	p, err = b.MoveNote(n.ID, 100, 10000)
	require.NoError(t, err)
	assert.Equal(t, 400.0, p.Y)

	_, err = b.MoveNote("missing", 0, 0)
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestAddNotePlacementAndIDs(t *testing.T) {
	b := newTestBoard()
	var ids []string
	for i := 0; i < 5; i++ {
		n, err := b.AddNote(Categories[i%len(Categories)])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n.Position.X, 50.0)
		assert.LessOrEqual(t, n.Position.X, 800.0-224)
		assert.GreaterOrEqual(t, n.Position.Y, 50.0)
		assert.LessOrEqual(t, n.Position.Y, 600.0-112)
		ids = append(ids, n.ID)
	}
	// same millisecond, still unique and increasing
	assert.Equal(t, []string{"1792400400000", "1792400400001", "1792400400002", "1792400400003", "1792400400004"}, ids)

	_, err := b.AddNote("nope")
	assert.Error(t, err)
}

func TestDeleteNoteCascadesConnections(t *testing.T) {
	b := newTestBoard()
	a, _ := b.AddNote(CategoryGood)
	c, _ := b.AddNote(CategoryGrowth)
	d, _ := b.AddNote(CategoryInsight)
	e, _ := b.AddNote(CategoryGood)

	_, err := b.Connect(a.ID, AnchorRight, c.ID, AnchorLeft)
	require.NoError(t, err)
	_, err = b.Connect(d.ID, AnchorTop, a.ID, AnchorBottom)
	require.NoError(t, err)
	keep1, err := b.Connect(c.ID, AnchorBottom, d.ID, AnchorTop)
	require.NoError(t, err)
	keep2, err := b.Connect(e.ID, AnchorLeft, d.ID, AnchorRight)
	require.NoError(t, err)

	require.NoError(t, b.DeleteNote(a.ID))

	assert.Equal(t, []Connection{keep1, keep2}, b.Connections())
	assert.Len(t, b.Notes(), 3)
	for _, conn := range b.Connections() {
		assert.False(t, conn.Touches(a.ID))
	}

	assert.ErrorIs(t, b.DeleteNote(a.ID), ErrNoteNotFound)
}

func TestConnectRejectsSelfLoop(t *testing.T) {
	b := newTestBoard()
	a, _ := b.AddNote(CategoryGood)
	for _, from := range Anchors {
		for _, to := range Anchors {
			_, err := b.Connect(a.ID, from, a.ID, to)
			assert.ErrorIs(t, err, ErrSelfLoop)
		}
	}
	assert.Empty(t, b.Connections())

	_, err := b.Connect(a.ID, AnchorTop, "ghost", AnchorTop)
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestAnchorPositionPrefersOracle(t *testing.T) {
	oracle := stubOracle{}
	b := newTestBoard(WithOracle(oracle))
	n, _ := b.AddNote(CategoryGood)
	_, err := b.MoveNote(n.ID, 100, 100)
	require.NoError(t, err)

	// computed fallback: stored position, fixed width, default height
	p, ok := b.AnchorPosition(n.ID, AnchorBottom)
	require.True(t, ok)
	assert.Equal(t, Point{212, 212}, p)

	// measured height only
	b.ReportHeight(n.ID, 150)
	p, _ = b.AnchorPosition(n.ID, AnchorBottom)
	assert.Equal(t, Point{212, 250}, p)

	// measured geometry wins
	oracle[n.ID] = Rect{X: 110, Y: 90, Width: 200, Height: 60}
	p, _ = b.AnchorPosition(n.ID, AnchorRight)
	assert.Equal(t, Point{310, 120}, p)

	_, ok = b.AnchorPosition("ghost", AnchorTop)
	assert.False(t, ok)
}

func TestConnectionPath(t *testing.T) {
	b := newTestBoard()
	a, _ := b.AddNote(CategoryGood)
	c, _ := b.AddNote(CategoryGrowth)
	_, _ = b.MoveNote(a.ID, 0, 0)
	_, _ = b.MoveNote(c.ID, 500, 100)

	conn, err := b.Connect(a.ID, AnchorRight, c.ID, AnchorLeft)
	require.NoError(t, err)

	path, err := b.ConnectionPath(conn)
	require.NoError(t, err)
	assert.True(t, path.HorizontalFirst)
	assert.Equal(t, "M 224 56 L 362 56 L 362 156 L 500 156", path.SVG())

	require.NoError(t, b.DeleteNote(c.ID))
	_, err = b.ConnectionPath(conn)
	assert.True(t, errors.Is(err, ErrNoteNotFound))
}

func TestCopyAndLabel(t *testing.T) {
	b := newTestBoard()
	a, _ := b.AddNoteWithText(CategoryGrowth, "Estimate better")
	_, _ = b.MoveNote(a.ID, 10, 10)

	cp, err := b.CopyNote(a.ID)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, cp.ID)
	assert.Equal(t, "Estimate better", cp.Text)
	assert.Equal(t, CategoryGrowth, cp.Category)
	assert.Equal(t, Point{30, 30}, cp.Position)

	conn, err := b.Connect(a.ID, AnchorRight, cp.ID, AnchorLeft)
	require.NoError(t, err)
	require.NoError(t, b.SetLabel(conn.ID, "leads to"))
	assert.Equal(t, "leads to", b.Connections()[0].Label)

	require.NoError(t, b.DeleteConnection(conn.ID))
	assert.ErrorIs(t, b.DeleteConnection(conn.ID), ErrConnectionNotFound)
}

func TestFilledNotesAndRestore(t *testing.T) {
	b := newTestBoard()
	a, _ := b.AddNoteWithText(CategoryGood, "Shipped")
	_, _ = b.AddNoteWithText(CategoryGrowth, "   ")
	assert.Len(t, b.FilledNotes(), 1)

	other := newTestBoard()
	other.Restore(
		[]Note{a, {ID: "9999999999999", Text: "x", Category: CategoryInsight}},
		[]Connection{
			{ID: "ok", From: a.ID, FromPoint: AnchorTop, To: "9999999999999", ToPoint: AnchorLeft},
			{ID: "dangling", From: a.ID, FromPoint: AnchorTop, To: "gone", ToPoint: AnchorLeft},
			{ID: "loop", From: a.ID, FromPoint: AnchorTop, To: a.ID, ToPoint: AnchorLeft},
		},
	)
	require.Len(t, other.Connections(), 1)
	assert.Equal(t, "ok", other.Connections()[0].ID)

	// new ids continue after the restored ones
	n, _ := other.AddNote(CategoryGood)
	assert.Equal(t, "10000000000000", n.ID)

	other.Reset()
	assert.Empty(t, other.Notes())
	assert.Empty(t, other.Connections())
}

func TestHitTest(t *testing.T) {
	b := newTestBoard()
	a, _ := b.AddNote(CategoryGood)
	c, _ := b.AddNote(CategoryGood)
	_, _ = b.MoveNote(a.ID, 0, 0)
	_, _ = b.MoveNote(c.ID, 100, 50)

	n, ok := b.HitTest(Point{150, 100})
	require.True(t, ok)
	assert.Equal(t, c.ID, n.ID, "later notes are on top")

	n, ok = b.HitTest(Point{10, 10})
	require.True(t, ok)
	assert.Equal(t, a.ID, n.ID)

	_, ok = b.HitTest(Point{700, 500})
	assert.False(t, ok)
}
