package board

import (
	"math"
	"strconv"
	"strings"
)

// Layout holds the fixed dimensions the geometry is computed against.
type Layout struct {
	BoardWidth  float64
	BoardHeight float64
	NoteWidth   float64
	NoteHeight  float64 // default height used when nothing better is known
}

func DefaultLayout() Layout {
	return Layout{
		BoardWidth:  1280,
		BoardHeight: 720,
		NoteWidth:   224,
		NoteHeight:  112,
	}
}

// Clamp keeps a note of the given height fully inside the board.
func (l Layout) Clamp(p Point, noteHeight float64) Point {
	if noteHeight <= 0 {
		noteHeight = l.NoteHeight
	}
	return Point{
		X: clamp(p.X, 0, l.BoardWidth-l.NoteWidth),
		Y: clamp(p.Y, 0, l.BoardHeight-noteHeight),
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(v, hi))
}

// LayoutOracle reports where a note was actually rendered. Renderers that
// know the real geometry (wrapped text makes heights dynamic) implement it;
// without one the board falls back to stored positions.
type LayoutOracle interface {
	NoteBounds(id string) (Rect, bool)
}

// AnchorOf returns the edge midpoint of r for the given anchor.
func AnchorOf(r Rect, a Anchor) Point {
	cx := r.X + r.Width/2
	cy := r.Y + r.Height/2
	switch a {
	case AnchorTop:
		return Point{X: cx, Y: r.Y}
	case AnchorRight:
		return Point{X: r.X + r.Width, Y: cy}
	case AnchorBottom:
		return Point{X: cx, Y: r.Y + r.Height}
	case AnchorLeft:
		return Point{X: r.X, Y: cy}
	}
	return Point{X: cx, Y: cy}
}

// Path is an orthogonal route between two anchors.
type Path struct {
	Points []Point
	// HorizontalFirst is true when the route leaves the start sideways and
	// turns on a vertical midline.
	HorizontalFirst bool
}

// Route computes the right-angle route from start to end. When the
// horizontal displacement dominates the route turns on a vertical midline
// at the horizontal midpoint, otherwise on a horizontal midline at the
// vertical midpoint. Equal displacements route vertically first.
func Route(start, end Point) Path {
	dx := end.X - start.X
	dy := end.Y - start.Y

	if math.Abs(dx) > math.Abs(dy) {
		midX := start.X + dx/2
		return Path{
			Points:          []Point{start, {X: midX, Y: start.Y}, {X: midX, Y: end.Y}, end},
			HorizontalFirst: true,
		}
	}
	midY := start.Y + dy/2
	return Path{
		Points: []Point{start, {X: start.X, Y: midY}, {X: end.X, Y: midY}, end},
	}
}

// Start returns the first point of the path.
func (p Path) Start() Point {
	if len(p.Points) == 0 {
		return Point{}
	}
	return p.Points[0]
}

// End returns the last point of the path.
func (p Path) End() Point {
	if len(p.Points) == 0 {
		return Point{}
	}
	return p.Points[len(p.Points)-1]
}

// SVG renders the path as SVG path data ("M x y L x y ...").
func (p Path) SVG() string {
	var b strings.Builder
	for i, pt := range p.Points {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(formatCoord(pt.X))
		b.WriteByte(' ')
		b.WriteString(formatCoord(pt.Y))
	}
	return b.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FacingAnchors picks the pair of anchors that face each other for two
// rectangles, the way a user would usually connect them by hand.
func FacingAnchors(from, to Rect) (Anchor, Anchor) {
	fc := Point{X: from.X + from.Width/2, Y: from.Y + from.Height/2}
	tc := Point{X: to.X + to.Width/2, Y: to.Y + to.Height/2}
	dx := tc.X - fc.X
	dy := tc.Y - fc.Y
	if math.Abs(dx) > math.Abs(dy) {
		if dx >= 0 {
			return AnchorRight, AnchorLeft
		}
		return AnchorLeft, AnchorRight
	}
	if dy >= 0 {
		return AnchorBottom, AnchorTop
	}
	return AnchorTop, AnchorBottom
}
