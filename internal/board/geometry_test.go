package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteTieBreak(t *testing.T) {
	tests := []struct {
		name       string
		start, end Point
		horizontal bool
		want       []Point
	}{
		{
			name:       "horizontal displacement dominates",
			start:      Point{0, 0},
			end:        Point{10, 4},
			horizontal: true,
			want:       []Point{{0, 0}, {5, 0}, {5, 4}, {10, 4}},
		},
		{
			name:  "vertical displacement dominates",
			start: Point{0, 0},
			end:   Point{4, 10},
			want:  []Point{{0, 0}, {0, 5}, {4, 5}, {4, 10}},
		},
		{
			name:  "equal displacement routes vertically first",
			start: Point{0, 0},
			end:   Point{5, 5},
			want:  []Point{{0, 0}, {0, 2.5}, {5, 2.5}, {5, 5}},
		},
		{
			name:       "leftwards",
			start:      Point{100, 50},
			end:        Point{20, 60},
			horizontal: true,
			want:       []Point{{100, 50}, {60, 50}, {60, 60}, {20, 60}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Route(tt.start, tt.end)
			assert.Equal(t, tt.horizontal, p.HorizontalFirst)
			assert.Equal(t, tt.want, p.Points)
			assert.Equal(t, tt.start, p.Start())
			assert.Equal(t, tt.end, p.End())
		})
	}
}

func TestPathSVG(t *testing.T) {
	p := Route(Point{0, 0}, Point{10, 4})
	assert.Equal(t, "M 0 0 L 5 0 L 5 4 L 10 4", p.SVG())

	p = Route(Point{0, 0}, Point{5, 5})
	assert.Equal(t, "M 0 0 L 0 2.5 L 5 2.5 L 5 5", p.SVG())
}

func TestAnchorOf(t *testing.T) {
	r := Rect{X: 100, Y: 50, Width: 224, Height: 112}
	assert.Equal(t, Point{212, 50}, AnchorOf(r, AnchorTop))
	assert.Equal(t, Point{324, 106}, AnchorOf(r, AnchorRight))
	assert.Equal(t, Point{212, 162}, AnchorOf(r, AnchorBottom))
	assert.Equal(t, Point{100, 106}, AnchorOf(r, AnchorLeft))
}

func TestFacingAnchors(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 50}

	from, to := FacingAnchors(a, Rect{X: 300, Y: 10, Width: 100, Height: 50})
	assert.Equal(t, AnchorRight, from)
	assert.Equal(t, AnchorLeft, to)

	from, to = FacingAnchors(a, Rect{X: 10, Y: -300, Width: 100, Height: 50})
	assert.Equal(t, AnchorTop, from)
	assert.Equal(t, AnchorBottom, to)
}

func TestParseAnchorAndCategory(t *testing.T) {
	a, err := ParseAnchor(" Left ")
	require.NoError(t, err)
	assert.Equal(t, AnchorLeft, a)

	_, err = ParseAnchor("middle")
	assert.Error(t, err)

	c, err := ParseCategory("INSIGHT")
	require.NoError(t, err)
	assert.Equal(t, CategoryInsight, c)

	_, err = ParseCategory("bad")
	assert.Error(t, err)
}
