package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ramanasai/reflectboard/internal/board"
)

// canvas rasterizes board coordinates onto terminal cells. One cell covers
// sx by sy board units.
type canvas struct {
	cols, rows int
	sx, sy     float64
	cells      []cell
	styles     []lipgloss.Style
}

type cell struct {
	r  rune
	st int // index into canvas.styles, 0 is unstyled
}

type cellPos struct{ x, y int }

func newCanvas(cols, rows int, l board.Layout) *canvas {
	cols = max(cols, 1)
	rows = max(rows, 1)
	c := &canvas{
		cols:   cols,
		rows:   rows,
		sx:     l.BoardWidth / float64(cols),
		sy:     l.BoardHeight / float64(rows),
		cells:  make([]cell, cols*rows),
		styles: []lipgloss.Style{lipgloss.NewStyle()},
	}
	for i := range c.cells {
		c.cells[i].r = ' '
	}
	return c
}

func (c *canvas) style(s lipgloss.Style) int {
	c.styles = append(c.styles, s)
	return len(c.styles) - 1
}

// cellOf maps a board point to the cell containing it, clamped to the
// canvas.
func (c *canvas) cellOf(p board.Point) cellPos {
	x := int(math.Floor(p.X / c.sx))
	y := int(math.Floor(p.Y / c.sy))
	return cellPos{x: min(max(x, 0), c.cols-1), y: min(max(y, 0), c.rows-1)}
}

// pointOf maps a cell back to the board point at its center.
func (c *canvas) pointOf(x, y int) board.Point {
	return board.Point{X: (float64(x) + 0.5) * c.sx, Y: (float64(y) + 0.5) * c.sy}
}

// span converts a board length to whole cells along one axis.
func span(length, unit float64) int {
	return max(int(math.Round(length/unit)), 1)
}

func (c *canvas) in(x, y int) bool { return x >= 0 && y >= 0 && x < c.cols && y < c.rows }

func (c *canvas) set(x, y int, r rune, st int) {
	if c.in(x, y) {
		c.cells[y*c.cols+x] = cell{r: r, st: st}
	}
}

func (c *canvas) at(x, y int) rune {
	if !c.in(x, y) {
		return 0
	}
	return c.cells[y*c.cols+x].r
}

func (c *canvas) text(x, y int, s string, st int) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, st)
	}
}

// box draws a rounded frame with lines inside; the interior is cleared.
func (c *canvas) box(x, y, w, h int, lines []string, border, body int) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			c.set(xx, yy, ' ', body)
		}
	}
	for xx := x + 1; xx < x+w-1; xx++ {
		c.set(xx, y, '─', border)
		c.set(xx, y+h-1, '─', border)
	}
	for yy := y + 1; yy < y+h-1; yy++ {
		c.set(x, yy, '│', border)
		c.set(x+w-1, yy, '│', border)
	}
	c.set(x, y, '╭', border)
	c.set(x+w-1, y, '╮', border)
	c.set(x, y+h-1, '╰', border)
	c.set(x+w-1, y+h-1, '╯', border)
	for i, l := range lines {
		if i >= h-2 {
			break
		}
		c.text(x+1, y+1+i, l, body)
	}
}

// path draws an orthogonal route and returns the cell and glyph of its
// arrow head, which the caller draws last so boxes do not cover it.
func (c *canvas) path(pts []board.Point, st int, dotted bool) (cellPos, rune, bool) {
	if len(pts) < 2 {
		return cellPos{}, 0, false
	}
	cs := make([]cellPos, len(pts))
	for i, p := range pts {
		cs[i] = c.cellOf(p)
	}
	for i := 1; i < len(cs); i++ {
		c.segment(cs[i-1], cs[i], st, dotted)
	}
	if !dotted {
		for i := 1; i < len(cs)-1; i++ {
			if r, ok := corner(direction(cs[i-1], cs[i]), direction(cs[i], cs[i+1])); ok {
				c.set(cs[i].x, cs[i].y, r, st)
			}
		}
	}
	for i := len(cs) - 1; i > 0; i-- {
		if d := direction(cs[i-1], cs[i]); d != (cellPos{}) {
			return cs[len(cs)-1], arrow(d), true
		}
	}
	return cellPos{}, 0, false
}

func (c *canvas) segment(a, b cellPos, st int, dotted bool) {
	switch {
	case a.y == b.y:
		r := '─'
		if dotted {
			r = '·'
		}
		for x := min(a.x, b.x); x <= max(a.x, b.x); x++ {
			c.set(x, a.y, r, st)
		}
	case a.x == b.x:
		r := '│'
		if dotted {
			r = '·'
		}
		for y := min(a.y, b.y); y <= max(a.y, b.y); y++ {
			c.set(a.x, y, r, st)
		}
	}
}

func direction(a, b cellPos) cellPos {
	return cellPos{x: sign(b.x - a.x), y: sign(b.y - a.y)}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func corner(in, out cellPos) (rune, bool) {
	switch {
	case in.x == 1 && out.y == 1, in.y == -1 && out.x == -1:
		return '┐', true
	case in.x == 1 && out.y == -1, in.y == 1 && out.x == -1:
		return '┘', true
	case in.x == -1 && out.y == 1, in.y == -1 && out.x == 1:
		return '┌', true
	case in.x == -1 && out.y == -1, in.y == 1 && out.x == 1:
		return '└', true
	}
	return 0, false
}

func arrow(d cellPos) rune {
	switch {
	case d.x > 0:
		return '▶'
	case d.x < 0:
		return '◀'
	case d.y > 0:
		return '▼'
	}
	return '▲'
}

func (c *canvas) String() string {
	var b strings.Builder
	for y := 0; y < c.rows; y++ {
		row := c.cells[y*c.cols : (y+1)*c.cols]
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].st == row[start].st {
				continue
			}
			run := make([]rune, 0, x-start)
			for _, cl := range row[start:x] {
				run = append(run, cl.r)
			}
			if st := row[start].st; st == 0 {
				b.WriteString(string(run))
			} else {
				b.WriteString(c.styles[st].Render(string(run)))
			}
			start = x
		}
		if y < c.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// wrap breaks s into lines of at most width runes on word boundaries.
func wrap(s string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, w := range strings.Fields(para) {
			for len([]rune(w)) > width {
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				r := []rune(w)
				lines = append(lines, string(r[:width]))
				w = string(r[width:])
			}
			switch {
			case line == "":
				line = w
			case len([]rune(line))+1+len([]rune(w)) <= width:
				line += " " + w
			default:
				lines = append(lines, line)
				line = w
			}
		}
		lines = append(lines, line)
	}
	return lines
}
