package domain

import (
	"github.com/pkg/errors"
)

var ErrOutOfRange = errors.New("cell out of range")

// Grid is a flat store of locked cells. Row 0 is the bottom row.
type Grid struct {
	width  int
	height int
	cells  []Kind
}

func NewGrid(width, height int) *Grid {
	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]Kind, width*height),
	}
	g.Clear()
	return g
}

func (g *Grid) Width() int {
	return g.width
}

func (g *Grid) Height() int {
	return g.height
}

func (g *Grid) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// CellAt panics when (x, y) is outside the grid; callers bound-check first.
func (g *Grid) CellAt(x, y int) Kind {
	return g.cells[g.index(x, y)]
}

func (g *Grid) Set(x, y int, kind Kind) {
	g.cells[g.index(x, y)] = kind
}

func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = Empty
	}
}

// Cells returns a copy of the store, row 0 first.
func (g *Grid) Cells() []Kind {
	cells := make([]Kind, len(g.cells))
	copy(cells, g.cells)
	return cells
}

func (g *Grid) index(x, y int) int {
	if !g.Contains(x, y) {
		panic(errors.WithMessagef(ErrOutOfRange, "(%d, %d) on %dx%d grid", x, y, g.width, g.height))
	}
	return x + y*g.width
}
