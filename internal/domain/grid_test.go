package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid(t *testing.T) {
	g := NewGrid(10, 22)

	t.Run("new grid is empty", func(t *testing.T) {
		for y := 0; y < g.Height(); y++ {
			for x := 0; x < g.Width(); x++ {
				require.Equal(t, Empty, g.CellAt(x, y))
			}
		}
	})

	t.Run("cell holds the last written kind", func(t *testing.T) {
		g.Set(0, 0, I)
		g.Set(9, 21, Z)
		g.Set(3, 7, T)
		g.Set(3, 7, S)
		assert.Equal(t, I, g.CellAt(0, 0))
		assert.Equal(t, Z, g.CellAt(9, 21))
		assert.Equal(t, S, g.CellAt(3, 7))
		assert.Equal(t, Empty, g.CellAt(4, 7))
	})

	t.Run("flat index is x plus y times width", func(t *testing.T) {
		cells := g.Cells()
		assert.Len(t, cells, 220)
		assert.Equal(t, S, cells[3+7*10])
		assert.Equal(t, Z, cells[219])
	})

	t.Run("cells is a copy", func(t *testing.T) {
		cells := g.Cells()
		cells[0] = Empty
		assert.Equal(t, I, g.CellAt(0, 0))
	})

	t.Run("clear", func(t *testing.T) {
		g.Clear()
		assert.Equal(t, NewGrid(10, 22).Cells(), g.Cells())
	})
}

func TestGridBounds(t *testing.T) {
	g := NewGrid(10, 22)
	assert.True(t, g.Contains(0, 0))
	assert.True(t, g.Contains(9, 21))
	for _, p := range []Point{{-1, 0}, {0, -1}, {10, 0}, {0, 22}} {
		assert.False(t, g.Contains(p.X, p.Y))
		assert.Panics(t, func() { g.CellAt(p.X, p.Y) })
		assert.Panics(t, func() { g.Set(p.X, p.Y, I) })
	}
}

func TestSnapshotRows(t *testing.T) {
	g := NewGrid(4, 4)
	g.Set(0, 0, I)
	g.Set(3, 0, O)
	g.Set(1, 3, T)

	s := NewSnapshot(g)
	assert.Equal(t, []string{"I  O", "    ", "    ", " T  "}, s.Rows)

	parsed := Snapshot{Width: 4, Height: 4, Rows: s.Rows}
	require.NoError(t, parsed.ParseRows())
	assert.Equal(t, g.Cells(), parsed.Cells)
	assert.Equal(t, T, parsed.CellAt(1, 3))

	bad := Snapshot{Width: 4, Height: 1, Rows: []string{"IQ  "}}
	assert.ErrorIs(t, bad.ParseRows(), ErrInvalidKind)
}
