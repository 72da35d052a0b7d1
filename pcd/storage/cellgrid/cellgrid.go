package cellgrid

import (
	"slices"
)

// DenseLimit is the largest number of slots stored as a flat slice.
// Larger grids keep only occupied slots in a map.
const DenseLimit = 1 << 22

// Grid is a rows x cols array of optional slots.
type Grid[T any] struct {
	rows, cols int
	dense      []*T
	sparse     map[int]*T
	n          int
}

func New[T any](rows, cols int) *Grid[T] {
	g := &Grid[T]{
		rows: rows,
		cols: cols,
	}
	if rows*cols <= DenseLimit {
		g.dense = make([]*T, rows*cols)
	} else {
		g.sparse = make(map[int]*T)
	}
	return g
}

func (g *Grid[T]) Size() (rows, cols int) {
	return g.rows, g.cols
}

// Len returns the number of occupied slots.
func (g *Grid[T]) Len() int {
	return g.n
}

func (g *Grid[T]) Addr(row, col int) (int, bool) {
	if row < 0 || col < 0 || row >= g.rows || col >= g.cols {
		return 0, false
	}
	return col + row*g.cols, true
}

func (g *Grid[T]) Get(row, col int) *T {
	addr, ok := g.Addr(row, col)
	if !ok {
		return nil
	}
	if g.dense != nil {
		return g.dense[addr]
	}
	return g.sparse[addr]
}

// GetOrCreate returns the slot at (row, col), filling it with fn() if empty.
func (g *Grid[T]) GetOrCreate(row, col int, fn func() *T) (*T, bool) {
	addr, ok := g.Addr(row, col)
	if !ok {
		return nil, false
	}
	if g.dense != nil {
		if g.dense[addr] == nil {
			g.dense[addr] = fn()
			g.n++
		}
		return g.dense[addr], true
	}
	v, ok := g.sparse[addr]
	if !ok {
		v = fn()
		g.sparse[addr] = v
		g.n++
	}
	return v, true
}

// Each calls fn for every occupied slot in row-major order.
func (g *Grid[T]) Each(fn func(row, col int, v *T)) {
	if g.dense != nil {
		for addr, v := range g.dense {
			if v != nil {
				fn(addr/g.cols, addr%g.cols, v)
			}
		}
		return
	}
	addrs := make([]int, 0, len(g.sparse))
	for addr := range g.sparse {
		addrs = append(addrs, addr)
	}
	slices.Sort(addrs)
	for _, addr := range addrs {
		fn(addr/g.cols, addr%g.cols, g.sparse[addr])
	}
}
