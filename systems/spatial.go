package systems

import "math"

// SpatialGrid buckets particle indices into square cells so neighbor pairs
// can be found without comparing every pair.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	width    float64
	height   float64
	cells    [][]int // flat grid of particle index lists
	cellOf   []int   // particle index -> flat cell index
}

// NewSpatialGrid creates a spatial grid covering the given surface size.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 8) // pre-allocate small capacity
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		width:    width,
		height:   height,
		cells:    cells,
	}
}

// Covers reports whether the grid was built for these dimensions.
func (g *SpatialGrid) Covers(width, height, cellSize float64) bool {
	return g.width == width && g.height == height && g.cellSize == cellSize
}

// Clear removes all particles from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.cellOf = g.cellOf[:0]
}

// Insert adds particle i at the given position. Indices must be inserted in
// increasing order starting at 0.
func (g *SpatialGrid) Insert(i int, x, y float64) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], i)
	g.cellOf = append(g.cellOf, idx)
}

// Neighbors appends to dst every particle index j > i in the 3x3 block of
// cells around particle i. Returns the updated slice.
func (g *SpatialGrid) Neighbors(dst []int, i int) []int {
	idx := g.cellOf[i]
	col, row := idx%g.cols, idx/g.cols

	for dr := -1; dr <= 1; dr++ {
		r := row + dr
		if r < 0 || r >= g.rows {
			continue
		}
		for dc := -1; dc <= 1; dc++ {
			c := col + dc
			if c < 0 || c >= g.cols {
				continue
			}
			for _, j := range g.cells[r*g.cols+c] {
				if j > i {
					dst = append(dst, j)
				}
			}
		}
	}
	return dst
}

// cellIndex returns the flat index for a surface position.
// Positions slightly outside the surface (wrap margin) land in edge cells.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	col := int(math.Floor(x / g.cellSize))
	row := int(math.Floor(y / g.cellSize))

	// Clamp to valid range
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return row*g.cols + col
}
