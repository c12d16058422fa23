package chainreaction

// Cell is one square of the board. Owner is zero when the cell is empty.
type Cell struct {
	Owner int64
	Count int
}

// Board is a width x height grid of cells stored row-major.
type Board struct {
	width  int
	height int
	cells  []Cell
}

type queued struct {
	x, y  int
	owner int64
}

// NewBoard creates an empty board.
func NewBoard(width, height int) *Board {
	return &Board{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

// InBounds reports whether (x, y) lies on the board.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

// Capacity is the most orbs a cell holds at rest: 1 in a corner, 2 elsewhere.
func (b *Board) Capacity(x, y int) int {
	cornerX := x == 0 || x == b.width-1
	cornerY := y == 0 || y == b.height-1
	if cornerX && cornerY {
		return 1
	}
	return 2
}

// Cell returns the cell at (x, y).
func (b *Board) Cell(x, y int) Cell {
	return b.cells[y*b.width+x]
}

func (b *Board) set(x, y int, c Cell) {
	b.cells[y*b.width+x] = c
}

// maxPops bounds a single cascade. Interior explosions add an orb each, so a
// saturated board would otherwise never settle.
func (b *Board) maxPops() int {
	return b.width * b.height * 256
}

// Place drops one orb for owner at (x, y) and resolves the resulting chain
// reaction to a fixed point. It returns the number of explosions. If the
// cascade hits the safety ceiling the board is settled by clamping every
// cell to its capacity and truncated is true.
func (b *Board) Place(x, y int, owner int64) (explosions int, truncated bool) {
	queue := []queued{{x: x, y: y, owner: owner}}
	limit := b.maxPops()

	for pops := 0; len(queue) > 0; pops++ {
		if pops >= limit {
			b.settle()
			return explosions, true
		}
		q := queue[0]
		queue = queue[1:]

		i := q.y*b.width + q.x
		c := &b.cells[i]
		c.Count++
		c.Owner = q.owner

		capacity := b.Capacity(q.x, q.y)
		if c.Count <= capacity {
			continue
		}
		explosions++
		c.Count -= capacity + 1
		if c.Count <= 0 {
			c.Count = 0
			c.Owner = 0
		}
		for _, n := range b.neighbors(q.x, q.y) {
			queue = append(queue, queued{x: n[0], y: n[1], owner: q.owner})
		}
	}
	return explosions, false
}

func (b *Board) neighbors(x, y int) [][2]int {
	out := make([][2]int, 0, 4)
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		nx, ny := x+d[0], y+d[1]
		if b.InBounds(nx, ny) {
			out = append(out, [2]int{nx, ny})
		}
	}
	return out
}

func (b *Board) settle() {
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			c := &b.cells[y*b.width+x]
			if capacity := b.Capacity(x, y); c.Count > capacity {
				c.Count = capacity
			}
		}
	}
}

// CellsOwned counts cells held by owner.
func (b *Board) CellsOwned(owner int64) int {
	n := 0
	for _, c := range b.cells {
		if c.Owner == owner && c.Count > 0 {
			n++
		}
	}
	return n
}

// Orbs counts all orbs on the board.
func (b *Board) Orbs() int {
	n := 0
	for _, c := range b.cells {
		n += c.Count
	}
	return n
}

// Rows returns a copy of the grid indexed [y][x].
func (b *Board) Rows() [][]Cell {
	rows := make([][]Cell, b.height)
	for y := range rows {
		rows[y] = make([]Cell, b.width)
		copy(rows[y], b.cells[y*b.width:(y+1)*b.width])
	}
	return rows
}
