package snake

import (
	"math/rand/v2"

	"github.com/hoshinonyaruko/snake-autopilot/structs"
)

// Grid stores the status of every cell in row-major order and remembers
// which cells changed since the last TakeChanges.
type Grid struct {
	Space
	cells   []structs.CellStatus
	changes []structs.CellChange
}

// NewGrid allocates an all-empty grid.
func NewGrid(w, h int) *Grid {
	return &Grid{
		Space: Space{W: w, H: h},
		cells: make([]structs.CellStatus, w*h),
	}
}

func (g *Grid) index(p structs.Position) int { return p.Y*g.W + p.X }

// Get returns the status at p. Coordinates outside the grid read as empty.
func (g *Grid) Get(p structs.Position) structs.CellStatus {
	if !g.Contains(p) {
		return structs.CellEmpty
	}
	return g.cells[g.index(p)]
}

// Set changes the status at p and records the change.
func (g *Grid) Set(p structs.Position, s structs.CellStatus) {
	if !g.Contains(p) {
		return
	}
	i := g.index(p)
	if g.cells[i] == s {
		return
	}
	g.cells[i] = s
	g.changes = append(g.changes, structs.CellChange{Pos: p, Status: s})
}

// TakeChanges returns the changes recorded since the previous call.
// A cell touched twice appears twice, last write last.
func (g *Grid) TakeChanges() []structs.CellChange {
	c := g.changes
	g.changes = nil
	return c
}

// FindEmptyRandom samples up to maxAttempts random cells and returns the
// first empty one. A nearly full grid may yield ErrGridFull even though an
// empty cell exists; the attempt budget bounds the cost instead.
func (g *Grid) FindEmptyRandom(rng *rand.Rand, maxAttempts int) (structs.Position, error) {
	for i := 0; i < maxAttempts; i++ {
		p := structs.Position{X: rng.IntN(g.W), Y: rng.IntN(g.H)}
		if g.Get(p) == structs.CellEmpty {
			return p, nil
		}
	}
	return structs.NoPosition, ErrGridFull
}

// Count returns how many cells have status s.
func (g *Grid) Count(s structs.CellStatus) int {
	n := 0
	for _, c := range g.cells {
		if c == s {
			n++
		}
	}
	return n
}

// Cells returns a copy of the backing slice.
func (g *Grid) Cells() []structs.CellStatus {
	return append([]structs.CellStatus(nil), g.cells...)
}
