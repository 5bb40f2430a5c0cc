// Package render draws boards for people: PNG files for the HTTP side and a
// tcell screen for the terminal.
package render

import (
	"github.com/hoshinonyaruko/snake-autopilot/session"
	"github.com/hoshinonyaruko/snake-autopilot/structs"
)

// Board is a sink-side copy of the grid, kept current from frame changes.
type Board struct {
	ID     string
	Width  int
	Height int
	Cells  []structs.CellStatus
	Report structs.Report
}

// BoardOf copies a session snapshot.
func BoardOf(snap session.Snapshot) *Board {
	return &Board{
		ID:     snap.ID,
		Width:  snap.Width,
		Height: snap.Height,
		Cells:  append([]structs.CellStatus(nil), snap.Cells...),
		Report: snap.Report,
	}
}

// At returns the status of the cell at x, y.
func (b *Board) At(x, y int) structs.CellStatus {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return structs.CellEmpty
	}
	return b.Cells[y*b.Width+x]
}

// Apply writes one tick's changes onto the board.
func (b *Board) Apply(f structs.Frame) {
	for _, c := range f.Changes {
		if c.Pos.X < 0 || c.Pos.X >= b.Width || c.Pos.Y < 0 || c.Pos.Y >= b.Height {
			continue
		}
		b.Cells[c.Pos.Y*b.Width+c.Pos.X] = c.Status
	}
	b.Report = f.Report
}
