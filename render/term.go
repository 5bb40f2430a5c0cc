package render

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/hoshinonyaruko/snake-autopilot/session"
	"github.com/hoshinonyaruko/snake-autopilot/structs"
)

var (
	headStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	bodyStyle = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	foodStyle = tcell.StyleDefault.Foreground(tcell.ColorRed)
	overStyle = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// Terminal draws the board on a tcell screen, one character per cell with
// the status line below it.
type Terminal struct {
	screen tcell.Screen

	mu    sync.Mutex
	board *Board
}

// NewTerminal draws on an initialised screen.
func NewTerminal(s tcell.Screen) *Terminal {
	return &Terminal{screen: s}
}

func (t *Terminal) Start(snap session.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.board = BoardOf(snap)
	t.screen.Clear()
	for y := 0; y < t.board.Height; y++ {
		for x := 0; x < t.board.Width; x++ {
			t.drawCell(x, y, t.board.At(x, y))
		}
	}
	t.drawStatus()
	t.screen.Show()
}

func (t *Terminal) Frame(id string, f structs.Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.board == nil || t.board.ID != id {
		return
	}
	t.board.Apply(f)
	for _, c := range f.Changes {
		t.drawCell(c.Pos.X, c.Pos.Y, c.Status)
	}
	t.drawStatus()
	t.screen.Show()
}

func (t *Terminal) GameOver(id string, r structs.Report) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.board == nil || t.board.ID != id {
		return
	}
	t.board.Report = r
	t.drawStatus()
	msg := "GAME OVER"
	x := (t.board.Width - len(msg)) / 2
	if x < 0 {
		x = 0
	}
	y := t.board.Height / 2
	drawText(t.screen, x, y, x+len(msg), y, overStyle, msg)
	t.screen.Show()
}

func (t *Terminal) drawCell(x, y int, s structs.CellStatus) {
	switch s {
	case structs.CellHead:
		t.screen.SetContent(x, y, '@', nil, headStyle)
	case structs.CellBody:
		t.screen.SetContent(x, y, 'o', nil, bodyStyle)
	case structs.CellFood:
		t.screen.SetContent(x, y, '*', nil, foodStyle)
	default:
		t.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
	}
}

func (t *Terminal) drawStatus() {
	y := t.board.Height
	w, _ := t.screen.Size()
	if w < t.board.Width {
		w = t.board.Width
	}
	for x := 0; x < w; x++ {
		t.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
	}
	drawText(t.screen, 0, y, w, y, tcell.StyleDefault, t.board.Report.String())
}

func drawText(s tcell.Screen, x1, y1, x2, y2 int, style tcell.Style, text string) {
	row := y1
	col := x1
	for _, r := range text {
		s.SetContent(col, row, r, nil, style)
		col++
		if col >= x2 {
			row++
			col = x1
		}
		if row > y2 {
			break
		}
	}
}
