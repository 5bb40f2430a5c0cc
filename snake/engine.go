// 关于的蛇的更新
package snake

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/golang/glog"
	"github.com/hoshinonyaruko/snake-autopilot/structs"
)

// Settings are fixed when an Engine is built and never change afterwards.
type Settings struct {
	Width           int
	Height          int
	Growth          int              // length added per food
	MaxFoodAttempts int              // random samples before giving up on food placement
	Start           structs.Position // initial head
	Seed            uint64
}

// DefaultSettings returns the classic 40×30 board.
func DefaultSettings() Settings {
	return Settings{
		Width:           40,
		Height:          30,
		Growth:          5,
		MaxFoodAttempts: 1000,
		Start:           structs.Position{X: 5, Y: 5},
	}
}

// State of the tick state machine.
type State int

const (
	Running State = iota
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return "????"
}

// Stats counts outcomes that never reach the renderer.
type Stats struct {
	RejectedTurns      int `json:"rejected_turns"`
	AutopilotOverrides int `json:"autopilot_overrides"`
	FoodEaten          int `json:"food_eaten"`
}

// Engine owns one game. All methods must be called from a single goroutine;
// only the Queue is shared with input sources.
type Engine struct {
	settings Settings
	grid     *Grid
	queue    *Queue
	rng      *rand.Rand

	head      structs.Position
	heading   structs.Direction
	body      []structs.Position // 蛇身，从脖子到尾巴，不含蛇头
	food      structs.Position
	length    int
	ticks     int
	autopilot bool
	stopped   bool
	err       error
	stats     Stats
}

// New builds an engine, marks the start cell as head and places the first food.
func New(s Settings, q *Queue) (*Engine, error) {
	if s.Width < 2 || s.Height < 2 {
		return nil, fmt.Errorf("grid %dx%d is too small", s.Width, s.Height)
	}
	if s.Growth <= 0 || s.MaxFoodAttempts <= 0 {
		return nil, fmt.Errorf("growth %d and food attempts %d must be positive", s.Growth, s.MaxFoodAttempts)
	}
	if q == nil {
		q = NewQueue()
	}
	e := &Engine{
		settings: s,
		grid:     NewGrid(s.Width, s.Height),
		queue:    q,
		rng:      rand.New(rand.NewPCG(s.Seed, 0)),
		head:     s.Start,
		food:     structs.NoPosition,
	}
	if !e.grid.Contains(s.Start) {
		return nil, fmt.Errorf("start position %v is outside the %dx%d grid", s.Start, s.Width, s.Height)
	}
	q.setAutopilot(false)
	e.grid.Set(e.head, structs.CellHead)
	if err := e.placeFood(); err != nil {
		return nil, fmt.Errorf("placing first food: %w", err)
	}
	return e, nil
}

// Tick advances the game by one step: drain input, move, report.
// Nothing is returned once the game has stopped; the frame that stopped it
// carries GameOver.
func (e *Engine) Tick() structs.Frame {
	if e.stopped {
		return structs.Frame{Report: e.Report()}
	}
	if !e.parseInput() {
		return e.stop(ErrStopped)
	}
	if err := e.moveHead(); err != nil {
		return e.stop(err)
	}
	return structs.Frame{Report: e.Report(), Changes: e.grid.TakeChanges()}
}

func (e *Engine) stop(err error) structs.Frame {
	e.stopped = true
	e.err = err
	glog.V(1).Infof("game stopped after %d ticks: %v", e.ticks, err)
	return structs.Frame{Report: e.Report(), Changes: e.grid.TakeChanges(), GameOver: true}
}

// parseInput evaluates queued actions against the current heading and
// accepts at most one heading change. It returns false on stop.
func (e *Engine) parseInput() bool {
	running := true
	e.queue.Drain(func(a structs.Action) bool {
		heading := e.heading
		switch a.Kind {
		case structs.ActionStop:
			running = false
			return true
		case structs.ActionPause:
			heading = structs.None
		case structs.ActionToggleAutopilot:
			e.setAutopilot(!e.autopilot)
			if !e.autopilot {
				heading = structs.None
			} else if heading == structs.None {
				heading = e.headingToFood()
			}
		case structs.ActionTurn:
			if e.autopilot && !a.Internal {
				// Queued before the autopilot took over.
				glog.V(2).Infof("autopilot on, dropping %v", a)
				return false
			}
			heading = a.Dir
		}
		if heading == e.heading {
			// Redundant, keep draining.
			return false
		}
		if e.hitsNeck(heading) {
			e.stats.RejectedTurns++
			glog.V(2).Infof("%v: %v", ErrReversal, a)
			return false
		}
		e.heading = heading
		return true
	})
	return running
}

// hitsNeck reports whether moving along d would enter body[0].
func (e *Engine) hitsNeck(d structs.Direction) bool {
	return len(e.body) > 0 && e.grid.Translate(e.head, d) == e.body[0]
}

func (e *Engine) setAutopilot(on bool) {
	e.autopilot = on
	e.queue.setAutopilot(on)
}

// moveHead moves the head one step along the heading.
func (e *Engine) moveHead() error {
	if e.heading == structs.None {
		// 暂停
		return nil
	}
	next := e.grid.Translate(e.head, e.heading)
	if e.autopilot {
		next = e.avoidObstacle(next)
	}
	switch e.grid.Get(next) {
	case structs.CellFood:
		e.length += e.settings.Growth
		e.stats.FoodEaten++
		glog.V(2).Infof("ate food at %v, length target %d", next, e.length)
		e.food = structs.NoPosition
		if err := e.placeFood(); err != nil {
			return err
		}
	case structs.CellEmpty:
	default:
		return ErrCollision
	}

	e.ticks++
	e.grid.Set(e.head, structs.CellBody)
	e.body = slices.Insert(e.body, 0, e.head)
	for len(e.body) > e.length {
		tail := e.body[len(e.body)-1]
		e.body = e.body[:len(e.body)-1]
		e.grid.Set(tail, structs.CellEmpty)
	}
	e.head = next
	e.grid.Set(next, structs.CellHead)

	if e.autopilot {
		e.steerToFood()
	}
	return nil
}

// placeFood puts a new food on a random empty cell if none is pending.
func (e *Engine) placeFood() error {
	if e.food != structs.NoPosition {
		return nil
	}
	p, err := e.grid.FindEmptyRandom(e.rng, e.settings.MaxFoodAttempts)
	if err != nil {
		return err
	}
	e.food = p
	e.grid.Set(p, structs.CellFood)
	return nil
}

// Report returns the status summary for renderers.
func (e *Engine) Report() structs.Report {
	return structs.Report{
		Length:    e.length,
		Ticks:     e.ticks,
		Autopilot: e.autopilot,
		Running:   !e.stopped,
	}
}

// State returns the current state of the tick state machine.
func (e *Engine) State() State {
	switch {
	case e.stopped:
		return Stopped
	case e.heading == structs.None:
		return Paused
	}
	return Running
}

// Err returns why the game stopped, or nil while it runs.
func (e *Engine) Err() error { return e.err }

func (e *Engine) Stats() Stats               { return e.stats }
func (e *Engine) Space() Space               { return e.grid.Space }
func (e *Engine) Head() structs.Position     { return e.head }
func (e *Engine) Heading() structs.Direction { return e.heading }
func (e *Engine) Food() structs.Position     { return e.food }
func (e *Engine) Autopilot() bool            { return e.autopilot }

// Cell returns the status of p.
func (e *Engine) Cell(p structs.Position) structs.CellStatus { return e.grid.Get(p) }

// Cells returns a copy of the whole grid, row-major.
func (e *Engine) Cells() []structs.CellStatus { return e.grid.Cells() }

// Body returns a copy of the body segments, neck first.
func (e *Engine) Body() []structs.Position {
	return append([]structs.Position(nil), e.body...)
}
