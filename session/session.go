// Package session drives one engine at a fixed interval and hands each
// tick's output to the renderers.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/hoshinonyaruko/snake-autopilot/config"
	"github.com/hoshinonyaruko/snake-autopilot/snake"
	"github.com/hoshinonyaruko/snake-autopilot/structs"
)

// Sink receives the output of a session. Frame is called once per tick
// while the game runs; GameOver exactly once when it stops.
type Sink interface {
	Frame(id string, f structs.Frame)
	GameOver(id string, r structs.Report)
}

// Starter is implemented by sinks that keep their own copy of the board.
// Start is called once with the initial snapshot, before the first tick.
type Starter interface {
	Start(snap Snapshot)
}

// Recorder stores finished games.
type Recorder interface {
	SaveResult(structs.Result) error
}

// Snapshot is a copy of the board that other goroutines may read.
type Snapshot struct {
	ID      string               `json:"id"`
	Width   int                  `json:"width"`
	Height  int                  `json:"height"`
	Cells   []structs.CellStatus `json:"-"`
	Report  structs.Report       `json:"report"`
	Status  string               `json:"status"`
	State   string               `json:"state"`
	Head    structs.Position     `json:"head"`
	Food    structs.Position     `json:"food"`
	Heading string               `json:"heading"`
	Stats   snake.Stats          `json:"stats"`
}

// Cell returns the status at p.
func (s Snapshot) Cell(p structs.Position) structs.CellStatus {
	if p.X < 0 || p.X >= s.Width || p.Y < 0 || p.Y >= s.Height {
		return structs.CellEmpty
	}
	return s.Cells[p.Y*s.Width+p.X]
}

// Runner owns one engine and its input queue.
type Runner struct {
	id       string
	engine   *snake.Engine
	queue    *snake.Queue
	interval time.Duration
	sinks    []Sink
	recorder Recorder
	started  time.Time

	stepMu sync.Mutex // one tick at a time

	mu   sync.RWMutex
	snap Snapshot

	done     chan struct{}
	doneOnce sync.Once
}

// Settings converts the configuration into engine settings. A zero seed
// is replaced by the clock.
func Settings(cfg config.AppConfig) snake.Settings {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return snake.Settings{
		Width:           cfg.Width,
		Height:          cfg.Height,
		Growth:          cfg.Growth,
		MaxFoodAttempts: cfg.FoodAttempts,
		Start:           structs.Position{X: cfg.StartX, Y: cfg.StartY},
		Seed:            seed,
	}
}

// NewRunner builds a new game from cfg. recorder may be nil.
func NewRunner(cfg config.AppConfig, recorder Recorder, sinks ...Sink) (*Runner, error) {
	q := snake.NewQueue()
	e, err := snake.New(Settings(cfg), q)
	if err != nil {
		return nil, err
	}
	r := &Runner{
		id:       uuid.New().String(),
		engine:   e,
		queue:    q,
		interval: cfg.TickInterval(),
		sinks:    sinks,
		recorder: recorder,
		started:  time.Now(),
		done:     make(chan struct{}),
	}
	r.updateSnapshot()
	for _, s := range sinks {
		if st, ok := s.(Starter); ok {
			st.Start(r.snap)
		}
	}
	return r, nil
}

// ID identifies the game.
func (r *Runner) ID() string { return r.id }

// Push queues an action from an input source. It never touches the engine.
func (r *Runner) Push(a structs.Action) bool { return r.queue.Push(a) }

// Done is closed once the game has stopped.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Snapshot returns the board as of the last tick.
func (r *Runner) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// Step runs a single tick and distributes its output.
func (r *Runner) Step() structs.Frame {
	r.stepMu.Lock()
	defer r.stepMu.Unlock()

	frame := r.engine.Tick()
	r.updateSnapshot()
	switch {
	case frame.GameOver:
		glog.Infof("game %s over: %v (%v)", r.id, frame.Report, r.engine.Err())
		for _, s := range r.sinks {
			s.GameOver(r.id, frame.Report)
		}
		r.record(frame.Report)
		r.doneOnce.Do(func() { close(r.done) })
	case frame.Report.Running:
		for _, s := range r.sinks {
			s.Frame(r.id, frame)
		}
	}
	return frame
}

// Run ticks at the configured interval until the game stops or ctx is done.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	glog.Infof("game %s started, %v per tick", r.id, r.interval)
	for {
		select {
		case <-ctx.Done():
			glog.Infof("game %s abandoned", r.id)
			return
		case <-ticker.C:
			if f := r.Step(); !f.Report.Running {
				return
			}
		}
	}
}

func (r *Runner) updateSnapshot() {
	sp := r.engine.Space()
	snap := Snapshot{
		ID:      r.id,
		Width:   sp.W,
		Height:  sp.H,
		Cells:   r.engine.Cells(),
		Report:  r.engine.Report(),
		State:   r.engine.State().String(),
		Head:    r.engine.Head(),
		Food:    r.engine.Food(),
		Heading: r.engine.Heading().String(),
		Stats:   r.engine.Stats(),
	}
	snap.Status = snap.Report.String()
	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()
}

func (r *Runner) record(rep structs.Report) {
	if r.recorder == nil {
		return
	}
	sp := r.engine.Space()
	res := structs.Result{
		SessionID: r.id,
		Width:     sp.W,
		Height:    sp.H,
		Length:    rep.Length,
		Ticks:     rep.Ticks,
		Autopilot: rep.Autopilot,
		Reason:    snake.Reason(r.engine.Err()),
		StartedAt: r.started,
		EndedAt:   time.Now(),
	}
	if err := r.recorder.SaveResult(res); err != nil {
		glog.Errorf("saving result of game %s: %v", r.id, err)
	}
}
