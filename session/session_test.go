package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hoshinonyaruko/snake-autopilot/config"
	"github.com/hoshinonyaruko/snake-autopilot/structs"
)

type fakeSink struct {
	mu       sync.Mutex
	frames   []structs.Frame
	gameOver []structs.Report
}

func (s *fakeSink) Frame(id string, f structs.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
}

func (s *fakeSink) GameOver(id string, r structs.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameOver = append(s.gameOver, r)
}

func (s *fakeSink) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames), len(s.gameOver)
}

type fakeRecorder struct {
	mu      sync.Mutex
	results []structs.Result
	err     error
}

func (r *fakeRecorder) SaveResult(res structs.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
	return r.err
}

func testConfig() config.AppConfig {
	cfg := config.Default()
	cfg.Width, cfg.Height = 12, 8
	cfg.StartX, cfg.StartY = 2, 2
	cfg.Seed = 7
	cfg.TickMs = 1
	return cfg
}

func TestRunnerStepNotifiesSinks(t *testing.T) {
	sink := &fakeSink{}
	r, err := NewRunner(testConfig(), nil, sink)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if snap := r.Snapshot(); snap.State != "paused" || snap.Cell(snap.Head) != structs.CellHead {
		t.Fatalf("initial snapshot %+v", snap)
	}

	// Paused games still report every tick.
	r.Step()
	if !r.Push(structs.Turn(structs.Right)) {
		t.Fatal("turn discarded")
	}
	f := r.Step()
	if f.Report.Ticks != 1 || !f.Report.Running {
		t.Fatalf("report after first move: %+v", f.Report)
	}
	snap := r.Snapshot()
	if snap.Head != (structs.Position{X: 3, Y: 2}) || snap.Heading != "right" {
		t.Fatalf("snapshot head %v heading %s", snap.Head, snap.Heading)
	}
	if snap.Status != f.Report.String() || snap.Report.Ticks != 1 {
		t.Errorf("status %q, report %+v", snap.Status, snap.Report)
	}
	if frames, over := sink.counts(); frames != 2 || over != 0 {
		t.Fatalf("sink saw %d frames, %d game overs", frames, over)
	}
}

func TestRunnerGameOverOnce(t *testing.T) {
	sink := &fakeSink{}
	rec := &fakeRecorder{}
	r, err := NewRunner(testConfig(), rec, sink)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	r.Push(structs.Turn(structs.Down))
	r.Step()
	r.Push(structs.Stop)
	if f := r.Step(); !f.GameOver || f.Report.Running {
		t.Fatalf("stop frame %+v", f)
	}
	r.Step()
	r.Step()

	select {
	case <-r.Done():
	default:
		t.Fatal("Done not closed")
	}
	frames, over := sink.counts()
	if frames != 1 || over != 1 {
		t.Fatalf("sink saw %d frames, %d game overs", frames, over)
	}
	if len(rec.results) != 1 {
		t.Fatalf("recorded %d results", len(rec.results))
	}
	res := rec.results[0]
	if res.SessionID != r.ID() || res.Reason != "stopped" || res.Ticks != 1 || res.Width != 12 {
		t.Fatalf("result %+v", res)
	}
	if r.Snapshot().State != "stopped" {
		t.Fatalf("state %s", r.Snapshot().State)
	}
}

func TestRecorderErrorDoesNotStopGameOver(t *testing.T) {
	sink := &fakeSink{}
	rec := &fakeRecorder{err: errors.New("disk full")}
	r, err := NewRunner(testConfig(), rec, sink)
	if err != nil {
		t.Fatal(err)
	}
	r.Push(structs.Stop)
	r.Step()
	if _, over := sink.counts(); over != 1 {
		t.Fatalf("game overs %d", over)
	}
}

func TestNewRunnerRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.StartX = 100
	if _, err := NewRunner(cfg, nil); err == nil {
		t.Fatal("start outside the board accepted")
	}
}

func TestRunStopsWithGame(t *testing.T) {
	sink := &fakeSink{}
	r, err := NewRunner(testConfig(), nil, sink)
	if err != nil {
		t.Fatal(err)
	}
	r.Push(structs.ToggleAutopilot)
	finished := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(finished)
	}()

	time.Sleep(20 * time.Millisecond)
	r.Push(structs.Stop)
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after stop")
	}
	if _, over := sink.counts(); over != 1 {
		t.Fatalf("game overs %d", over)
	}
}

func TestManagerRestart(t *testing.T) {
	sink := &fakeSink{}
	m := NewManager(testConfig, nil, sink)
	if _, err := m.Current(); !errors.Is(err, ErrNoGame) {
		t.Fatalf("Current before start: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := m.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if again, _ := m.Start(ctx); again != first {
		t.Fatal("Start replaced a running game")
	}
	second, err := m.Restart(ctx)
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if first.ID() == second.ID() {
		t.Fatal("restart reused the game id")
	}
	cur, err := m.Current()
	if err != nil || cur != second {
		t.Fatalf("Current = %v, %v", cur, err)
	}
	m.Stop()
}

func TestSettingsSeed(t *testing.T) {
	cfg := testConfig()
	if got := Settings(cfg).Seed; got != 7 {
		t.Fatalf("seed %d", got)
	}
	cfg.Seed = 0
	if Settings(cfg).Seed == 0 {
		t.Fatal("zero seed kept")
	}
}

func TestManagerStartAfterGameOver(t *testing.T) {
	m := NewManager(testConfig, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer m.Stop()

	first, err := m.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	first.Push(structs.Stop)
	select {
	case <-first.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("game never stopped")
	}
	second, err := m.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if second == first {
		t.Fatal("Start kept a stopped game")
	}
}

type startingSink struct {
	fakeSink
	mu    sync.Mutex
	bound string
}

func (s *startingSink) Start(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bound = snap.ID
}

func TestConcurrentRestartsKeepSinksOnCurrentGame(t *testing.T) {
	sink := &startingSink{}
	cfg := func() config.AppConfig {
		c := testConfig()
		c.TickMs = 3600 * 1000
		return c
	}
	m := NewManager(cfg, nil, sink)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer m.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Restart(ctx); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	cur, err := m.Current()
	if err != nil {
		t.Fatal(err)
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.bound != cur.ID() {
		t.Fatalf("sink bound to %s, current game is %s", sink.bound, cur.ID())
	}
}

func TestManagerWaitFollowsRestarts(t *testing.T) {
	m := NewManager(testConfig, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer m.Stop()

	if _, err := m.Start(ctx); err != nil {
		t.Fatal(err)
	}
	waited := make(chan struct{})
	go func() {
		m.Wait(ctx)
		close(waited)
	}()

	second, err := m.Restart(ctx)
	if err != nil {
		t.Fatal(err)
	}
	select {
	case <-waited:
		t.Fatal("Wait returned when the game was only replaced")
	case <-time.After(250 * time.Millisecond):
	}

	second.Push(structs.Stop)
	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after the current game stopped")
	}
}
