package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hoshinonyaruko/snake-autopilot/config"
)

// ErrNoGame is returned when no game has been started yet.
var ErrNoGame = errors.New("no game running")

// Manager keeps the current game and replaces it on demand.
type Manager struct {
	configure func() config.AppConfig
	recorder  Recorder
	sinks     []Sink

	// restartMu serialises building a runner and installing it, so the
	// sinks are always bound to the current game.
	restartMu sync.Mutex

	mu      sync.Mutex
	current *Runner
	cancel  context.CancelFunc
}

// NewManager returns a manager building games from configure, which is
// consulted again on every Start.
func NewManager(configure func() config.AppConfig, recorder Recorder, sinks ...Sink) *Manager {
	return &Manager{configure: configure, recorder: recorder, sinks: sinks}
}

// Start returns the current game, or starts one when there is none or the
// last one has stopped.
func (m *Manager) Start(ctx context.Context) (*Runner, error) {
	m.restartMu.Lock()
	defer m.restartMu.Unlock()
	if cur, err := m.Current(); err == nil {
		select {
		case <-cur.Done():
		default:
			return cur, nil
		}
	}
	return m.restartLocked(ctx)
}

// Restart abandons the current game, if any, and runs a new one built from
// the latest configuration until it stops or ctx is done.
func (m *Manager) Restart(ctx context.Context) (*Runner, error) {
	m.restartMu.Lock()
	defer m.restartMu.Unlock()
	return m.restartLocked(ctx)
}

func (m *Manager) restartLocked(ctx context.Context) (*Runner, error) {
	r, err := NewRunner(m.configure(), m.recorder, m.sinks...)
	if err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	m.current, m.cancel = r, cancel
	m.mu.Unlock()

	go r.Run(runCtx)
	return r, nil
}

// Current returns the game being played.
func (m *Manager) Current() (*Runner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, ErrNoGame
	}
	return m.current, nil
}

// Wait blocks until the current game is over or ctx is done. A game
// replaced by Restart is not over; Wait follows its successor.
func (m *Manager) Wait(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		r, err := m.Current()
		if err != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-r.Done():
			if cur, _ := m.Current(); cur == r {
				return
			}
		case <-ticker.C:
		}
	}
}

// Stop abandons the current game.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}
