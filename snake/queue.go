package snake

import (
	"sync"
	"sync/atomic"

	"github.com/hoshinonyaruko/snake-autopilot/structs"
)

// Queue is the only structure shared between input sources and the engine.
// Producers call Push from any goroutine; the engine drains it once per tick.
type Queue struct {
	mu        sync.Mutex
	actions   []structs.Action
	autopilot atomic.Bool
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends a. Turns are discarded while autopilot owns the heading;
// the return value tells whether a was queued.
func (q *Queue) Push(a structs.Action) bool {
	if a.Kind == structs.ActionTurn && q.autopilot.Load() {
		return false
	}
	a.Internal = false
	q.add(a)
	return true
}

// pushInternal queues an engine-originated action past the autopilot filter.
func (q *Queue) pushInternal(a structs.Action) {
	a.Internal = true
	q.add(a)
}

func (q *Queue) add(a structs.Action) {
	q.mu.Lock()
	q.actions = append(q.actions, a)
	q.mu.Unlock()
}

// Drain hands queued actions to fn in FIFO order until fn returns true or
// the queue runs out. Actions after the accepted one stay queued.
// fn runs with the queue locked and must not call Push.
func (q *Queue) Drain(fn func(structs.Action) bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.actions) > 0 {
		a := q.actions[0]
		q.actions = q.actions[1:]
		if fn(a) {
			break
		}
	}
	if len(q.actions) == 0 {
		q.actions = nil
	}
}

// Len returns the number of queued actions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}

func (q *Queue) setAutopilot(on bool) { q.autopilot.Store(on) }
