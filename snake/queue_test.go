package snake

import (
	"sync"
	"testing"

	"github.com/hoshinonyaruko/snake-autopilot/structs"
)

func TestQueueDrainStopsAtAccepted(t *testing.T) {
	q := NewQueue()
	q.Push(structs.Turn(structs.Up))
	q.Push(structs.Turn(structs.Left))
	q.Push(structs.Pause)

	var seen []structs.Action
	q.Drain(func(a structs.Action) bool {
		seen = append(seen, a)
		return a.Dir == structs.Left
	})
	if len(seen) != 2 {
		t.Fatalf("drained %v, want the first two actions", seen)
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 remaining", q.Len())
	}
}

func TestQueueFiltersTurnsUnderAutopilot(t *testing.T) {
	q := NewQueue()
	q.setAutopilot(true)
	if q.Push(structs.Turn(structs.Up)) {
		t.Error("turn must be discarded while autopilot is on")
	}
	for _, a := range []structs.Action{structs.Stop, structs.ToggleAutopilot, structs.Pause} {
		if !q.Push(a) {
			t.Errorf("%v must always be accepted", a)
		}
	}
	q.pushInternal(structs.Turn(structs.Down))
	if q.Len() != 4 {
		t.Errorf("Len() = %d, want 4", q.Len())
	}
}

func TestQueueMarksEngineActions(t *testing.T) {
	q := NewQueue()
	q.Push(structs.Action{Kind: structs.ActionTurn, Dir: structs.Up, Internal: true})
	q.pushInternal(structs.Turn(structs.Down))
	var got []structs.Action
	q.Drain(func(a structs.Action) bool {
		got = append(got, a)
		return false
	})
	if len(got) != 2 || got[0].Internal || !got[1].Internal {
		t.Fatalf("drained %+v, want only the engine turn marked", got)
	}
}

func TestQueueConcurrentPush(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(structs.Pause)
			}
		}()
	}
	drained := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for {
		q.Drain(func(structs.Action) bool {
			drained++
			return false
		})
		select {
		case <-done:
			q.Drain(func(structs.Action) bool {
				drained++
				return false
			})
			if drained != 800 {
				t.Fatalf("drained %d actions, want 800", drained)
			}
			return
		default:
		}
	}
}
