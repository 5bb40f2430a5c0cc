package snake

import (
	"github.com/golang/glog"
	"github.com/hoshinonyaruko/snake-autopilot/structs"
)

// The autopilot is greedy and purely local. It never plans a path and can
// trap itself; losing is a normal outcome.

// avoidObstacle is consulted before a move. When the cell ahead is body it
// turns towards a free side, preferring left, and returns the new target.
func (e *Engine) avoidObstacle(next structs.Position) structs.Position {
	if e.grid.Get(next) != structs.CellBody {
		return next
	}
	ldir, rdir := e.heading.TurnLeft(), e.heading.TurnRight()
	lxy, rxy := e.grid.Translate(e.head, ldir), e.grid.Translate(e.head, rdir)
	leftBlocked := e.grid.Get(lxy) == structs.CellBody
	rightBlocked := e.grid.Get(rxy) == structs.CellBody

	var turn structs.Direction
	switch {
	case leftBlocked && !rightBlocked:
		turn, next = rdir, rxy
	case !leftBlocked:
		turn, next = ldir, lxy
	default:
		// Boxed in; the move will collide.
		return next
	}
	glog.V(2).Infof("autopilot: body ahead of %v heading %v, turning %v", e.head, e.heading, turn)
	e.queue.pushInternal(structs.Turn(e.heading.Reverse()))
	e.heading = turn
	e.stats.AutopilotOverrides++
	return next
}

// steerToFood runs after a committed move. Once the head shares a row or a
// column with the food it heads there along the shorter way around.
func (e *Engine) steerToFood() {
	if e.food == structs.NoPosition {
		return
	}
	var d structs.Direction
	switch {
	case e.head.X == e.food.X:
		d = structs.Sign(SignedDistance(e.head.Y, e.food.Y, e.settings.Height), true)
	case e.head.Y == e.food.Y:
		d = structs.Sign(SignedDistance(e.head.X, e.food.X, e.settings.Width), false)
	}
	if d != structs.None {
		e.heading = d
	}
}

// headingToFood picks a heading for an autopilot engaged while paused:
// the aligned axis if any, else the horizontal way towards the food. When
// that way is the neck it turns aside instead, so the snake always starts.
func (e *Engine) headingToFood() structs.Direction {
	if e.food == structs.NoPosition {
		return structs.None
	}
	var d structs.Direction
	if e.head.X == e.food.X {
		d = structs.Sign(SignedDistance(e.head.Y, e.food.Y, e.settings.Height), true)
	} else {
		d = structs.Sign(SignedDistance(e.head.X, e.food.X, e.settings.Width), false)
	}
	if e.hitsNeck(d) {
		d = d.TurnLeft()
	}
	return d
}
