package snake

import "errors"

// Stop reasons. Both ErrCollision and ErrGridFull end the run; renderers
// only ever learn that the game stopped.
var (
	ErrCollision = errors.New("snake: head entered the body")
	ErrGridFull  = errors.New("snake: no empty cell for food")
	ErrStopped   = errors.New("snake: stopped by player")
)

// ErrReversal is the outcome of a turn back onto the neck. It is counted in
// Stats and never ends the run.
var ErrReversal = errors.New("snake: turn into neck rejected")

// Reason returns the short name stored with finished games.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCollision):
		return "collision"
	case errors.Is(err, ErrGridFull):
		return "grid full"
	case errors.Is(err, ErrStopped):
		return "stopped"
	}
	return err.Error()
}
