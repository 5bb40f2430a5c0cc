// Package input turns key presses and action names into game actions. It
// only ever pushes onto the queue.
package input

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/golang/glog"
	"github.com/hoshinonyaruko/snake-autopilot/structs"
)

// Pusher accepts actions; snake.Queue and session.Runner both qualify.
type Pusher interface {
	Push(structs.Action) bool
}

var keyTurns = map[tcell.Key]structs.Direction{
	tcell.KeyLeft:  structs.Left,
	tcell.KeyRight: structs.Right,
	tcell.KeyUp:    structs.Up,
	tcell.KeyDown:  structs.Down,
}

// Letters work with Shift or Caps Lock as well.
var runeActions = map[rune]structs.Action{
	' ': structs.Pause,
	'y': structs.ToggleAutopilot,
	'Y': structs.ToggleAutopilot,
	'a': structs.Turn(structs.Left),
	'A': structs.Turn(structs.Left),
	'd': structs.Turn(structs.Right),
	'D': structs.Turn(structs.Right),
	'w': structs.Turn(structs.Up),
	'W': structs.Turn(structs.Up),
	's': structs.Turn(structs.Down),
	'S': structs.Turn(structs.Down),
}

// TranslateKey maps a key press to an action. Unknown keys report false.
func TranslateKey(ev *tcell.EventKey) (structs.Action, bool) {
	switch ev.Key() {
	case tcell.KeyEscape:
		return structs.Stop, true
	case tcell.KeyRune:
		a, ok := runeActions[ev.Rune()]
		return a, ok
	}
	if d, ok := keyTurns[ev.Key()]; ok {
		return structs.Turn(d), true
	}
	return structs.Action{}, false
}

// ParseAction maps an action name from the HTTP or websocket side.
func ParseAction(name string) (structs.Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "pause":
		return structs.Pause, nil
	case "stop":
		return structs.Stop, nil
	case "auto", "autopilot":
		return structs.ToggleAutopilot, nil
	}
	d, err := structs.ParseDirection(name)
	if err != nil || d == structs.None {
		return structs.Action{}, fmt.Errorf("unknown action %q", name)
	}
	return structs.Turn(d), nil
}

// Pump reads key events from the screen and pushes their actions to the
// current target until ctx is done or the screen is finalised. Ctrl-C is
// treated like Esc.
func Pump(ctx context.Context, screen tcell.Screen, p func() Pusher) {
	events := make(chan tcell.Event)
	quit := make(chan struct{})
	defer close(quit)
	go screen.ChannelEvents(events, quit)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				a, ok := TranslateKey(ev)
				if ev.Key() == tcell.KeyCtrlC {
					a, ok = structs.Stop, true
				}
				if !ok {
					continue
				}
				target := p()
				if target == nil {
					continue
				}
				if !target.Push(a) {
					glog.V(1).Infof("key %v discarded: %v", ev.Name(), a)
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		}
	}
}
