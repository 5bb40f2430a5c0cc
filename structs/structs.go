package structs

import (
	"fmt"
	"time"
)

// Position 描述游戏地图上的一个坐标位置。
type Position struct {
	X int `json:"x"` // X坐标
	Y int `json:"y"` // Y坐标
}

// NoPosition marks an absent coordinate, e.g. food waiting to be placed.
var NoPosition = Position{X: -1, Y: -1}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// CellStatus 格子的状态
type CellStatus uint8

const (
	CellEmpty CellStatus = iota
	CellBody
	CellHead
	CellFood
)

func (s CellStatus) String() string {
	switch s {
	case CellEmpty:
		return "empty"
	case CellBody:
		return "body"
	case CellHead:
		return "head"
	case CellFood:
		return "food"
	}
	return "????"
}

// MarshalText lets cell statuses travel as names in JSON frames.
func (s CellStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses the names written by MarshalText.
func (s *CellStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "empty":
		*s = CellEmpty
	case "body":
		*s = CellBody
	case "head":
		*s = CellHead
	case "food":
		*s = CellFood
	default:
		return fmt.Errorf("invalid cell status '%s'", text)
	}
	return nil
}

// CellChange is a single cell that changed status during a tick.
type CellChange struct {
	Pos    Position   `json:"pos"`
	Status CellStatus `json:"status"`
}

// ActionKind 玩家动作类型
type ActionKind uint8

const (
	ActionTurn ActionKind = iota
	ActionPause
	ActionStop
	ActionToggleAutopilot
)

// Action is a logical input, already decoupled from raw key codes.
type Action struct {
	Kind     ActionKind
	Dir      Direction // only meaningful for ActionTurn
	Internal bool      // queued by the engine itself, not by a player
}

// Turn returns a turn request towards d.
func Turn(d Direction) Action { return Action{Kind: ActionTurn, Dir: d} }

var (
	Pause           = Action{Kind: ActionPause}
	Stop            = Action{Kind: ActionStop}
	ToggleAutopilot = Action{Kind: ActionToggleAutopilot}
)

func (a Action) String() string {
	switch a.Kind {
	case ActionTurn:
		return "turn(" + a.Dir.String() + ")"
	case ActionPause:
		return "pause"
	case ActionStop:
		return "stop"
	case ActionToggleAutopilot:
		return "autopilot"
	}
	return "????"
}

// Report is the status summary handed to renderers once per tick.
type Report struct {
	Length    int  `json:"length"`    // 目标长度
	Ticks     int  `json:"ticks"`     // 已移动的次数
	Autopilot bool `json:"autopilot"` // 自动驾驶
	Running   bool `json:"running"`
}

func (r Report) String() string {
	msg := fmt.Sprintf("Length: %d ; Ticks: %d", r.Length, r.Ticks)
	if r.Autopilot {
		msg += ", autopilot"
	}
	return msg
}

// Frame is what one tick produces for the render sinks.
type Frame struct {
	Report   Report       `json:"report"`
	Changes  []CellChange `json:"changes"`
	GameOver bool         `json:"game_over"`
}

// Result 描述一局结束的游戏，写入数据库。
type Result struct {
	SessionID string    `json:"session_id"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Length    int       `json:"length"`
	Ticks     int       `json:"ticks"`
	Autopilot bool      `json:"autopilot"`
	Reason    string    `json:"reason"` // collision / grid full / stopped
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}
