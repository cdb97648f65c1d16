// Package spectate streams a running battle to websocket clients and accepts
// placement commands from them.
package spectate

import (
	"image/color"

	"github.com/Garsondee/Arena-Skirmish/internal/game"
	"github.com/lucasb-eyer/go-colorful"
)

// Message types sent to clients. Every message is one msgpack-encoded
// Message in a binary websocket frame.
const (
	TypeFrame      = "frame"
	TypeText       = "text"
	TypeProjectile = "projectile"
	TypeDeath      = "death"
	TypeObjective  = "objective"
	TypeWinner     = "winner"
	TypeAck        = "ack"
	TypeError      = "error"
	TypeReport     = "report"
)

type Point struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
}

func point(v game.Vec2) Point { return Point{X: v.X, Y: v.Y} }

type UnitState struct {
	ID    string  `msgpack:"id"`
	Label string  `msgpack:"label"`
	Team  string  `msgpack:"team"`
	Type  string  `msgpack:"type"`
	HP    float64 `msgpack:"hp"`
	MaxHP float64 `msgpack:"max_hp"`
	Pos   Point   `msgpack:"pos"`
}

type ObjectiveState struct {
	ID      string  `msgpack:"id"`
	Team    string  `msgpack:"team"`
	HP      float64 `msgpack:"hp"`
	MaxHP   float64 `msgpack:"max_hp"`
	Percent float64 `msgpack:"percent"`
	Pos     Point   `msgpack:"pos"`
}

type FrameState struct {
	Tick       int              `msgpack:"tick"`
	NowMs      int64            `msgpack:"now_ms"`
	State      string           `msgpack:"state"`
	Winner     string           `msgpack:"winner,omitempty"`
	Units      []UnitState      `msgpack:"units"`
	Objectives []ObjectiveState `msgpack:"objectives"`
}

// Effect carries one transient visual. Which fields are set depends on the
// message type.
type Effect struct {
	Target    string  `msgpack:"target,omitempty"` // unit label or objective id
	Text      string  `msgpack:"text,omitempty"`
	Color     string  `msgpack:"color,omitempty"` // #rrggbb
	From      *Point  `msgpack:"from,omitempty"`
	To        *Point  `msgpack:"to,omitempty"`
	FlightMs  int64   `msgpack:"flight_ms,omitempty"`
	Objective string  `msgpack:"objective,omitempty"`
	Percent   float64 `msgpack:"percent,omitempty"`
}

// Message is the envelope for everything sent to a client.
type Message struct {
	Type   string      `msgpack:"type"`
	Frame  *FrameState `msgpack:"frame,omitempty"`
	Effect *Effect     `msgpack:"effect,omitempty"`
	Winner string      `msgpack:"winner,omitempty"`
	Unit   *UnitState  `msgpack:"unit,omitempty"` // ack for place
	Error  string      `msgpack:"error,omitempty"`
	Report string      `msgpack:"report,omitempty"`
}

func unitState(u game.UnitFrame) UnitState {
	return UnitState{
		ID:    u.ID.String(),
		Label: u.Label,
		Team:  u.Team.String(),
		Type:  u.TypeID,
		HP:    u.HP,
		MaxHP: u.MaxHP,
		Pos:   point(u.Pos),
	}
}

func frameState(f game.Frame) *FrameState {
	fs := &FrameState{
		Tick:       f.Tick,
		NowMs:      f.Now.Milliseconds(),
		State:      f.State.String(),
		Units:      make([]UnitState, 0, len(f.Units)),
		Objectives: make([]ObjectiveState, 0, len(f.Objectives)),
	}
	if f.Winner.Valid() {
		fs.Winner = f.Winner.String()
	}
	for _, u := range f.Units {
		fs.Units = append(fs.Units, unitState(u))
	}
	for _, o := range f.Objectives {
		fs.Objectives = append(fs.Objectives, ObjectiveState{
			ID:      string(o.ID),
			Team:    o.Team.String(),
			HP:      o.HP,
			MaxHP:   o.MaxHP,
			Percent: o.Percent,
			Pos:     point(o.Pos),
		})
	}
	return fs
}

func refName(r game.Ref) string {
	if r.Kind == game.RefObjective {
		return string(r.Objective)
	}
	return r.Label
}

func hex(c color.RGBA) string {
	cc, _ := colorful.MakeColor(c)
	return cc.Hex()
}
