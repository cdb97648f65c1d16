package game

import (
	"image/color"
	"time"

	"github.com/google/uuid"
)

// Default presentation timings.
const (
	DefaultTravelDuration = 200 * time.Millisecond  // projectile flight before damage applies
	FloatingTextLifetime  = 800 * time.Millisecond  // "-20" / "MISS" popups
	DeathEffectLifetime   = 1000 * time.Millisecond // skull marker
)

var (
	DamageTextColor = color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}
	MissTextColor   = color.RGBA{R: 0x95, G: 0xa5, B: 0xa6, A: 0xff}
)

// RefKind tells which kind of entity a Ref points at.
type RefKind int

const (
	RefUnit RefKind = iota + 1
	RefObjective
)

// Ref is a presentation handle for an entity. It carries the entity's position
// at the moment the effect was requested; presenters must not reach back into
// simulation state through it.
type Ref struct {
	Kind      RefKind
	Unit      uuid.UUID
	Objective ObjectiveID
	Label     string
	Pos       Vec2
}

// UnitFrame is the per-tick public state of one live unit.
type UnitFrame struct {
	ID     uuid.UUID
	Label  string
	Team   Team
	TypeID string
	HP     float64
	MaxHP  float64
	Pos    Vec2
}

// ObjectiveFrame is the per-tick public state of one objective.
type ObjectiveFrame struct {
	ID      ObjectiveID
	Team    Team
	HP      float64
	MaxHP   float64
	Percent float64
	Pos     Vec2
}

// Frame is a value snapshot of the world published after every tick.
type Frame struct {
	Tick       int
	Now        time.Duration
	State      MatchState
	Winner     Team
	Units      []UnitFrame
	Objectives [2]ObjectiveFrame
}

// Presenter is the output-only sink the simulation paints through. Calls are
// made on the simulation goroutine; implementations that render elsewhere must
// hand the values off rather than block.
type Presenter interface {
	Frame(f Frame)
	FloatingText(target Ref, text string, c color.RGBA)
	Projectile(from, to Ref, c color.RGBA, flight time.Duration)
	DeathEffect(pos Vec2)
	ObjectiveHealth(id ObjectiveID, percent float64)
	Winner(team Team)
}

// NopPresenter discards everything.
type NopPresenter struct{}

func (NopPresenter) Frame(Frame)                                    {}
func (NopPresenter) FloatingText(Ref, string, color.RGBA)           {}
func (NopPresenter) Projectile(Ref, Ref, color.RGBA, time.Duration) {}
func (NopPresenter) DeathEffect(Vec2)                               {}
func (NopPresenter) ObjectiveHealth(ObjectiveID, float64)           {}
func (NopPresenter) Winner(Team)                                    {}

// MultiPresenter fans every call out to each presenter in order.
type MultiPresenter []Presenter

func (m MultiPresenter) Frame(f Frame) {
	for _, p := range m {
		p.Frame(f)
	}
}

func (m MultiPresenter) FloatingText(target Ref, text string, c color.RGBA) {
	for _, p := range m {
		p.FloatingText(target, text, c)
	}
}

func (m MultiPresenter) Projectile(from, to Ref, c color.RGBA, flight time.Duration) {
	for _, p := range m {
		p.Projectile(from, to, c, flight)
	}
}

func (m MultiPresenter) DeathEffect(pos Vec2) {
	for _, p := range m {
		p.DeathEffect(pos)
	}
}

func (m MultiPresenter) ObjectiveHealth(id ObjectiveID, percent float64) {
	for _, p := range m {
		p.ObjectiveHealth(id, percent)
	}
}

func (m MultiPresenter) Winner(team Team) {
	for _, p := range m {
		p.Winner(team)
	}
}
