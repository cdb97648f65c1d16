package game

import (
	"fmt"
	"image/color"
	"time"

	"github.com/google/uuid"
)

// unitRadius is the half-size of a unit's 40x40 px footprint.
const unitRadius = 20.0

// Team is one of the two sides. The zero value is not a valid team.
type Team int

const (
	TeamNone Team = iota
	TeamBlue      // team "1", home objective A
	TeamRed       // team "2", home objective B
)

func (t Team) String() string {
	switch t {
	case TeamBlue:
		return "blue"
	case TeamRed:
		return "red"
	default:
		return "none"
	}
}

// Name is the display name used in the winner banner.
func (t Team) Name() string {
	switch t {
	case TeamBlue:
		return "Blue"
	case TeamRed:
		return "Red"
	default:
		return "Nobody"
	}
}

// Banner is the end-of-match text announcing t as the winner.
func (t Team) Banner() string {
	switch t {
	case TeamBlue:
		return "BLUE TEAM WINS!"
	case TeamRed:
		return "RED TEAM WINS!"
	default:
		return "DRAW"
	}
}

// Valid reports whether t is one of the two playing teams.
func (t Team) Valid() bool { return t == TeamBlue || t == TeamRed }

// Opponent returns the other team.
func (t Team) Opponent() Team {
	switch t {
	case TeamBlue:
		return TeamRed
	case TeamRed:
		return TeamBlue
	default:
		return TeamNone
	}
}

// Home returns the objective defended by t.
func (t Team) Home() ObjectiveID {
	if t == TeamRed {
		return ObjectiveB
	}
	return ObjectiveA
}

// Color is the team's projectile and UI colour.
func (t Team) Color() color.RGBA {
	if t == TeamRed {
		return color.RGBA{R: 255, G: 69, B: 0, A: 255} // orangered
	}
	return color.RGBA{R: 0, G: 255, B: 255, A: 255} // cyan
}

func teamLetter(t Team) string {
	if t == TeamRed {
		return "R"
	}
	return "B"
}

// Unit is one placed combatant.
type Unit struct {
	ID    uuid.UUID
	Label string // short log label, e.g. "B1", "R3"
	Team  Team
	Type  *UnitType
	HP    float64
	Pos   Vec2

	lastAttack time.Duration
	attacked   bool // false until the first attack; lastAttack is meaningless before that
	removed    bool
}

func newUnit(t *UnitType, team Team, pos Vec2, seq int) *Unit {
	return &Unit{
		ID:    uuid.New(),
		Label: fmt.Sprintf("%s%d", teamLetter(team), seq),
		Team:  team,
		Type:  t,
		HP:    t.Stats.HP,
		Pos:   pos,
	}
}

// Position implements Positioned.
func (u *Unit) Position() Vec2 { return u.Pos }

// MaxHP is the unit type's starting health.
func (u *Unit) MaxHP() float64 { return u.Type.Stats.HP }

// Alive reports whether the unit is still part of the live set.
func (u *Unit) Alive() bool { return !u.removed }

// LastAttack returns the timestamp of the unit's most recent attack, and
// false if it has never attacked.
func (u *Unit) LastAttack() (time.Duration, bool) { return u.lastAttack, u.attacked }

// canAttack applies the cooldown gate: strictly more than AttackCooldown must
// have elapsed since the last attack.
func (u *Unit) canAttack(now time.Duration) bool {
	if !u.attacked {
		return true
	}
	return now-u.lastAttack > u.Type.Stats.AttackCooldown
}

func (u *Unit) markAttack(now time.Duration) {
	u.lastAttack = now
	u.attacked = true
}

func (u *Unit) ref() Ref {
	return Ref{Kind: RefUnit, Unit: u.ID, Label: u.Label, Pos: u.Pos}
}
