package game

// ObjectiveID names one of the two home bases.
type ObjectiveID string

const (
	ObjectiveA ObjectiveID = "A" // Blue home
	ObjectiveB ObjectiveID = "B" // Red home
)

// Objective is a team's stationary home base. It is never removed; its hp
// reaching zero ends the match.
type Objective struct {
	ID    ObjectiveID
	Team  Team // owner (defender)
	HP    float64
	MaxHP float64
	Pos   Vec2
}

// Position implements Positioned.
func (o *Objective) Position() Vec2 { return o.Pos }

// Destroyed reports whether the objective's hp has reached zero.
func (o *Objective) Destroyed() bool { return o.HP <= 0 }

// Percent is the health bar width in [0,100]. hp may go negative, the bar
// never does.
func (o *Objective) Percent() float64 {
	if o.MaxHP <= 0 {
		return 0
	}
	return clamp(o.HP/o.MaxHP*100, 0, 100)
}

func (o *Objective) ref() Ref {
	return Ref{Kind: RefObjective, Objective: o.ID, Label: string(o.ID), Pos: o.Pos}
}
