package game

import (
	"fmt"
	"strings"
	"time"
)

type BattleOutcome int

const (
	OutcomeUndecided BattleOutcome = iota
	OutcomeBlueVictory
	OutcomeRedVictory
)

func (o BattleOutcome) String() string {
	switch o {
	case OutcomeBlueVictory:
		return "blue_victory"
	case OutcomeRedVictory:
		return "red_victory"
	case OutcomeUndecided:
		return "undecided"
	default:
		return "unknown"
	}
}

func outcomeFor(winner Team) BattleOutcome {
	switch winner {
	case TeamBlue:
		return OutcomeBlueVictory
	case TeamRed:
		return OutcomeRedVictory
	default:
		return OutcomeUndecided
	}
}

// TeamTally accumulates one team's combat record over a match.
type TeamTally struct {
	Placed          int
	Attacks         int // cooldown-consuming attacks issued
	Hits            int // flights that landed as hits
	Misses          int // flights that landed as misses
	Dropped         int // flights whose target was gone on arrival
	UnitDamage      float64
	ObjectiveDamage float64
	Kills           int
}

// HitRate is hits over resolved flights (hits+misses), 0 if none resolved.
func (t TeamTally) HitRate() float64 {
	n := t.Hits + t.Misses
	if n == 0 {
		return 0
	}
	return float64(t.Hits) / float64(n)
}

// Report summarises a match for the headless runner and the clipboard export.
type Report struct {
	Outcome     BattleOutcome
	Winner      Team
	Ticks       int
	Elapsed     time.Duration
	Survivors   map[Team]int
	Tally       map[Team]TeamTally
	ObjectiveHP map[ObjectiveID]float64
	Description string
}

// Report builds a summary of the battle as it stands.
func (b *Battle) Report() Report {
	r := Report{
		Outcome:     outcomeFor(b.match.Winner()),
		Winner:      b.match.Winner(),
		Ticks:       b.tick,
		Elapsed:     b.match.Elapsed(b.now),
		Survivors:   map[Team]int{TeamBlue: 0, TeamRed: 0},
		Tally:       map[Team]TeamTally{TeamBlue: b.tallies[TeamBlue], TeamRed: b.tallies[TeamRed]},
		ObjectiveHP: make(map[ObjectiveID]float64, 2),
	}
	for _, u := range b.units {
		r.Survivors[u.Team]++
	}
	for _, o := range b.objectives {
		r.ObjectiveHP[o.ID] = o.HP
	}
	switch {
	case r.Winner.Valid():
		lost := r.Winner.Opponent().Home()
		r.Description = fmt.Sprintf("%s_objective_%s_destroyed", r.Outcome, strings.ToLower(string(lost)))
	case b.match.Running():
		r.Description = "in_progress"
	default:
		r.Description = "not_started"
	}
	return r
}

// String renders the report as a short multi-line text block.
func (r Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Outcome: %s (%s)\n", r.Outcome, r.Description)
	fmt.Fprintf(&sb, "Ticks: %d  Elapsed: %s\n", r.Ticks, r.Elapsed.Round(time.Millisecond))
	for _, id := range []ObjectiveID{ObjectiveA, ObjectiveB} {
		fmt.Fprintf(&sb, "Objective %s: %.0f hp\n", id, r.ObjectiveHP[id])
	}
	for _, team := range []Team{TeamBlue, TeamRed} {
		t := r.Tally[team]
		fmt.Fprintf(&sb, "%-4s placed=%d alive=%d attacks=%d hits=%d misses=%d dropped=%d hit%%=%.0f dmg=%.0f obj=%.0f kills=%d\n",
			team.Name(), t.Placed, r.Survivors[team], t.Attacks, t.Hits, t.Misses, t.Dropped,
			t.HitRate()*100, t.UnitDamage, t.ObjectiveDamage, t.Kills)
	}
	return sb.String()
}
