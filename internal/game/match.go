package game

import "time"

// MatchState is the match lifecycle: idle → running → ended.
type MatchState int

const (
	MatchIdle MatchState = iota // placement phase
	MatchRunning
	MatchEnded
)

func (s MatchState) String() string {
	switch s {
	case MatchIdle:
		return "idle"
	case MatchRunning:
		return "running"
	case MatchEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Match owns the run/ended flags and the winner. All transitions are guarded
// and idempotent.
type Match struct {
	state     MatchState
	winner    Team
	startedAt time.Duration
	endedAt   time.Duration

	// onEnd is invoked exactly once, on the transition into MatchEnded.
	onEnd func(winner Team)
}

// State returns the current lifecycle state.
func (m *Match) State() MatchState { return m.state }

// Running reports whether the simulation is ticking.
func (m *Match) Running() bool { return m.state == MatchRunning }

// Ended reports whether the match has finished. Once true nothing mutates.
func (m *Match) Ended() bool { return m.state == MatchEnded }

// Winner returns the winning team, or TeamNone before the match has ended.
func (m *Match) Winner() Team { return m.winner }

// Start moves an idle match to running. It returns false, and does nothing,
// when the match is already running or ended.
func (m *Match) Start(now time.Duration) bool {
	if m.state != MatchIdle {
		return false
	}
	m.state = MatchRunning
	m.startedAt = now
	return true
}

// End records winner and freezes the match. Only the first call on a running
// match has any effect.
func (m *Match) End(winner Team, now time.Duration) bool {
	if m.state != MatchRunning {
		return false
	}
	m.state = MatchEnded
	m.winner = winner
	m.endedAt = now
	if m.onEnd != nil {
		m.onEnd(winner)
	}
	return true
}

// Elapsed is the simulated time between start and end (or now, if running).
func (m *Match) Elapsed(now time.Duration) time.Duration {
	switch m.state {
	case MatchRunning:
		return now - m.startedAt
	case MatchEnded:
		return m.endedAt - m.startedAt
	default:
		return 0
	}
}
