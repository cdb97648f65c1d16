package game

import (
	"testing"
	"time"
)

func TestMatch_Lifecycle(t *testing.T) {
	var ended []Team
	m := &Match{onEnd: func(w Team) { ended = append(ended, w) }}

	if m.State() != MatchIdle || m.Winner() != TeamNone {
		t.Fatalf("new match = %s/%s", m.State(), m.Winner())
	}
	if m.End(TeamBlue, 0) {
		t.Error("End succeeded on an idle match")
	}
	if !m.Start(time.Second) {
		t.Fatal("Start failed")
	}
	if m.Start(2 * time.Second) {
		t.Error("second Start succeeded")
	}
	if got := m.Elapsed(3 * time.Second); got != 2*time.Second {
		t.Errorf("running elapsed = %s, want 2s", got)
	}

	if !m.End(TeamRed, 5*time.Second) {
		t.Fatal("End failed")
	}
	if m.End(TeamBlue, 6*time.Second) {
		t.Error("second End succeeded")
	}
	if !m.Ended() || m.Running() || m.Winner() != TeamRed {
		t.Errorf("after end: state=%s winner=%s", m.State(), m.Winner())
	}
	if len(ended) != 1 || ended[0] != TeamRed {
		t.Errorf("onEnd calls = %v, want [red]", ended)
	}
	if got := m.Elapsed(time.Hour); got != 4*time.Second {
		t.Errorf("ended elapsed = %s, want 4s", got)
	}
	if m.Start(7 * time.Second) {
		t.Error("Start succeeded on an ended match")
	}
}

func TestTeam(t *testing.T) {
	if TeamBlue.Home() != ObjectiveA || TeamRed.Home() != ObjectiveB {
		t.Error("home objectives swapped")
	}
	if TeamBlue.Opponent() != TeamRed || TeamRed.Opponent() != TeamBlue || TeamNone.Opponent() != TeamNone {
		t.Error("opponent mapping wrong")
	}
	if TeamBlue.Name() != "Blue" || TeamRed.Name() != "Red" {
		t.Error("display names wrong")
	}
	if TeamBlue.Banner() != "BLUE TEAM WINS!" || TeamRed.Banner() != "RED TEAM WINS!" {
		t.Errorf("banners = %q / %q", TeamBlue.Banner(), TeamRed.Banner())
	}
	if TeamNone.Valid() {
		t.Error("TeamNone reported valid")
	}
}
