package game

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunner_PlaceStartAndFinish(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickRate = 500
	cfg.Objectives.HP = 25
	cfg.Seed = 3
	rec := NewRecorder()
	b := NewBattle(cfg, nil, WithPresenter(rec), WithHitRoll(func() float64 { return 0 }))
	r := NewRunner(b)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	uf, err := r.Place(ctx, "rogue", TeamBlue, Vec2{X: 900, Y: 300})
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if uf.Label != "B1" || uf.TypeID != "rogue" {
		t.Errorf("placed = %+v", uf)
	}
	f, err := r.Snapshot(ctx)
	if err != nil || len(f.Units) != 1 || f.State != MatchIdle {
		t.Fatalf("snapshot = %+v, %v", f, err)
	}

	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Start(ctx); !errors.Is(err, ErrMatchStarted) {
		t.Errorf("second Start err = %v, want ErrMatchStarted", err)
	}

	select {
	case <-r.Ended():
	case <-ctx.Done():
		t.Fatal("match did not finish")
	}

	rep, err := r.Report(ctx)
	if err != nil {
		t.Fatalf("Report after end: %v", err)
	}
	if rep.Outcome != OutcomeBlueVictory || rep.Winner != TeamBlue {
		t.Errorf("report outcome = %s, winner = %s", rep.Outcome, rep.Winner)
	}
	if rep.Tally[TeamBlue].Hits == 0 || rep.ObjectiveHP[ObjectiveB] > 0 {
		t.Errorf("report tally = %+v, objective B = %.0f", rep.Tally[TeamBlue], rep.ObjectiveHP[ObjectiveB])
	}
	if len(rec.Winners) != 1 {
		t.Errorf("winner announcements = %d, want 1", len(rec.Winners))
	}
	if _, err := r.Place(ctx, "rogue", TeamRed, Vec2{X: 800, Y: 300}); !errors.Is(err, ErrMatchStarted) {
		t.Errorf("Place after end err = %v, want ErrMatchStarted", err)
	}

	// The finished battle is frozen: no further ticks.
	f, err = r.Snapshot(ctx)
	if err != nil || f.State != MatchEnded {
		t.Fatalf("snapshot after end = %s, %v", f.State, err)
	}
	tick := f.Tick
	time.Sleep(20 * time.Millisecond)
	if f, _ = r.Snapshot(ctx); f.Tick != tick {
		t.Errorf("ticks advanced after end: %d -> %d", tick, f.Tick)
	}

	cancel()
	<-r.Done()
	if _, err := r.Report(context.Background()); !errors.Is(err, ErrRunnerStopped) {
		t.Errorf("Report after cancel err = %v, want ErrRunnerStopped", err)
	}
}

func TestRunner_CancelStops(t *testing.T) {
	b := NewBattle(DefaultConfig(), nil)
	r := NewRunner(b)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- r.Run(ctx) }()
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	<-r.Done()
}
