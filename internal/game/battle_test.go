package game

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestPlaceUnit_AssignsLabelsAndStats(t *testing.T) {
	b := NewBattle(DefaultConfig(), nil)
	u1, err := b.PlaceUnit("warrior", TeamBlue, Vec2{X: 200, Y: 200})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	u2, _ := b.PlaceUnit("archer", TeamRed, Vec2{X: 800, Y: 200})
	u3, _ := b.PlaceUnit("mage", TeamBlue, Vec2{X: 200, Y: 400})

	if u1.Label != "B1" || u2.Label != "R1" || u3.Label != "B2" {
		t.Errorf("labels = %s %s %s, want B1 R1 B2", u1.Label, u2.Label, u3.Label)
	}
	if u1.HP != 200 || u2.HP != 80 || u3.HP != 70 {
		t.Errorf("starting hp = %.0f %.0f %.0f", u1.HP, u2.HP, u3.HP)
	}
	if u1.ID == u2.ID || u1.ID == uuid.Nil {
		t.Error("unit ids must be unique and non-nil")
	}
	if _, ok := u1.LastAttack(); ok {
		t.Error("fresh unit reports a previous attack")
	}
	units := b.Units()
	if len(units) != 3 || units[0] != u1 || units[1] != u2 || units[2] != u3 {
		t.Error("units not kept in placement order")
	}
}

func TestPlaceUnit_ClampsIntoArena(t *testing.T) {
	b := NewBattle(DefaultConfig(), nil)
	u, err := b.PlaceUnit("rogue", TeamRed, Vec2{X: -50, Y: 700})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if u.Pos != (Vec2{X: 20, Y: 580}) {
		t.Errorf("clamped pos = %+v, want (20,580)", u.Pos)
	}
}

func TestPlaceUnit_Rejections(t *testing.T) {
	b := NewBattle(DefaultConfig(), nil)

	if _, err := b.PlaceUnit("dragon", TeamBlue, Vec2{}); !errors.Is(err, ErrUnknownUnitType) {
		t.Errorf("unknown type err = %v", err)
	}
	if _, err := b.PlaceUnit("warrior", TeamNone, Vec2{}); !errors.Is(err, ErrInvalidTeam) {
		t.Errorf("invalid team err = %v", err)
	}
	if !b.Start(0) {
		t.Fatal("start failed")
	}
	if _, err := b.PlaceUnit("warrior", TeamBlue, Vec2{X: 100, Y: 100}); !errors.Is(err, ErrMatchStarted) {
		t.Errorf("place after start err = %v", err)
	}
	if len(b.Units()) != 0 {
		t.Error("rejected placements must not add units")
	}
}

func TestRemoveUnit(t *testing.T) {
	rec := NewRecorder()
	b := NewBattle(DefaultConfig(), nil, WithPresenter(rec))
	u, _ := b.PlaceUnit("warrior", TeamBlue, Vec2{X: 200, Y: 200})
	keep, _ := b.PlaceUnit("archer", TeamBlue, Vec2{X: 200, Y: 300})

	if err := b.RemoveUnit(u.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if u.Alive() {
		t.Error("removed unit still alive")
	}
	if _, ok := b.Unit(u.ID); ok {
		t.Error("removed unit still indexed")
	}
	if units := b.Units(); len(units) != 1 || units[0] != keep {
		t.Errorf("remaining units = %v", units)
	}
	if err := b.RemoveUnit(u.ID); !errors.Is(err, ErrUnitNotFound) {
		t.Errorf("second remove err = %v", err)
	}
	if len(rec.Deaths) != 0 {
		t.Error("removing a placed unit must not show a death effect")
	}
	if rec.LastFrame.State != MatchIdle || len(rec.LastFrame.Units) != 1 {
		t.Errorf("last frame after remove = %+v", rec.LastFrame)
	}

	b.Start(0)
	if err := b.RemoveUnit(keep.ID); !errors.Is(err, ErrMatchStarted) {
		t.Errorf("remove after start err = %v", err)
	}
}

func TestUnitAt(t *testing.T) {
	b := NewBattle(DefaultConfig(), nil)
	u, _ := b.PlaceUnit("warrior", TeamBlue, Vec2{X: 200, Y: 200})
	if got, ok := b.UnitAt(Vec2{X: 215, Y: 185}); !ok || got != u {
		t.Error("UnitAt missed a point inside the footprint")
	}
	if _, ok := b.UnitAt(Vec2{X: 230, Y: 200}); ok {
		t.Error("UnitAt hit a point outside the footprint")
	}
}

func TestStart_OnlyFromIdle(t *testing.T) {
	ts := NewTestSim(WithBlue("warrior", 100, 100))
	if !ts.Start() {
		t.Fatal("first start failed")
	}
	if ts.Start() {
		t.Error("second start succeeded")
	}
	if n := ts.SimLog.CountCategory("match", "start"); n != 1 {
		t.Errorf("start entries = %d, want 1", n)
	}
}

func TestFrame_Snapshot(t *testing.T) {
	ts := NewTestSim(
		WithObjectiveHP(500),
		WithBlue("warrior", 100, 100),
		WithRed("rogue", 900, 500),
	)
	f := ts.Battle.Frame()
	if f.State != MatchIdle || len(f.Units) != 2 {
		t.Fatalf("frame = %+v", f)
	}
	if f.Units[1].Label != "R1" || f.Units[1].TypeID != "rogue" || f.Units[1].MaxHP != 90 {
		t.Errorf("unit frame = %+v", f.Units[1])
	}
	if f.Objectives[0].ID != ObjectiveA || f.Objectives[1].ID != ObjectiveB {
		t.Errorf("objective order = %s,%s", f.Objectives[0].ID, f.Objectives[1].ID)
	}
	if f.Objectives[1].Percent != 100 || f.Objectives[1].MaxHP != 500 {
		t.Errorf("objective frame = %+v", f.Objectives[1])
	}
}

func TestObjectivePercentClamped(t *testing.T) {
	o := &Objective{HP: 1000, MaxHP: 1000}
	cases := []struct {
		hp, want float64
	}{
		{1000, 100},
		{500, 50},
		{0, 0},
		{-40, 0},
		{1200, 100},
	}
	for _, c := range cases {
		o.HP = c.hp
		if got := o.Percent(); got != c.want {
			t.Errorf("Percent(hp=%.0f) = %.1f, want %.1f", c.hp, got, c.want)
		}
	}
}
