package game

import (
	"fmt"
	"time"
)

// TestSim is a headless battle harness used by tests and the batch reporter.
// It drives Battle with a synthetic clock so runs are deterministic for a
// given seed.
type TestSim struct {
	Config  Config
	Catalog *Catalog
	Battle  *Battle
	SimLog  *SimLog
	Effects *Recorder

	Now   time.Duration // simulated clock
	Frame time.Duration // clock advance per tick

	roll     func() float64
	verbose  bool
	scenario *Scenario
	errs     []error
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // config, seed, verbose, rolls: applied before the battle exists
	simOptUnit                       // placements: applied to the idle battle
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithArena sets the playfield dimensions and re-centres the objectives on
// the left and right edges.
func WithArena(w, h float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Config.Arena = ArenaConfig{Width: w, Height: h}
		ts.Config.Objectives.A = Vec2{X: 60, Y: h / 2}
		ts.Config.Objectives.B = Vec2{X: w - 60, Y: h / 2}
	}}
}

// WithObjectives moves the two objectives.
func WithObjectives(a, b Vec2) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Config.Objectives.A = a
		ts.Config.Objectives.B = b
	}}
}

// WithObjectiveHP sets both objectives' starting health.
func WithObjectiveHP(hp float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Config.Objectives.HP = hp
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Config.Seed = seed
	}}
}

// WithConfig edits the battle config in place.
func WithConfig(fn func(*Config)) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { fn(&ts.Config) }}
}

// WithCatalog replaces the stock unit catalogue.
func WithCatalog(c *Catalog) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.Catalog = c }}
}

// WithVerbose enables per-tick movement logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.verbose = v }}
}

// WithFrameInterval sets the synthetic clock step.
func WithFrameInterval(d time.Duration) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.Frame = d }}
}

// WithForcedRoll makes every hit roll return v: 0 always hits, 1 misses any
// type with hit chance below 1.
func WithForcedRoll(v float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.roll = func() float64 { return v }
	}}
}

// WithRolls replays the given hit rolls in order, then repeats the last one.
func WithRolls(vals ...float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		i := 0
		ts.roll = func() float64 {
			v := vals[i]
			if i < len(vals)-1 {
				i++
			}
			return v
		}
	}}
}

// WithUnit places a unit before the match starts.
func WithUnit(typeID string, team Team, x, y float64) SimOption {
	return SimOption{simOptUnit, func(ts *TestSim) {
		if _, err := ts.Battle.PlaceUnit(typeID, team, Vec2{X: x, Y: y}); err != nil {
			ts.errs = append(ts.errs, err)
		}
	}}
}

// WithBlue places a Blue unit.
func WithBlue(typeID string, x, y float64) SimOption { return WithUnit(typeID, TeamBlue, x, y) }

// WithRed places a Red unit.
func WithRed(typeID string, x, y float64) SimOption { return WithUnit(typeID, TeamRed, x, y) }

// WithScenario places a whole roster ahead of any WithUnit placements. A
// non-zero scenario seed wins over the config seed.
func WithScenario(s *Scenario) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.scenario = s
		if s.Seed != 0 {
			ts.Config.Seed = s.Seed
		}
	}}
}

// NewTestSim constructs a TestSim from the given options in two ordered passes:
//  1. Infrastructure (config, seed, verbose, rolls, scenario), then the battle is built
//  2. Scenario roster, then unit placements
func NewTestSim(opts ...SimOption) *TestSim {
	cfg := DefaultConfig()
	cfg.Seed = 1
	ts := &TestSim{
		Config:  cfg,
		Catalog: DefaultCatalog(),
		Effects: NewRecorder(),
		Frame:   cfg.FrameInterval(),
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}

	ts.SimLog = NewSimLog(ts.verbose)
	bopts := []BattleOption{WithPresenter(ts.Effects), WithSimLog(ts.SimLog)}
	if ts.roll != nil {
		bopts = append(bopts, WithHitRoll(ts.roll))
	}
	ts.Battle = NewBattle(ts.Config, ts.Catalog, bopts...)

	if ts.scenario != nil {
		if err := ts.scenario.Apply(ts.Battle); err != nil {
			ts.errs = append(ts.errs, err)
		}
	}
	for _, o := range opts {
		if o.kind == simOptUnit {
			o.fn(ts)
		}
	}
	return ts
}

// Errors returns placement errors collected while building the sim.
func (ts *TestSim) Errors() []error { return ts.errs }

// Start begins the match at the current synthetic time.
func (ts *TestSim) Start() bool {
	return ts.Battle.Start(ts.Now)
}

// Step advances the clock by one frame and ticks once.
func (ts *TestSim) Step() {
	ts.Advance(ts.Frame)
}

// Advance moves the clock forward by d and ticks once.
func (ts *TestSim) Advance(d time.Duration) {
	ts.Now += d
	ts.Battle.Tick(ts.Now)
}

// RunTicks advances the simulation n ticks.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.Step()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.Step()
		if predicate(ts) {
			return ts.Battle.TickCount()
		}
	}
	return -1
}

// RunToEnd runs until the match ends or maxTicks pass.
func (ts *TestSim) RunToEnd(maxTicks int) int {
	return ts.RunUntil(func(ts *TestSim) bool { return ts.Battle.Match().Ended() }, maxTicks)
}

// Unit returns the live unit with the given label, or nil.
func (ts *TestSim) Unit(label string) *Unit {
	u, _ := ts.Battle.UnitByLabel(label)
	return u
}

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int {
	return ts.Battle.TickCount()
}

// SimSnapshot captures a lightweight state summary.
type SimSnapshot struct {
	Tick  int
	Units []UnitSnapshot
}

// UnitSnapshot is a lightweight copy of a unit's state at a tick.
type UnitSnapshot struct {
	Label string
	Team  Team
	X, Y  float64
	HP    float64
}

// Snapshot returns the current state of all live units.
func (ts *TestSim) Snapshot() SimSnapshot {
	snap := SimSnapshot{Tick: ts.CurrentTick()}
	for _, u := range ts.Battle.Units() {
		snap.Units = append(snap.Units, UnitSnapshot{
			Label: u.Label,
			Team:  u.Team,
			X:     u.Pos.X,
			Y:     u.Pos.Y,
			HP:    u.HP,
		})
	}
	return snap
}

func (s UnitSnapshot) String() string {
	return fmt.Sprintf("%s (%.1f,%.1f) hp=%.0f", s.Label, s.X, s.Y, s.HP)
}
