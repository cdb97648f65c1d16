package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrMatchStarted = errors.New("match already started")
	ErrInvalidTeam  = errors.New("invalid team")
	ErrUnitNotFound = errors.New("unit not found")
)

// Battle is the whole simulated world: the two objectives, the live units in
// placement order, the match controller and the attacks in flight. It is not
// safe for concurrent use; Runner serialises access from other goroutines.
type Battle struct {
	cfg     Config
	catalog *Catalog

	units      []*Unit // live units, placement order
	index      map[uuid.UUID]*Unit
	objectives [2]*Objective // A, B
	seq        [3]int        // per-team label counters

	match  Match
	combat *CombatManager

	presenter Presenter
	simLog    *SimLog
	clog      *zap.Logger

	tick      int
	now       time.Duration
	stepScale float64
	tallies   [3]TeamTally
}

// BattleOption customises a Battle at construction.
type BattleOption func(*Battle)

// WithPresenter sets the effects sink. Several sinks can be combined with
// MultiPresenter.
func WithPresenter(p Presenter) BattleOption {
	return func(b *Battle) { b.presenter = p }
}

// WithSimLog records events into an existing SimLog.
func WithSimLog(l *SimLog) BattleOption {
	return func(b *Battle) { b.simLog = l }
}

// WithCombatLogger attaches a structured logger for combat events.
func WithCombatLogger(l *zap.Logger) BattleOption {
	return func(b *Battle) { b.clog = l }
}

// WithHitRoll replaces the uniform [0,1) hit roll. Tests use it to force
// hits or misses.
func WithHitRoll(roll func() float64) BattleOption {
	return func(b *Battle) { b.combat.roll = roll }
}

// NewBattle creates an idle battle with both objectives at full health.
// A zero cfg.Seed seeds the RNG from the clock.
func NewBattle(cfg Config, catalog *Catalog, opts ...BattleOption) *Battle {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	b := &Battle{
		cfg:       cfg,
		catalog:   catalog,
		index:     make(map[uuid.UUID]*Unit),
		combat:    NewCombatManager(seed),
		presenter: NopPresenter{},
		simLog:    NewSimLog(false),
		clog:      zap.NewNop(),
		stepScale: 1,
	}
	b.objectives[0] = &Objective{ID: ObjectiveA, Team: TeamBlue, HP: cfg.Objectives.HP, MaxHP: cfg.Objectives.HP, Pos: cfg.Objectives.A}
	b.objectives[1] = &Objective{ID: ObjectiveB, Team: TeamRed, HP: cfg.Objectives.HP, MaxHP: cfg.Objectives.HP, Pos: cfg.Objectives.B}
	b.match.onEnd = b.announceWinner
	for _, o := range opts {
		o(b)
	}
	return b
}

func objectiveIndex(id ObjectiveID) int {
	if id == ObjectiveB {
		return 1
	}
	return 0
}

// --- Accessors ---

func (b *Battle) Config() Config     { return b.cfg }
func (b *Battle) Catalog() *Catalog  { return b.catalog }
func (b *Battle) Match() *Match      { return &b.match }
func (b *Battle) SimLog() *SimLog    { return b.simLog }
func (b *Battle) TickCount() int     { return b.tick }
func (b *Battle) Now() time.Duration { return b.now }
func (b *Battle) InFlight() int      { return b.combat.InFlight() }

func (b *Battle) tally(t Team) *TeamTally { return &b.tallies[t] }

// Objective returns the objective with the given id.
func (b *Battle) Objective(id ObjectiveID) *Objective {
	return b.objectives[objectiveIndex(id)]
}

// Units returns the live units in placement order.
func (b *Battle) Units() []*Unit {
	out := make([]*Unit, len(b.units))
	copy(out, b.units)
	return out
}

// Unit looks up a live unit by id.
func (b *Battle) Unit(id uuid.UUID) (*Unit, bool) {
	u, ok := b.index[id]
	return u, ok
}

// UnitByLabel looks up a live unit by its log label.
func (b *Battle) UnitByLabel(label string) (*Unit, bool) {
	for _, u := range b.units {
		if u.Label == label {
			return u, true
		}
	}
	return nil, false
}

// UnitAt returns the topmost live unit whose footprint covers p.
func (b *Battle) UnitAt(p Vec2) (*Unit, bool) {
	for i := len(b.units) - 1; i >= 0; i-- {
		u := b.units[i]
		d := p.Sub(u.Pos)
		if d.X >= -unitRadius && d.X <= unitRadius && d.Y >= -unitRadius && d.Y <= unitRadius {
			return u, true
		}
	}
	return nil, false
}

// --- Placement ---

// PlaceUnit adds a unit of the given type for team at pos, clamped so the
// token stays inside the arena. Placement is only allowed before Start.
func (b *Battle) PlaceUnit(typeID string, team Team, pos Vec2) (*Unit, error) {
	if b.match.State() != MatchIdle {
		return nil, ErrMatchStarted
	}
	if !team.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTeam, team)
	}
	t, ok := b.catalog.Get(typeID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownUnitType, typeID)
	}
	pos = clampToArena(pos, b.cfg.Arena.Width, b.cfg.Arena.Height, unitRadius)

	b.seq[team]++
	u := newUnit(t, team, pos, b.seq[team])
	b.units = append(b.units, u)
	b.index[u.ID] = u
	b.tallies[team].Placed++

	b.simLog.Add(b.tick, u.Label, team.String(), "placement", "place",
		fmt.Sprintf("%s at (%.0f,%.0f)", t.ID, pos.X, pos.Y), 0)
	b.clog.Debug("unit placed",
		zap.String("unit", u.Label),
		zap.String("type", t.ID),
		zap.Float64("x", pos.X),
		zap.Float64("y", pos.Y),
	)
	b.presenter.Frame(b.Frame())
	return u, nil
}

// RemoveUnit takes a placed unit back off the board before the match starts.
func (b *Battle) RemoveUnit(id uuid.UUID) error {
	if b.match.State() != MatchIdle {
		return ErrMatchStarted
	}
	u, ok := b.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnitNotFound, id)
	}
	b.removeUnit(u)
	b.tallies[u.Team].Placed--
	b.simLog.Add(b.tick, u.Label, u.Team.String(), "placement", "remove", u.Type.ID, 0)
	b.presenter.Frame(b.Frame())
	return nil
}

// removeUnit drops u from the live set. It reports false if u was already
// gone, so callers can fire one-shot effects exactly once.
func (b *Battle) removeUnit(u *Unit) bool {
	if u.removed {
		return false
	}
	u.removed = true
	delete(b.index, u.ID)
	for i, v := range b.units {
		if v == u {
			b.units = append(b.units[:i], b.units[i+1:]...)
			break
		}
	}
	return true
}

// --- Match lifecycle ---

// Start begins the match at time now. It reports false if the match was not
// idle.
func (b *Battle) Start(now time.Duration) bool {
	if !b.match.Start(now) {
		return false
	}
	b.now = now
	blue, red := b.teamCount(TeamBlue), b.teamCount(TeamRed)
	b.simLog.Add(b.tick, "--", "--", "match", "start",
		fmt.Sprintf("blue=%d red=%d", blue, red), float64(blue+red))
	b.clog.Info("match started", zap.Int("blue", blue), zap.Int("red", red))
	return true
}

func (b *Battle) endMatch(winner Team, now time.Duration) {
	b.match.End(winner, now)
}

// announceWinner runs once, on the transition into MatchEnded.
func (b *Battle) announceWinner(winner Team) {
	b.simLog.Add(b.tick, "--", "--", "match", "end", winner.Name()+" wins", 0)
	b.clog.Info("match ended",
		zap.String("winner", winner.String()),
		zap.Int("tick", b.tick),
		zap.Duration("elapsed", b.match.Elapsed(b.now)),
	)
	b.presenter.Winner(winner)
}

func (b *Battle) teamCount(t Team) int {
	n := 0
	for _, u := range b.units {
		if u.Team == t {
			n++
		}
	}
	return n
}

// liveEnemies returns the opponents of team that are still on the board.
func (b *Battle) liveEnemies(team Team) []*Unit {
	var out []*Unit
	for _, u := range b.units {
		if u.Team != team && u.Alive() {
			out = append(out, u)
		}
	}
	return out
}

// Tick advances the simulation to time now. It does nothing unless the match
// is running. In-flight attacks due by now land first, then every unit that
// was alive at the start of the tick acts once, in placement order.
func (b *Battle) Tick(now time.Duration) {
	if b.match.Ended() || !b.match.Running() {
		return
	}
	b.tick++
	dt := now - b.now
	if dt <= 0 {
		dt = b.cfg.FrameInterval()
	}
	b.now = now
	b.stepScale = b.cfg.stepScale(dt)

	b.combat.resolveDue(b, now)

	snapshot := make([]*Unit, len(b.units))
	copy(snapshot, b.units)
	for _, u := range snapshot {
		if b.match.Ended() {
			break
		}
		if !u.Alive() {
			continue
		}
		obj := b.Objective(u.Team.Opponent().Home())
		b.combat.Act(b, u, b.liveEnemies(u.Team), obj, now)
	}

	b.presenter.Frame(b.Frame())
}

// Frame returns a value snapshot of the current world.
func (b *Battle) Frame() Frame {
	f := Frame{
		Tick:   b.tick,
		Now:    b.now,
		State:  b.match.State(),
		Winner: b.match.Winner(),
		Units:  make([]UnitFrame, 0, len(b.units)),
	}
	for _, u := range b.units {
		f.Units = append(f.Units, UnitFrame{
			ID:     u.ID,
			Label:  u.Label,
			Team:   u.Team,
			TypeID: u.Type.ID,
			HP:     u.HP,
			MaxHP:  u.MaxHP(),
			Pos:    u.Pos,
		})
	}
	for i, o := range b.objectives {
		f.Objectives[i] = ObjectiveFrame{
			ID:      o.ID,
			Team:    o.Team,
			HP:      o.HP,
			MaxHP:   o.MaxHP,
			Percent: o.Percent(),
			Pos:     o.Pos,
		}
	}
	return f
}
