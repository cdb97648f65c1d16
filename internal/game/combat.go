package game

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Action is what a unit did on one tick.
type Action int

const (
	ActionNone   Action = iota // no target or blocked
	ActionMove                 // stepped toward its target
	ActionAttack               // fired at its target
	ActionWait                 // in range, cooling down
)

func (a Action) String() string {
	switch a {
	case ActionMove:
		return "move"
	case ActionAttack:
		return "attack"
	case ActionWait:
		return "wait"
	default:
		return "none"
	}
}

// target is whatever a unit is currently engaging: an enemy unit or the enemy
// objective. Exactly one field is set.
type target struct {
	unit *Unit
	obj  *Objective
}

func (t target) Position() Vec2 {
	if t.unit != nil {
		return t.unit.Pos
	}
	return t.obj.Pos
}

func (t target) ref() Ref {
	if t.unit != nil {
		return t.unit.ref()
	}
	return t.obj.ref()
}

func (t target) label() string {
	if t.unit != nil {
		return t.unit.Label
	}
	return "obj" + string(t.obj.ID)
}

// --- Combat Manager ---

// CombatManager decides and resolves one unit's action per tick and owns the
// attacks in flight.
type CombatManager struct {
	rng    *rand.Rand
	roll   func() float64 // hit roll source; defaults to rng.Float64
	travel travelQueue
}

// NewCombatManager creates a combat manager with its own RNG.
func NewCombatManager(seed int64) *CombatManager {
	cm := &CombatManager{
		rng: rand.New(rand.NewSource(seed)), // #nosec G404 -- game only
	}
	cm.roll = cm.rng.Float64
	return cm
}

// InFlight returns the number of attacks that have not landed yet.
func (cm *CombatManager) InFlight() int { return cm.travel.len() }

// acquireTarget returns the closest live enemy unit, falling back to the
// enemy objective. Ties keep the earlier candidate; the objective is
// considered last and so only wins when strictly closer.
func (cm *CombatManager) acquireTarget(u *Unit, enemies []*Unit, obj *Objective) (target, float64) {
	var best target
	bestDist := math.MaxFloat64
	for _, e := range enemies {
		if !e.Alive() {
			continue
		}
		if d := Distance(u, e); d < bestDist {
			bestDist = d
			best = target{unit: e}
		}
	}
	if obj != nil {
		if d := Distance(u, obj); d < bestDist {
			bestDist = d
			best = target{obj: obj}
		}
	}
	return best, bestDist
}

// Act runs one unit's behaviour for this tick: pick a target, then either
// close the distance or attack when the cooldown allows.
func (cm *CombatManager) Act(b *Battle, u *Unit, enemies []*Unit, obj *Objective, now time.Duration) Action {
	tgt, dist := cm.acquireTarget(u, enemies, obj)
	if tgt.unit == nil && tgt.obj == nil {
		return ActionNone
	}

	if dist > u.Type.Stats.Range {
		return cm.move(b, u, tgt)
	}
	if !u.canAttack(now) {
		return ActionWait
	}
	cm.attack(b, u, tgt, dist, now)
	return ActionAttack
}

func (cm *CombatManager) move(b *Battle, u *Unit, tgt target) Action {
	dir, ok := Direction(u, tgt)
	if !ok {
		return ActionNone
	}
	step := u.Type.Stats.MoveSpeed * b.stepScale
	u.Pos = u.Pos.Add(dir.Scale(step))
	b.simLog.AddVerbose(b.tick, u.Label, u.Team.String(), "move", "step",
		fmt.Sprintf("(%.1f,%.1f) → %s", u.Pos.X, u.Pos.Y, tgt.label()), step)
	return ActionMove
}

// attack stamps the cooldown, settles the hit roll and launches the flight.
// Damage is applied by resolveDue once the flight lands.
func (cm *CombatManager) attack(b *Battle, u *Unit, tgt target, dist float64, now time.Duration) {
	u.markAttack(now)
	b.tally(u.Team).Attacks++

	r := cm.roll()
	hit := r <= u.Type.Stats.HitChance
	flight := b.cfg.TravelDuration()

	b.presenter.Projectile(u.ref(), tgt.ref(), u.Team.Color(), flight)
	cm.travel.push(travel{
		attacker: u.Label,
		team:     u.Team,
		target:   tgt.ref(),
		hit:      hit,
		damage:   u.Type.Stats.Attack,
		issuedAt: b.tick,
		dueAt:    now + flight,
	})

	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	b.simLog.Add(b.tick, u.Label, u.Team.String(), "attack", outcome,
		fmt.Sprintf("→ %s at %.0fpx (roll %.3f / %.2f)", tgt.label(), dist, r, u.Type.Stats.HitChance), r)
	b.clog.Debug("attack",
		zap.Int("tick", b.tick),
		zap.String("attacker", u.Label),
		zap.String("target", tgt.label()),
		zap.Float64("distance", dist),
		zap.Float64("roll", r),
		zap.Bool("hit", hit),
	)
}

// resolveDue lands every flight whose travel time has elapsed. Resolution
// stops as soon as the match ends; flights still pending are left in place.
func (cm *CombatManager) resolveDue(b *Battle, now time.Duration) {
	due := cm.travel.popDue(now)
	for i, t := range due {
		if b.match.Ended() {
			cm.travel.requeue(due[i:])
			return
		}
		cm.land(b, t, now)
	}
}

func (cm *CombatManager) land(b *Battle, t travel, now time.Duration) {
	tally := b.tally(t.team)

	var tgt target
	switch t.target.Kind {
	case RefUnit:
		u, ok := b.index[t.target.Unit]
		if !ok || !u.Alive() {
			tally.Dropped++
			b.simLog.Add(b.tick, t.attacker, t.team.String(), "travel", "dropped",
				t.target.Label+" gone", 0)
			return
		}
		tgt = target{unit: u}
	case RefObjective:
		tgt = target{obj: b.objectives[objectiveIndex(t.target.Objective)]}
	default:
		return
	}

	if !t.hit {
		tally.Misses++
		b.presenter.FloatingText(tgt.ref(), "MISS", MissTextColor)
		b.simLog.Add(b.tick, t.attacker, t.team.String(), "travel", "miss", tgt.label(), 0)
		return
	}
	tally.Hits++
	cm.applyDamage(b, t, tgt, now)
}

// applyDamage subtracts damage from the target and handles the consequences:
// death for units, health bar and match end for objectives.
func (cm *CombatManager) applyDamage(b *Battle, t travel, tgt target, now time.Duration) {
	tally := b.tally(t.team)
	text := "-" + strconv.FormatFloat(t.damage, 'f', -1, 64)

	if o := tgt.obj; o != nil {
		o.HP -= t.damage
		tally.ObjectiveDamage += t.damage
		pct := o.Percent()
		b.presenter.FloatingText(o.ref(), text, DamageTextColor)
		b.presenter.ObjectiveHealth(o.ID, pct)
		b.simLog.Add(b.tick, t.attacker, t.team.String(), "objective", "damage",
			fmt.Sprintf("obj%s %.0f/%.0f", o.ID, o.HP, o.MaxHP), pct)
		if o.HP <= 0 && !b.match.Ended() {
			b.simLog.Add(b.tick, "--", "--", "objective", "destroyed", "obj"+string(o.ID), 0)
			b.endMatch(o.Team.Opponent(), now)
		}
		return
	}

	u := tgt.unit
	u.HP -= t.damage
	tally.UnitDamage += t.damage
	b.presenter.FloatingText(u.ref(), text, DamageTextColor)
	b.simLog.Add(b.tick, t.attacker, t.team.String(), "damage", "unit",
		fmt.Sprintf("%s %.0f/%.0f", u.Label, u.HP, u.MaxHP()), t.damage)

	if u.HP <= 0 && b.removeUnit(u) {
		tally.Kills++
		b.presenter.DeathEffect(u.Pos)
		b.simLog.Add(b.tick, u.Label, u.Team.String(), "death", "killed", "by "+t.attacker, 0)
		b.clog.Info("unit killed",
			zap.Int("tick", b.tick),
			zap.String("unit", u.Label),
			zap.String("type", u.Type.ID),
			zap.String("by", t.attacker),
		)
	}
}
