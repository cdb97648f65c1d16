package game

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrRunnerStopped is returned by Runner calls made after Run has returned.
var ErrRunnerStopped = errors.New("runner stopped")

type command struct {
	fn    func(b *Battle, now time.Duration) error
	reply chan error
}

// Runner owns a Battle on a single goroutine and ticks it at the configured
// rate. Other goroutines (network handlers, terminal input) reach the battle
// only through Runner methods, which are executed between ticks.
type Runner struct {
	battle   *Battle
	interval time.Duration
	cmds     chan command
	done     chan struct{}
	ended    chan struct{}
	epoch    time.Time
	clock    func() time.Duration
}

// NewRunner wraps b. The tick interval comes from b's config.
func NewRunner(b *Battle) *Runner {
	r := &Runner{
		battle:   b,
		interval: b.Config().FrameInterval(),
		cmds:     make(chan command),
		done:     make(chan struct{}),
		ended:    make(chan struct{}),
	}
	r.clock = func() time.Duration { return time.Since(r.epoch) }
	return r
}

// Run ticks the battle until the match ends, then keeps serving commands
// against the finished battle until ctx is cancelled. It returns ctx.Err().
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)
	r.epoch = time.Now()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	tick := ticker.C

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-r.cmds:
			c.reply <- c.fn(r.battle, r.clock())
		case <-tick:
			r.battle.Tick(r.clock())
			if r.battle.Match().Ended() {
				ticker.Stop()
				tick = nil
				close(r.ended)
			}
		}
	}
}

// Done is closed once Run has returned.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Ended is closed when the match ends. Commands are still served afterwards.
func (r *Runner) Ended() <-chan struct{} { return r.ended }

// Do runs fn on the battle goroutine and waits for its result.
func (r *Runner) Do(ctx context.Context, fn func(b *Battle, now time.Duration) error) error {
	c := command{fn: fn, reply: make(chan error, 1)}
	select {
	case r.cmds <- c:
	case <-r.done:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-c.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Place puts a unit on the board and returns a copy of its state.
func (r *Runner) Place(ctx context.Context, typeID string, team Team, pos Vec2) (UnitFrame, error) {
	var uf UnitFrame
	err := r.Do(ctx, func(b *Battle, _ time.Duration) error {
		u, err := b.PlaceUnit(typeID, team, pos)
		if err != nil {
			return err
		}
		uf = UnitFrame{ID: u.ID, Label: u.Label, Team: u.Team, TypeID: u.Type.ID, HP: u.HP, MaxHP: u.MaxHP(), Pos: u.Pos}
		return nil
	})
	return uf, err
}

// Remove takes a placed unit back off the board.
func (r *Runner) Remove(ctx context.Context, id uuid.UUID) error {
	return r.Do(ctx, func(b *Battle, _ time.Duration) error {
		return b.RemoveUnit(id)
	})
}

// Start begins the match. It returns ErrMatchStarted if the match is not idle.
func (r *Runner) Start(ctx context.Context) error {
	return r.Do(ctx, func(b *Battle, now time.Duration) error {
		if !b.Start(now) {
			return ErrMatchStarted
		}
		return nil
	})
}

// Snapshot returns the current frame.
func (r *Runner) Snapshot(ctx context.Context) (Frame, error) {
	var f Frame
	err := r.Do(ctx, func(b *Battle, _ time.Duration) error {
		f = b.Frame()
		return nil
	})
	return f, err
}

// Report returns the current match report.
func (r *Runner) Report(ctx context.Context) (Report, error) {
	var rep Report
	err := r.Do(ctx, func(b *Battle, _ time.Duration) error {
		rep = b.Report()
		return nil
	})
	return rep, err
}
