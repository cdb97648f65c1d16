package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/Garsondee/Arena-Skirmish/internal/game"
	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
)

const redrawInterval = time.Second / 30

// Controller is the part of *game.Runner the terminal UI drives.
type Controller interface {
	Place(ctx context.Context, typeID string, team game.Team, pos game.Vec2) (game.UnitFrame, error)
	Remove(ctx context.Context, id uuid.UUID) error
	Start(ctx context.Context) error
	Snapshot(ctx context.Context) (game.Frame, error)
}

// App is the keyboard-driven placement UI around a Renderer.
type App struct {
	screen tcell.Screen
	ctl    Controller
	r      *Renderer
	cfg    game.Config
	types  []*game.UnitType

	selected int
	cx, cy   int // cursor cell
}

// NewApp wires a screen, controller and renderer together. The cursor starts
// in the middle of the Blue half.
func NewApp(screen tcell.Screen, ctl Controller, r *Renderer, cfg game.Config, catalog *game.Catalog) *App {
	a := &App{
		screen: screen,
		ctl:    ctl,
		r:      r,
		cfg:    cfg,
		types:  catalog.Types(),
	}
	cols, rows := r.arenaRect()
	a.cx, a.cy = cols/4, rows/2
	a.syncCursor()
	return a
}

// Selected returns the unit type placed by the next Enter.
func (a *App) Selected() *game.UnitType { return a.types[a.selected] }

// Cursor returns the arena position under the cursor.
func (a *App) Cursor() game.Vec2 { return a.r.Point(a.cx, a.cy) }

// Run polls input and redraws until ctx ends or the player quits.
func (a *App) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()
	a.r.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if !a.HandleEvent(ctx, ev) {
				return nil
			}
		case <-ticker.C:
			a.r.Draw()
		}
	}
}

// HandleEvent applies one input event. It returns false when the player
// asked to quit.
func (a *App) HandleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		a.clampCursor()
	case *tcell.EventKey:
		return a.handleKey(ctx, ev)
	}
	return true
}

func (a *App) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		a.cy--
	case tcell.KeyDown:
		a.cy++
	case tcell.KeyLeft:
		a.cx--
	case tcell.KeyRight:
		a.cx++
	case tcell.KeyEnter:
		a.place(ctx)
	case tcell.KeyRune:
		switch ch := ev.Rune(); {
		case ch == 'q':
			return false
		case ch >= '1' && ch <= '9':
			if i := int(ch - '1'); i < len(a.types) {
				a.selected = i
				a.r.SetStatus("selected " + a.types[i].Name)
			}
		case ch == ' ':
			a.place(ctx)
		case ch == 'x':
			a.remove(ctx)
		case ch == 's':
			if err := a.ctl.Start(ctx); err != nil {
				a.r.SetStatus("start: " + err.Error())
			} else {
				a.r.SetStatus("fight!")
			}
		}
	}
	a.clampCursor()
	return true
}

func (a *App) place(ctx context.Context) {
	p := a.Cursor()
	t := a.types[a.selected]
	uf, err := a.ctl.Place(ctx, t.ID, a.cfg.ZoneFor(p), p)
	if err != nil {
		a.r.SetStatus("place: " + err.Error())
		return
	}
	a.r.SetStatus(fmt.Sprintf("placed %s %s", uf.Label, t.Name))
}

// remove takes back the unit drawn in the cursor cell, if any.
func (a *App) remove(ctx context.Context) {
	f, err := a.ctl.Snapshot(ctx)
	if err != nil {
		a.r.SetStatus("remove: " + err.Error())
		return
	}
	for _, u := range f.Units {
		if x, y := a.r.Cell(u.Pos); x == a.cx && y == a.cy {
			if err := a.ctl.Remove(ctx, u.ID); err != nil {
				a.r.SetStatus("remove: " + err.Error())
				return
			}
			a.r.SetStatus("removed " + u.Label)
			return
		}
	}
	a.r.SetStatus("nothing to remove here")
}

func (a *App) clampCursor() {
	cols, rows := a.r.arenaRect()
	a.cx = min(max(a.cx, 0), cols-1)
	a.cy = min(max(a.cy, 0), rows-1)
	a.syncCursor()
}

func (a *App) syncCursor() {
	a.r.SetCursor(a.r.Point(a.cx, a.cy), true)
}
