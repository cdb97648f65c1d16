// Package tui renders a battle in a terminal and lets a player set it up
// with the keyboard.
package tui

import (
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/Garsondee/Arena-Skirmish/internal/game"
	"github.com/gdamore/tcell/v2"
)

// statusRows is the number of terminal rows below the arena.
const statusRows = 3

type popup struct {
	pos   game.Vec2
	text  string
	style tcell.Style
	until time.Time
}

type bolt struct {
	from, to game.Vec2
	style    tcell.Style
	start    time.Time
	flight   time.Duration
}

type corpse struct {
	pos   game.Vec2
	until time.Time
}

// Renderer is a game.Presenter that draws the latest frame and effects onto
// a tcell screen. Presenter calls arrive on the simulation goroutine; Draw is
// called from the UI loop.
type Renderer struct {
	mu     sync.Mutex
	screen tcell.Screen
	cfg    game.Config
	glyphs map[string]rune
	styles map[string]tcell.Style
	now    func() time.Time

	frame   game.Frame
	health  map[game.ObjectiveID]float64
	popups  []popup
	bolts   []bolt
	corpses []corpse
	winner  game.Team

	cursor   game.Vec2
	cursorOn bool
	status   string
}

// NewRenderer draws onto screen using the catalogue's glyphs and colours.
func NewRenderer(screen tcell.Screen, cfg game.Config, catalog *game.Catalog) *Renderer {
	r := &Renderer{
		screen: screen,
		cfg:    cfg,
		glyphs: make(map[string]rune),
		styles: make(map[string]tcell.Style),
		now:    time.Now,
		health: map[game.ObjectiveID]float64{game.ObjectiveA: 100, game.ObjectiveB: 100},
	}
	for _, t := range catalog.Types() {
		r.glyphs[t.ID] = t.Glyph
		r.styles[t.ID] = tcell.StyleDefault.Foreground(rgb(t.Color)).Bold(true)
	}
	return r
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func teamStyle(t game.Team) tcell.Style {
	return tcell.StyleDefault.Foreground(rgb(t.Color()))
}

// SetCursor shows the placement cursor at arena position p.
func (r *Renderer) SetCursor(p game.Vec2, on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursor, r.cursorOn = p, on
}

// SetStatus replaces the free-form status line.
func (r *Renderer) SetStatus(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = s
}

// --- game.Presenter ---

func (r *Renderer) Frame(f game.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame = f
}

func (r *Renderer) FloatingText(target game.Ref, text string, c color.RGBA) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.popups = append(r.popups, popup{
		pos:   target.Pos,
		text:  text,
		style: tcell.StyleDefault.Foreground(rgb(c)),
		until: r.now().Add(r.cfg.FloatingTextDuration()),
	})
}

func (r *Renderer) Projectile(from, to game.Ref, c color.RGBA, flight time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bolts = append(r.bolts, bolt{
		from:   from.Pos,
		to:     to.Pos,
		style:  tcell.StyleDefault.Foreground(rgb(c)),
		start:  r.now(),
		flight: flight,
	})
}

func (r *Renderer) DeathEffect(pos game.Vec2) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.corpses = append(r.corpses, corpse{pos: pos, until: r.now().Add(r.cfg.DeathEffectDuration())})
}

func (r *Renderer) ObjectiveHealth(id game.ObjectiveID, percent float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.health[id] = percent
}

func (r *Renderer) Winner(team game.Team) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.winner = team
}

// --- drawing ---

// arenaRect returns the terminal cell grid used for the arena.
func (r *Renderer) arenaRect() (cols, rows int) {
	w, h := r.screen.Size()
	rows = h - statusRows
	if rows < 1 {
		rows = 1
	}
	if w < 1 {
		w = 1
	}
	return w, rows
}

// Cell maps an arena position to a terminal cell.
func (r *Renderer) Cell(p game.Vec2) (x, y int) {
	cols, rows := r.arenaRect()
	x = int(p.X / r.cfg.Arena.Width * float64(cols))
	y = int(p.Y / r.cfg.Arena.Height * float64(rows))
	return min(max(x, 0), cols-1), min(max(y, 0), rows-1)
}

// Point maps a terminal cell back to the arena position at its centre.
func (r *Renderer) Point(x, y int) game.Vec2 {
	cols, rows := r.arenaRect()
	return game.Vec2{
		X: (float64(x) + 0.5) * r.cfg.Arena.Width / float64(cols),
		Y: (float64(y) + 0.5) * r.cfg.Arena.Height / float64(rows),
	}
}

func (r *Renderer) puts(x, y int, s string, style tcell.Style) {
	for _, ch := range s {
		r.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}

// Draw renders everything and shows the screen.
func (r *Renderer) Draw() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.expire(now)
	r.screen.Clear()

	cols, rows := r.arenaRect()
	mid := cols / 2
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for y := 0; y < rows; y += 2 {
		r.screen.SetContent(mid, y, '┊', nil, dim)
	}

	for _, o := range r.frame.Objectives {
		if o.ID == "" {
			continue
		}
		x, y := r.Cell(o.Pos)
		r.puts(x, y, string(o.ID), teamStyle(o.Team).Reverse(true))
	}

	for _, u := range r.frame.Units {
		x, y := r.Cell(u.Pos)
		glyph, ok := r.glyphs[u.TypeID]
		if !ok {
			glyph = '?'
		}
		style := r.styles[u.TypeID].Background(rgb(dimmed(u.Team.Color())))
		r.screen.SetContent(x, y, glyph, nil, style)
	}

	for _, b := range r.bolts {
		t := float64(now.Sub(b.start)) / float64(b.flight)
		if b.flight <= 0 || t > 1 {
			t = 1
		}
		p := b.from.Add(b.to.Sub(b.from).Scale(t))
		x, y := r.Cell(p)
		r.screen.SetContent(x, y, '•', nil, b.style)
	}

	for _, c := range r.corpses {
		x, y := r.Cell(c.pos)
		r.screen.SetContent(x, y, 'X', nil, tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))
	}

	for _, p := range r.popups {
		x, y := r.Cell(p.pos)
		r.puts(x, max(y-1, 0), p.text, p.style)
	}

	if r.cursorOn && r.frame.State == game.MatchIdle {
		x, y := r.Cell(r.cursor)
		zone := r.cfg.ZoneFor(r.cursor)
		r.screen.SetContent(x, y, '+', nil, teamStyle(zone).Reverse(true))
	}

	r.drawStatus(rows)

	if r.winner.Valid() {
		msg := " " + r.winner.Banner() + " "
		r.puts(max(cols/2-len(msg)/2, 0), rows/2, msg, teamStyle(r.winner).Reverse(true).Bold(true))
	}

	r.screen.Show()
}

func (r *Renderer) drawStatus(rows int) {
	plain := tcell.StyleDefault
	blue, red := 0, 0
	for _, u := range r.frame.Units {
		if u.Team == game.TeamBlue {
			blue++
		} else {
			red++
		}
	}
	line := fmt.Sprintf("%s  tick %d  blue %d  red %d  A %.0f%%  B %.0f%%",
		r.frame.State, r.frame.Tick, blue, red, r.health[game.ObjectiveA], r.health[game.ObjectiveB])
	r.puts(0, rows, line, plain.Bold(true))
	r.puts(0, rows+1, "arrows: move  1-9: unit  enter: place  x: remove  s: start  q: quit", tcell.StyleDefault.Foreground(tcell.ColorGray))
	if r.status != "" {
		r.puts(0, rows+2, r.status, plain.Foreground(tcell.ColorYellow))
	}
}

func (r *Renderer) expire(now time.Time) {
	popups := r.popups[:0]
	for _, p := range r.popups {
		if now.Before(p.until) {
			popups = append(popups, p)
		}
	}
	r.popups = popups

	bolts := r.bolts[:0]
	for _, b := range r.bolts {
		if now.Before(b.start.Add(b.flight)) {
			bolts = append(bolts, b)
		}
	}
	r.bolts = bolts

	corpses := r.corpses[:0]
	for _, c := range r.corpses {
		if now.Before(c.until) {
			corpses = append(corpses, c)
		}
	}
	r.corpses = corpses
}

func dimmed(c color.RGBA) color.RGBA {
	return color.RGBA{R: c.R / 4, G: c.G / 4, B: c.B / 4, A: c.A}
}
