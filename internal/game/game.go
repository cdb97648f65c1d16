package game

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"
)

// borderWidth is the pixel gap between the window edge and the arena.
const borderWidth = 24

// hudScale is the integer upscale factor applied to the winner banner.
const hudScale = 3

const (
	paletteHeight = 56
	paletteSlotW  = 132
	objectiveSize = 56
	hpBarHeight   = 4
)

// Game is the ebiten front end: a placement palette, the arena, effect
// visuals and a battle log, driving one Battle off the wall clock.
type Game struct {
	width, height int
	offX, offY    int

	cfg      Config
	catalog  *Catalog
	scenario *Scenario
	battle   *Battle
	fx       *effectLayer
	extra    []Presenter
	clog     *zap.Logger

	battleLog *BattleLog
	logCursor int // SimLog entries already copied into battleLog

	epoch    time.Time
	selected int // palette index
	status   string

	// Input state for edge-triggered toggles.
	prevKeys      map[ebiten.Key]bool
	prevMouseLeft bool

	face   text.Face
	hudBuf *ebiten.Image
}

// New creates the window game. extra presenters receive every effect
// alongside the on-screen layer.
func New(cfg Config, catalog *Catalog, clog *zap.Logger, extra ...Presenter) *Game {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if clog == nil {
		clog = zap.NewNop()
	}
	arenaW, arenaH := int(cfg.Arena.Width), int(cfg.Arena.Height)
	g := &Game{
		width:    borderWidth + arenaW + borderWidth + logPanelWidth,
		height:   borderWidth + arenaH + paletteHeight + borderWidth,
		offX:     borderWidth,
		offY:     borderWidth,
		cfg:      cfg,
		catalog:  catalog,
		extra:    extra,
		clog:     clog,
		epoch:    time.Now(),
		prevKeys: make(map[ebiten.Key]bool),
		face:     text.NewGoXFace(basicfont.Face7x13),
	}
	g.fx = newEffectLayer(cfg, g.clock)
	g.hudBuf = ebiten.NewImage(g.width/hudScale, g.height/hudScale)
	_ = g.reset() // no scenario yet
	return g
}

// WindowSize returns the preferred window size in px.
func (g *Game) WindowSize() (int, int) { return g.width, g.height }

// Battle exposes the current battle.
func (g *Game) Battle() *Battle { return g.battle }

// LoadScenario places a scenario's roster now and again after every restart.
func (g *Game) LoadScenario(s *Scenario) error {
	g.scenario = s
	return g.reset()
}

func (g *Game) clock() time.Duration { return time.Since(g.epoch) }

// reset builds a fresh battle with the same configuration.
func (g *Game) reset() error {
	g.fx.reset()
	g.battleLog = NewBattleLog()
	g.logCursor = 0
	g.status = ""

	presenters := append(MultiPresenter{g.fx}, g.extra...)
	g.battle = NewBattle(g.cfg, g.catalog,
		WithPresenter(presenters),
		WithSimLog(NewSimLog(false)),
		WithCombatLogger(g.clog),
	)
	var err error
	if g.scenario != nil {
		if err = g.scenario.Apply(g.battle); err != nil {
			err = fmt.Errorf("scenario %q: %w", g.scenario.Name, err)
			g.status = err.Error()
		}
	}
	g.drainSimLog()
	return err
}

func (g *Game) Update() error {
	// Handle input every frame regardless of match state.
	g.handleInput()

	now := g.clock()
	g.battle.Tick(now)
	g.fx.prune(now)
	g.drainSimLog()
	return nil
}

// drainSimLog copies new SimLog entries into the on-screen battle log.
func (g *Game) drainSimLog() {
	sl := g.battle.SimLog()
	for _, e := range sl.Since(g.logCursor) {
		g.battleLog.AddSimEntry(e)
	}
	g.logCursor = sl.Len()
}

// handleInput processes palette, placement and match keys (edge-triggered).
func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	pressed := func(k ebiten.Key) bool {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		return currentKeys[k] && !g.prevKeys[k]
	}

	// 1-9: select a unit type from the palette.
	digitKeys := []ebiten.Key{
		ebiten.Key1, ebiten.Key2, ebiten.Key3,
		ebiten.Key4, ebiten.Key5, ebiten.Key6,
		ebiten.Key7, ebiten.Key8, ebiten.Key9,
	}
	for i, k := range digitKeys {
		if pressed(k) && i < g.catalog.Len() {
			g.selected = i
		}
	}

	// Enter / Space: start the match.
	if pressed(ebiten.KeyEnter) || pressed(ebiten.KeySpace) {
		if g.battle.Start(g.clock()) {
			g.status = ""
		}
	}

	// R: play again once the match is over.
	if pressed(ebiten.KeyR) && g.battle.Match().Ended() {
		_ = g.reset() // failures land in g.status
	}

	// C: copy the match report to the clipboard.
	if pressed(ebiten.KeyC) {
		if err := copyReport(g.battle.Report()); err != nil {
			g.status = err.Error()
		} else {
			g.status = "report copied to clipboard"
		}
	}

	g.prevKeys = currentKeys

	mouseLeft := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if mouseLeft && !g.prevMouseLeft {
		g.handleClick(ebiten.CursorPosition())
	}
	g.prevMouseLeft = mouseLeft
}

// handleClick selects a palette slot, or places/removes a unit in the arena.
func (g *Game) handleClick(mx, my int) {
	if slot, ok := g.paletteSlotAt(mx, my); ok {
		g.selected = slot
		return
	}
	p, ok := g.arenaPoint(mx, my)
	if !ok || g.battle.Match().State() != MatchIdle {
		return
	}
	if u, hit := g.battle.UnitAt(p); hit {
		if err := g.battle.RemoveUnit(u.ID); err != nil {
			g.status = err.Error()
		}
		return
	}
	t := g.catalog.Types()[g.selected]
	if _, err := g.battle.PlaceUnit(t.ID, g.cfg.ZoneFor(p), p); err != nil {
		g.status = err.Error()
	}
}

// arenaPoint converts a screen position to arena coordinates.
func (g *Game) arenaPoint(mx, my int) (Vec2, bool) {
	p := Vec2{X: float64(mx - g.offX), Y: float64(my - g.offY)}
	if p.X < 0 || p.Y < 0 || p.X > g.cfg.Arena.Width || p.Y > g.cfg.Arena.Height {
		return Vec2{}, false
	}
	return p, true
}

func (g *Game) paletteTop() int { return g.offY + int(g.cfg.Arena.Height) + 8 }

func (g *Game) paletteSlotAt(mx, my int) (int, bool) {
	top := g.paletteTop()
	if my < top || my > top+paletteHeight-12 || mx < g.offX {
		return 0, false
	}
	slot := (mx - g.offX) / paletteSlotW
	if slot >= g.catalog.Len() {
		return 0, false
	}
	return slot, true
}

func (g *Game) Draw(screen *ebiten.Image) {
	// Window background: very dark, outside the arena.
	screen.Fill(color.RGBA{R: 12, G: 13, B: 18, A: 255})

	g.drawArena(screen)
	g.drawObjectives(screen)
	g.drawUnits(screen)
	g.drawGhost(screen)

	now := g.clock()
	g.fx.drawShots(screen, g.offX, g.offY, now)
	g.fx.drawDeaths(screen, g.offX, g.offY, now)
	g.fx.drawTexts(screen, g.face, g.offX, g.offY, now)

	// Arena border frame.
	ox, oy := float32(g.offX), float32(g.offY)
	aw, ah := float32(g.cfg.Arena.Width), float32(g.cfg.Arena.Height)
	vector.StrokeRect(screen, ox-1, oy-1, aw+2, ah+2, 2.0, color.RGBA{R: 70, G: 76, B: 100, A: 255}, false)

	g.drawPalette(screen)

	logX := g.offX + int(g.cfg.Arena.Width) + g.offX
	g.battleLog.Draw(screen, logX, g.height)

	if w := g.fx.winner; w.Valid() {
		g.drawWinner(screen, w)
	}
}

// drawArena paints both placement zones and the dashed midline.
func (g *Game) drawArena(screen *ebiten.Image) {
	ox, oy := float32(g.offX), float32(g.offY)
	aw, ah := float32(g.cfg.Arena.Width), float32(g.cfg.Arena.Height)
	vector.FillRect(screen, ox, oy, aw/2, ah, color.RGBA{R: 20, G: 30, B: 44, A: 255}, false)
	vector.FillRect(screen, ox+aw/2, oy, aw/2, ah, color.RGBA{R: 44, G: 24, B: 22, A: 255}, false)

	const dash = 10
	for y := float32(0); y < ah; y += dash * 2 {
		vector.StrokeLine(screen, ox+aw/2, oy+y, ox+aw/2, oy+min(y+dash, ah), 1, color.RGBA{R: 110, G: 110, B: 120, A: 160}, false)
	}
}

func (g *Game) drawObjectives(screen *ebiten.Image) {
	for i, id := range []ObjectiveID{ObjectiveA, ObjectiveB} {
		o := g.battle.Objective(id)
		cx := float32(g.offX) + float32(o.Pos.X)
		cy := float32(g.offY) + float32(o.Pos.Y)
		half := float32(objectiveSize / 2)
		col := o.Team.Color()
		if o.Destroyed() {
			col = color.RGBA{R: 70, G: 70, B: 70, A: 255}
		}
		vector.FillRect(screen, cx-half, cy-half, objectiveSize, objectiveSize, color.RGBA{R: col.R / 3, G: col.G / 3, B: col.B / 3, A: 255}, false)
		vector.StrokeRect(screen, cx-half, cy-half, objectiveSize, objectiveSize, 3, col, false)

		name := string(id)
		w, h := text.Measure(name, g.face, 0)
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(cx)-w/2, float64(cy)-h/2)
		op.ColorScale.ScaleWithColor(col)
		text.Draw(screen, name, g.face, op)

		pct := float32(g.fx.health[i] / 100)
		drawBar(screen, cx-half, cy+half+6, objectiveSize, 6, pct, col)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%.0f%%", g.fx.health[i]), int(cx-half), int(cy+half+14))
	}
}

func (g *Game) drawUnits(screen *ebiten.Image) {
	for _, u := range g.battle.Units() {
		cx := float32(g.offX) + float32(u.Pos.X)
		cy := float32(g.offY) + float32(u.Pos.Y)
		vector.StrokeCircle(screen, cx, cy, unitRadius+3, 2, u.Team.Color(), true)
		drawShape(screen, u.Type.Shape, cx, cy, unitRadius-2, u.Type.Color)

		glyph := string(u.Type.Glyph)
		w, h := text.Measure(glyph, g.face, 0)
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(cx)-w/2, float64(cy)-h/2)
		op.ColorScale.ScaleWithColor(color.RGBA{R: 245, G: 245, B: 245, A: 255})
		text.Draw(screen, glyph, g.face, op)

		drawBar(screen, cx-unitRadius, cy-unitRadius-9, unitRadius*2, hpBarHeight, float32(u.HP/u.MaxHP()), u.Team.Color())
		ebitenutil.DebugPrintAt(screen, u.Label, int(cx)-6, int(cy)+unitRadius+4)
	}
}

// drawGhost previews the selected unit under the cursor during placement.
func (g *Game) drawGhost(screen *ebiten.Image) {
	if g.battle.Match().State() != MatchIdle {
		return
	}
	p, ok := g.arenaPoint(ebiten.CursorPosition())
	if !ok {
		return
	}
	if _, hit := g.battle.UnitAt(p); hit {
		return
	}
	t := g.catalog.Types()[g.selected]
	p = clampToArena(p, g.cfg.Arena.Width, g.cfg.Arena.Height, unitRadius)
	cx := float32(g.offX) + float32(p.X)
	cy := float32(g.offY) + float32(p.Y)
	ghost := t.Color
	ghost.A = 90
	drawShape(screen, t.Shape, cx, cy, unitRadius-2, ghost)
	ring := g.cfg.ZoneFor(p).Color()
	ring.A = 120
	vector.StrokeCircle(screen, cx, cy, unitRadius+3, 1, ring, true)
}

// drawPalette renders the unit type selector and the status line.
func (g *Game) drawPalette(screen *ebiten.Image) {
	top := g.paletteTop()
	for i, t := range g.catalog.Types() {
		x := float32(g.offX + i*paletteSlotW)
		bg := color.RGBA{R: 26, G: 30, B: 40, A: 255}
		if i == g.selected {
			bg = color.RGBA{R: 50, G: 58, B: 80, A: 255}
		}
		vector.FillRect(screen, x, float32(top), paletteSlotW-6, paletteHeight-16, bg, false)
		drawShape(screen, t.Shape, x+18, float32(top)+20, 11, t.Color)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d %s", i+1, t.Name), int(x)+34, top+4)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%.0fhp %.0fdmg", t.Stats.HP, t.Stats.Attack), int(x)+34, top+20)
	}

	m := g.battle.Match()
	line := fmt.Sprintf("%s  tick %d  blue %d  red %d  in flight %d",
		m.State(), g.battle.TickCount(), g.battle.teamCount(TeamBlue), g.battle.teamCount(TeamRed), g.battle.InFlight())
	switch m.State() {
	case MatchIdle:
		line += "  |  click: place/remove  ENTER: start"
	case MatchEnded:
		line += "  |  R: play again  C: copy report"
	}
	if g.status != "" {
		line += "  |  " + g.status
	}
	ebitenutil.DebugPrintAt(screen, line, g.offX, top+paletteHeight-14)
}

// drawWinner renders the end banner into hudBuf at 1x then scales it up.
func (g *Game) drawWinner(screen *ebiten.Image, w Team) {
	msg := w.Banner()
	bufW := float64(g.width / hudScale)
	bufH := float64(g.height / hudScale)
	tw, th := text.Measure(msg, g.face, 0)

	g.hudBuf.Clear()
	bx := float32(bufW/2 - tw/2 - 8)
	by := float32(bufH/2 - th/2 - 6)
	vector.FillRect(g.hudBuf, bx, by, float32(tw)+16, float32(th)+12, color.RGBA{R: 6, G: 8, B: 12, A: 220}, false)
	vector.StrokeRect(g.hudBuf, bx, by, float32(tw)+16, float32(th)+12, 1, w.Color(), false)

	op := &text.DrawOptions{}
	op.GeoM.Translate(bufW/2-tw/2, bufH/2-th/2)
	op.ColorScale.ScaleWithColor(w.Color())
	text.Draw(g.hudBuf, msg, g.face, op)

	// Blit hudBuf onto screen at hudScale.
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(float64(hudScale), float64(hudScale))
	screen.DrawImage(g.hudBuf, opts)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// drawBar draws a filled health bar with frac in [0,1].
func drawBar(screen *ebiten.Image, x, y, w, h, frac float32, col color.RGBA) {
	frac = float32(clamp(float64(frac), 0, 1))
	vector.FillRect(screen, x, y, w, h, color.RGBA{R: 30, G: 30, B: 30, A: 220}, false)
	vector.FillRect(screen, x, y, w*frac, h, col, false)
}

// drawShape renders a unit silhouette of radius r centred on (cx, cy).
// Diamonds and skewed squares are filled with horizontal scanlines.
func drawShape(screen *ebiten.Image, s Shape, cx, cy, r float32, col color.RGBA) {
	switch s {
	case ShapeSquare:
		side := r * 1.7
		vector.FillRect(screen, cx-side/2, cy-side/2, side, side, col, true)
	case ShapeDiamond:
		for dy := -r; dy <= r; dy++ {
			half := r - float32(math.Abs(float64(dy)))
			vector.StrokeLine(screen, cx-half, cy+dy, cx+half, cy+dy, 1.5, col, true)
		}
	case ShapeSkewed:
		side := r * 0.8
		for dy := -side; dy <= side; dy++ {
			shift := -dy * 0.4
			vector.StrokeLine(screen, cx-side+shift, cy+dy, cx+side+shift, cy+dy, 1.5, col, true)
		}
	default:
		vector.FillCircle(screen, cx, cy, r, col, true)
	}
}
