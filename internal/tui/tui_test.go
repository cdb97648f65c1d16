package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Garsondee/Arena-Skirmish/internal/game"
	"github.com/gdamore/tcell/v2"
)

var _ game.Presenter = (*Renderer)(nil)
var _ Controller = (*game.Runner)(nil)

// newScreen returns an 80x27 simulation screen: 80x24 arena cells plus the
// status rows.
func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(80, 24+statusRows)
	t.Cleanup(screen.Fini)
	return screen
}

func runeAt(s tcell.Screen, x, y int) rune {
	r, _, _, _ := s.GetContent(x, y)
	return r
}

func rowText(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		sb.WriteRune(runeAt(s, x, y))
	}
	return sb.String()
}

func TestRenderer_CellMapping(t *testing.T) {
	screen := newScreen(t)
	r := NewRenderer(screen, game.DefaultConfig(), game.DefaultCatalog())

	tests := []struct {
		p    game.Vec2
		x, y int
	}{
		{game.Vec2{X: 0, Y: 0}, 0, 0},
		{game.Vec2{X: 500, Y: 300}, 40, 12},
		{game.Vec2{X: 1000, Y: 600}, 79, 23},
		{game.Vec2{X: -5, Y: 900}, 0, 23},
	}
	for _, tt := range tests {
		if x, y := r.Cell(tt.p); x != tt.x || y != tt.y {
			t.Errorf("Cell(%v) = (%d,%d), want (%d,%d)", tt.p, x, y, tt.x, tt.y)
		}
	}
	for _, c := range [][2]int{{0, 0}, {17, 5}, {79, 23}} {
		if x, y := r.Cell(r.Point(c[0], c[1])); x != c[0] || y != c[1] {
			t.Errorf("round trip %v -> (%d,%d)", c, x, y)
		}
	}
}

func TestRenderer_DrawsFrameAndEffects(t *testing.T) {
	screen := newScreen(t)
	cfg := game.DefaultConfig()
	rec := game.NewRecorder()
	r := NewRenderer(screen, cfg, game.DefaultCatalog())
	b := game.NewBattle(cfg, nil, game.WithPresenter(game.MultiPresenter{r, rec}))

	if _, err := b.PlaceUnit("warrior", game.TeamBlue, game.Vec2{X: 500, Y: 300}); err != nil {
		t.Fatal(err)
	}
	if _, err := b.PlaceUnit("archer", game.TeamRed, game.Vec2{X: 750, Y: 100}); err != nil {
		t.Fatal(err)
	}
	r.FloatingText(game.Ref{Pos: game.Vec2{X: 250, Y: 410}}, "MISS", game.MissTextColor)
	r.DeathEffect(game.Vec2{X: 100, Y: 510})
	r.Draw()

	if got := runeAt(screen, 40, 12); got != 'W' {
		t.Errorf("warrior cell = %q, want 'W'", got)
	}
	if got := runeAt(screen, 60, 4); got != 'A' {
		t.Errorf("archer cell = %q, want 'A'", got)
	}
	if got := runeAt(screen, 8, 20); got != 'X' {
		t.Errorf("death cell = %q, want 'X'", got)
	}
	if row := rowText(screen, 15); !strings.Contains(row, "MISS") {
		t.Errorf("popup row = %q", row)
	}
	if status := rowText(screen, 24); !strings.Contains(status, "idle") || !strings.Contains(status, "blue 1  red 1") {
		t.Errorf("status = %q", status)
	}
	// Objective A sits at (60,300).
	if got := runeAt(screen, 4, 12); got != 'A' {
		t.Errorf("objective A cell = %q", got)
	}
}

func TestRenderer_EffectsExpire(t *testing.T) {
	screen := newScreen(t)
	cfg := game.DefaultConfig()
	r := NewRenderer(screen, cfg, game.DefaultCatalog())
	now := time.Unix(100, 0)
	r.now = func() time.Time { return now }

	r.FloatingText(game.Ref{Pos: game.Vec2{X: 250, Y: 400}}, "-20", game.DamageTextColor)
	r.Projectile(game.Ref{Pos: game.Vec2{X: 0, Y: 0}}, game.Ref{Pos: game.Vec2{X: 1000, Y: 0}}, game.TeamBlue.Color(), 200*time.Millisecond)
	r.DeathEffect(game.Vec2{X: 100, Y: 500})

	now = now.Add(100 * time.Millisecond)
	r.Draw()
	if got := runeAt(screen, 40, 0); got != '•' {
		t.Errorf("projectile midpoint = %q", got)
	}

	now = now.Add(150 * time.Millisecond)
	r.Draw()
	if len(r.bolts) != 0 || len(r.popups) != 1 || len(r.corpses) != 1 {
		t.Errorf("after 250ms: bolts=%d popups=%d corpses=%d", len(r.bolts), len(r.popups), len(r.corpses))
	}

	now = now.Add(time.Second)
	r.Draw()
	if len(r.popups) != 0 || len(r.corpses) != 0 {
		t.Errorf("after 1.25s: popups=%d corpses=%d", len(r.popups), len(r.corpses))
	}
}

func TestRenderer_WinnerBanner(t *testing.T) {
	screen := newScreen(t)
	r := NewRenderer(screen, game.DefaultConfig(), game.DefaultCatalog())
	r.Winner(game.TeamRed)
	r.Draw()
	if row := rowText(screen, 12); !strings.Contains(row, "RED TEAM WINS!") {
		t.Errorf("banner row = %q", row)
	}
}

func key(k tcell.Key) *tcell.EventKey { return tcell.NewEventKey(k, 0, tcell.ModNone) }

func char(ch rune) *tcell.EventKey { return tcell.NewEventKey(tcell.KeyRune, ch, tcell.ModNone) }

func TestApp_PlaceRemoveStart(t *testing.T) {
	screen := newScreen(t)
	cfg := game.DefaultConfig()
	cat := game.DefaultCatalog()
	r := NewRenderer(screen, cfg, cat)
	b := game.NewBattle(cfg, cat, game.WithPresenter(r))
	runner := game.NewRunner(b)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() { _ = runner.Run(ctx) }()

	app := NewApp(screen, runner, r, cfg, cat)
	if app.Selected().ID != "warrior" {
		t.Fatalf("default selection = %s", app.Selected().ID)
	}

	app.HandleEvent(ctx, char('2'))
	if app.Selected().ID != "archer" {
		t.Errorf("selection after '2' = %s", app.Selected().ID)
	}
	app.HandleEvent(ctx, char('9')) // past the catalogue: ignored
	if app.Selected().ID != "archer" {
		t.Errorf("selection after '9' = %s", app.Selected().ID)
	}

	// Blue half: place an archer.
	app.HandleEvent(ctx, key(tcell.KeyEnter))
	// Far right: a red rogue.
	app.HandleEvent(ctx, char('4'))
	for i := 0; i < 60; i++ {
		app.HandleEvent(ctx, key(tcell.KeyRight))
	}
	if app.cx != 79 {
		t.Errorf("cursor x = %d, want clamped to 79", app.cx)
	}
	app.HandleEvent(ctx, char(' '))

	f, err := runner.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Units) != 2 {
		t.Fatalf("units = %d, want 2", len(f.Units))
	}
	if u := f.Units[0]; u.Team != game.TeamBlue || u.TypeID != "archer" || u.Label != "B1" {
		t.Errorf("first unit = %+v", u)
	}
	if u := f.Units[1]; u.Team != game.TeamRed || u.TypeID != "rogue" || u.Label != "R1" {
		t.Errorf("second unit = %+v", u)
	}

	// The rogue was clamped inside the arena edge, one cell to the left.
	app.HandleEvent(ctx, key(tcell.KeyLeft))
	app.HandleEvent(ctx, char('x'))
	if f, _ = runner.Snapshot(ctx); len(f.Units) != 1 {
		t.Errorf("units after remove = %d", len(f.Units))
	}
	app.HandleEvent(ctx, char('x'))
	if !strings.Contains(r.status, "nothing to remove") {
		t.Errorf("status = %q", r.status)
	}

	app.HandleEvent(ctx, char('s'))
	if f, _ = runner.Snapshot(ctx); f.State != game.MatchRunning {
		t.Errorf("state after 's' = %s", f.State)
	}
	app.HandleEvent(ctx, key(tcell.KeyEnter))
	if !strings.Contains(r.status, game.ErrMatchStarted.Error()) {
		t.Errorf("place after start status = %q", r.status)
	}

	if app.HandleEvent(ctx, char('q')) {
		t.Error("'q' did not quit")
	}
}
