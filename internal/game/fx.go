package game

import (
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	floatRise      = 30.0 // px a popup climbs over its lifetime
	deathRingMax   = 28.0 // px radius the death ring grows to
	projectileTail = 0.18 // fraction of the path drawn behind the head
)

type floatingText struct {
	pos  Vec2
	text string
	col  color.RGBA
	born time.Duration
}

// shot is a projectile in flight, drawn from the attacker toward the target
// position captured when it was fired.
type shot struct {
	from, to Vec2
	col      color.RGBA
	born     time.Duration
	flight   time.Duration
}

type deathMark struct {
	pos  Vec2
	born time.Duration
}

// effectLayer is the window's Presenter: it turns simulation effects into
// short-lived visuals keyed on wall-clock time.
type effectLayer struct {
	clock     func() time.Duration
	textLife  time.Duration
	deathLife time.Duration

	texts  []floatingText
	shots  []shot
	deaths []deathMark
	health [2]float64 // objective bar percentages, A then B
	winner Team
}

func newEffectLayer(cfg Config, clock func() time.Duration) *effectLayer {
	return &effectLayer{
		clock:     clock,
		textLife:  cfg.FloatingTextDuration(),
		deathLife: cfg.DeathEffectDuration(),
		health:    [2]float64{100, 100},
	}
}

func (fx *effectLayer) Frame(Frame) {}

func (fx *effectLayer) FloatingText(target Ref, s string, c color.RGBA) {
	fx.texts = append(fx.texts, floatingText{pos: target.Pos, text: s, col: c, born: fx.clock()})
}

func (fx *effectLayer) Projectile(from, to Ref, c color.RGBA, flight time.Duration) {
	fx.shots = append(fx.shots, shot{from: from.Pos, to: to.Pos, col: c, born: fx.clock(), flight: flight})
}

func (fx *effectLayer) DeathEffect(pos Vec2) {
	fx.deaths = append(fx.deaths, deathMark{pos: pos, born: fx.clock()})
}

func (fx *effectLayer) ObjectiveHealth(id ObjectiveID, percent float64) {
	fx.health[objectiveIndex(id)] = percent
}

func (fx *effectLayer) Winner(team Team) { fx.winner = team }

// prune drops every effect whose lifetime has passed.
func (fx *effectLayer) prune(now time.Duration) {
	texts := fx.texts[:0]
	for _, t := range fx.texts {
		if now-t.born < fx.textLife {
			texts = append(texts, t)
		}
	}
	fx.texts = texts

	shots := fx.shots[:0]
	for _, s := range fx.shots {
		if now-s.born < s.flight {
			shots = append(shots, s)
		}
	}
	fx.shots = shots

	deaths := fx.deaths[:0]
	for _, d := range fx.deaths {
		if now-d.born < fx.deathLife {
			deaths = append(deaths, d)
		}
	}
	fx.deaths = deaths
}

func (fx *effectLayer) reset() {
	fx.texts, fx.shots, fx.deaths = nil, nil, nil
	fx.health = [2]float64{100, 100}
	fx.winner = TeamNone
}

func lifeFraction(now, born, life time.Duration) float64 {
	if life <= 0 {
		return 1
	}
	return clamp(float64(now-born)/float64(life), 0, 1)
}

// drawShots renders each projectile as a bright head with a short fading
// tail in the attacker's team colour.
func (fx *effectLayer) drawShots(screen *ebiten.Image, offX, offY int, now time.Duration) {
	ox, oy := float32(offX), float32(offY)
	for _, s := range fx.shots {
		headT := lifeFraction(now, s.born, s.flight)
		tailT := math.Max(0, headT-projectileTail)
		hx := float32(s.from.X + (s.to.X-s.from.X)*headT)
		hy := float32(s.from.Y + (s.to.Y-s.from.Y)*headT)

		// Split the tail into segments so it fades from head to tail.
		const nSeg = 4
		for i := 0; i < nSeg; i++ {
			t0 := tailT + (headT-tailT)*float64(i)/nSeg
			t1 := tailT + (headT-tailT)*float64(i+1)/nSeg
			x0 := float32(s.from.X + (s.to.X-s.from.X)*t0)
			y0 := float32(s.from.Y + (s.to.Y-s.from.Y)*t0)
			x1 := float32(s.from.X + (s.to.X-s.from.X)*t1)
			y1 := float32(s.from.Y + (s.to.Y-s.from.Y)*t1)
			c := s.col
			c.A = uint8(220 * float32(i+1) / nSeg)
			vector.StrokeLine(screen, ox+x0, oy+y0, ox+x1, oy+y1, 2, c, true)
		}
		vector.FillCircle(screen, ox+hx, oy+hy, 4, s.col, true)
		vector.FillCircle(screen, ox+hx, oy+hy, 1.5, color.RGBA{R: 255, G: 255, B: 240, A: 230}, true)
	}
}

// drawDeaths renders an expanding, fading ring with a cross at each kill.
func (fx *effectLayer) drawDeaths(screen *ebiten.Image, offX, offY int, now time.Duration) {
	ox, oy := float32(offX), float32(offY)
	for _, d := range fx.deaths {
		p := lifeFraction(now, d.born, fx.deathLife)
		a := uint8(255 * (1 - p))
		cx, cy := ox+float32(d.pos.X), oy+float32(d.pos.Y)
		r := float32(8 + (deathRingMax-8)*p)
		vector.StrokeCircle(screen, cx, cy, r, 2, color.RGBA{R: 220, G: 220, B: 220, A: a}, true)
		const arm = 9
		cross := color.RGBA{R: 240, G: 240, B: 240, A: a}
		vector.StrokeLine(screen, cx-arm, cy-arm, cx+arm, cy+arm, 3, cross, true)
		vector.StrokeLine(screen, cx-arm, cy+arm, cx+arm, cy-arm, 3, cross, true)
	}
}

// drawTexts renders popups rising above their target and fading out.
func (fx *effectLayer) drawTexts(screen *ebiten.Image, face text.Face, offX, offY int, now time.Duration) {
	for _, t := range fx.texts {
		p := lifeFraction(now, t.born, fx.textLife)
		w, _ := text.Measure(t.text, face, 0)
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(offX)+t.pos.X-w/2, float64(offY)+t.pos.Y-unitRadius-14-floatRise*p)
		op.ColorScale.ScaleWithColor(t.col)
		op.ColorScale.ScaleAlpha(float32(1 - p))
		text.Draw(screen, t.text, face, op)
	}
}
