package game

import "math"

// Vec2 is a point or direction in arena coordinates (pixels, y grows down).
type Vec2 struct {
	X, Y float64
}

func (a Vec2) Add(b Vec2) Vec2      { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2      { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }
func (a Vec2) Len() float64         { return math.Hypot(a.X, a.Y) }

// Positioned is anything with a centre point on the arena: units and objectives.
type Positioned interface {
	Position() Vec2
}

// Distance returns the centre-to-centre distance between two entities.
func Distance(a, b Positioned) float64 {
	return b.Position().Sub(a.Position()).Len()
}

// Direction returns the unit vector from a's centre toward b's centre.
// ok is false when the centres coincide and no direction exists.
func Direction(a, b Positioned) (dir Vec2, ok bool) {
	d := b.Position().Sub(a.Position())
	l := d.Len()
	if l == 0 {
		return Vec2{}, false
	}
	return Vec2{d.X / l, d.Y / l}, true
}

// clampToArena keeps a centre point inside [margin, size-margin] on both axes.
func clampToArena(p Vec2, w, h, margin float64) Vec2 {
	p.X = clamp(p.X, margin, w-margin)
	p.Y = clamp(p.Y, margin, h-margin)
	return p
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
