package game

import (
	"image/color"
	"sync"
	"time"
)

// RecordedText is one FloatingText call.
type RecordedText struct {
	Target Ref
	Text   string
	Color  color.RGBA
}

// RecordedProjectile is one Projectile call.
type RecordedProjectile struct {
	From, To Ref
	Color    color.RGBA
	Flight   time.Duration
}

// Recorder is a Presenter that keeps every call for later inspection. The
// headless report and tests use it in place of a renderer.
type Recorder struct {
	mu          sync.Mutex
	Frames      int
	LastFrame   Frame
	Texts       []RecordedText
	Projectiles []RecordedProjectile
	Deaths      []Vec2
	Health      map[ObjectiveID][]float64
	Winners     []Team
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{Health: make(map[ObjectiveID][]float64)}
}

func (r *Recorder) Frame(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Frames++
	r.LastFrame = f
}

func (r *Recorder) FloatingText(target Ref, text string, c color.RGBA) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Texts = append(r.Texts, RecordedText{Target: target, Text: text, Color: c})
}

func (r *Recorder) Projectile(from, to Ref, c color.RGBA, flight time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Projectiles = append(r.Projectiles, RecordedProjectile{From: from, To: to, Color: c, Flight: flight})
}

func (r *Recorder) DeathEffect(pos Vec2) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Deaths = append(r.Deaths, pos)
}

func (r *Recorder) ObjectiveHealth(id ObjectiveID, percent float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Health[id] = append(r.Health[id], percent)
}

func (r *Recorder) Winner(team Team) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Winners = append(r.Winners, team)
}

// CountText returns how many floating texts with exactly this text were shown.
func (r *Recorder) CountText(text string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.Texts {
		if t.Text == text {
			n++
		}
	}
	return n
}
