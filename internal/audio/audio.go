// Package audio plays short synthesized cues for battle effects.
package audio

import (
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/Garsondee/Arena-Skirmish/internal/game"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Cue is one kind of sound effect.
type Cue int

const (
	CueShot Cue = iota
	CueHit
	CueMiss
	CueDeath
	CueWin
)

func (c Cue) String() string {
	switch c {
	case CueShot:
		return "shot"
	case CueHit:
		return "hit"
	case CueMiss:
		return "miss"
	case CueDeath:
		return "death"
	case CueWin:
		return "win"
	default:
		return "unknown"
	}
}

type note struct {
	freq float64
	dur  time.Duration
}

// cueNotes is the tone sequence for each cue.
var cueNotes = map[Cue][]note{
	CueShot:  {{freq: 1320, dur: 25 * time.Millisecond}},
	CueHit:   {{freq: 880, dur: 50 * time.Millisecond}},
	CueMiss:  {{freq: 330, dur: 40 * time.Millisecond}},
	CueDeath: {{freq: 220, dur: 90 * time.Millisecond}, {freq: 110, dur: 160 * time.Millisecond}},
	CueWin: {
		{freq: 523.25, dur: 120 * time.Millisecond},
		{freq: 659.25, dur: 120 * time.Millisecond},
		{freq: 783.99, dur: 260 * time.Millisecond},
	},
}

// Duration is the total play time of c.
func (c Cue) Duration() time.Duration {
	var d time.Duration
	for _, n := range cueNotes[c] {
		d += n.dur
	}
	return d
}

// cueStreamer builds the finite streamer for c at the given volume (0..1].
func cueStreamer(sr beep.SampleRate, c Cue, volume float64) (beep.Streamer, error) {
	notes := cueNotes[c]
	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		sine, err := generators.SineTone(sr, n.freq)
		if err != nil {
			return nil, err
		}
		parts = append(parts, beep.Take(sr.N(n.dur), sine))
	}
	return withVolume(beep.Seq(parts...), volume), nil
}

func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// Player is a game.Presenter that turns effects into sound. Calls before
// Init succeeds are ignored, so the game runs silently without a device.
type Player struct {
	mu          sync.Mutex
	volume      float64
	mixer       *beep.Mixer
	initialized bool

	// sink receives every cue streamer; it feeds the speaker mixer by default.
	sink func(Cue, beep.Streamer)
}

// NewPlayer creates a player at volume in (0,1].
func NewPlayer(volume float64) *Player {
	p := &Player{
		volume: volume,
		mixer:  &beep.Mixer{},
	}
	p.sink = p.mix
	return p
}

// Init opens the audio device and starts the mixer.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/20)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Close silences the mixer and releases the device.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.initialized = false
}

func (p *Player) mix(_ Cue, s beep.Streamer) {
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// Play queues cue c.
func (p *Player) Play(c Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	s, err := cueStreamer(sampleRate, c, p.volume)
	if err != nil {
		return
	}
	p.sink(c, s)
}

func (p *Player) Frame(game.Frame) {}

func (p *Player) FloatingText(_ game.Ref, text string, _ color.RGBA) {
	if text == "MISS" {
		p.Play(CueMiss)
		return
	}
	p.Play(CueHit)
}

func (p *Player) Projectile(game.Ref, game.Ref, color.RGBA, time.Duration) { p.Play(CueShot) }

func (p *Player) DeathEffect(game.Vec2) { p.Play(CueDeath) }

func (p *Player) ObjectiveHealth(game.ObjectiveID, float64) {}

func (p *Player) Winner(game.Team) { p.Play(CueWin) }
