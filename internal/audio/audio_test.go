package audio

import (
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/Garsondee/Arena-Skirmish/internal/game"
	"github.com/gopxl/beep"
)

var _ game.Presenter = (*Player)(nil)

func drain(t *testing.T, s beep.Streamer) (samples int, peak float64) {
	t.Helper()
	buf := make([][2]float64, 512)
	for i := 0; i < 10000; i++ {
		n, ok := s.Stream(buf)
		samples += n
		for _, sm := range buf[:n] {
			peak = math.Max(peak, math.Abs(sm[0]))
		}
		if !ok {
			return samples, peak
		}
	}
	t.Fatal("streamer never finished")
	return 0, 0
}

func TestCueStreamerLength(t *testing.T) {
	sr := beep.SampleRate(8000)
	for _, c := range []Cue{CueShot, CueHit, CueMiss, CueDeath, CueWin} {
		t.Run(c.String(), func(t *testing.T) {
			s, err := cueStreamer(sr, c, 1)
			if err != nil {
				t.Fatalf("cueStreamer: %v", err)
			}
			want := 0
			for _, n := range cueNotes[c] {
				want += sr.N(n.dur)
			}
			if got, _ := drain(t, s); got != want {
				t.Errorf("%s streamed %d samples, want %d", c, got, want)
			}
		})
	}
}

func TestCueVolume(t *testing.T) {
	sr := beep.SampleRate(8000)
	loud, _ := cueStreamer(sr, CueDeath, 1)
	quiet, _ := cueStreamer(sr, CueDeath, 0.25)
	muted, _ := cueStreamer(sr, CueDeath, 0)

	_, pLoud := drain(t, loud)
	_, pQuiet := drain(t, quiet)
	_, pMuted := drain(t, muted)
	if pLoud <= pQuiet {
		t.Errorf("peak at full volume %.3f not above quarter volume %.3f", pLoud, pQuiet)
	}
	if pQuiet > 0.26 {
		t.Errorf("quarter volume peak = %.3f", pQuiet)
	}
	if pMuted != 0 {
		t.Errorf("muted peak = %.3f", pMuted)
	}
}

func TestWinCueIsLongest(t *testing.T) {
	if CueWin.Duration() != 500*time.Millisecond {
		t.Errorf("win cue = %s", CueWin.Duration())
	}
	for _, c := range []Cue{CueShot, CueHit, CueMiss, CueDeath} {
		if c.Duration() >= CueWin.Duration() {
			t.Errorf("%s (%s) not shorter than win", c, c.Duration())
		}
	}
}

func TestPlayerMapsEffectsToCues(t *testing.T) {
	p := NewPlayer(0.5)
	var got []Cue
	p.sink = func(c Cue, _ beep.Streamer) { got = append(got, c) }

	// Not initialized: everything is dropped.
	p.Winner(game.TeamBlue)
	if len(got) != 0 {
		t.Fatalf("cues before Init: %v", got)
	}

	p.initialized = true
	p.Projectile(game.Ref{}, game.Ref{}, color.RGBA{}, 200*time.Millisecond)
	p.FloatingText(game.Ref{}, "MISS", game.MissTextColor)
	p.FloatingText(game.Ref{}, "-25", game.DamageTextColor)
	p.ObjectiveHealth(game.ObjectiveA, 50)
	p.DeathEffect(game.Vec2{})
	p.Winner(game.TeamRed)
	p.Frame(game.Frame{})

	want := []Cue{CueShot, CueMiss, CueHit, CueDeath, CueWin}
	if len(got) != len(want) {
		t.Fatalf("cues = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cue %d = %s, want %s", i, got[i], want[i])
		}
	}
}
