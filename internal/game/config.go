package game

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MovementMode selects how MoveSpeed is turned into a per-tick step.
type MovementMode string

const (
	// MovementPerTick advances MoveSpeed px every tick regardless of frame
	// time, so effective speed follows the frame rate.
	MovementPerTick MovementMode = "per_tick"
	// MovementPerSecond scales the step by elapsed time so that a unit covers
	// MoveSpeed px per nominal frame at ReferenceRate.
	MovementPerSecond MovementMode = "per_second"
)

// ArenaConfig is the playfield size in px.
type ArenaConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// ObjectivesConfig places the two home bases.
type ObjectivesConfig struct {
	HP float64 `yaml:"hp"`
	A  Vec2    `yaml:"a"`
	B  Vec2    `yaml:"b"`
}

// LogConfig controls the structured combat logger.
type LogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`   // debug, info, warn, error
	Path    string `yaml:"path"`    // empty means stderr
	Console bool   `yaml:"console"` // console encoder instead of JSON
}

// Config is the battle configuration.
type Config struct {
	Arena      ArenaConfig      `yaml:"arena"`
	Objectives ObjectivesConfig `yaml:"objectives"`

	TickRate      int          `yaml:"tick_rate"`      // host frames per second
	ReferenceRate int          `yaml:"reference_rate"` // frames/s that MoveSpeed is tuned for
	Movement      MovementMode `yaml:"movement"`

	TravelMs       int `yaml:"travel_ms"`
	FloatingTextMs int `yaml:"floating_text_ms"`
	DeathEffectMs  int `yaml:"death_effect_ms"`

	Seed        int64     `yaml:"seed"` // 0 picks a time-based seed
	CatalogPath string    `yaml:"catalog"`
	CombatLog   LogConfig `yaml:"combat_log"`
}

// DefaultConfig is a 1000x600 board with the Blue base on the left and the
// Red base on the right.
func DefaultConfig() Config {
	return Config{
		Arena: ArenaConfig{Width: 1000, Height: 600},
		Objectives: ObjectivesConfig{
			HP: 1000,
			A:  Vec2{X: 60, Y: 300},
			B:  Vec2{X: 940, Y: 300},
		},
		TickRate:       60,
		ReferenceRate:  60,
		Movement:       MovementPerTick,
		TravelMs:       int(DefaultTravelDuration / time.Millisecond),
		FloatingTextMs: int(FloatingTextLifetime / time.Millisecond),
		DeathEffectMs:  int(DeathEffectLifetime / time.Millisecond),
	}
}

// LoadConfig reads a YAML config; keys not present keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the simulation cannot run with.
func (c Config) Validate() error {
	if c.Arena.Width <= 0 || c.Arena.Height <= 0 {
		return errors.New("arena size must be positive")
	}
	if c.Objectives.HP <= 0 {
		return errors.New("objective hp must be positive")
	}
	if c.TickRate <= 0 {
		return errors.New("tick_rate must be positive")
	}
	if c.TravelMs < 0 || c.FloatingTextMs < 0 || c.DeathEffectMs < 0 {
		return errors.New("effect durations must not be negative")
	}
	switch c.Movement {
	case MovementPerTick:
	case MovementPerSecond:
		if c.ReferenceRate <= 0 {
			return errors.New("reference_rate must be positive for per_second movement")
		}
	default:
		return fmt.Errorf("unknown movement mode %q", c.Movement)
	}
	return nil
}

// FrameInterval is the host tick spacing.
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

func (c Config) TravelDuration() time.Duration {
	return time.Duration(c.TravelMs) * time.Millisecond
}

func (c Config) FloatingTextDuration() time.Duration {
	return time.Duration(c.FloatingTextMs) * time.Millisecond
}

func (c Config) DeathEffectDuration() time.Duration {
	return time.Duration(c.DeathEffectMs) * time.Millisecond
}

// stepScale converts a frame's elapsed time into the MoveSpeed multiplier.
func (c Config) stepScale(dt time.Duration) float64 {
	if c.Movement != MovementPerSecond {
		return 1
	}
	ref := time.Second / time.Duration(c.ReferenceRate)
	return float64(dt) / float64(ref)
}

// ZoneFor returns the team whose deployment half contains p.
func (c Config) ZoneFor(p Vec2) Team {
	if p.X < c.Arena.Width/2 {
		return TeamBlue
	}
	return TeamRed
}
