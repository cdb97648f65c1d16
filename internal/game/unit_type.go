package game

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Stats is the immutable combat block of a unit type.
type Stats struct {
	HP             float64
	Attack         float64
	Range          float64       // px, centre to centre
	HitChance      float64       // probability in [0,1]
	MoveSpeed      float64       // px per tick
	AttackCooldown time.Duration // minimum spacing between two attacks of one unit
}

// UnitType is a static unit definition shared by every unit placed from it.
// It is loaded once at startup and never mutated.
type UnitType struct {
	ID    string
	Name  string
	Label string // short display label, usually an emoji
	Glyph rune   // single-cell glyph for terminal rendering
	Color color.RGBA
	Shape Shape
	Stats Stats
}

// Shape is the display silhouette of a unit type.
type Shape string

const (
	ShapeCircle  Shape = "circle"
	ShapeSquare  Shape = "square"
	ShapeDiamond Shape = "diamond"
	ShapeSkewed  Shape = "skewed"
)

// Catalog holds every unit type available for placement, in declaration order.
type Catalog struct {
	types map[string]*UnitType
	order []*UnitType
}

var (
	ErrUnknownUnitType = errors.New("unknown unit type")
	errInvalidStats    = errors.New("invalid unit stats")
)

// DefaultCatalog returns the four stock unit types.
func DefaultCatalog() *Catalog {
	c := &Catalog{types: make(map[string]*UnitType)}
	// Values mirror assets/units.yaml.
	c.add(&UnitType{
		ID: "warrior", Name: "Warrior", Label: "🛡️", Glyph: 'W',
		Color: color.RGBA{R: 0xd3, G: 0x54, B: 0x00, A: 0xff}, Shape: ShapeCircle,
		Stats: Stats{HP: 200, Attack: 20, Range: 60, HitChance: 0.95, MoveSpeed: 1.0, AttackCooldown: 1000 * time.Millisecond},
	})
	c.add(&UnitType{
		ID: "archer", Name: "Archer", Label: "🏹", Glyph: 'A',
		Color: color.RGBA{R: 0x27, G: 0xae, B: 0x60, A: 0xff}, Shape: ShapeSquare,
		Stats: Stats{HP: 80, Attack: 12, Range: 300, HitChance: 0.85, MoveSpeed: 0.8, AttackCooldown: 800 * time.Millisecond},
	})
	c.add(&UnitType{
		ID: "mage", Name: "Mage", Label: "🔮", Glyph: 'M',
		Color: color.RGBA{R: 0x29, G: 0x80, B: 0xb9, A: 0xff}, Shape: ShapeDiamond,
		Stats: Stats{HP: 70, Attack: 40, Range: 180, HitChance: 0.70, MoveSpeed: 0.6, AttackCooldown: 1500 * time.Millisecond},
	})
	c.add(&UnitType{
		ID: "rogue", Name: "Rogue", Label: "🗡️", Glyph: 'R',
		Color: color.RGBA{R: 0x8e, G: 0x44, B: 0xad, A: 0xff}, Shape: ShapeSkewed,
		Stats: Stats{HP: 90, Attack: 25, Range: 50, HitChance: 0.90, MoveSpeed: 2.2, AttackCooldown: 600 * time.Millisecond},
	})
	return c
}

func (c *Catalog) add(t *UnitType) {
	if _, dup := c.types[t.ID]; !dup {
		c.order = append(c.order, t)
	}
	c.types[t.ID] = t
}

// Get looks up a unit type by id.
func (c *Catalog) Get(id string) (*UnitType, bool) {
	t, ok := c.types[id]
	return t, ok
}

// Types returns the unit types in declaration order.
func (c *Catalog) Types() []*UnitType {
	out := make([]*UnitType, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of unit types.
func (c *Catalog) Len() int { return len(c.order) }

// --- YAML ---

type catalogFile struct {
	Units []unitTypeFile `yaml:"units"`
}

type unitTypeFile struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
	Glyph string `yaml:"glyph"`
	Color string `yaml:"color"`
	Shape string `yaml:"shape"`
	Stats struct {
		HP               float64 `yaml:"hp"`
		Attack           float64 `yaml:"attack"`
		Range            float64 `yaml:"range"`
		HitChance        float64 `yaml:"hit_chance"`
		MoveSpeed        float64 `yaml:"move_speed"`
		AttackCooldownMs int     `yaml:"attack_cooldown_ms"`
	} `yaml:"stats"`
}

// LoadCatalog reads a unit catalogue YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read unit catalogue: %w", err)
	}
	c, err := ParseCatalog(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes and validates a unit catalogue document.
func ParseCatalog(b []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode unit catalogue: %w", err)
	}
	if len(f.Units) == 0 {
		return nil, errors.New("unit catalogue is empty")
	}
	c := &Catalog{types: make(map[string]*UnitType, len(f.Units))}
	for _, u := range f.Units {
		t, err := u.build()
		if err != nil {
			return nil, err
		}
		if _, dup := c.types[t.ID]; dup {
			return nil, fmt.Errorf("duplicate unit type %q", t.ID)
		}
		c.add(t)
	}
	return c, nil
}

func (u unitTypeFile) build() (*UnitType, error) {
	if u.ID == "" {
		return nil, errors.New("unit type without id")
	}
	t := &UnitType{
		ID:    u.ID,
		Name:  u.Name,
		Label: u.Label,
		Shape: Shape(u.Shape),
		Stats: Stats{
			HP:             u.Stats.HP,
			Attack:         u.Stats.Attack,
			Range:          u.Stats.Range,
			HitChance:      u.Stats.HitChance,
			MoveSpeed:      u.Stats.MoveSpeed,
			AttackCooldown: time.Duration(u.Stats.AttackCooldownMs) * time.Millisecond,
		},
	}
	if t.Name == "" {
		t.Name = u.ID
	}
	if t.Shape == "" {
		t.Shape = ShapeCircle
	}
	if u.Glyph != "" {
		t.Glyph = []rune(u.Glyph)[0]
	} else {
		t.Glyph = []rune(t.Name)[0]
	}
	t.Color = color.RGBA{R: 0x95, G: 0xa5, B: 0xa6, A: 0xff}
	if u.Color != "" {
		c, err := colorful.Hex(u.Color)
		if err != nil {
			return nil, fmt.Errorf("unit type %q: color %q: %w", u.ID, u.Color, err)
		}
		r, g, b := c.RGB255()
		t.Color = color.RGBA{R: r, G: g, B: b, A: 0xff}
	}
	if err := t.Stats.validate(); err != nil {
		return nil, fmt.Errorf("unit type %q: %w", u.ID, err)
	}
	return t, nil
}

func (s Stats) validate() error {
	switch {
	case s.HP <= 0:
		return fmt.Errorf("%w: hp must be positive", errInvalidStats)
	case s.Attack < 0:
		return fmt.Errorf("%w: attack must not be negative", errInvalidStats)
	case s.Range < 0:
		return fmt.Errorf("%w: range must not be negative", errInvalidStats)
	case s.HitChance < 0 || s.HitChance > 1:
		return fmt.Errorf("%w: hit_chance %.2f outside [0,1]", errInvalidStats, s.HitChance)
	case s.MoveSpeed < 0:
		return fmt.Errorf("%w: move_speed must not be negative", errInvalidStats)
	case s.AttackCooldown < 0:
		return fmt.Errorf("%w: attack_cooldown_ms must not be negative", errInvalidStats)
	}
	return nil
}
