package game

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Placement is one pre-start unit in a scenario roster.
type Placement struct {
	Unit string  `yaml:"unit"`
	Team string  `yaml:"team"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// Scenario is a saved roster that can be replayed into an idle battle.
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Seed        int64       `yaml:"seed"`
	Placements  []Placement `yaml:"placements"`
}

// ParseTeam accepts "blue"/"1" and "red"/"2", case-insensitively.
func ParseTeam(s string) (Team, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "blue", "1":
		return TeamBlue, nil
	case "red", "2":
		return TeamRed, nil
	}
	return TeamNone, fmt.Errorf("%w: %q", ErrInvalidTeam, s)
}

// LoadScenario reads a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	s, err := ParseScenario(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScenario decodes a scenario document and checks its team names.
func ParseScenario(b []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if len(s.Placements) == 0 {
		return nil, errors.New("scenario has no placements")
	}
	for i, p := range s.Placements {
		if _, err := ParseTeam(p.Team); err != nil {
			return nil, fmt.Errorf("placement %d: %w", i, err)
		}
		if p.Unit == "" {
			return nil, fmt.Errorf("placement %d: missing unit", i)
		}
	}
	return &s, nil
}

// Apply places every unit of the roster into b, stopping at the first error.
func (s *Scenario) Apply(b *Battle) error {
	for i, p := range s.Placements {
		team, err := ParseTeam(p.Team)
		if err != nil {
			return fmt.Errorf("placement %d: %w", i, err)
		}
		if _, err := b.PlaceUnit(p.Unit, team, Vec2{X: p.X, Y: p.Y}); err != nil {
			return fmt.Errorf("placement %d: %w", i, err)
		}
	}
	return nil
}
