package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded battle event.
type SimLogEntry struct {
	Tick     int
	Unit     string  // label e.g. "B1", "R3", or "--" for global events
	Team     string  // "blue", "red", or "--"
	Category string  // placement, match, move, attack, travel, damage, death, objective
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] B1   attack    hit              → R2 at 48px (roll 0.412 / 0.95)
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Tick, e.Unit, e.Category, e.Key, e.Value)
}

// SimLog collects structured battle events. Unlike BattleLog (UI
// ring-buffer), SimLog is unbounded and machine-readable.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-tick movement entries
// are also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add records a new entry.
func (sl *SimLog) Add(tick int, unit, team, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Unit:     unit,
		Team:     team,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, unit, team, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, unit, team, category, key, value, numVal)
}

// Len returns the number of recorded entries.
func (sl *SimLog) Len() int { return len(sl.entries) }

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Since returns entries recorded after the first n.
func (sl *SimLog) Since(n int) []SimLogEntry {
	if n >= len(sl.entries) {
		return nil
	}
	return sl.entries[n:]
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterUnit returns entries for a specific unit label.
func (sl *SimLog) FilterUnit(label string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Unit == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range sl.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable summary of the battle state.
func (sl *SimLog) Summary(b *Battle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d (%s) ---\n", b.TickCount(), b.Match().State())

	alive := map[Team]int{}
	for _, u := range b.units {
		alive[u.Team]++
	}
	fmt.Fprintf(&sb, "Alive: blue=%d  red=%d\n", alive[TeamBlue], alive[TeamRed])
	for _, o := range b.objectives {
		fmt.Fprintf(&sb, "Objective %s: %.0f/%.0f (%.0f%%)\n", o.ID, o.HP, o.MaxHP, o.Percent())
	}
	fmt.Fprintf(&sb, "In flight: %d\n", b.combat.InFlight())
	var incoming []string
	for _, u := range b.units {
		if n := b.combat.travel.inFlightAt(u.ID); n > 0 {
			incoming = append(incoming, fmt.Sprintf("%s=%d", u.Label, n))
		}
	}
	if len(incoming) > 0 {
		fmt.Fprintf(&sb, "Incoming: %s\n", strings.Join(incoming, "  "))
	}

	counts := map[string]int{}
	for _, e := range sl.entries {
		counts[e.Category]++
	}
	sb.WriteString("Events: ")
	for _, c := range []string{"placement", "match", "attack", "travel", "damage", "death", "objective"} {
		if n := counts[c]; n > 0 {
			fmt.Fprintf(&sb, "%s=%d  ", c, n)
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}
