package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	logPanelWidth = 320
	logMaxEntries = 60
	logLineHeight = 11
)

// BattleEntry is a single line in the battle log.
type BattleEntry struct {
	Tick    int
	Label   string // e.g. "B1", "R3", "--"
	Team    Team
	Message string
}

// BattleLog is a ring buffer of battle events rendered on-screen.
type BattleLog struct {
	entries []BattleEntry
	head    int
	count   int
}

// NewBattleLog creates a battle log with a fixed capacity.
func NewBattleLog() *BattleLog {
	return &BattleLog{
		entries: make([]BattleEntry, logMaxEntries),
	}
}

// Add appends an entry to the log, overwriting the oldest when full.
func (bl *BattleLog) Add(tick int, label string, team Team, msg string) {
	bl.entries[bl.head] = BattleEntry{
		Tick:    tick,
		Label:   label,
		Team:    team,
		Message: msg,
	}
	bl.head = (bl.head + 1) % logMaxEntries
	if bl.count < logMaxEntries {
		bl.count++
	}
}

// AddSimEntry copies a SimLog event into the panel. Per-tick movement is
// skipped; it would flood the panel.
func (bl *BattleLog) AddSimEntry(e SimLogEntry) {
	if e.Category == "move" {
		return
	}
	team := TeamNone
	switch e.Team {
	case "blue":
		team = TeamBlue
	case "red":
		team = TeamRed
	}
	bl.Add(e.Tick, e.Unit, team, e.Key+" "+e.Value)
}

// Recent returns entries in chronological order (oldest first).
func (bl *BattleLog) Recent() []BattleEntry {
	result := make([]BattleEntry, bl.count)
	for i := 0; i < bl.count; i++ {
		idx := (bl.head - bl.count + i + logMaxEntries) % logMaxEntries
		result[i] = bl.entries[idx]
	}
	return result
}

// Draw renders the battle log panel on the right side of the screen.
func (bl *BattleLog) Draw(screen *ebiten.Image, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 14, G: 16, B: 22, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 60, G: 66, B: 90, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), 16, color.RGBA{R: 24, G: 28, B: 40, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "BATTLE LOG", panelX+8, 2)
	vector.StrokeLine(screen, float32(panelX), 16, float32(panelX+logPanelWidth), 16, 1.0, color.RGBA{R: 60, G: 70, B: 100, A: 200}, false)

	entries := bl.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - 24) / logLineHeight
	startIdx := 0
	if len(entries) > maxVisible {
		startIdx = len(entries) - maxVisible
	}

	visible := entries[startIdx:]
	recent := 3 // how many latest entries to highlight

	y := 20
	for i, e := range visible {
		if i >= len(visible)-recent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), float32(logLineHeight), color.RGBA{R: 34, G: 40, B: 56, A: 160}, false)
		}

		dotCol := color.RGBA{R: 120, G: 120, B: 120, A: 255}
		if e.Team.Valid() {
			dotCol = e.Team.Color()
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+3), 3, 5, dotCol, false)

		line := fmt.Sprintf("%4d [%s] %s", e.Tick, e.Label, e.Message)
		ebitenutil.DebugPrintAt(screen, line, panelX+12, y)
		y += logLineHeight
	}
}
