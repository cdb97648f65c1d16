package game

import "testing"

func TestBattleLog_RingBufferKeepsNewest(t *testing.T) {
	bl := NewBattleLog()
	for i := 0; i < logMaxEntries+5; i++ {
		bl.Add(i, "B1", TeamBlue, "tick")
	}
	got := bl.Recent()
	if len(got) != logMaxEntries {
		t.Fatalf("len = %d, want %d", len(got), logMaxEntries)
	}
	if got[0].Tick != 5 || got[len(got)-1].Tick != logMaxEntries+4 {
		t.Errorf("window = [%d..%d], want [5..%d]", got[0].Tick, got[len(got)-1].Tick, logMaxEntries+4)
	}
}

func TestBattleLog_AddSimEntry(t *testing.T) {
	bl := NewBattleLog()
	bl.AddSimEntry(SimLogEntry{Tick: 1, Unit: "B1", Team: "blue", Category: "move", Key: "step"})
	bl.AddSimEntry(SimLogEntry{Tick: 2, Unit: "R2", Team: "red", Category: "attack", Key: "hit", Value: "→ B1"})
	bl.AddSimEntry(SimLogEntry{Tick: 3, Unit: "--", Team: "--", Category: "match", Key: "start"})

	got := bl.Recent()
	if len(got) != 2 {
		t.Fatalf("entries = %+v, want move skipped", got)
	}
	if got[0].Team != TeamRed || got[0].Label != "R2" || got[0].Message != "hit → B1" {
		t.Errorf("attack entry = %+v", got[0])
	}
	if got[1].Team != TeamNone {
		t.Errorf("global entry team = %s", got[1].Team)
	}
}
