package game

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTravelQueue_PopDueInIssueOrder(t *testing.T) {
	var q travelQueue
	id := uuid.New()
	q.push(travel{attacker: "B1", dueAt: 200 * time.Millisecond, target: Ref{Kind: RefUnit, Unit: id}})
	q.push(travel{attacker: "B2", dueAt: 210 * time.Millisecond})
	q.push(travel{attacker: "R1", dueAt: 200 * time.Millisecond, target: Ref{Kind: RefUnit, Unit: id}})

	if got := q.inFlightAt(id); got != 2 {
		t.Errorf("inFlightAt = %d, want 2", got)
	}
	if due := q.popDue(199 * time.Millisecond); len(due) != 0 {
		t.Fatalf("popped %d flights early", len(due))
	}
	due := q.popDue(200 * time.Millisecond)
	if len(due) != 2 || due[0].attacker != "B1" || due[1].attacker != "R1" {
		t.Fatalf("due = %+v", due)
	}
	if due[0].seq >= due[1].seq {
		t.Error("sequence numbers not increasing")
	}
	if q.len() != 1 {
		t.Errorf("pending = %d, want 1", q.len())
	}

	q.requeue(due[1:])
	if q.len() != 2 || q.pending[0].attacker != "R1" {
		t.Errorf("requeue did not restore order: %+v", q.pending)
	}
}
