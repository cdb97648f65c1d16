package game

import (
	"time"

	"github.com/google/uuid"
)

// travel is an attack in flight. The hit roll is settled when the attack is
// issued; damage or the miss popup lands when the flight completes, and only
// if the target still exists then.
type travel struct {
	seq      uint64
	attacker string // label, for logs
	team     Team
	target   Ref
	hit      bool
	damage   float64
	issuedAt int // tick
	dueAt    time.Duration
}

// travelQueue keeps in-flight attacks in issue order. All flights share one
// duration, so issue order is also completion order.
type travelQueue struct {
	pending []travel
	nextSeq uint64
}

func (q *travelQueue) push(t travel) {
	q.nextSeq++
	t.seq = q.nextSeq
	q.pending = append(q.pending, t)
}

// popDue removes and returns every flight with dueAt <= now, oldest first.
func (q *travelQueue) popDue(now time.Duration) []travel {
	var due []travel
	kept := q.pending[:0]
	for _, t := range q.pending {
		if t.dueAt <= now {
			due = append(due, t)
		} else {
			kept = append(kept, t)
		}
	}
	q.pending = kept
	return due
}

// requeue puts unresolved flights back at the front, keeping their order.
func (q *travelQueue) requeue(ts []travel) {
	if len(ts) == 0 {
		return
	}
	q.pending = append(append([]travel(nil), ts...), q.pending...)
}

func (q *travelQueue) len() int { return len(q.pending) }

// inFlightAt counts flights aimed at one unit.
func (q *travelQueue) inFlightAt(id uuid.UUID) int {
	n := 0
	for _, t := range q.pending {
		if t.target.Kind == RefUnit && t.target.Unit == id {
			n++
		}
	}
	return n
}
