// Package effects holds delayed side effects (pacing messages, auto-advance,
// resuming playback) until their due time. The queue is not safe for
// concurrent use: a single owner schedules and drains it.
package effects

import (
	"sort"
	"time"

	"huixue/internal/platform/clock"
)

// Token identifies one scheduled effect so it can be cancelled.
type Token uint64

type entry struct {
	token Token
	label string
	due   time.Time
	fn    func()
}

type Queue struct {
	clock   clock.Clock
	next    Token
	pending []entry
}

func New(clk clock.Clock) *Queue {
	return &Queue{clock: clk}
}

// Schedule registers fn to run once delay has elapsed on the queue's clock.
// Effects with equal due times run in scheduling order.
func (q *Queue) Schedule(delay time.Duration, label string, fn func()) Token {
	if delay < 0 {
		delay = 0
	}
	q.next++
	q.pending = append(q.pending, entry{
		token: q.next,
		label: label,
		due:   q.clock.Now().Add(delay),
		fn:    fn,
	})
	return q.next
}

// Cancel drops a pending effect. It reports false when the effect already
// ran or was cancelled.
func (q *Queue) Cancel(token Token) bool {
	for i, e := range q.pending {
		if e.token == token {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return true
		}
	}
	return false
}

// CancelAll drops every pending effect and returns how many were dropped.
func (q *Queue) CancelAll() int {
	n := len(q.pending)
	q.pending = nil
	return n
}

// RunDue runs every effect whose due time is not after now, earliest first.
// Effects scheduled by a running effect are considered in the same pass.
func (q *Queue) RunDue() int {
	ran := 0
	for {
		e, ok := q.popDue(q.clock.Now())
		if !ok {
			return ran
		}
		e.fn()
		ran++
	}
}

// Flush runs all pending effects regardless of due time, in due order.
func (q *Queue) Flush() int {
	ran := 0
	for len(q.pending) > 0 {
		q.sort()
		e := q.pending[0]
		q.pending = q.pending[1:]
		e.fn()
		ran++
	}
	return ran
}

func (q *Queue) Pending() int { return len(q.pending) }

// Labels lists pending effect labels in due order.
func (q *Queue) Labels() []string {
	q.sort()
	out := make([]string, 0, len(q.pending))
	for _, e := range q.pending {
		out = append(out, e.label)
	}
	return out
}

// NextDue returns the earliest due time, if any effect is pending.
func (q *Queue) NextDue() (time.Time, bool) {
	if len(q.pending) == 0 {
		return time.Time{}, false
	}
	q.sort()
	return q.pending[0].due, true
}

func (q *Queue) popDue(now time.Time) (entry, bool) {
	if len(q.pending) == 0 {
		return entry{}, false
	}
	q.sort()
	head := q.pending[0]
	if head.due.After(now) {
		return entry{}, false
	}
	q.pending = q.pending[1:]
	return head, true
}

func (q *Queue) sort() {
	sort.SliceStable(q.pending, func(i, j int) bool {
		if q.pending[i].due.Equal(q.pending[j].due) {
			return q.pending[i].token < q.pending[j].token
		}
		return q.pending[i].due.Before(q.pending[j].due)
	})
}
