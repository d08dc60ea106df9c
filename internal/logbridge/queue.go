package logbridge

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultCapacity bounds the record queue when no capacity is
// configured.
const DefaultCapacity = 1000

// Queue is the bounded FIFO buffer between log producers on any
// goroutine and the UI goroutine that drains it. When full, the
// oldest record is dropped and counted; the next drain surfaces the
// loss as a single synthesized warning record.
type Queue struct {
	mu      sync.Mutex
	recs    []Record
	head    int
	count   int
	dropped int
}

// NewQueue creates a queue holding at most capacity records.
// Non-positive capacities fall back to DefaultCapacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{recs: make([]Record, capacity)}
}

// Append adds a record, dropping the oldest when full. Never blocks.
func (q *Queue) Append(r Record) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == len(q.recs) {
		q.recs[q.head] = r
		q.head = (q.head + 1) % len(q.recs)
		q.dropped++
		return
	}
	q.recs[(q.head+q.count)%len(q.recs)] = r
	q.count++
}

// Drain removes and returns all queued records in FIFO order. If any
// records were dropped since the last drain, one overflow warning
// record precedes them.
func (q *Queue) Drain() []Record {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 && q.dropped == 0 {
		return nil
	}

	out := make([]Record, 0, q.count+1)
	if q.dropped > 0 {
		out = append(out, overflowRecord(q.dropped))
		q.dropped = 0
	}
	for i := 0; i < q.count; i++ {
		out = append(out, q.recs[(q.head+i)%len(q.recs)])
	}
	q.head = 0
	q.count = 0
	return out
}

// Len returns the number of queued records.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.recs)
}

// Dropped returns how many records were dropped since the last
// drain.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// SetCapacity resizes the queue, keeping the newest records when
// shrinking. Dropped records are counted toward the next overflow
// warning.
func (q *Queue) SetCapacity(capacity int) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if capacity == len(q.recs) {
		return
	}

	keep := q.count
	if keep > capacity {
		q.dropped += keep - capacity
		q.head = (q.head + keep - capacity) % len(q.recs)
		keep = capacity
	}

	recs := make([]Record, capacity)
	for i := 0; i < keep; i++ {
		recs[i] = q.recs[(q.head+i)%len(q.recs)]
	}
	q.recs = recs
	q.head = 0
	q.count = keep
}

func overflowRecord(dropped int) Record {
	return Record{
		Time:    time.Now(),
		Level:   slog.LevelWarn,
		Message: fmt.Sprintf("log overflow: dropped %d oldest records", dropped),
	}
}
