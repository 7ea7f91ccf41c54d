// Implements the waiting lines in front of each hospital section.
// FIFO queues serve the wards; priority queues (urgent before ordinary,
// FIFO within a class) serve the emergency room, the laboratory and the OR.

package sim

import (
	"container/heap"
	"fmt"
	"strings"
)

// Unbounded marks a queue without a length limit.
const Unbounded = -1

// LengthFunc is invoked with the queue name and its new length after every
// push or pop.
type LengthFunc func(name string, length int)

// PatientQueue is the behaviour shared by the FIFO and priority queues.
type PatientQueue interface {
	Name() string
	Push(p *Patient)
	Pop() *Patient
	Peek() *Patient
	Len() int
	IsEmpty() bool
	// Full reports whether a bounded queue has reached its limit.
	Full() bool
}

// === FIFOQueue ===

// FIFOQueue holds patients waiting for a ward bed in arrival order.
type FIFOQueue struct {
	name     string
	limit    int
	queue    []*Patient
	onChange LengthFunc
}

// NewFIFOQueue creates a FIFO queue. limit is a maximum length or Unbounded;
// onChange may be nil.
func NewFIFOQueue(name string, limit int, onChange LengthFunc) *FIFOQueue {
	return &FIFOQueue{name: name, limit: limit, onChange: onChange}
}

// Name returns the queue name used in notifications.
func (q *FIFOQueue) Name() string { return q.name }

// Push adds a patient to the back of the queue.
func (q *FIFOQueue) Push(p *Patient) {
	if p == nil {
		panic("FIFOQueue.Push: patient must not be nil")
	}
	if q.Full() {
		violate("push", q.name, "queue at limit %d", q.limit)
	}
	q.queue = append(q.queue, p)
	q.changed()
}

// Pop removes and returns the patient at the front.
func (q *FIFOQueue) Pop() *Patient {
	if len(q.queue) == 0 {
		violate("pop", q.name, "queue is empty")
	}
	p := q.queue[0]
	q.queue[0] = nil
	q.queue = q.queue[1:]
	q.changed()
	return p
}

// Peek returns the front patient without removing it, or nil when empty.
func (q *FIFOQueue) Peek() *Patient {
	if len(q.queue) == 0 {
		return nil
	}
	return q.queue[0]
}

// Len returns the number of waiting patients.
func (q *FIFOQueue) Len() int { return len(q.queue) }

// IsEmpty reports whether nobody is waiting.
func (q *FIFOQueue) IsEmpty() bool { return len(q.queue) == 0 }

// Full reports whether the queue has reached its limit.
func (q *FIFOQueue) Full() bool {
	return q.limit != Unbounded && len(q.queue) >= q.limit
}

func (q *FIFOQueue) changed() {
	if q.onChange != nil {
		q.onChange(q.name, len(q.queue))
	}
}

func (q *FIFOQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, p := range q.queue {
		sb.WriteString(fmt.Sprint(p.ID))
		if i < len(q.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// === PriorityQueue ===

type queueEntry struct {
	patient *Patient
	rank    int
	seq     uint64
}

type entryHeap []queueEntry

func (h entryHeap) Len() int { return len(h) }

// Less orders by class rank, then insertion sequence so equal classes stay FIFO.
func (h entryHeap) Less(i, j int) bool {
	if h[i].rank != h[j].rank {
		return h[i].rank < h[j].rank
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(queueEntry)) }

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = queueEntry{}
	*h = old[:n-1]
	return item
}

// PriorityQueue serves urgent patients before ordinary ones and preserves
// insertion order within a class.
type PriorityQueue struct {
	name     string
	limit    int
	entries  entryHeap
	nextSeq  uint64
	onChange LengthFunc
}

// NewPriorityQueue creates a priority queue. limit is a maximum length or
// Unbounded; onChange may be nil.
func NewPriorityQueue(name string, limit int, onChange LengthFunc) *PriorityQueue {
	return &PriorityQueue{name: name, limit: limit, onChange: onChange}
}

// Name returns the queue name used in notifications.
func (q *PriorityQueue) Name() string { return q.name }

// Push inserts a patient ranked by its class.
func (q *PriorityQueue) Push(p *Patient) {
	if p == nil {
		panic("PriorityQueue.Push: patient must not be nil")
	}
	if q.Full() {
		violate("push", q.name, "queue at limit %d", q.limit)
	}
	heap.Push(&q.entries, queueEntry{patient: p, rank: p.Class.rank(), seq: q.nextSeq})
	q.nextSeq++
	q.changed()
}

// Pop removes and returns the highest-priority patient.
func (q *PriorityQueue) Pop() *Patient {
	if len(q.entries) == 0 {
		violate("pop", q.name, "queue is empty")
	}
	e := heap.Pop(&q.entries).(queueEntry)
	q.changed()
	return e.patient
}

// Peek returns the highest-priority patient without removing it, or nil.
func (q *PriorityQueue) Peek() *Patient {
	if len(q.entries) == 0 {
		return nil
	}
	return q.entries[0].patient
}

// Len returns the number of waiting patients.
func (q *PriorityQueue) Len() int { return len(q.entries) }

// IsEmpty reports whether nobody is waiting.
func (q *PriorityQueue) IsEmpty() bool { return len(q.entries) == 0 }

// Full reports whether the queue has reached its limit.
func (q *PriorityQueue) Full() bool {
	return q.limit != Unbounded && len(q.entries) >= q.limit
}

func (q *PriorityQueue) changed() {
	if q.onChange != nil {
		q.onChange(q.name, len(q.entries))
	}
}
