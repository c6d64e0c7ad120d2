package entry

import (
	"container/heap"
	"sync"
	"time"

	"github.com/emotion-constellation/constellation-core/internal/events"
)

// Cue is a one-time side effect scheduled at an offset from the timeline start
type Cue struct {
	Name     events.Name   `json:"name"`
	At       time.Duration `json:"at"`
	Priority int           `json:"priority"` // Lower values = higher priority
}

// CueQueue is a priority queue of cues ordered by offset
type CueQueue struct {
	cues []*Cue
	mu   sync.RWMutex
}

// NewCueQueue creates a new cue queue
func NewCueQueue() *CueQueue {
	cq := &CueQueue{
		cues: make([]*Cue, 0),
	}
	heap.Init(cq)
	return cq
}

// Len returns the number of cues in the queue
func (cq *CueQueue) Len() int {
	return len(cq.cues)
}

// Less compares two cues by offset and priority
func (cq *CueQueue) Less(i, j int) bool {
	if cq.cues[i].At != cq.cues[j].At {
		return cq.cues[i].At < cq.cues[j].At
	}
	return cq.cues[i].Priority < cq.cues[j].Priority
}

// Swap swaps two cues in the queue
func (cq *CueQueue) Swap(i, j int) {
	cq.cues[i], cq.cues[j] = cq.cues[j], cq.cues[i]
}

// Push adds a cue to the queue
func (cq *CueQueue) Push(x interface{}) {
	cq.cues = append(cq.cues, x.(*Cue))
}

// Pop removes and returns the last cue of the heap slice
func (cq *CueQueue) Pop() interface{} {
	old := cq.cues
	n := len(old)
	cue := old[n-1]
	old[n-1] = nil
	cq.cues = old[0 : n-1]
	return cue
}

// Schedule adds a cue to the queue (thread-safe)
func (cq *CueQueue) Schedule(cue *Cue) {
	cq.mu.Lock()
	defer cq.mu.Unlock()
	heap.Push(cq, cue)
}

// Due removes and returns every cue at or before elapsed, in order (thread-safe)
func (cq *CueQueue) Due(elapsed time.Duration) []*Cue {
	cq.mu.Lock()
	defer cq.mu.Unlock()
	var due []*Cue
	for cq.Len() > 0 && cq.cues[0].At <= elapsed {
		due = append(due, heap.Pop(cq).(*Cue))
	}
	return due
}

// Peek returns the next cue without removing it (thread-safe)
func (cq *CueQueue) Peek() *Cue {
	cq.mu.RLock()
	defer cq.mu.RUnlock()
	if cq.Len() == 0 {
		return nil
	}
	return cq.cues[0]
}

// Size returns the current queue size (thread-safe)
func (cq *CueQueue) Size() int {
	cq.mu.RLock()
	defer cq.mu.RUnlock()
	return cq.Len()
}

// IsEmpty returns true if the queue is empty (thread-safe)
func (cq *CueQueue) IsEmpty() bool {
	return cq.Size() == 0
}
