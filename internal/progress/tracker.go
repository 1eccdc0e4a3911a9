// Package progress tracks how many items of a persistence run have been durably saved.
package progress

import (
	"sync"

	"github.com/lamim/contentforge/pkg/models"
)

// Observer receives a copy of the progress after every change
type Observer func(models.SaveProgress)

// TotalItems counts the items a run will try to save: one for a non-empty
// summary plus every question of every set. It depends only on the content.
func TotalItems(c models.GeneratedContent) int {
	total := 0
	if c.HasSummary() {
		total = 1
	}
	for _, kind := range models.Kinds {
		for _, l := range models.Levels {
			total += c.QuestionCount(kind, l)
		}
	}
	return total
}

// Tracker holds the SaveProgress of one run. It has a single writer and any
// number of readers and observers.
type Tracker struct {
	mu        sync.Mutex
	state     models.SaveProgress
	observers map[int]Observer
	nextID    int
}

// NewTracker creates a tracker for content
func NewTracker(c models.GeneratedContent) *Tracker {
	return NewTrackerWithTotal(TotalItems(c))
}

// NewTrackerWithTotal creates a tracker with a precomputed total
func NewTrackerWithTotal(total int) *Tracker {
	return &Tracker{
		state:     models.SaveProgress{Total: max(0, total), Status: "Pending"},
		observers: make(map[int]Observer),
	}
}

// Subscribe registers an observer and immediately sends it the current
// state. The returned func removes it.
func (t *Tracker) Subscribe(o Observer) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.observers[id] = o
	snapshot := t.state
	t.mu.Unlock()

	o(snapshot)

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.observers, id)
	}
}

// Snapshot returns a copy of the current progress
func (t *Tracker) Snapshot() models.SaveProgress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Advance records n durably saved items. Current never exceeds Total and
// non-positive n only updates the status.
func (t *Tracker) Advance(n int, status string) {
	t.update(func(s *models.SaveProgress) {
		if n > 0 {
			s.Current = min(s.Total, s.Current+n)
		}
		s.Status = status
	})
}

// SetStatus changes the status without counting anything
func (t *Tracker) SetStatus(status string) {
	t.update(func(s *models.SaveProgress) { s.Status = status })
}

// Finish marks the run as complete. Later calls are ignored.
func (t *Tracker) Finish(status string) {
	t.update(func(s *models.SaveProgress) {
		s.Status = status
		s.Done = true
	})
}

func (t *Tracker) update(fn func(*models.SaveProgress)) {
	t.mu.Lock()
	if t.state.Done {
		t.mu.Unlock()
		return
	}
	fn(&t.state)
	snapshot := t.state
	observers := make([]Observer, 0, len(t.observers))
	for id := 0; id < t.nextID; id++ {
		if o, ok := t.observers[id]; ok {
			observers = append(observers, o)
		}
	}
	t.mu.Unlock()

	// Observers run outside the lock so they may read Snapshot
	for _, o := range observers {
		o(snapshot)
	}
}
