package presence

import (
	"sort"
	"sync"
	"time"
)

// Presence Decay Algorithm:
//   - Every read of a tag resets its age to 0
//   - A read also ages every other registered tag by one
//   - Each tick ages all tags by one, but only once the reader has been
//     quiet for at least QuietPeriod (a burst in flight protects its tags)
//   - A tag whose age exceeds MaxAge is evicted
//   - Something is present while at least one tag is registered

// Options configure the decay behaviour of a Tracker.
type Options struct {
	MaxAge       int
	QuietPeriod  time.Duration
	TickInterval time.Duration
}

// DefaultOptions returns the reference timing: 100ms ticks, a 50ms quiet
// window and eviction after the fourth qualifying tick.
func DefaultOptions() Options {
	return Options{
		MaxAge:       3,
		QuietPeriod:  50 * time.Millisecond,
		TickInterval: 100 * time.Millisecond,
	}
}

// Arrival is one observed read of a tag.
type Arrival struct {
	ID string
	At time.Time
}

// Entry is a registered tag and its current age in ticks.
type Entry struct {
	ID  string
	Age int
}

// Update describes what an arrival changed in the registry.
type Update struct {
	New     bool
	Evicted []string
}

// Tracker holds the decaying registry of recently seen tags.
// It is safe for concurrent use.
type Tracker struct {
	opts Options
	now  func() time.Time

	mu          sync.Mutex
	ages        map[string]int
	lastArrival time.Time
}

// New creates a Tracker using the wall clock.
func New(opts Options) *Tracker {
	return NewWithClock(opts, time.Now)
}

// NewWithClock creates a Tracker that reads time from now.
func NewWithClock(opts Options, now func() time.Time) *Tracker {
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultOptions().MaxAge
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultOptions().TickInterval
	}
	if opts.QuietPeriod < 0 {
		opts.QuietPeriod = 0
	}
	return &Tracker{
		opts: opts,
		now:  now,
		ages: make(map[string]int),
	}
}

// Options returns the options the tracker was built with.
func (t *Tracker) Options() Options {
	return t.opts
}

// RecordArrival registers a read of id at the current time.
func (t *Tracker) RecordArrival(id string) Update {
	return t.Observe(Arrival{ID: id, At: t.now()})
}

// Observe registers a read. The tag is reset to age 0 and every other
// registered tag is aged immediately. An arrival stamped earlier than the
// latest one seen still refreshes its tag but never rewinds the quiet window.
func (t *Tracker) Observe(a Arrival) Update {
	if a.At.IsZero() {
		a.At = t.now()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if a.At.After(t.lastArrival) {
		t.lastArrival = a.At
	}

	_, known := t.ages[a.ID]
	t.ages[a.ID] = 0

	return Update{
		New:     !known,
		Evicted: t.ageLocked(a.ID),
	}
}

// Tick runs one aging cycle and returns the evicted tags. It does nothing
// while the last arrival is more recent than QuietPeriod.
func (t *Tracker) Tick() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.now().Sub(t.lastArrival) < t.opts.QuietPeriod {
		return nil
	}
	return t.ageLocked("")
}

// ageLocked increments every age except the one for skip and evicts tags past
// MaxAge. Callers must hold t.mu.
func (t *Tracker) ageLocked(skip string) []string {
	var evicted []string
	for id := range t.ages {
		if id == skip {
			continue
		}
		t.ages[id]++
		if t.ages[id] > t.opts.MaxAge {
			delete(t.ages, id)
			evicted = append(evicted, id)
		}
	}
	sort.Strings(evicted)
	return evicted
}

// IsPresent reports whether any tag is registered.
func (t *Tracker) IsPresent() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ages) > 0
}

// Len returns the number of registered tags.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ages)
}

// Age returns the age of id and whether it is registered.
func (t *Tracker) Age(id string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	age, ok := t.ages[id]
	return age, ok
}

// Snapshot returns the registered tags sorted by ID.
func (t *Tracker) Snapshot() []Entry {
	t.mu.Lock()
	entries := make([]Entry, 0, len(t.ages))
	for id, age := range t.ages {
		entries = append(entries, Entry{ID: id, Age: age})
	}
	t.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}

// LastArrival returns the timestamp of the most recent arrival.
func (t *Tracker) LastArrival() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastArrival
}
