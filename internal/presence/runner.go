package presence

import (
	"context"
	"time"
)

// Source delivers tag reads from a reader driver. Both channels may be
// closed by the driver when it shuts down.
type Source interface {
	Arrivals() <-chan Arrival
	Errors() <-chan error
}

// Listener is notified about registry changes and reader failures.
// Calls happen outside the tracker lock.
type Listener interface {
	TagSeen(id string, fresh bool)
	TagEvicted(id string)
	ReaderError(err error)
}

// NopListener ignores every notification.
type NopListener struct{}

func (NopListener) TagSeen(string, bool) {}
func (NopListener) TagEvicted(string)    {}
func (NopListener) ReaderError(error)    {}

// Run ticks the tracker every TickInterval until ctx is done.
func (t *Tracker) Run(ctx context.Context, l Listener) error {
	if l == nil {
		l = NopListener{}
	}

	ticker := time.NewTicker(t.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, id := range t.Tick() {
				l.TagEvicted(id)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// Ingest feeds reads from src into the tracker until ctx is done or the
// source has closed both of its channels. Reader errors go to the listener
// and leave the registry untouched.
func (t *Tracker) Ingest(ctx context.Context, src Source, l Listener) error {
	if l == nil {
		l = NopListener{}
	}

	arrivals := src.Arrivals()
	errs := src.Errors()

	for arrivals != nil || errs != nil {
		select {
		case a, ok := <-arrivals:
			if !ok {
				arrivals = nil
				continue
			}
			u := t.Observe(a)
			l.TagSeen(a.ID, u.New)
			for _, id := range u.Evicted {
				l.TagEvicted(id)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			l.ReaderError(err)
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}
