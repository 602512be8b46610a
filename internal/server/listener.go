package server

import (
	"github.com/lazypower/sensorgraph/internal/metrics"
	"github.com/lazypower/sensorgraph/internal/presence"
	"github.com/lazypower/sensorgraph/internal/store"
	"github.com/rs/zerolog"
)

// recorder turns presence notifications into metrics, journal entries and
// log lines.
type recorder struct {
	tracker *presence.Tracker
	journal *store.DB
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func (r *recorder) TagSeen(id string, fresh bool) {
	r.metrics.TagReads.Inc()
	r.metrics.ObservePresence(r.tracker.Len())
	if !fresh {
		return
	}
	r.metrics.TagsSeen.Inc()
	r.append(store.KindTagSeen, id, "")
	r.log.Info().Str("tag", id).Msg("tag arrived")
}

func (r *recorder) TagEvicted(id string) {
	r.metrics.TagEvictions.Inc()
	r.metrics.ObservePresence(r.tracker.Len())
	r.append(store.KindTagEvicted, id, "")
	r.log.Info().Str("tag", id).Msg("tag left")
}

func (r *recorder) ReaderError(err error) {
	r.metrics.ReaderErrors.Inc()
	r.append(store.KindReaderError, "rfid", err.Error())
	r.log.Warn().Err(err).Msg("rfid reader error")
}

func (r *recorder) append(kind store.Kind, subject, detail string) {
	if r.journal == nil {
		return
	}
	if _, err := r.journal.Append(kind, subject, detail); err != nil {
		r.log.Warn().Err(err).Str("kind", string(kind)).Msg("journal append failed")
	}
}
