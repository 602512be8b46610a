package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a journal entry.
type Kind string

const (
	KindTagSeen      Kind = "tag_seen"
	KindTagEvicted   Kind = "tag_evicted"
	KindReaderError  Kind = "reader_error"
	KindLEDOn        Kind = "led_on"
	KindLEDOff       Kind = "led_off"
	KindLEDsCleared  Kind = "leds_cleared"
	KindAdapterError Kind = "adapter_error"
)

// Event is one journal entry.
type Event struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Subject   string    `json:"subject"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Append records an event and prunes the journal back to its capacity.
func (db *DB) Append(kind Kind, subject, detail string) (Event, error) {
	ev := Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		Subject:   subject,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := db.Begin()
	if err != nil {
		return Event{}, fmt.Errorf("append event: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO events (id, kind, subject, detail, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, ev.ID, string(ev.Kind), ev.Subject, ev.Detail, ev.CreatedAt.UnixMilli()); err != nil {
		return Event{}, fmt.Errorf("append event: %w", err)
	}

	// Keep only the newest maxEvents rows.
	if _, err := tx.Exec(`
		DELETE FROM events WHERE seq <= (SELECT MAX(seq) FROM events) - ?
	`, db.maxEvents); err != nil {
		return Event{}, fmt.Errorf("prune events: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Event{}, fmt.Errorf("append event: %w", err)
	}
	return ev, nil
}

// Recent returns up to limit events, newest first.
func (db *DB) Recent(limit int) ([]Event, error) {
	if limit <= 0 || limit > db.maxEvents {
		limit = db.maxEvents
	}
	rows, err := db.Query(`
		SELECT id, kind, subject, COALESCE(detail, ''), created_at
		FROM events ORDER BY seq DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var (
			e    Event
			kind string
			ms   int64
		)
		if err := rows.Scan(&e.ID, &kind, &e.Subject, &e.Detail, &ms); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Kind = Kind(kind)
		e.CreatedAt = time.UnixMilli(ms).UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}

// Count returns the number of events currently held.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM events").Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// MaxEvents is the journal capacity.
func (db *DB) MaxEvents() int { return db.maxEvents }

// Healthy reports whether the journal answers a trivial query.
func (db *DB) Healthy(ctx context.Context) bool {
	return db.PingContext(ctx) == nil
}
