// ABOUTME: Debounced duplicate detection for email and phone values
// ABOUTME: Queries the record store per collection index with settle delay and stale-response discard
package editor

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"salesdesk/models"
)

const (
	conflictKindEmail = "email"
	conflictKindPhone = "phone"

	conflictSearchLimit = 5
)

// ConflictDetector watches one collection (emails or phones) and, per index,
// asks the record store whether the value being typed already exists on a
// different aggregate. Advisory only: a hit never blocks save. Query failures
// are logged and ignored; no result is indistinguishable from no conflict.
type ConflictDetector struct {
	mu        sync.Mutex
	store     RecordStore
	kind      string
	excludeID uuid.UUID
	settle    time.Duration
	timers    map[int]*time.Timer
	values    map[int]string
	results   map[int][]models.Contact
	closed    bool
	onResult  func()
}

func newConflictDetector(store RecordStore, kind string, excludeID uuid.UUID, settle time.Duration, onResult func()) *ConflictDetector {
	return &ConflictDetector{
		store:     store,
		kind:      kind,
		excludeID: excludeID,
		settle:    settle,
		timers:    make(map[int]*time.Timer),
		values:    make(map[int]string),
		results:   make(map[int][]models.Contact),
		onResult:  onResult,
	}
}

// ValueChanged records a new value at index. Empty or syntactically invalid
// values clear the index's result immediately and schedule nothing. Otherwise
// any not-yet-fired timer for the index is cancelled and a fresh query is
// scheduled after the settle delay, so a burst of edits yields one query for
// the final value.
func (d *ConflictDetector) ValueChanged(index int, value string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.values[index] = value
	if t, ok := d.timers[index]; ok {
		t.Stop()
		delete(d.timers, index)
	}
	if !d.queryable(value) {
		delete(d.results, index)
		d.mu.Unlock()
		return
	}
	d.timers[index] = time.AfterFunc(d.settle, func() { d.fire(index, value) })
	d.mu.Unlock()
}

// Result returns the conflicting aggregates recorded for index, or nil when
// none were found or no check has completed yet.
func (d *ConflictDetector) Result(index int) []models.Contact {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.results[index]
}

// Close cancels all pending timers. Called on editor teardown and whenever
// the underlying collection is replaced by a reload.
func (d *ConflictDetector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for i, t := range d.timers {
		t.Stop()
		delete(d.timers, i)
	}
}

// queryable applies the pre-query gates: non-empty, syntactically plausible,
// and for phones at least 7 digits.
func (d *ConflictDetector) queryable(value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	switch d.kind {
	case conflictKindPhone:
		return len(PhoneDigits(value)) >= minPhoneDigits
	default:
		return ValidEmail(value)
	}
}

func (d *ConflictDetector) fire(index int, value string) {
	d.mu.Lock()
	if d.closed || d.values[index] != value {
		d.mu.Unlock()
		return
	}
	delete(d.timers, index)
	d.mu.Unlock()

	query := value
	if d.kind == conflictKindPhone {
		query = PhoneDigits(value)
	}

	matches, err := d.store.SearchContacts(context.Background(), query, d.excludeID, conflictSearchLimit)
	if err != nil {
		log.Printf("warning: duplicate %s check failed: %v", d.kind, err)
		return
	}

	var filtered []models.Contact
	for _, m := range matches {
		if m.ID == d.excludeID {
			continue
		}
		if d.matches(m, value) {
			filtered = append(filtered, m)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.values[index] != value {
		// The value moved on while the request was in flight; a newer check
		// owns this index now.
		return
	}
	if len(filtered) == 0 {
		delete(d.results, index)
	} else {
		d.results[index] = filtered
	}
	if d.onResult != nil {
		go d.onResult()
	}
}

// matches decides whether a search hit really shares the edited value.
// Emails compare case-insensitively; phones use substring containment in both
// directions to absorb formatting differences between stored and typed forms.
func (d *ConflictDetector) matches(c models.Contact, value string) bool {
	if d.kind == conflictKindPhone {
		typed := PhoneDigits(value)
		for _, p := range c.Phones {
			stored := PhoneDigits(p.Number)
			if stored == "" {
				continue
			}
			if strings.Contains(stored, typed) || strings.Contains(typed, stored) {
				return true
			}
		}
		if stored := PhoneDigits(c.Phone); stored != "" {
			return strings.Contains(stored, typed) || strings.Contains(typed, stored)
		}
		return false
	}

	typed := strings.ToLower(strings.TrimSpace(value))
	for _, e := range c.Emails {
		if strings.ToLower(strings.TrimSpace(e.Address)) == typed {
			return true
		}
	}
	return strings.ToLower(strings.TrimSpace(c.Email)) == typed
}
