// ABOUTME: Tests for the debounced duplicate conflict detector
// ABOUTME: Covers debounce coalescing, invalid-value clearing, phone matching, and stale discard
package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdesk/models"
)

// recordingStore counts searches and returns canned matches.
type recordingStore struct {
	fakeStore
	mu      sync.Mutex
	queries []string
	matches []models.Contact
	err     error
	block   chan struct{} // when set, searches wait here before returning
}

func (r *recordingStore) SearchContacts(ctx context.Context, query string, excludeID uuid.UUID, limit int) ([]models.Contact, error) {
	r.mu.Lock()
	r.queries = append(r.queries, query)
	block := r.block
	matches, err := r.matches, r.err
	r.mu.Unlock()
	if block != nil {
		<-block
	}
	return matches, err
}

func (r *recordingStore) queryCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queries)
}

func (r *recordingStore) lastQuery() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queries) == 0 {
		return ""
	}
	return r.queries[len(r.queries)-1]
}

func newEmailDetector(store RecordStore, excludeID uuid.UUID) *ConflictDetector {
	return newConflictDetector(store, conflictKindEmail, excludeID, 20*time.Millisecond, nil)
}

func newPhoneDetector(store RecordStore, excludeID uuid.UUID) *ConflictDetector {
	return newConflictDetector(store, conflictKindPhone, excludeID, 20*time.Millisecond, nil)
}

func TestDebounceCoalescesRapidEdits(t *testing.T) {
	store := &recordingStore{}
	d := newEmailDetector(store, uuid.Nil)
	defer d.Close()

	// A burst of edits within the settle delay must produce one query, for
	// the final value only.
	d.ValueChanged(0, "a@x.com")
	d.ValueChanged(0, "ab@x.com")
	d.ValueChanged(0, "abc@x.com")

	waitFor(t, "debounced query", func() bool { return store.queryCount() > 0 })
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, 1, store.queryCount())
	assert.Equal(t, "abc@x.com", store.lastQuery())
}

func TestEmptyValueClearsResultWithoutQuery(t *testing.T) {
	other := models.Contact{ID: uuid.New(), Emails: []models.EmailEntry{{Address: "a@x.com"}}}
	store := &recordingStore{matches: []models.Contact{other}}
	d := newEmailDetector(store, uuid.Nil)
	defer d.Close()

	d.ValueChanged(0, "a@x.com")
	waitFor(t, "conflict result", func() bool { return d.Result(0) != nil })

	d.ValueChanged(0, "")
	assert.Nil(t, d.Result(0), "clearing the value must clear the result immediately")

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, store.queryCount(), "empty values must not be queried")
}

func TestInvalidEmailNotQueried(t *testing.T) {
	store := &recordingStore{}
	d := newEmailDetector(store, uuid.Nil)
	defer d.Close()

	d.ValueChanged(0, "not-an-email")
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, 0, store.queryCount())
	assert.Nil(t, d.Result(0))
}

func TestShortPhoneNotQueried(t *testing.T) {
	store := &recordingStore{}
	d := newPhoneDetector(store, uuid.Nil)
	defer d.Close()

	d.ValueChanged(0, "551-234") // 6 digits, below the floor
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, 0, store.queryCount())
}

func TestPhoneQueryUsesDigitsOnly(t *testing.T) {
	store := &recordingStore{}
	d := newPhoneDetector(store, uuid.Nil)
	defer d.Close()

	d.ValueChanged(0, "(551) 234-5678")
	waitFor(t, "query", func() bool { return store.queryCount() > 0 })

	assert.Equal(t, "5512345678", store.lastQuery())
}

func TestEditedAggregateExcludedFromResults(t *testing.T) {
	self := uuid.New()
	store := &recordingStore{matches: []models.Contact{
		{ID: self, Emails: []models.EmailEntry{{Address: "a@x.com"}}},
	}}
	d := newEmailDetector(store, self)
	defer d.Close()

	d.ValueChanged(0, "a@x.com")
	waitFor(t, "query", func() bool { return store.queryCount() > 0 })
	time.Sleep(30 * time.Millisecond)

	assert.Nil(t, d.Result(0), "the aggregate being edited is not a conflict with itself")
}

func TestPhoneBidirectionalContainment(t *testing.T) {
	longer := models.Contact{ID: uuid.New(), Phones: []models.PhoneEntry{{Number: "+1 551 234 5678"}}}
	store := &recordingStore{matches: []models.Contact{longer}}
	d := newPhoneDetector(store, uuid.Nil)
	defer d.Close()

	// Typed form is a substring of the stored digits.
	d.ValueChanged(0, "5512345678")
	waitFor(t, "conflict result", func() bool { return d.Result(0) != nil })
	require.Len(t, d.Result(0), 1)
	assert.Equal(t, longer.ID, d.Result(0)[0].ID)
}

func TestEmailMatchIsCaseInsensitive(t *testing.T) {
	other := models.Contact{ID: uuid.New(), Emails: []models.EmailEntry{{Address: "Ada@X.com"}}}
	store := &recordingStore{matches: []models.Contact{other}}
	d := newEmailDetector(store, uuid.Nil)
	defer d.Close()

	d.ValueChanged(0, "ada@x.com")
	waitFor(t, "conflict result", func() bool { return d.Result(0) != nil })
}

func TestQueryFailureIsSilent(t *testing.T) {
	store := &recordingStore{err: errors.New("search unavailable")}
	d := newEmailDetector(store, uuid.Nil)
	defer d.Close()

	d.ValueChanged(0, "a@x.com")
	waitFor(t, "query", func() bool { return store.queryCount() > 0 })
	time.Sleep(30 * time.Millisecond)

	// Failure is indistinguishable from no conflict; the feature is advisory.
	assert.Nil(t, d.Result(0))
}

func TestStaleInFlightResponseDiscarded(t *testing.T) {
	block := make(chan struct{})
	store := &recordingStore{
		matches: []models.Contact{{ID: uuid.New(), Emails: []models.EmailEntry{{Address: "old@x.com"}}}},
		block:   block,
	}
	d := newEmailDetector(store, uuid.Nil)
	defer d.Close()

	d.ValueChanged(0, "old@x.com")
	waitFor(t, "query issued", func() bool { return store.queryCount() > 0 })

	// The value moves on while the first request is still in flight.
	d.ValueChanged(0, "new@x.com")
	close(block)
	time.Sleep(60 * time.Millisecond)

	// The old response must not be recorded against the new value; the
	// second query's response (matching old@x.com, not new@x.com) is also
	// filtered out, leaving no conflict.
	assert.Nil(t, d.Result(0))
}

func TestResultsAreTrackedPerIndex(t *testing.T) {
	other := models.Contact{ID: uuid.New(), Emails: []models.EmailEntry{{Address: "a@x.com"}}}
	store := &recordingStore{matches: []models.Contact{other}}
	d := newEmailDetector(store, uuid.Nil)
	defer d.Close()

	d.ValueChanged(0, "a@x.com")
	d.ValueChanged(1, "nobody@x.com")

	waitFor(t, "index 0 conflict", func() bool { return d.Result(0) != nil })
	// Index 1's query matched nothing named nobody@x.com.
	time.Sleep(30 * time.Millisecond)
	assert.Nil(t, d.Result(1))
	assert.NotNil(t, d.Result(0))
}

func TestCloseCancelsPendingTimers(t *testing.T) {
	store := &recordingStore{}
	d := newEmailDetector(store, uuid.Nil)

	d.ValueChanged(0, "a@x.com")
	d.Close()
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, 0, store.queryCount(), "closed detector must not fire queries")
}
