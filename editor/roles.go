// ABOUTME: Baseline-vs-working role tracking for related sales cases
// ABOUTME: Detects unsaved per-case role changes and reconciles them with the store on save
package editor

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"

	"salesdesk/models"
)

// RoleTracker holds two parallel copies of each related case's role set: the
// baseline last confirmed by the server and the working set the user edits.
// Saves are per-case, full-replace operations; the baseline is only ever
// refreshed from what the server reports back, never from local edits.
type RoleTracker struct {
	mu        sync.Mutex
	store     RecordStore
	contactID uuid.UUID
	cases     []models.Case
	baseline  map[uuid.UUID][]string
	working   map[uuid.UUID][]string
	saving    bool
	// onAccepted merges roles the server accepted into the aggregate's
	// denormalized global role set.
	onAccepted func(roles []string)
}

// NewRoleTracker builds a standalone tracker for callers that manage case
// roles outside an editor session, such as the CLI.
func NewRoleTracker(store RecordStore, contactID uuid.UUID) *RoleTracker {
	return newRoleTracker(store, contactID, nil)
}

func newRoleTracker(store RecordStore, contactID uuid.UUID, onAccepted func([]string)) *RoleTracker {
	return &RoleTracker{
		store:      store,
		contactID:  contactID,
		baseline:   make(map[uuid.UUID][]string),
		working:    make(map[uuid.UUID][]string),
		onAccepted: onAccepted,
	}
}

// Hydrate seeds baseline and working together from a freshly loaded case
// history. Each side gets its own copy; mutating one never leaks into the
// other.
func (t *RoleTracker) Hydrate(cases []models.Case) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cases = cases
	t.baseline = make(map[uuid.UUID][]string, len(cases))
	t.working = make(map[uuid.UUID][]string, len(cases))
	for _, c := range cases {
		t.baseline[c.ID] = append([]string(nil), c.Roles...)
		t.working[c.ID] = append([]string(nil), c.Roles...)
	}
}

// Cases returns the hydrated case list in server order.
func (t *RoleTracker) Cases() []models.Case {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cases
}

// Roles returns a copy of the working role set for caseID.
func (t *RoleTracker) Roles(caseID uuid.UUID) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.working[caseID]...)
}

// Has reports whether role is in the working set for caseID.
func (t *RoleTracker) Has(caseID uuid.UUID, role string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.working[caseID] {
		if r == role {
			return true
		}
	}
	return false
}

// Toggle flips role membership in the working set for caseID. Unknown case
// ids are a no-op.
func (t *RoleTracker) Toggle(caseID uuid.UUID, role string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	working, ok := t.working[caseID]
	if !ok {
		return
	}
	for i, r := range working {
		if r == role {
			t.working[caseID] = append(working[:i], working[i+1:]...)
			return
		}
	}
	t.working[caseID] = append(working, role)
}

// IsDirty reports whether the working set for caseID differs from the
// baseline, ignoring order.
func (t *RoleTracker) IsDirty(caseID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	a := sortedCopy(t.baseline[caseID])
	b := sortedCopy(t.working[caseID])
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if a[i] != b[i] {
			return true
		}
	}
	return false
}

// Saving reports whether any case's save is in flight. One flag covers the
// whole tracker; callers gate concurrent saves with it.
func (t *RoleTracker) Saving() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saving
}

// Save sends the complete working set for caseID to the store as a full
// replacement, then re-fetches case history so the baseline reflects what the
// server actually persisted. A failed save leaves both copies untouched, so
// the case stays dirty and the user's edits survive for retry.
func (t *RoleTracker) Save(ctx context.Context, caseID uuid.UUID) error {
	t.mu.Lock()
	if t.saving {
		t.mu.Unlock()
		return fmt.Errorf("a role save is already in flight")
	}
	if _, ok := t.working[caseID]; !ok {
		t.mu.Unlock()
		return fmt.Errorf("unknown case: %s", caseID)
	}
	t.saving = true
	roles := append([]string(nil), t.working[caseID]...)
	contactID := t.contactID
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.saving = false
		t.mu.Unlock()
	}()

	accepted, err := t.store.ReplaceCaseRoles(ctx, contactID, caseID, roles)
	if err != nil {
		return fmt.Errorf("failed to save case roles: %w", err)
	}

	if t.onAccepted != nil {
		t.onAccepted(accepted)
	}

	// The server may have normalized or rejected individual roles, so reload
	// the open aggregate's history rather than trusting the request payload.
	cases, err := t.store.FetchCaseHistory(ctx, contactID)
	if err != nil {
		log.Printf("warning: case history refresh failed: %v", err)
		// Fall back to the accepted list the replace call reported; it is
		// still the server's answer, just without cross-case refresh.
		t.mu.Lock()
		t.baseline[caseID] = append([]string(nil), accepted...)
		t.working[caseID] = append([]string(nil), accepted...)
		for i := range t.cases {
			if t.cases[i].ID == caseID {
				t.cases[i].Roles = append([]string(nil), accepted...)
			}
		}
		t.mu.Unlock()
		return nil
	}

	t.Hydrate(cases)
	return nil
}

func sortedCopy(roles []string) []string {
	out := append([]string(nil), roles...)
	sort.Strings(out)
	return out
}
