// ABOUTME: Tests for baseline-vs-working case role tracking
// ABOUTME: Covers dirty symmetry, hydration copies, save reconciliation, and failure semantics
package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdesk/models"
)

func hydratedTracker(store RecordStore, caseID uuid.UUID, roles ...string) *RoleTracker {
	tracker := newRoleTracker(store, uuid.New(), nil)
	tracker.Hydrate([]models.Case{{ID: caseID, Title: "Engine deal", Roles: roles}})
	return tracker
}

// Scenario: baseline and working both {deal_maker}; toggling sponsor on and
// off returns dirty to false.
func TestDirtySymmetry(t *testing.T) {
	caseID := uuid.New()
	tracker := hydratedTracker(&fakeStore{}, caseID, models.RoleDealMaker)

	assert.False(t, tracker.IsDirty(caseID), "freshly hydrated case must be clean")

	tracker.Toggle(caseID, models.RoleSponsor)
	assert.True(t, tracker.IsDirty(caseID))

	tracker.Toggle(caseID, models.RoleSponsor)
	assert.False(t, tracker.IsDirty(caseID), "toggling a role on then off must restore clean state")
}

func TestDirtyIsOrderIndependent(t *testing.T) {
	caseID := uuid.New()
	tracker := hydratedTracker(&fakeStore{}, caseID, models.RoleSponsor, models.RoleChampion)

	// Remove then re-add in the opposite order: same set, different order.
	tracker.Toggle(caseID, models.RoleSponsor)
	tracker.Toggle(caseID, models.RoleChampion)
	tracker.Toggle(caseID, models.RoleChampion)
	tracker.Toggle(caseID, models.RoleSponsor)

	assert.False(t, tracker.IsDirty(caseID))
}

func TestHydrateCopiesDoNotAlias(t *testing.T) {
	caseID := uuid.New()
	tracker := hydratedTracker(&fakeStore{}, caseID, models.RoleDealMaker)

	tracker.Toggle(caseID, models.RoleBlocker)

	// Mutating working must never leak into baseline: the case is dirty.
	assert.True(t, tracker.IsDirty(caseID))
	assert.ElementsMatch(t, []string{models.RoleDealMaker, models.RoleBlocker}, tracker.Roles(caseID))
}

func TestToggleUnknownCaseIsNoop(t *testing.T) {
	tracker := hydratedTracker(&fakeStore{}, uuid.New(), models.RoleDealMaker)

	unknown := uuid.New()
	tracker.Toggle(unknown, models.RoleSponsor)

	assert.Empty(t, tracker.Roles(unknown))
	assert.False(t, tracker.IsDirty(unknown))
}

func TestSaveSendsCompleteWorkingSetAndRehydrates(t *testing.T) {
	caseID := uuid.New()
	var sentRoles []string
	store := &fakeStore{
		replaceFn: func(ctx context.Context, contactID, gotCase uuid.UUID, roles []string) ([]string, error) {
			sentRoles = append([]string(nil), roles...)
			return roles, nil
		},
		historyFn: func(ctx context.Context, contactID uuid.UUID) ([]models.Case, error) {
			return []models.Case{{ID: caseID, Roles: []string{models.RoleDealMaker, models.RoleSponsor}}}, nil
		},
	}
	tracker := hydratedTracker(store, caseID, models.RoleDealMaker)

	tracker.Toggle(caseID, models.RoleSponsor)
	require.NoError(t, tracker.Save(context.Background(), caseID))

	// The full replacement set was sent, not a delta.
	assert.ElementsMatch(t, []string{models.RoleDealMaker, models.RoleSponsor}, sentRoles)
	// Baseline now reflects the re-fetched server state.
	assert.False(t, tracker.IsDirty(caseID))
	assert.False(t, tracker.Saving())
}

func TestSaveBaselineReflectsServerNormalization(t *testing.T) {
	caseID := uuid.New()
	store := &fakeStore{
		replaceFn: func(ctx context.Context, contactID, gotCase uuid.UUID, roles []string) ([]string, error) {
			// Server rejects the blocker role.
			return []string{models.RoleDealMaker}, nil
		},
		historyFn: func(ctx context.Context, contactID uuid.UUID) ([]models.Case, error) {
			return []models.Case{{ID: caseID, Roles: []string{models.RoleDealMaker}}}, nil
		},
	}
	tracker := hydratedTracker(store, caseID, models.RoleDealMaker)

	tracker.Toggle(caseID, models.RoleBlocker)
	require.NoError(t, tracker.Save(context.Background(), caseID))

	// Working and baseline both track what the server kept, so the dropped
	// role shows as gone rather than as a phantom unsaved change.
	assert.ElementsMatch(t, []string{models.RoleDealMaker}, tracker.Roles(caseID))
	assert.False(t, tracker.IsDirty(caseID))
}

func TestFailedSaveLeavesEditsAndDirtyState(t *testing.T) {
	caseID := uuid.New()
	store := &fakeStore{
		replaceFn: func(ctx context.Context, contactID, gotCase uuid.UUID, roles []string) ([]string, error) {
			return nil, errors.New("server unavailable")
		},
	}
	tracker := hydratedTracker(store, caseID, models.RoleDealMaker)

	tracker.Toggle(caseID, models.RoleSponsor)
	err := tracker.Save(context.Background(), caseID)

	require.Error(t, err)
	assert.True(t, tracker.IsDirty(caseID), "failed save must stay dirty for retry")
	assert.ElementsMatch(t, []string{models.RoleDealMaker, models.RoleSponsor}, tracker.Roles(caseID))
	assert.False(t, tracker.Saving())
}

func TestSaveUnknownCaseFails(t *testing.T) {
	tracker := hydratedTracker(&fakeStore{}, uuid.New(), models.RoleDealMaker)

	err := tracker.Save(context.Background(), uuid.New())
	require.Error(t, err)
}

func TestConcurrentSaveBlockedByGlobalFlag(t *testing.T) {
	caseID := uuid.New()
	block := make(chan struct{})
	store := &fakeStore{
		replaceFn: func(ctx context.Context, contactID, gotCase uuid.UUID, roles []string) ([]string, error) {
			<-block
			return roles, nil
		},
		historyFn: func(ctx context.Context, contactID uuid.UUID) ([]models.Case, error) {
			return []models.Case{{ID: caseID, Roles: []string{models.RoleDealMaker, models.RoleSponsor}}}, nil
		},
	}
	tracker := hydratedTracker(store, caseID, models.RoleDealMaker)
	tracker.Toggle(caseID, models.RoleSponsor)

	done := make(chan error, 1)
	go func() { done <- tracker.Save(context.Background(), caseID) }()

	waitFor(t, "first save in flight", func() bool { return tracker.Saving() })

	err := tracker.Save(context.Background(), caseID)
	require.Error(t, err, "second save while one is in flight must be refused")

	close(block)
	require.NoError(t, <-done)
}

func TestSaveMergesAcceptedRolesIntoGlobalSet(t *testing.T) {
	caseID := uuid.New()
	var merged []string
	store := &fakeStore{
		historyFn: func(ctx context.Context, contactID uuid.UUID) ([]models.Case, error) {
			return []models.Case{{ID: caseID, Roles: []string{models.RoleSponsor}}}, nil
		},
	}
	tracker := newRoleTracker(store, uuid.New(), func(accepted []string) {
		merged = append([]string(nil), accepted...)
	})
	tracker.Hydrate([]models.Case{{ID: caseID}})

	tracker.Toggle(caseID, models.RoleSponsor)
	require.NoError(t, tracker.Save(context.Background(), caseID))

	assert.ElementsMatch(t, []string{models.RoleSponsor}, merged)
}

func TestSaveFallsBackWhenHistoryRefreshFails(t *testing.T) {
	caseID := uuid.New()
	store := &fakeStore{
		historyFn: func(ctx context.Context, contactID uuid.UUID) ([]models.Case, error) {
			return nil, errors.New("history endpoint down")
		},
	}
	tracker := hydratedTracker(store, caseID, models.RoleDealMaker)
	tracker.Toggle(caseID, models.RoleSponsor)

	// The replace call itself succeeded and reported the accepted list, so
	// the save is still a success.
	require.NoError(t, tracker.Save(context.Background(), caseID))
	assert.False(t, tracker.IsDirty(caseID))
	assert.ElementsMatch(t, []string{models.RoleDealMaker, models.RoleSponsor}, tracker.Roles(caseID))

	// Give the deferred flag reset a beat before asserting.
	time.Sleep(5 * time.Millisecond)
	assert.False(t, tracker.Saving())
}
