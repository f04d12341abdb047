// ABOUTME: Shared test fixtures for the editor package
// ABOUTME: Provides a scriptable fake record store and polling helpers
package editor

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"salesdesk/models"
)

// fakeStore implements RecordStore with scriptable function fields. Nil
// fields return empty results.
type fakeStore struct {
	fetchFn   func(ctx context.Context, id uuid.UUID) (*models.Contact, error)
	searchFn  func(ctx context.Context, query string, excludeID uuid.UUID, limit int) ([]models.Contact, error)
	createFn  func(ctx context.Context, c *models.Contact) (*models.Contact, error)
	updateFn  func(ctx context.Context, id uuid.UUID, c *models.Contact) (*models.Contact, error)
	historyFn func(ctx context.Context, contactID uuid.UUID) ([]models.Case, error)
	replaceFn func(ctx context.Context, contactID, caseID uuid.UUID, roles []string) ([]string, error)
}

func (f *fakeStore) FetchContact(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	if f.fetchFn == nil {
		return &models.Contact{ID: id}, nil
	}
	return f.fetchFn(ctx, id)
}

func (f *fakeStore) SearchContacts(ctx context.Context, query string, excludeID uuid.UUID, limit int) ([]models.Contact, error) {
	if f.searchFn == nil {
		return nil, nil
	}
	return f.searchFn(ctx, query, excludeID, limit)
}

func (f *fakeStore) CreateContact(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	if f.createFn == nil {
		created := *c
		created.ID = uuid.New()
		return &created, nil
	}
	return f.createFn(ctx, c)
}

func (f *fakeStore) UpdateContact(ctx context.Context, id uuid.UUID, c *models.Contact) (*models.Contact, error) {
	if f.updateFn == nil {
		return c, nil
	}
	return f.updateFn(ctx, id, c)
}

func (f *fakeStore) FetchCaseHistory(ctx context.Context, contactID uuid.UUID) ([]models.Case, error) {
	if f.historyFn == nil {
		return nil, nil
	}
	return f.historyFn(ctx, contactID)
}

func (f *fakeStore) ReplaceCaseRoles(ctx context.Context, contactID, caseID uuid.UUID, roles []string) ([]string, error) {
	if f.replaceFn == nil {
		return roles, nil
	}
	return f.replaceFn(ctx, contactID, caseID, roles)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, msg string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}
