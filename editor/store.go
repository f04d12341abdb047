// ABOUTME: Record store contract consumed by the editor core
// ABOUTME: Mirrors the remote REST endpoints the editor depends on
package editor

import (
	"context"

	"github.com/google/uuid"

	"salesdesk/models"
)

// RecordStore is the slice of the remote record store the editor core needs.
// Implemented by store.Client; tests substitute fakes.
type RecordStore interface {
	// FetchContact returns the full aggregate for id.
	FetchContact(ctx context.Context, id uuid.UUID) (*models.Contact, error)
	// SearchContacts returns aggregates matching query, excluding excludeID
	// (pass uuid.Nil to exclude nothing).
	SearchContacts(ctx context.Context, query string, excludeID uuid.UUID, limit int) ([]models.Contact, error)
	// CreateContact persists a new aggregate and returns it with its id set.
	CreateContact(ctx context.Context, c *models.Contact) (*models.Contact, error)
	// UpdateContact replaces the aggregate stored under id.
	UpdateContact(ctx context.Context, id uuid.UUID, c *models.Contact) (*models.Contact, error)
	// FetchCaseHistory lists the cases related to a contact, each carrying the
	// contact's current role set.
	FetchCaseHistory(ctx context.Context, contactID uuid.UUID) ([]models.Case, error)
	// ReplaceCaseRoles replaces the contact's role set on one case and returns
	// the role list the server actually accepted.
	ReplaceCaseRoles(ctx context.Context, contactID, caseID uuid.UUID, roles []string) ([]string, error)
}
