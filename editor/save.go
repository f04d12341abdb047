// ABOUTME: Save orchestration for the contact aggregate
// ABOUTME: Validates sub-collections, derives the payload, and branches on create vs update
package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"salesdesk/models"
)

// ValidationError names the field category that blocked a save. Detected
// locally; never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrMissingID means an update was requested without an aggregate id. The
// editor is unreachable in edit mode without one, so this is a programming
// error, not a user error.
var ErrMissingID = errors.New("update requested without a contact id")

// userMessager lets transport errors carry a server-provided message to the
// user. Implemented by store.APIError.
type userMessager interface {
	UserMessage() string
}

func serverMessage(err error, fallback string) string {
	var um userMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return fallback
}

// Save produces the final persisted representation of the aggregate from the
// current in-memory state and submits it. Create mode runs the caller's
// creation hook; edit mode issues a full update. On success the OnSaved
// callback fires so the caller can refresh dependent views and close the
// editor; on failure the session state is untouched and the editor stays
// open. Case-role saves are separate per-case operations (RoleTracker.Save).
func (s *Session) Save(ctx context.Context) (*models.Contact, error) {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return nil, fmt.Errorf("a save is already in flight")
	}

	// Syntactic validation across both value collections, before any
	// derivation or network call.
	for _, e := range s.emails.Entries() {
		if !e.Empty() && !ValidEmail(e.Address) {
			s.mu.Unlock()
			return nil, &ValidationError{Field: "email", Message: fmt.Sprintf("%q is not a valid email address", e.Address)}
		}
	}
	for _, p := range s.phones.Entries() {
		if !p.Empty() && !ValidPhone(p.Number) {
			s.mu.Unlock()
			return nil, &ValidationError{Field: "phone", Message: fmt.Sprintf("%q is not a valid phone number", p.Number)}
		}
	}

	payload := *s.contact // shallow copy; collections are replaced below

	emails, primaryEmail := s.emails.Persistable()
	phones, primaryPhone := s.phones.Persistable()
	companies, primaryCompany := s.companies.Persistable()

	payload.Emails = entryValues(emails)
	payload.Phones = entryValues(phones)
	payload.Companies = entryValues(companies)
	payload.Email = primaryEmail
	payload.Phone = primaryPhone
	payload.CompanyName = primaryCompany
	payload.Name = payload.DisplayName()

	editMode := s.editMode
	create := s.cfg.Create

	if !editMode && payload.Name == "" && payload.FirstName == "" {
		s.mu.Unlock()
		return nil, &ValidationError{Field: "name", Message: "a name is required to create a contact"}
	}
	if editMode && payload.ID == uuid.Nil {
		s.mu.Unlock()
		return nil, ErrMissingID
	}
	s.saving = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
	}()

	var saved *models.Contact
	var err error
	if editMode {
		saved, err = s.store.UpdateContact(ctx, payload.ID, &payload)
	} else {
		saved, err = create(ctx, &payload)
	}
	if err != nil {
		return nil, fmt.Errorf("%s", serverMessage(err, "failed to save contact"))
	}
	if saved == nil {
		saved = &payload
	}

	if s.cfg.OnSaved != nil {
		s.cfg.OnSaved(saved)
	}
	return saved, nil
}

// entryValues dereferences a persistable pointer slice back into the value
// slice shape the wire payload carries.
func entryValues[T any, P interface {
	*T
	Entry
}](entries []P) []T {
	if len(entries) == 0 {
		return nil
	}
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		out = append(out, *(*T)(e))
	}
	return out
}
