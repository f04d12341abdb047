// ABOUTME: Load session lifecycle for the contact-aggregate editor
// ABOUTME: Owns the fetch-by-id request token, timeout watchdog, and hydration of dependent managers
package editor

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"salesdesk/models"
)

// Default budgets; configurable so tests can compress them.
const (
	DefaultLoadTimeout = 15 * time.Second
	DefaultSettleDelay = 500 * time.Millisecond
)

// Timeout and fallback messages surfaced to the user.
const (
	loadTimeoutMessage = "loading timed out, check your connection and retry"
	loadFailedMessage  = "failed to load contact"
)

// CreateFunc persists a brand-new aggregate. The default delegates to the
// record store; callers may supply their own hook.
type CreateFunc func(ctx context.Context, c *models.Contact) (*models.Contact, error)

// Config configures a Session.
type Config struct {
	Store       RecordStore
	LoadTimeout time.Duration // watchdog budget for fetch-by-id (default 15s)
	SettleDelay time.Duration // duplicate-check debounce (default 500ms)
	Create      CreateFunc    // create-mode persistence hook (default: Store.CreateContact)
	// OnSaved is invoked after a successful aggregate save so the caller can
	// refresh list views and close the editor.
	OnSaved func(c *models.Contact)
	// OnChange is invoked after any asynchronous state transition (load
	// resolution, timeout, conflict result) so the caller can repaint.
	OnChange func()
}

// Session is the per-open-editor state: one instance per dialog, discarded on
// close. All fields are owned by this instance; the mutex exists because the
// watchdog timer and fetch goroutines interleave with UI calls.
type Session struct {
	mu    sync.Mutex
	store RecordStore
	cfg   Config

	state    string
	errMsg   string
	token    int // monotonic request token; the sole live-vs-stale discriminator
	watchdog *time.Timer
	lastID   uuid.UUID
	editMode bool
	saving   bool

	contact   *models.Contact
	emails    *Collection[*models.EmailEntry]
	phones    *Collection[*models.PhoneEntry]
	companies *Collection[*models.CompanyLink]
	roles     *RoleTracker

	emailConflicts *ConflictDetector
	phoneConflicts *ConflictDetector
}

// NewSession builds a session in create mode: blank aggregate, blank
// collections, no load issued. Call BeginLoad to switch to edit mode.
func NewSession(cfg Config) *Session {
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = DefaultLoadTimeout
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	if cfg.Create == nil {
		cfg.Create = cfg.Store.CreateContact
	}
	s := &Session{
		store: cfg.Store,
		cfg:   cfg,
		state: models.LoadStateIdle,
	}
	s.hydrateLocked(&models.Contact{})
	return s
}

// BeginLoad issues a fetch for id and switches the session to edit mode. Any
// in-flight load is superseded: its response will arrive carrying an older
// token and be discarded without touching visible state.
func (s *Session) BeginLoad(id uuid.UUID) {
	s.mu.Lock()
	s.token++
	t := s.token
	s.lastID = id
	s.editMode = true
	s.stopWatchdogLocked()
	s.state = models.LoadStateLoading
	s.errMsg = ""
	s.watchdog = time.AfterFunc(s.cfg.LoadTimeout, func() { s.onTimeout(t) })
	s.mu.Unlock()

	s.notify()
	go s.fetch(t, id)
}

// Retry re-issues the last load. Safe to call repeatedly; a no-op before the
// first BeginLoad.
func (s *Session) Retry() {
	s.mu.Lock()
	id := s.lastID
	s.mu.Unlock()
	if id == uuid.Nil {
		return
	}
	s.BeginLoad(id)
}

// Close tears the session down: pending watchdog cleared, conflict timers
// cancelled, state reset to idle. Never observable as an error flash.
func (s *Session) Close() {
	s.mu.Lock()
	s.token++ // orphan any in-flight response
	s.stopWatchdogLocked()
	s.state = models.LoadStateIdle
	s.errMsg = ""
	email, phone := s.emailConflicts, s.phoneConflicts
	s.mu.Unlock()

	if email != nil {
		email.Close()
	}
	if phone != nil {
		phone.Close()
	}
}

func (s *Session) fetch(t int, id uuid.UUID) {
	contact, err := s.store.FetchContact(context.Background(), id)

	s.mu.Lock()
	if s.token != t {
		// A newer load owns the state now; drop this response silently.
		s.mu.Unlock()
		return
	}
	s.stopWatchdogLocked()
	if err != nil {
		s.state = models.LoadStateError
		s.errMsg = serverMessage(err, loadFailedMessage)
		s.mu.Unlock()
		s.notify()
		return
	}
	s.hydrateLocked(contact)
	s.state = models.LoadStateLoaded
	s.mu.Unlock()
	s.notify()

	go s.loadHistory(t, id)
}

// loadHistory hydrates the role tracker from the case-history endpoint. A
// failure here leaves the cases pane empty but does not fail the load.
func (s *Session) loadHistory(t int, contactID uuid.UUID) {
	cases, err := s.store.FetchCaseHistory(context.Background(), contactID)

	s.mu.Lock()
	if s.token != t {
		s.mu.Unlock()
		return
	}
	tracker := s.roles
	s.mu.Unlock()

	if err != nil {
		log.Printf("warning: case history load failed: %v", err)
		return
	}
	tracker.Hydrate(cases)
	s.notify()
}

func (s *Session) onTimeout(t int) {
	s.mu.Lock()
	if s.token != t {
		s.mu.Unlock()
		return
	}
	// Invalidate the token so a late real resolution of this request is
	// ignored: the timeout is terminal until the user retries.
	s.token++
	s.state = models.LoadStateError
	s.errMsg = loadTimeoutMessage
	s.mu.Unlock()
	s.notify()
}

// hydrateLocked seeds the aggregate and every dependent manager. Caller holds
// the mutex (or has exclusive access during construction).
func (s *Session) hydrateLocked(c *models.Contact) {
	normalizeLegacyScalars(c)
	s.contact = c

	s.emails = NewCollection(entryPointers(c.Emails), func() *models.EmailEntry { return &models.EmailEntry{} })
	s.phones = NewCollection(entryPointers(c.Phones), func() *models.PhoneEntry { return &models.PhoneEntry{} })
	s.companies = NewCollection(entryPointers(c.Companies), func() *models.CompanyLink { return &models.CompanyLink{} })

	if s.emailConflicts != nil {
		s.emailConflicts.Close()
	}
	if s.phoneConflicts != nil {
		s.phoneConflicts.Close()
	}
	s.emailConflicts = newConflictDetector(s.store, conflictKindEmail, c.ID, s.cfg.SettleDelay, s.notify)
	s.phoneConflicts = newConflictDetector(s.store, conflictKindPhone, c.ID, s.cfg.SettleDelay, s.notify)

	s.roles = newRoleTracker(s.store, c.ID, s.mergeGlobalRoles)
}

// mergeGlobalRoles folds roles accepted by a case-role save into the
// aggregate's denormalized role set. Roles are only ever added here.
func (s *Session) mergeGlobalRoles(accepted []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, role := range accepted {
		found := false
		for _, have := range s.contact.Roles {
			if have == role {
				found = true
				break
			}
		}
		if !found {
			s.contact.Roles = append(s.contact.Roles, role)
		}
	}
}

func (s *Session) stopWatchdogLocked() {
	if s.watchdog != nil {
		s.watchdog.Stop()
		s.watchdog = nil
	}
}

func (s *Session) notify() {
	if s.cfg.OnChange != nil {
		s.cfg.OnChange()
	}
}

// State returns the load state tag: idle, loading, loaded, or error.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error text shown alongside the error state.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// EditMode reports whether the session edits an existing aggregate.
func (s *Session) EditMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editMode
}

// Saving reports whether an aggregate save is in flight.
func (s *Session) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// Contact returns the live aggregate. The UI goroutine may read scalar fields
// directly; mutations go through Apply.
func (s *Session) Contact() *models.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contact
}

// Apply runs fn against the aggregate under the session lock. Used by the UI
// to copy form fields into the scalar profile.
func (s *Session) Apply(fn func(c *models.Contact)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.contact)
}

// Emails returns the email collection manager.
func (s *Session) Emails() *Collection[*models.EmailEntry] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emails
}

// Phones returns the phone collection manager.
func (s *Session) Phones() *Collection[*models.PhoneEntry] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phones
}

// Companies returns the company collection manager.
func (s *Session) Companies() *Collection[*models.CompanyLink] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.companies
}

// Roles returns the per-case role tracker.
func (s *Session) Roles() *RoleTracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roles
}

// EmailConflicts returns the duplicate detector for the email collection.
func (s *Session) EmailConflicts() *ConflictDetector {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emailConflicts
}

// PhoneConflicts returns the duplicate detector for the phone collection.
func (s *Session) PhoneConflicts() *ConflictDetector {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phoneConflicts
}

// normalizeLegacyScalars lifts legacy scalar email/phone/company fields into
// collection entries when the server sent no collections, so the invariant
// manager never sees the scalar shape.
func normalizeLegacyScalars(c *models.Contact) {
	if len(c.Emails) == 0 && c.Email != "" {
		c.Emails = []models.EmailEntry{{Address: c.Email, Primary: true}}
	}
	if len(c.Phones) == 0 && c.Phone != "" {
		c.Phones = []models.PhoneEntry{{Number: c.Phone, Primary: true}}
	}
	if len(c.Companies) == 0 && c.CompanyName != "" {
		c.Companies = []models.CompanyLink{{Name: c.CompanyName, Primary: true}}
	}
}

// entryPointers converts a slice of entry values into the pointer slice the
// collection manager mutates.
func entryPointers[T any, P interface {
	*T
	Entry
}](values []T) []P {
	out := make([]P, 0, len(values))
	for i := range values {
		v := values[i]
		out = append(out, P(&v))
	}
	return out
}
