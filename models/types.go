// ABOUTME: Data models for sales console entities
// ABOUTME: Defines the Contact aggregate, its sub-collections, and related Case/Course/Webinar records
package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact is the aggregate root edited by the console: scalar profile fields
// plus three multi-valued, single-primary sub-collections. ID is uuid.Nil
// while the editor is in create mode.
type Contact struct {
	ID             uuid.UUID     `json:"id"`
	FirstName      string        `json:"first_name,omitempty"`
	LastName       string        `json:"last_name,omitempty"`
	Name           string        `json:"name"` // legacy display name, kept alongside first/last
	Title          string        `json:"title,omitempty"`
	JobTitle       string        `json:"job_title,omitempty"`
	Location       string        `json:"location,omitempty"`
	Classification string        `json:"classification,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	LifecycleStage int           `json:"lifecycle_stage,omitempty"` // 1-5
	Persona        string        `json:"persona,omitempty"`
	Roles          []string      `json:"roles,omitempty"` // denormalized union of case roles
	Email          string        `json:"email,omitempty"` // legacy scalar, mirrors primary entry
	Phone          string        `json:"phone,omitempty"` // legacy scalar, mirrors primary entry
	CompanyName    string        `json:"company_name,omitempty"`
	Emails         []EmailEntry  `json:"emails,omitempty"`
	Phones         []PhoneEntry  `json:"phones,omitempty"`
	Companies      []CompanyLink `json:"companies,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// DisplayName is the composite name shown in lists: first/last parts joined,
// falling back to the legacy name field when both parts are empty.
func (c *Contact) DisplayName() string {
	full := c.FirstName
	if c.LastName != "" {
		if full != "" {
			full += " "
		}
		full += c.LastName
	}
	if full == "" {
		return c.Name
	}
	return full
}

type EmailEntry struct {
	Address string `json:"address"`
	Primary bool   `json:"primary"`
}

func (e *EmailEntry) Empty() bool          { return e.Address == "" }
func (e *EmailEntry) IsPrimary() bool      { return e.Primary }
func (e *EmailEntry) SetPrimary(p bool)    { e.Primary = p }
func (e *EmailEntry) DisplayValue() string { return e.Address }

type PhoneEntry struct {
	Number      string `json:"number"`
	CountryCode string `json:"country_code,omitempty"`
	Primary     bool   `json:"primary"`
}

func (p *PhoneEntry) Empty() bool          { return p.Number == "" }
func (p *PhoneEntry) IsPrimary() bool      { return p.Primary }
func (p *PhoneEntry) SetPrimary(v bool)    { p.Primary = v }
func (p *PhoneEntry) DisplayValue() string { return p.Number }

type CompanyLink struct {
	CompanyID uuid.UUID `json:"company_id,omitempty"`
	Name      string    `json:"name"`
	Primary   bool      `json:"primary"`
}

func (c *CompanyLink) Empty() bool          { return c.Name == "" && c.CompanyID == uuid.Nil }
func (c *CompanyLink) IsPrimary() bool      { return c.Primary }
func (c *CompanyLink) SetPrimary(p bool)    { c.Primary = p }
func (c *CompanyLink) DisplayValue() string { return c.Name }

// Case is a sales case related to a contact. Roles holds the roles this
// contact plays on the case, as reported by the record store.
type Case struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Stage          string     `json:"stage"`
	Amount         int64      `json:"amount,omitempty"` // in cents
	Currency       string     `json:"currency,omitempty"`
	Roles          []string   `json:"roles,omitempty"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
}

// Case stage constants.
const (
	StageProspecting   = "prospecting"
	StageQualification = "qualification"
	StageProposal      = "proposal"
	StageNegotiation   = "negotiation"
	StageClosedWon     = "closed_won"
	StageClosedLost    = "closed_lost"
)

// Case role vocabulary.
const (
	RoleDealMaker     = "deal_maker"
	RoleSponsor       = "sponsor"
	RoleChampion      = "champion"
	RoleDecisionMaker = "decision_maker"
	RoleInfluencer    = "influencer"
	RoleBlocker       = "blocker"
)

// CaseRoles lists the full role vocabulary in display order.
var CaseRoles = []string{
	RoleDealMaker,
	RoleSponsor,
	RoleChampion,
	RoleDecisionMaker,
	RoleInfluencer,
	RoleBlocker,
}

// Load session state constants.
const (
	LoadStateIdle    = "idle"
	LoadStateLoading = "loading"
	LoadStateLoaded  = "loaded"
	LoadStateError   = "error"
)

// Lifecycle stage bounds for contacts.
const (
	LifecycleStageMin = 1
	LifecycleStageMax = 5
)

type Course struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	EnrolledAt *time.Time `json:"enrolled_at,omitempty"`
}

type Webinar struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	StartsAt time.Time `json:"starts_at"`
	Attended bool      `json:"attended"`
}

type MessagingRule struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Channel   string     `json:"channel"`
	Audience  string     `json:"audience,omitempty"`
	Active    bool       `json:"active"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
}

// Messaging channel constants.
const (
	ChannelEmail    = "email"
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
)
