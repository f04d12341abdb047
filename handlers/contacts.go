// ABOUTME: Contact MCP tool handlers
// ABOUTME: Implements find_contacts, get_contact, and update_contact tools over the record store
package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"salesdesk/editor"
	"salesdesk/models"
	"salesdesk/store"
)

type ContactHandlers struct {
	client *store.Client
}

func NewContactHandlers(client *store.Client) *ContactHandlers {
	return &ContactHandlers{client: client}
}

type ContactOutput struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	FirstName      string   `json:"first_name,omitempty"`
	LastName       string   `json:"last_name,omitempty"`
	Title          string   `json:"title,omitempty"`
	JobTitle       string   `json:"job_title,omitempty"`
	Location       string   `json:"location,omitempty"`
	Classification string   `json:"classification,omitempty"`
	LifecycleStage int      `json:"lifecycle_stage,omitempty"`
	Persona        string   `json:"persona,omitempty"`
	Roles          []string `json:"roles,omitempty"`
	Email          string   `json:"email,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	CompanyName    string   `json:"company_name,omitempty"`
	Emails         []string `json:"emails,omitempty"`
	Phones         []string `json:"phones,omitempty"`
	Companies      []string `json:"companies,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

func contactToOutput(c *models.Contact) ContactOutput {
	out := ContactOutput{
		ID:             c.ID.String(),
		Name:           c.DisplayName(),
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Title:          c.Title,
		JobTitle:       c.JobTitle,
		Location:       c.Location,
		Classification: c.Classification,
		LifecycleStage: c.LifecycleStage,
		Persona:        c.Persona,
		Roles:          c.Roles,
		Email:          c.Email,
		Phone:          c.Phone,
		CompanyName:    c.CompanyName,
		Notes:          c.Notes,
	}
	for _, e := range c.Emails {
		out.Emails = append(out.Emails, e.Address)
	}
	for _, p := range c.Phones {
		out.Phones = append(out.Phones, p.Number)
	}
	for _, co := range c.Companies {
		out.Companies = append(out.Companies, co.Name)
	}
	return out
}

type FindContactsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Search query (searches name, email, and phone)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindContactsOutput struct {
	Contacts []ContactOutput `json:"contacts"`
}

func (h *ContactHandlers) FindContacts(ctx context.Context, request *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 10
	}

	var (
		contacts []models.Contact
		err      error
	)
	if input.Query == "" {
		contacts, err = h.client.ListContacts(ctx, limit)
	} else {
		contacts, err = h.client.SearchContacts(ctx, input.Query, uuid.Nil, limit)
	}
	if err != nil {
		return nil, FindContactsOutput{}, fmt.Errorf("failed to find contacts: %w", err)
	}

	result := make([]ContactOutput, len(contacts))
	for i := range contacts {
		result[i] = contactToOutput(&contacts[i])
	}

	return nil, FindContactsOutput{Contacts: result}, nil
}

type GetContactInput struct {
	ID string `json:"id" jsonschema:"Contact ID (required)"`
}

func (h *ContactHandlers) GetContact(ctx context.Context, request *mcp.CallToolRequest, input GetContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.ID == "" {
		return nil, ContactOutput{}, fmt.Errorf("id is required")
	}
	contactID, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("invalid id: %w", err)
	}

	contact, err := h.client.FetchContact(ctx, contactID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to get contact: %w", err)
	}

	return nil, contactToOutput(contact), nil
}

type UpdateContactInput struct {
	ID             string `json:"id" jsonschema:"Contact ID (required)"`
	FirstName      string `json:"first_name,omitempty" jsonschema:"Updated first name"`
	LastName       string `json:"last_name,omitempty" jsonschema:"Updated last name"`
	Title          string `json:"title,omitempty" jsonschema:"Updated title"`
	Email          string `json:"email,omitempty" jsonschema:"Updated primary email address"`
	Phone          string `json:"phone,omitempty" jsonschema:"Updated primary phone number"`
	LifecycleStage int    `json:"lifecycle_stage,omitempty" jsonschema:"Updated lifecycle stage (1-5)"`
	Notes          string `json:"notes,omitempty" jsonschema:"Updated notes"`
}

func (h *ContactHandlers) UpdateContact(ctx context.Context, request *mcp.CallToolRequest, input UpdateContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	if input.ID == "" {
		return nil, ContactOutput{}, fmt.Errorf("id is required")
	}
	contactID, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("invalid id: %w", err)
	}

	contact, err := h.client.FetchContact(ctx, contactID)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to get contact: %w", err)
	}

	if input.FirstName != "" {
		contact.FirstName = input.FirstName
	}
	if input.LastName != "" {
		contact.LastName = input.LastName
	}
	if input.Title != "" {
		contact.Title = input.Title
	}
	if input.Notes != "" {
		contact.Notes = input.Notes
	}
	if input.LifecycleStage != 0 {
		if input.LifecycleStage < models.LifecycleStageMin || input.LifecycleStage > models.LifecycleStageMax {
			return nil, ContactOutput{}, fmt.Errorf("lifecycle_stage must be between %d and %d", models.LifecycleStageMin, models.LifecycleStageMax)
		}
		contact.LifecycleStage = input.LifecycleStage
	}
	if input.Email != "" {
		if !editor.ValidEmail(input.Email) {
			return nil, ContactOutput{}, fmt.Errorf("invalid email address: %s", input.Email)
		}
		contact.Email = input.Email
		replacePrimaryEmail(contact, input.Email)
	}
	if input.Phone != "" {
		if !editor.ValidPhone(input.Phone) {
			return nil, ContactOutput{}, fmt.Errorf("invalid phone number: %s", input.Phone)
		}
		contact.Phone = input.Phone
		replacePrimaryPhone(contact, input.Phone)
	}
	contact.Name = contact.DisplayName()

	updated, err := h.client.UpdateContact(ctx, contactID, contact)
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to update contact: %w", err)
	}

	return nil, contactToOutput(updated), nil
}

func replacePrimaryEmail(c *models.Contact, address string) {
	for i := range c.Emails {
		if c.Emails[i].Primary {
			c.Emails[i].Address = address
			return
		}
	}
	c.Emails = append(c.Emails, models.EmailEntry{Address: address, Primary: true})
}

func replacePrimaryPhone(c *models.Contact, number string) {
	for i := range c.Phones {
		if c.Phones[i].Primary {
			c.Phones[i].Number = number
			return
		}
	}
	c.Phones = append(c.Phones, models.PhoneEntry{Number: number, Primary: true})
}
