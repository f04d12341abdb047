// ABOUTME: Case MCP tool handlers
// ABOUTME: Implements list_cases and set_case_roles tools over the record store
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"salesdesk/models"
	"salesdesk/store"
)

type CaseHandlers struct {
	client *store.Client
}

func NewCaseHandlers(client *store.Client) *CaseHandlers {
	return &CaseHandlers{client: client}
}

type CaseOutput struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Stage    string   `json:"stage"`
	Amount   int64    `json:"amount,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

func caseToOutput(c *models.Case) CaseOutput {
	return CaseOutput{
		ID:       c.ID.String(),
		Title:    c.Title,
		Stage:    c.Stage,
		Amount:   c.Amount,
		Currency: c.Currency,
		Roles:    c.Roles,
	}
}

type ListCasesInput struct {
	ContactID string `json:"contact_id,omitempty" jsonschema:"List this contact's case history with their roles; omit for all open cases"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 20)"`
}

type ListCasesOutput struct {
	Cases []CaseOutput `json:"cases"`
}

func (h *CaseHandlers) ListCases(ctx context.Context, request *mcp.CallToolRequest, input ListCasesInput) (*mcp.CallToolResult, ListCasesOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 20
	}

	var (
		cases []models.Case
		err   error
	)
	if input.ContactID != "" {
		contactID, parseErr := uuid.Parse(input.ContactID)
		if parseErr != nil {
			return nil, ListCasesOutput{}, fmt.Errorf("invalid contact_id: %w", parseErr)
		}
		cases, err = h.client.FetchCaseHistory(ctx, contactID)
	} else {
		cases, err = h.client.ListCases(ctx, limit)
	}
	if err != nil {
		return nil, ListCasesOutput{}, fmt.Errorf("failed to list cases: %w", err)
	}

	result := make([]CaseOutput, len(cases))
	for i := range cases {
		result[i] = caseToOutput(&cases[i])
	}

	return nil, ListCasesOutput{Cases: result}, nil
}

type SetCaseRolesInput struct {
	ContactID string   `json:"contact_id" jsonschema:"Contact ID (required)"`
	CaseID    string   `json:"case_id" jsonschema:"Case ID (required)"`
	Roles     []string `json:"roles" jsonschema:"Complete replacement role set; roles are deal_maker, sponsor, champion, decision_maker, influencer, blocker"`
}

type SetCaseRolesOutput struct {
	Roles []string `json:"roles"`
}

// SetCaseRoles replaces the contact's full role set on one case. The store
// contract is replace-all; the returned list is what the server accepted.
func (h *CaseHandlers) SetCaseRoles(ctx context.Context, request *mcp.CallToolRequest, input SetCaseRolesInput) (*mcp.CallToolResult, SetCaseRolesOutput, error) {
	if input.ContactID == "" || input.CaseID == "" {
		return nil, SetCaseRolesOutput{}, fmt.Errorf("contact_id and case_id are required")
	}
	contactID, err := uuid.Parse(input.ContactID)
	if err != nil {
		return nil, SetCaseRolesOutput{}, fmt.Errorf("invalid contact_id: %w", err)
	}
	caseID, err := uuid.Parse(input.CaseID)
	if err != nil {
		return nil, SetCaseRolesOutput{}, fmt.Errorf("invalid case_id: %w", err)
	}
	for _, role := range input.Roles {
		if !knownRole(role) {
			return nil, SetCaseRolesOutput{}, fmt.Errorf("unknown role %q, expected one of: %s", role, strings.Join(models.CaseRoles, ", "))
		}
	}

	accepted, err := h.client.ReplaceCaseRoles(ctx, contactID, caseID, input.Roles)
	if err != nil {
		return nil, SetCaseRolesOutput{}, fmt.Errorf("failed to set case roles: %w", err)
	}

	return nil, SetCaseRolesOutput{Roles: accepted}, nil
}

func knownRole(role string) bool {
	for _, r := range models.CaseRoles {
		if r == role {
			return true
		}
	}
	return false
}
