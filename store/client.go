// ABOUTME: REST client for the remote record store
// ABOUTME: Implements aggregate fetch/search/create/update, case roles, and console list endpoints
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"salesdesk/models"
)

// ErrNotFound is returned when the store has no record for the requested id.
var ErrNotFound = errors.New("record not found")

// APIError carries the server-reported failure for a request.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("store returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("store returned %d", e.Status)
}

// UserMessage returns the server-provided text suitable for direct display.
func (e *APIError) UserMessage() string { return e.Message }

// Client talks to the record store's REST API. Safe for concurrent use.
type Client struct {
	baseURL  string
	token    string
	deviceID string
	http     *http.Client
	entropy  *ulid.MonotonicEntropy
}

// NewClient builds a client from console configuration.
func NewClient(cfg *Config) *Client {
	return &Client{
		baseURL:  cfg.APIURL,
		token:    cfg.Token,
		deviceID: cfg.DeviceID,
		http:     &http.Client{Timeout: 30 * time.Second},
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// FetchContact returns the full aggregate for id.
func (c *Client) FetchContact(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	var wire wireContact
	if err := c.do(ctx, http.MethodGet, "/contacts/"+id.String(), nil, nil, &wire, ""); err != nil {
		return nil, err
	}
	contact := wire.normalize()
	return &contact, nil
}

// SearchContacts returns aggregates matching query. excludeID (when not Nil)
// is passed through so the server omits the aggregate being edited.
func (c *Client) SearchContacts(ctx context.Context, query string, excludeID uuid.UUID, limit int) ([]models.Contact, error) {
	q := url.Values{}
	q.Set("query", query)
	if excludeID != uuid.Nil {
		q.Set("exclude", excludeID.String())
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var wires []wireContact
	if err := c.do(ctx, http.MethodGet, "/contacts", q, nil, &wires, ""); err != nil {
		return nil, err
	}
	return normalizeAll(wires), nil
}

// ListContacts returns the most recently touched aggregates.
func (c *Client) ListContacts(ctx context.Context, limit int) ([]models.Contact, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var wires []wireContact
	if err := c.do(ctx, http.MethodGet, "/contacts", q, nil, &wires, ""); err != nil {
		return nil, err
	}
	return normalizeAll(wires), nil
}

// CreateContact persists a new aggregate. A ULID idempotency key guards
// against double-creates on retried requests.
func (c *Client) CreateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	key := ulid.MustNew(ulid.Timestamp(time.Now()), c.entropy).String()
	var wire wireContact
	if err := c.do(ctx, http.MethodPost, "/contacts", nil, contact, &wire, key); err != nil {
		return nil, err
	}
	created := wire.normalize()
	return &created, nil
}

// UpdateContact replaces the aggregate stored under id.
func (c *Client) UpdateContact(ctx context.Context, id uuid.UUID, contact *models.Contact) (*models.Contact, error) {
	var wire wireContact
	if err := c.do(ctx, http.MethodPut, "/contacts/"+id.String(), nil, contact, &wire, ""); err != nil {
		return nil, err
	}
	updated := wire.normalize()
	return &updated, nil
}

// DeleteContact removes the aggregate stored under id.
func (c *Client) DeleteContact(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/contacts/"+id.String(), nil, nil, nil, "")
}

// FetchCaseHistory lists the cases related to a contact, each carrying the
// contact's current role set.
func (c *Client) FetchCaseHistory(ctx context.Context, contactID uuid.UUID) ([]models.Case, error) {
	var cases []models.Case
	if err := c.do(ctx, http.MethodGet, "/contacts/"+contactID.String()+"/cases", nil, nil, &cases, ""); err != nil {
		return nil, err
	}
	return cases, nil
}

// ReplaceCaseRoles replaces the contact's role set on one case. The remote
// contract is replace-all, not an add/remove delta.
func (c *Client) ReplaceCaseRoles(ctx context.Context, contactID, caseID uuid.UUID, roles []string) ([]string, error) {
	body := struct {
		Roles []string `json:"roles"`
	}{Roles: roles}
	var out struct {
		Roles []string `json:"roles"`
	}
	path := "/contacts/" + contactID.String() + "/cases/" + caseID.String() + "/roles"
	if err := c.do(ctx, http.MethodPut, path, nil, body, &out, ""); err != nil {
		return nil, err
	}
	return out.Roles, nil
}

// ListCases returns open cases for the cases tab.
func (c *Client) ListCases(ctx context.Context, limit int) ([]models.Case, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var cases []models.Case
	if err := c.do(ctx, http.MethodGet, "/cases", q, nil, &cases, ""); err != nil {
		return nil, err
	}
	return cases, nil
}

// ListCourses returns a contact's course enrollments.
func (c *Client) ListCourses(ctx context.Context, contactID uuid.UUID) ([]models.Course, error) {
	var courses []models.Course
	if err := c.do(ctx, http.MethodGet, "/contacts/"+contactID.String()+"/courses", nil, nil, &courses, ""); err != nil {
		return nil, err
	}
	return courses, nil
}

// ListWebinars returns a contact's webinar attendance.
func (c *Client) ListWebinars(ctx context.Context, contactID uuid.UUID) ([]models.Webinar, error) {
	var webinars []models.Webinar
	if err := c.do(ctx, http.MethodGet, "/contacts/"+contactID.String()+"/webinars", nil, nil, &webinars, ""); err != nil {
		return nil, err
	}
	return webinars, nil
}

// ListMessagingRules returns the outbound-messaging rules for the rules tab.
func (c *Client) ListMessagingRules(ctx context.Context) ([]models.MessagingRule, error) {
	var rules []models.MessagingRule
	if err := c.do(ctx, http.MethodGet, "/messaging-rules", nil, nil, &rules, ""); err != nil {
		return nil, err
	}
	return rules, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}, idempotencyKey string) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.deviceID != "" {
		req.Header.Set("X-Device-ID", c.deviceID)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorMessage extracts the server-provided message from an error body.
func errorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}

func normalizeAll(wires []wireContact) []models.Contact {
	out := make([]models.Contact, 0, len(wires))
	for _, w := range wires {
		out = append(out, w.normalize())
	}
	return out
}
