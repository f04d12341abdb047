// ABOUTME: Wire-shape normalization for record store responses
// ABOUTME: Accepts bare-string or object forms for sub-collection entries and yields canonical shapes
package store

import (
	"encoding/json"

	"salesdesk/models"
)

// Older store deployments deliver sub-collection entries as bare strings
// rather than objects. Both forms are normalized here, at the load boundary,
// so the editor's invariant logic only ever sees canonical entry shapes.

type wireContact struct {
	models.Contact
	Emails    []wireEmail   `json:"emails,omitempty"`
	Phones    []wirePhone   `json:"phones,omitempty"`
	Companies []wireCompany `json:"companies,omitempty"`
}

func (w wireContact) normalize() models.Contact {
	c := w.Contact
	c.Emails = nil
	c.Phones = nil
	c.Companies = nil
	for _, e := range w.Emails {
		c.Emails = append(c.Emails, e.EmailEntry)
	}
	for _, p := range w.Phones {
		c.Phones = append(c.Phones, p.PhoneEntry)
	}
	for _, co := range w.Companies {
		c.Companies = append(c.Companies, co.CompanyLink)
	}
	return c
}

type wireEmail struct {
	models.EmailEntry
}

func (w *wireEmail) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &w.Address)
	}
	return json.Unmarshal(data, &w.EmailEntry)
}

type wirePhone struct {
	models.PhoneEntry
}

func (w *wirePhone) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &w.Number)
	}
	return json.Unmarshal(data, &w.PhoneEntry)
}

type wireCompany struct {
	models.CompanyLink
}

func (w *wireCompany) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &w.Name)
	}
	return json.Unmarshal(data, &w.CompanyLink)
}
