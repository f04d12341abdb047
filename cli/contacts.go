// ABOUTME: Contact CLI commands
// ABOUTME: Human-friendly commands for managing contacts against the record store
package cli

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"

	"salesdesk/cache"
	"salesdesk/editor"
	"salesdesk/models"
	"salesdesk/store"
)

// rememberContact refreshes the local recents cache after a store operation.
// Cache failures are non-fatal; the store operation already succeeded.
func rememberContact(recents *cache.Cache, contact *models.Contact) {
	if recents == nil || contact == nil {
		return
	}
	if err := recents.Put([]models.Contact{*contact}); err != nil {
		log.Printf("warning: recents cache update failed: %v", err)
	}
}

// AddContactCommand adds a new contact.
func AddContactCommand(client *store.Client, recents *cache.Cache, args []string) error {
	fs := flag.NewFlagSet("add-contact", flag.ExitOnError)
	firstName := fs.String("first-name", "", "Contact first name")
	lastName := fs.String("last-name", "", "Contact last name")
	name := fs.String("name", "", "Full display name (alternative to first/last)")
	email := fs.String("email", "", "Primary email address")
	phone := fs.String("phone", "", "Primary phone number")
	company := fs.String("company", "", "Primary company name")
	title := fs.String("title", "", "Job title")
	stage := fs.Int("stage", 0, "Lifecycle stage (1-5)")
	notes := fs.String("notes", "", "Notes about the contact")
	_ = fs.Parse(args)

	if *name == "" && *firstName == "" {
		return fmt.Errorf("--name or --first-name is required")
	}
	if *email != "" && !editor.ValidEmail(*email) {
		return fmt.Errorf("invalid email address: %s", *email)
	}
	if *phone != "" && !editor.ValidPhone(*phone) {
		return fmt.Errorf("invalid phone number: %s", *phone)
	}
	if *stage != 0 && (*stage < models.LifecycleStageMin || *stage > models.LifecycleStageMax) {
		return fmt.Errorf("lifecycle stage must be between %d and %d", models.LifecycleStageMin, models.LifecycleStageMax)
	}

	contact := &models.Contact{
		FirstName:      *firstName,
		LastName:       *lastName,
		Name:           *name,
		Title:          *title,
		LifecycleStage: *stage,
		Notes:          *notes,
		Email:          *email,
		Phone:          *phone,
		CompanyName:    *company,
	}
	if *email != "" {
		contact.Emails = []models.EmailEntry{{Address: *email, Primary: true}}
	}
	if *phone != "" {
		contact.Phones = []models.PhoneEntry{{Number: *phone, Primary: true}}
	}
	if *company != "" {
		contact.Companies = []models.CompanyLink{{Name: *company, Primary: true}}
	}
	if contact.Name == "" {
		contact.Name = contact.DisplayName()
	}

	created, err := client.CreateContact(context.Background(), contact)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	rememberContact(recents, created)

	fmt.Printf("✓ Contact created: %s (ID: %s)\n", created.DisplayName(), created.ID)
	if created.Email != "" {
		fmt.Printf("  Email: %s\n", created.Email)
	}
	if created.Phone != "" {
		fmt.Printf("  Phone: %s\n", editor.FormatPhone(created.Phone))
	}
	if created.CompanyName != "" {
		fmt.Printf("  Company: %s\n", created.CompanyName)
	}

	return nil
}

// ListContactsCommand lists contacts from the store.
func ListContactsCommand(client *store.Client, recents *cache.Cache, args []string) error {
	fs := flag.NewFlagSet("list-contacts", flag.ExitOnError)
	query := fs.String("query", "", "Search by name, email, or phone")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	var (
		contacts []models.Contact
		err      error
	)
	if *query == "" {
		contacts, err = client.ListContacts(context.Background(), *limit)
	} else {
		contacts, err = client.SearchContacts(context.Background(), *query, uuid.Nil, *limit)
	}
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}

	if len(contacts) == 0 {
		fmt.Println("No contacts found")
		return nil
	}

	if recents != nil {
		if err := recents.Put(contacts); err != nil {
			log.Printf("warning: recents cache update failed: %v", err)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tEMAIL\tPHONE\tCOMPANY\tSTAGE\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t-----\t-------\t-----\t--")

	for i := range contacts {
		contact := &contacts[i]
		email := contact.Email
		if email == "" {
			email = "-"
		}
		phone := "-"
		if contact.Phone != "" {
			phone = editor.FormatPhone(contact.Phone)
		}
		company := contact.CompanyName
		if company == "" {
			company = "-"
		}
		stage := "-"
		if contact.LifecycleStage > 0 {
			stage = fmt.Sprintf("%d", contact.LifecycleStage)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			contact.DisplayName(), email, phone, company, stage, contact.ID.String()[:8])
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d contact(s)\n", len(contacts))
	return nil
}

// UpdateContactCommand updates an existing contact. Flags overwrite only the
// fields they name; the rest of the aggregate is preserved by fetching first.
func UpdateContactCommand(client *store.Client, recents *cache.Cache, args []string) error {
	fs := flag.NewFlagSet("update-contact", flag.ExitOnError)
	firstName := fs.String("first-name", "", "Contact first name")
	lastName := fs.String("last-name", "", "Contact last name")
	email := fs.String("email", "", "Primary email address")
	phone := fs.String("phone", "", "Primary phone number")
	title := fs.String("title", "", "Job title")
	stage := fs.Int("stage", 0, "Lifecycle stage (1-5)")
	notes := fs.String("notes", "", "Notes about the contact")
	_ = fs.Parse(args)

	if len(fs.Args()) < 1 {
		return fmt.Errorf("contact ID is required")
	}
	contactID, err := uuid.Parse(fs.Args()[0])
	if err != nil {
		return fmt.Errorf("invalid contact ID: %w", err)
	}

	existing, err := client.FetchContact(context.Background(), contactID)
	if err != nil {
		return fmt.Errorf("contact not found: %w", err)
	}

	if *firstName != "" {
		existing.FirstName = *firstName
	}
	if *lastName != "" {
		existing.LastName = *lastName
	}
	if *title != "" {
		existing.Title = *title
	}
	if *notes != "" {
		existing.Notes = *notes
	}
	if *stage != 0 {
		if *stage < models.LifecycleStageMin || *stage > models.LifecycleStageMax {
			return fmt.Errorf("lifecycle stage must be between %d and %d", models.LifecycleStageMin, models.LifecycleStageMax)
		}
		existing.LifecycleStage = *stage
	}
	if *email != "" {
		if !editor.ValidEmail(*email) {
			return fmt.Errorf("invalid email address: %s", *email)
		}
		setPrimaryEmail(existing, *email)
	}
	if *phone != "" {
		if !editor.ValidPhone(*phone) {
			return fmt.Errorf("invalid phone number: %s", *phone)
		}
		setPrimaryPhone(existing, *phone)
	}
	existing.Name = existing.DisplayName()

	updated, err := client.UpdateContact(context.Background(), contactID, existing)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	rememberContact(recents, updated)

	fmt.Printf("✓ Contact updated: %s (ID: %s)\n", updated.DisplayName(), contactID)
	return nil
}

// DeleteContactCommand deletes a contact.
func DeleteContactCommand(client *store.Client, recents *cache.Cache, args []string) error {
	fs := flag.NewFlagSet("delete-contact", flag.ExitOnError)
	_ = fs.Parse(args)

	if len(fs.Args()) < 1 {
		return fmt.Errorf("contact ID is required")
	}
	contactID, err := uuid.Parse(fs.Args()[0])
	if err != nil {
		return fmt.Errorf("invalid contact ID: %w", err)
	}

	if err := client.DeleteContact(context.Background(), contactID); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if recents != nil {
		if err := recents.Forget(contactID); err != nil {
			log.Printf("warning: recents cache update failed: %v", err)
		}
	}

	fmt.Printf("✓ Contact deleted: %s\n", contactID)
	return nil
}

// setPrimaryEmail rewrites the primary email entry in place, adding one when
// the aggregate has none.
func setPrimaryEmail(c *models.Contact, address string) {
	c.Email = address
	for i := range c.Emails {
		if c.Emails[i].Primary {
			c.Emails[i].Address = address
			return
		}
	}
	c.Emails = append(c.Emails, models.EmailEntry{Address: address, Primary: true})
}

func setPrimaryPhone(c *models.Contact, number string) {
	c.Phone = number
	for i := range c.Phones {
		if c.Phones[i].Primary {
			c.Phones[i].Number = number
			return
		}
	}
	c.Phones = append(c.Phones, models.PhoneEntry{Number: number, Primary: true})
}
