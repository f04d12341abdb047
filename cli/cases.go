// ABOUTME: Case CLI commands
// ABOUTME: Lists cases and manages a contact's roles on them via the role tracker
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"

	"salesdesk/editor"
	"salesdesk/models"
	"salesdesk/store"
)

// ListCasesCommand lists open cases, or a contact's case history when
// --contact is given.
func ListCasesCommand(client *store.Client, args []string) error {
	fs := flag.NewFlagSet("list-cases", flag.ExitOnError)
	contact := fs.String("contact", "", "Contact ID: list this contact's case history with roles")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	var (
		cases []models.Case
		err   error
	)
	if *contact != "" {
		contactID, parseErr := uuid.Parse(*contact)
		if parseErr != nil {
			return fmt.Errorf("invalid contact ID: %w", parseErr)
		}
		cases, err = client.FetchCaseHistory(context.Background(), contactID)
	} else {
		cases, err = client.ListCases(context.Background(), *limit)
	}
	if err != nil {
		return fmt.Errorf("failed to list cases: %w", err)
	}

	if len(cases) == 0 {
		fmt.Println("No cases found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TITLE\tSTAGE\tAMOUNT\tROLES\tID")
	_, _ = fmt.Fprintln(w, "-----\t-----\t------\t-----\t--")

	for _, c := range cases {
		amount := "-"
		if c.Amount > 0 {
			amount = fmt.Sprintf("%s %d", c.Currency, c.Amount/100)
		}
		roles := "-"
		if len(c.Roles) > 0 {
			roles = strings.Join(c.Roles, ",")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			c.Title, c.Stage, amount, roles, c.ID.String()[:8])
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d case(s)\n", len(cases))
	return nil
}

// AssignRoleCommand adds a role to a contact on a case.
func AssignRoleCommand(client *store.Client, args []string) error {
	return toggleRoleCommand(client, "assign-role", args, true)
}

// RevokeRoleCommand removes a role from a contact on a case.
func RevokeRoleCommand(client *store.Client, args []string) error {
	return toggleRoleCommand(client, "revoke-role", args, false)
}

// toggleRoleCommand drives the editor's role tracker so the CLI goes through
// the same baseline/working reconciliation as the console: hydrate from the
// case history, flip the role, send the complete working set.
func toggleRoleCommand(client *store.Client, name string, args []string, add bool) error {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	contact := fs.String("contact", "", "Contact ID (required)")
	caseFlag := fs.String("case", "", "Case ID (required)")
	role := fs.String("role", "", "Role to toggle: "+strings.Join(models.CaseRoles, ", "))
	_ = fs.Parse(args)

	if *contact == "" || *caseFlag == "" || *role == "" {
		return fmt.Errorf("--contact, --case, and --role are required")
	}
	contactID, err := uuid.Parse(*contact)
	if err != nil {
		return fmt.Errorf("invalid contact ID: %w", err)
	}
	caseID, err := uuid.Parse(*caseFlag)
	if err != nil {
		return fmt.Errorf("invalid case ID: %w", err)
	}
	if !validRole(*role) {
		return fmt.Errorf("unknown role %q, expected one of: %s", *role, strings.Join(models.CaseRoles, ", "))
	}

	ctx := context.Background()
	cases, err := client.FetchCaseHistory(ctx, contactID)
	if err != nil {
		return fmt.Errorf("failed to load case history: %w", err)
	}

	tracker := editor.NewRoleTracker(client, contactID)
	tracker.Hydrate(cases)

	if tracker.Has(caseID, *role) == add {
		if add {
			fmt.Printf("Role %s already assigned\n", *role)
		} else {
			fmt.Printf("Role %s not assigned\n", *role)
		}
		return nil
	}

	tracker.Toggle(caseID, *role)
	if !tracker.IsDirty(caseID) {
		return fmt.Errorf("case not found in contact's history: %s", caseID)
	}

	if err := tracker.Save(ctx, caseID); err != nil {
		return fmt.Errorf("failed to save roles: %w", err)
	}

	roles := tracker.Roles(caseID)
	display := "none"
	if len(roles) > 0 {
		display = strings.Join(roles, ", ")
	}
	fmt.Printf("✓ Roles on case %s: %s\n", caseID.String()[:8], display)
	return nil
}

func validRole(role string) bool {
	for _, r := range models.CaseRoles {
		if r == role {
			return true
		}
	}
	return false
}
