// ABOUTME: Visualization CLI commands
// ABOUTME: Generates the case-role network graph as DOT output
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"salesdesk/store"
	"salesdesk/viz"
)

// VizRolesCommand generates the contact-to-case role network graph.
func VizRolesCommand(client *store.Client, args []string) error {
	fs := flag.NewFlagSet("viz roles", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	generator := viz.NewGraphGenerator(client)

	var contactID *uuid.UUID
	if fs.NArg() > 0 {
		id, err := uuid.Parse(fs.Arg(0))
		if err != nil {
			return fmt.Errorf("invalid contact ID: %w", err)
		}
		contactID = &id
	}

	dot, err := generator.GenerateRoleGraph(context.Background(), contactID)
	if err != nil {
		return err
	}

	if *output != "" {
		return os.WriteFile(*output, []byte(dot), 0644)
	}

	fmt.Println(dot)
	return nil
}
