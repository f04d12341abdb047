// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server exposing store-backed contact and case tools on stdio
package cli

import (
	"context"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"salesdesk/handlers"
	"salesdesk/store"
)

// MCPCommand starts the MCP server on stdio.
func MCPCommand(client *store.Client) error {
	log.Println("Starting salesdesk MCP server...")

	contactHandlers := handlers.NewContactHandlers(client)
	caseHandlers := handlers.NewCaseHandlers(client)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "salesdesk",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_contacts",
		Description: "Search for contacts by name, email, or phone",
	}, contactHandlers.FindContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_contact",
		Description: "Fetch the full contact aggregate by ID, including emails, phones, and companies",
	}, contactHandlers.GetContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_contact",
		Description: "Update an existing contact's profile fields and primary contact points",
	}, contactHandlers.UpdateContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_cases",
		Description: "List open sales cases, or a contact's case history with their roles",
	}, caseHandlers.ListCases)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_case_roles",
		Description: "Replace a contact's complete role set on one sales case",
	}, caseHandlers.SetCaseRoles)

	ctx := context.Background()
	return server.Run(ctx, &mcp.StdioTransport{})
}
