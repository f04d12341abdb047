// ABOUTME: Entry point for the salesdesk console, CLI, and MCP server
// ABOUTME: Routes to the TUI, store-backed subcommands, viz output, or the MCP server
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"salesdesk/cache"
	"salesdesk/cli"
	"salesdesk/store"
	"salesdesk/tui"
)

const version = "0.1.0"

func main() {
	// A local .env can supply SALESDESK_* overrides during development.
	_ = godotenv.Load()

	showVersion := flag.Bool("version", false, "Show version and exit")
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("salesdesk version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	// Login works before any credentials exist.
	if command == "login" {
		if err := cli.LoginCommand(commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}
		return
	}

	cfg, err := store.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.IsConfigured() {
		fmt.Println("Not logged in. Run: salesdesk login")
		os.Exit(1)
	}
	client := store.NewClient(cfg)

	switch command {
	case "console":
		recents := openRecents(cfg)
		if recents != nil {
			defer recents.Close()
		}
		program := tea.NewProgram(tui.NewModel(client, recents), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			log.Fatalf("Console failed: %v", err)
		}

	case "mcp":
		if err := cli.MCPCommand(client); err != nil {
			log.Fatalf("MCP server failed: %v", err)
		}

	case "contacts":
		recents := openRecents(cfg)
		if recents != nil {
			defer recents.Close()
		}

		if len(commandArgs) == 0 {
			fmt.Println("Error: contacts requires a subcommand")
			printUsage()
			os.Exit(1)
		}
		sub := commandArgs[0]
		subArgs := commandArgs[1:]

		switch sub {
		case "add":
			err = cli.AddContactCommand(client, recents, subArgs)
		case "list":
			err = cli.ListContactsCommand(client, recents, subArgs)
		case "update":
			err = cli.UpdateContactCommand(client, recents, subArgs)
		case "delete":
			err = cli.DeleteContactCommand(client, recents, subArgs)
		default:
			fmt.Printf("Unknown contacts command: %s\n\n", sub)
			printUsage()
			os.Exit(1)
		}
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "cases":
		if len(commandArgs) == 0 {
			fmt.Println("Error: cases requires a subcommand")
			printUsage()
			os.Exit(1)
		}
		sub := commandArgs[0]
		subArgs := commandArgs[1:]

		switch sub {
		case "list":
			err = cli.ListCasesCommand(client, subArgs)
		case "assign-role":
			err = cli.AssignRoleCommand(client, subArgs)
		case "revoke-role":
			err = cli.RevokeRoleCommand(client, subArgs)
		default:
			fmt.Printf("Unknown cases command: %s\n\n", sub)
			printUsage()
			os.Exit(1)
		}
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "viz":
		if len(commandArgs) == 0 || commandArgs[0] != "roles" {
			fmt.Println("Error: viz requires the 'roles' subcommand")
			printUsage()
			os.Exit(1)
		}
		if err := cli.VizRolesCommand(client, commandArgs[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// openRecents opens the local cache; a failure degrades to cache-less
// operation rather than blocking the store-backed command.
func openRecents(cfg *store.Config) *cache.Cache {
	path := cfg.CacheDB
	if path == "" {
		path = store.DefaultCachePath()
	}
	recents, err := cache.Open(path)
	if err != nil {
		log.Printf("warning: recents cache unavailable: %v", err)
		return nil
	}
	return recents
}

func printUsage() {
	fmt.Printf(`salesdesk v%s - Sales operations console

USAGE:
  salesdesk [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit

COMMANDS:
  login                  Store record store credentials
  console                Start the full-screen console (TUI)
  mcp                    Start MCP server on stdio
  contacts               Contact management commands
  cases                  Case and role commands
  viz                    Visualization commands

LOGIN:
  salesdesk login
    --url <url>            Record store API URL (prompted when omitted)

CONTACT COMMANDS:
  salesdesk contacts add      Add a new contact
    --first-name <name>        Contact first name
    --last-name <name>         Contact last name
    --name <name>              Full display name (alternative to first/last)
    --email <email>            Primary email address
    --phone <phone>            Primary phone number
    --company <company>        Primary company name
    --title <title>            Job title
    --stage <1-5>              Lifecycle stage
    --notes <notes>            Notes about contact

  salesdesk contacts list     List contacts
    --query <text>             Search by name, email, or phone
    --limit <n>                Max results (default: 50)

  salesdesk contacts update [flags] <id>  Update an existing contact
    Note: flags must come before the contact ID

  salesdesk contacts delete <id>  Delete a contact

CASE COMMANDS:
  salesdesk cases list        List open cases
    --contact <id>             List a contact's case history with roles
    --limit <n>                Max results (default: 50)

  salesdesk cases assign-role   Add a role to a contact on a case
    --contact <id>               Contact ID (required)
    --case <id>                  Case ID (required)
    --role <role>                deal_maker, sponsor, champion, decision_maker, influencer, blocker

  salesdesk cases revoke-role   Remove a role from a contact on a case
    (same flags as assign-role)

VIZ COMMANDS:
  salesdesk viz roles [id]    Generate the contact-to-case role network
    --output <file>            Output file (default: stdout)
    [id]                       Optional contact ID to center graph on

EXAMPLES:
  # Log in to the record store
  salesdesk login --url https://store.example.com

  # Start the full-screen console
  salesdesk console

  # Add a contact
  salesdesk contacts add --first-name Ada --last-name Lovelace --email ada@example.com

  # Make Ada the sponsor on a case
  salesdesk cases assign-role --contact <contact-id> --case <case-id> --role sponsor

`, version)
}
