// ABOUTME: Login CLI command
// ABOUTME: Prompts for record store credentials and persists console configuration
package cli

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"salesdesk/store"
)

// LoginCommand captures the record store URL and API token and writes them to
// the console config. The token is read with echo disabled.
func LoginCommand(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	apiURL := fs.String("url", "", "Record store API URL (prompted when omitted)")
	_ = fs.Parse(args)

	cfg, err := store.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)

	url := *apiURL
	if url == "" {
		prompt := "Record store URL: "
		if cfg.APIURL != "" {
			prompt = fmt.Sprintf("Record store URL [%s]: ", cfg.APIURL)
		}
		fmt.Print(prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read URL: %w", err)
		}
		url = strings.TrimSpace(line)
		if url == "" {
			url = cfg.APIURL
		}
	}
	if url == "" {
		return fmt.Errorf("a record store URL is required")
	}

	// Prompt for token (hidden)
	fmt.Print("API token: ")
	tokenBytes, err := term.ReadPassword(syscall.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	fmt.Println() // New line after hidden input
	token := strings.TrimSpace(string(tokenBytes))
	if token == "" {
		return fmt.Errorf("an API token is required")
	}

	cfg.APIURL = url
	cfg.Token = token
	if cfg.DeviceID == "" {
		cfg.DeviceID = store.GenerateDeviceID()
	}

	if err := store.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("✓ Logged in to %s\n", cfg.APIURL)
	fmt.Printf("  Device ID: %s\n", cfg.DeviceID)
	fmt.Printf("  Config: %s\n", store.ConfigPath())
	return nil
}
