// Package authcmder provides the auth command for storing generation API keys.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ragbenchco/ragbench/pkg/cliui"
	"github.com/ragbenchco/ragbench/pkg/credentials"
)

const authLongDesc string = `Store generation API keys.

Keys are stored in credentials.toml in the .ragbench/ directory, in
rotation order: a run starts with the first key and advances down the
list as daily quotas run out. Add every key you have; quota exhaustion
on one key only costs the tasks it was mid-way through.

Examples:
  ragbench auth                  Prompt for a new API key
  ragbench auth --list           List stored keys
  ragbench auth --remove 0       Remove the first stored key
  echo $KEY | ragbench auth      Pipe an API key from stdin`

const authShortDesc string = "Store generation API keys"

func NewAuthCmd() *cobra.Command {
	var listFlag bool
	var removeFlag int

	cmd := &cobra.Command{
		Use:   "auth",
		Short: authShortDesc,
		Long:  authLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			switch {
			case listFlag:
				return runList(configDir)
			case cmd.Flags().Changed("remove"):
				return runRemove(removeFlag, configDir)
			default:
				return runAdd(configDir)
			}
		},
	}

	cmd.Flags().BoolVar(&listFlag, "list", false, "List stored keys")
	cmd.Flags().IntVar(&removeFlag, "remove", -1, "Remove the stored key at the given position")

	return cmd
}

func runAdd(configDir string) error {
	apiKey, err := readAPIKey()
	if err != nil {
		return err
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return errors.New("API key cannot be empty")
	}

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.AddKey(apiKey); err != nil {
		return err
	}

	count, err := mgr.Count()
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s Stored key %s %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(fmt.Sprintf("#%d", count-1)),
		cliui.DimStyle.Render("("+maskKey(apiKey)+")"),
	)

	return nil
}

func runList(configDir string) error {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	keys, err := mgr.Keys()
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		fmt.Printf("\n  %s No stored keys.\n", cliui.DimStyle.Render("●"))
		fmt.Printf("  Use 'ragbench auth' to store a key.\n\n")
		return nil
	}

	fmt.Printf("\n  %s\n\n", cliui.HeaderStyle.Render("Stored keys (rotation order)"))
	for i, key := range keys {
		fmt.Printf("  %s  %s  %s\n",
			cliui.SuccessMark,
			cliui.NameStyle.Render(fmt.Sprintf("#%d", i)),
			cliui.DimStyle.Render(maskKey(key)),
		)
	}
	fmt.Println()

	return nil
}

func runRemove(index int, configDir string) error {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.RemoveKey(index); err != nil {
		return err
	}

	fmt.Printf("\n  %s Removed key %s.\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(fmt.Sprintf("#%d", index)),
	)

	return nil
}

// maskKey keeps enough of a key to recognize it without exposing it.
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}

	return key[:4] + "..." + key[len(key)-4:]
}

// readAPIKey reads an API key from stdin. If stdin is a pipe, it reads the
// first line. Otherwise, it prompts interactively with hidden input.
func readAPIKey() (string, error) {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return "", fmt.Errorf("checking stdin: %w", err)
	}

	// Piped input
	if (fi.Mode() & os.ModeCharDevice) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			return scanner.Text(), nil
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return "", errors.New("no input received on stdin")
	}

	// Interactive terminal
	fmt.Print("Enter API key: ")

	keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println() // newline after hidden input
	if err != nil {
		return "", fmt.Errorf("reading API key: %w", err)
	}

	return string(keyBytes), nil
}
