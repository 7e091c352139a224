// Package main is the entry point for claude-accounts.
package main

import (
	"os"

	"github.com/Dicklesworthstone/claude_accounts/cmd/claude-accounts/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
