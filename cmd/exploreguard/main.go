// Package main provides the entry point for the exploreguard CLI.
package main

import (
	"fmt"
	"os"

	"github.com/exploreguard/exploreguard/cmd/exploreguard/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
