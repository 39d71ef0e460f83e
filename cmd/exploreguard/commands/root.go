// Package commands provides the CLI commands for exploreguard.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/exploreguard/exploreguard/internal/config"
	"github.com/exploreguard/exploreguard/internal/event"
	"github.com/exploreguard/exploreguard/internal/logging"
	"github.com/exploreguard/exploreguard/internal/permission"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	logLevel  string
	prettyLog bool
	workspace string
	sources   []string
)

var rootCmd = &cobra.Command{
	Use:   "exploreguard",
	Short: "exploreguard - permission engine for Explore mode",
	Long: `exploreguard decides whether an action is permitted while an agent
runs in the restricted Explore (read-only) mode. Permissions are merged
from the compiled-in baseline, the app defaults, the workspace, and each
connected source.

Run 'exploreguard check' to evaluate one action, 'exploreguard validate'
to lint a permissions file, or 'exploreguard serve' to expose the engine
over HTTP.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logging.Config{
			Level:  logging.ParseLevel(logLevel),
			Pretty: prettyLog,
		})
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().BoolVar(&prettyLog, "pretty", false, "Human-readable log output")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (defaults to the current directory)")
	rootCmd.PersistentFlags().StringSliceVarP(&sources, "source", "s", nil, "Active source slug (repeatable)")

	rootCmd.SetVersionTemplate(fmt.Sprintf("exploreguard %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// resolveWorkspace returns the workspace root from the flag or the
// current directory.
func resolveWorkspace() (string, error) {
	if workspace != "" {
		return workspace, nil
	}
	return os.Getwd()
}

// newService builds a permission service rooted at the configured scope
// paths, seeding the default permissions file on first run.
func newService(bus *event.Bus) (*permission.Service, error) {
	paths := permission.ScopePaths{ConfigRoot: config.ConfigRoot()}
	if err := paths.SeedDefault(); err != nil {
		return nil, fmt.Errorf("seed default permissions: %w", err)
	}
	var opts []permission.Option
	if bus != nil {
		opts = append(opts, permission.WithBus(bus))
	}
	return permission.NewService(paths, opts...), nil
}
