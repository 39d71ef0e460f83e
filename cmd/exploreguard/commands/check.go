package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/exploreguard/exploreguard/internal/permission"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate one action against the merged permissions",
}

var checkBashCmd = &cobra.Command{
	Use:   "bash <command...>",
	Short: "Check a shell command",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(func(cfg *permission.MergedConfig) permission.Decision {
			return permission.ExplainBashCommand(strings.Join(args, " "), cfg)
		})
	},
}

var checkMcpCmd = &cobra.Command{
	Use:   "mcp <tool-name>",
	Short: "Check an MCP tool call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(func(cfg *permission.MergedConfig) permission.Decision {
			return permission.ExplainMcpTool(args[0], cfg)
		})
	},
}

var checkApiCmd = &cobra.Command{
	Use:   "api <method> <path>",
	Short: "Check an outbound API request",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(func(cfg *permission.MergedConfig) permission.Decision {
			return permission.ExplainApiEndpoint(args[0], args[1], cfg)
		})
	},
}

var checkWriteCmd = &cobra.Command{
	Use:   "write <path>",
	Short: "Check a file write",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(func(cfg *permission.MergedConfig) permission.Decision {
			return permission.ExplainWritePath(args[0], cfg)
		})
	},
}

func init() {
	checkCmd.AddCommand(checkBashCmd)
	checkCmd.AddCommand(checkMcpCmd)
	checkCmd.AddCommand(checkApiCmd)
	checkCmd.AddCommand(checkWriteCmd)
}

// runCheck evaluates one decision and prints it. A denial exits with
// status 1 so the command composes in scripts.
func runCheck(decide func(*permission.MergedConfig) permission.Decision) error {
	svc, err := newService(nil)
	if err != nil {
		return err
	}
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}

	cfg := svc.GetMergedConfig(permission.Context{WorkspaceRoot: ws, ActiveSources: sources})
	d := decide(cfg)

	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if !d.Allowed {
		os.Exit(1)
	}
	return nil
}
