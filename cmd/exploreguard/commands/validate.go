package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/exploreguard/exploreguard/internal/permission"
)

var validateCmd = &cobra.Command{
	Use:   "validate <permissions-file>",
	Short: "Lint a permissions file",
	Long: `validate checks a permissions file the way the engine loads it:
JSON syntax, schema conformance, and that every pattern compiles as a
Go (RE2) regular expression. The engine itself never fails on a broken
file (it loads the scope as empty); this command surfaces the problems
the engine would only log.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		issues, err := permission.LintFile(args[0])
		if err != nil {
			return err
		}
		if len(issues) == 0 {
			fmt.Printf("%s: ok\n", args[0])
			return nil
		}
		for _, issue := range issues {
			if issue.Field == "" {
				fmt.Printf("%s: %s\n", args[0], issue.Message)
				continue
			}
			fmt.Printf("%s: %s[%d] %q: %s\n", args[0], issue.Field, issue.Index, issue.Pattern, issue.Message)
		}
		os.Exit(1)
		return nil
	},
}
