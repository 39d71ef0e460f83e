package permission

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/oklog/ulid/v2"
)

// The decision functions are pure predicates over a MergedConfig: no
// state, no I/O. The dispatch layer calls GetMergedConfig once per
// decision point and then the relevant function here.

// IsApiEndpointAllowed reports whether an outbound API request may be
// made. GET is unconditionally allowed; any other verb needs a matching
// endpoint rule.
func IsApiEndpointAllowed(method, path string, cfg *MergedConfig) bool {
	if strings.EqualFold(method, http.MethodGet) {
		return true
	}
	for _, r := range cfg.ApiEndpoints {
		if strings.EqualFold(r.Method, method) && r.Path.MatchString(path) {
			return true
		}
	}
	return false
}

// IsMcpToolAllowed reports whether an MCP tool call may be made. A
// blocked tool name is denied regardless of any pattern match.
func IsMcpToolAllowed(tool string, cfg *MergedConfig) bool {
	if cfg.BlockedTools[tool] {
		return false
	}
	for _, p := range cfg.McpPatterns {
		if p.Regex.MatchString(tool) {
			return true
		}
	}
	return false
}

// IsBashCommandAllowed reports whether a shell command line may run.
// The line is split into its simple commands; every one of them must
// match an allowed pattern, and none may name a blocked tool or write
// through an output redirection. A command that fails to parse is
// denied.
func IsBashCommandAllowed(command string, cfg *MergedConfig) bool {
	cmds, err := ParseBashCommand(command)
	if err != nil || len(cmds) == 0 {
		return false
	}
	for _, cmd := range cmds {
		if cfg.BlockedTools[cmd.Name] {
			return false
		}
		if cmd.WritesFile {
			return false
		}
		if matchBashPattern(cmd.String(), cfg) == nil {
			return false
		}
	}
	return true
}

// IsWritePathAllowed reports whether a file write may happen. Write
// paths are doublestar globs, not regular expressions.
func IsWritePathAllowed(path string, cfg *MergedConfig) bool {
	candidate := filepath.ToSlash(path)
	for _, glob := range cfg.WritePaths {
		if ok, err := doublestar.Match(glob, candidate); err == nil && ok {
			return true
		}
	}
	return false
}

func matchBashPattern(rendered string, cfg *MergedConfig) *CompiledPattern {
	for i := range cfg.BashPatterns {
		if cfg.BashPatterns[i].Regex.MatchString(rendered) {
			return &cfg.BashPatterns[i]
		}
	}
	return nil
}

// Decision is an explained verdict, suitable for user-facing denial
// messages.
type Decision struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"` // "bash" | "mcp" | "api" | "write"
	Action  string `json:"action"`
	Allowed bool   `json:"allowed"`
	// Rule is the source string of the rule that allowed the action.
	Rule string `json:"rule,omitempty"`
	// Comment is the allowing rule's comment, when it has one.
	Comment string `json:"comment,omitempty"`
	// NearMiss names the closest existing rule when the action was
	// denied, so the user can see which rule almost applied.
	NearMiss string `json:"nearMiss,omitempty"`
	Message  string `json:"message,omitempty"`
}

// DeniedError is returned by dispatch layers that convert a denied
// Decision into an error.
type DeniedError struct {
	Decision Decision
}

func (e *DeniedError) Error() string {
	return e.Decision.Message
}

// IsDeniedError checks whether an error is a policy denial.
func IsDeniedError(err error) bool {
	_, ok := err.(*DeniedError)
	return ok
}

// ExplainBashCommand evaluates a shell command and explains the verdict.
func ExplainBashCommand(command string, cfg *MergedConfig) Decision {
	d := Decision{ID: ulid.Make().String(), Kind: "bash", Action: command}

	cmds, err := ParseBashCommand(command)
	if err != nil {
		d.Message = fmt.Sprintf("Command could not be parsed and is not allowed in %s mode: %v", cfg.ModeName, err)
		return d
	}
	if len(cmds) == 0 {
		d.Message = fmt.Sprintf("Empty command is not allowed in %s mode.", cfg.ModeName)
		return d
	}

	for _, cmd := range cmds {
		if cfg.BlockedTools[cmd.Name] {
			d.Message = fmt.Sprintf("%q is always blocked in %s mode.", cmd.Name, cfg.ModeName)
			return d
		}
		if cmd.WritesFile {
			d.Message = fmt.Sprintf("Command %q redirects output to a file, which is not allowed in %s mode.", cmd.String(), cfg.ModeName)
			return d
		}
		match := matchBashPattern(cmd.String(), cfg)
		if match == nil {
			d.NearMiss = nearestPattern(cmd.String(), cfg.BashPatterns)
			d.Message = denialMessage(fmt.Sprintf("Command %q is not allowed", cmd.String()), d.NearMiss, cfg)
			return d
		}
		// For a multi-command line, the reported rule is the one that
		// matched the first command.
		if d.Rule == "" {
			d.Rule = match.Source
			d.Comment = match.Comment
		}
	}

	d.Allowed = true
	return d
}

// ExplainMcpTool evaluates an MCP tool call and explains the verdict.
func ExplainMcpTool(tool string, cfg *MergedConfig) Decision {
	d := Decision{ID: ulid.Make().String(), Kind: "mcp", Action: tool}

	if cfg.BlockedTools[tool] {
		d.Message = fmt.Sprintf("%q is always blocked in %s mode.", tool, cfg.ModeName)
		return d
	}
	for _, p := range cfg.McpPatterns {
		if p.Regex.MatchString(tool) {
			d.Allowed = true
			d.Rule = p.Source
			d.Comment = p.Comment
			return d
		}
	}

	d.NearMiss = nearestPattern(tool, cfg.McpPatterns)
	d.Message = denialMessage(fmt.Sprintf("MCP tool %q is not allowed", tool), d.NearMiss, cfg)
	return d
}

// ExplainApiEndpoint evaluates an outbound API request and explains the
// verdict.
func ExplainApiEndpoint(method, path string, cfg *MergedConfig) Decision {
	d := Decision{ID: ulid.Make().String(), Kind: "api", Action: method + " " + path}

	if strings.EqualFold(method, http.MethodGet) {
		d.Allowed = true
		d.Rule = "GET"
		return d
	}
	for _, r := range cfg.ApiEndpoints {
		if strings.EqualFold(r.Method, method) && r.Path.MatchString(path) {
			d.Allowed = true
			d.Rule = r.Method + " " + r.Source
			d.Comment = r.Comment
			return d
		}
	}

	d.Message = denialMessage(fmt.Sprintf("%s %s is not allowed", method, path), "", cfg)
	return d
}

// ExplainWritePath evaluates a file write and explains the verdict.
func ExplainWritePath(path string, cfg *MergedConfig) Decision {
	d := Decision{ID: ulid.Make().String(), Kind: "write", Action: path}

	candidate := filepath.ToSlash(path)
	for _, glob := range cfg.WritePaths {
		if ok, err := doublestar.Match(glob, candidate); err == nil && ok {
			d.Allowed = true
			d.Rule = glob
			return d
		}
	}

	d.Message = denialMessage(fmt.Sprintf("Writing %q is not allowed", path), "", cfg)
	return d
}

// nearestPattern returns the pattern source closest to the candidate, so
// a denial can hint at the rule the user probably meant to rely on.
func nearestPattern(candidate string, patterns []CompiledPattern) string {
	best := ""
	bestDist := -1
	for _, p := range patterns {
		dist := levenshtein.ComputeDistance(candidate, p.Source)
		if bestDist < 0 || dist < bestDist {
			best = p.Source
			bestDist = dist
		}
	}
	return best
}

func denialMessage(what, nearMiss string, cfg *MergedConfig) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s in %s mode.", what, cfg.ModeName)
	if nearMiss != "" {
		fmt.Fprintf(&sb, " Closest allowed pattern: %q.", nearMiss)
	}
	fmt.Fprintf(&sb, " Allow it in %s or %s, or leave %s mode (%s).",
		cfg.PermissionPaths.Workspace, cfg.PermissionPaths.Default, cfg.ModeName, cfg.ShortcutHint)
	return sb.String()
}
