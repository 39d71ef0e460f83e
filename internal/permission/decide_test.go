package permission

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig builds a merged config directly, bypassing the filesystem.
func testConfig() *MergedConfig {
	return &MergedConfig{
		BlockedTools: BlockedTools(),
		BashPatterns: []CompiledPattern{
			{Regex: regexp.MustCompile(`^git (status|log)(\s|$)`), Source: `^git (status|log)(\s|$)`},
			{Regex: regexp.MustCompile(`^ls(\s|$)`), Source: `^ls(\s|$)`},
			{Regex: regexp.MustCompile(`^wc(\s|$)`), Source: `^wc(\s|$)`},
		},
		McpPatterns: []CompiledPattern{
			{Regex: regexp.MustCompile(`^mcp__docs__read_`), Source: `^mcp__docs__read_`, Comment: "docs reads"},
		},
		ApiEndpoints: []CompiledApiEndpointRule{
			{Method: "POST", Path: regexp.MustCompile(`^/v1/search$`), Source: `^/v1/search$`},
		},
		WritePaths:   []string{"scratch/**", "*.md"},
		ModeName:     "Explore",
		ShortcutHint: "shift+tab to switch modes",
		PermissionPaths: PermissionPaths{
			Default:   "/cfg/permissions/default.json",
			Workspace: "/ws/permissions.json",
		},
	}
}

func TestIsApiEndpointAllowed(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name    string
		method  string
		path    string
		allowed bool
	}{
		{"GET always allowed", "GET", "/anything/at/all", true},
		{"get case-insensitive", "get", "/v9/unknown", true},
		{"matching POST rule", "POST", "/v1/search", true},
		{"method mismatch", "DELETE", "/v1/search", false},
		{"path mismatch", "POST", "/v1/search/extra", false},
		{"no rule", "PUT", "/v1/items", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, IsApiEndpointAllowed(tt.method, tt.path, cfg))
		})
	}
}

func TestIsMcpToolAllowed(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name    string
		tool    string
		allowed bool
	}{
		{"matching pattern", "mcp__docs__read_page", true},
		{"no pattern", "mcp__docs__delete_page", false},
		{"other source", "mcp__wiki__read_page", false},
		{"blocked tool wins", "edit", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, IsMcpToolAllowed(tt.tool, cfg))
		})
	}
}

func TestIsBashCommandAllowed(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name    string
		command string
		allowed bool
	}{
		{"simple allowed", "git status", true},
		{"allowed with args", "git log --oneline -5", true},
		{"not allowed", "git push origin main", false},
		{"pipeline all allowed", "git log | wc -l", true},
		{"pipeline one denied", "git log | tee /tmp/out", false},
		{"and-chain one denied", "ls && rm -rf /", false},
		{"blocked tool name", "edit file.go", false},
		{"output redirect denied", "git log > /tmp/out", false},
		{"append redirect denied", "git log >> /tmp/out", false},
		{"stderr onto stdout allowed", "git status 2>&1", true},
		{"unparseable", "git status ((", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, IsBashCommandAllowed(tt.command, cfg))
		})
	}
}

func TestIsWritePathAllowed(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name    string
		path    string
		allowed bool
	}{
		{"glob with doublestar", "scratch/notes/today.txt", true},
		{"top-level markdown", "README.md", true},
		{"nested markdown not covered by *", "docs/README.md", false},
		{"outside allowed globs", "src/main.go", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, IsWritePathAllowed(tt.path, cfg))
		})
	}
}

func TestExplainBashCommand_Allowed(t *testing.T) {
	cfg := testConfig()

	d := ExplainBashCommand("git status", cfg)
	assert.True(t, d.Allowed)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "bash", d.Kind)
	assert.Equal(t, `^git (status|log)(\s|$)`, d.Rule)
}

func TestExplainBashCommand_DeniedWithNearMiss(t *testing.T) {
	cfg := testConfig()

	d := ExplainBashCommand("git stash", cfg)
	require.False(t, d.Allowed)
	assert.NotEmpty(t, d.NearMiss)
	assert.Contains(t, d.Message, "Explore")
	assert.Contains(t, d.Message, cfg.PermissionPaths.Workspace)
	assert.Contains(t, d.Message, cfg.PermissionPaths.Default)
}

func TestBaselineGrantsOnlyReadOnlyCommands(t *testing.T) {
	// The baseline is compiled in and no configuration can narrow it, so
	// nothing it allows may be able to create, modify, or delete.
	svc, ws := newTestService(t)
	cfg := svc.GetMergedConfig(Context{WorkspaceRoot: ws})

	tests := []struct {
		name    string
		command string
		allowed bool
	}{
		{"plain cat", "cat go.mod", true},
		{"cat into file", "cat /etc/passwd > /tmp/leak", false},
		{"find not granted", "find . -name '*.go' -delete", false},
		{"git status", "git status", true},
		{"git branch listing", "git branch", true},
		{"git branch verbose", "git branch -v", true},
		{"git branch delete", "git branch -D main", false},
		{"git branch create", "git branch feature", false},
		{"ls with stderr dup", "ls 2>&1", true},
		{"grep appending to file", "grep foo a.txt >> hits.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, IsBashCommandAllowed(tt.command, cfg))
		})
	}
}

func TestExplainBashCommand_OutputRedirectDenied(t *testing.T) {
	cfg := testConfig()

	d := ExplainBashCommand("git log > /tmp/out", cfg)
	require.False(t, d.Allowed)
	assert.Contains(t, d.Message, "redirects output")
}

func TestExplainBashCommand_MultiCommandReportsFirstRule(t *testing.T) {
	cfg := testConfig()

	d := ExplainBashCommand("git log | wc -l", cfg)
	require.True(t, d.Allowed)
	assert.Equal(t, `^git (status|log)(\s|$)`, d.Rule)
}

func TestExplainBashCommand_BlockedTool(t *testing.T) {
	cfg := testConfig()

	d := ExplainBashCommand("patch -p1", cfg)
	require.False(t, d.Allowed)
	assert.Contains(t, d.Message, "always blocked")
}

func TestExplainMcpTool(t *testing.T) {
	cfg := testConfig()

	allowed := ExplainMcpTool("mcp__docs__read_page", cfg)
	assert.True(t, allowed.Allowed)
	assert.Equal(t, "docs reads", allowed.Comment)

	denied := ExplainMcpTool("mcp__docs__write_page", cfg)
	require.False(t, denied.Allowed)
	assert.Equal(t, `^mcp__docs__read_`, denied.NearMiss)
}

func TestExplainApiEndpoint(t *testing.T) {
	cfg := testConfig()

	get := ExplainApiEndpoint("GET", "/v1/whatever", cfg)
	assert.True(t, get.Allowed)
	assert.Equal(t, "GET", get.Rule)

	post := ExplainApiEndpoint("POST", "/v1/search", cfg)
	assert.True(t, post.Allowed)
	assert.Equal(t, "POST ^/v1/search$", post.Rule)

	denied := ExplainApiEndpoint("DELETE", "/v1/items/3", cfg)
	require.False(t, denied.Allowed)
	assert.Contains(t, denied.Message, "DELETE /v1/items/3")
}

func TestExplainWritePath(t *testing.T) {
	cfg := testConfig()

	allowed := ExplainWritePath("scratch/a/b.txt", cfg)
	assert.True(t, allowed.Allowed)
	assert.Equal(t, "scratch/**", allowed.Rule)

	denied := ExplainWritePath("src/main.go", cfg)
	require.False(t, denied.Allowed)
	assert.Contains(t, denied.Message, `"src/main.go"`)
}

func TestDeniedError(t *testing.T) {
	d := ExplainWritePath("src/main.go", testConfig())
	err := &DeniedError{Decision: d}
	assert.True(t, IsDeniedError(err))
	assert.Equal(t, d.Message, err.Error())
	assert.False(t, IsDeniedError(assert.AnError))
}
