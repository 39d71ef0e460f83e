package permission

import "regexp"

// blockedTools are destructive file-editing tools that are never allowed
// in Explore mode. This set is the floor of the security model: it is
// compiled in and no permissions file can remove an entry from it.
var blockedTools = map[string]bool{
	"write":         true,
	"edit":          true,
	"multiedit":     true,
	"patch":         true,
	"notebook_edit": true,
}

// baselinePattern is a compiled-in allow-list seed.
type baselinePattern struct {
	pattern string
	comment string
}

// baselineBashPatterns are read-only commands that are always allowed,
// before any configuration file is consulted. Nothing here may be able
// to create, modify, or delete anything: the baseline is compiled in and
// no configuration can narrow it. Commands with destructive modes (find
// -delete, git branch -D) stay out; configuration can add them scoped as
// needed.
var baselineBashPatterns = []baselinePattern{
	{`^ls(\s|$)`, "list directory contents"},
	{`^pwd$`, "print working directory"},
	{`^cat\s`, "read file contents"},
	{`^head(\s|$)`, "read file head"},
	{`^tail(\s|$)`, "read file tail"},
	{`^wc(\s|$)`, "count lines/words"},
	{`^grep\s`, "search file contents"},
	{`^rg\s`, "search file contents"},
	{`^which\s`, "locate a binary"},
	{`^git (status|log|diff|show)(\s|$)`, "read-only git inspection"},
	{`^git branch$`, "list local branches"},
	{`^git branch (-a|-r|-v|-vv|--list)$`, "list branches"},
}

// baselineMcpPatterns are MCP tool-name patterns that are always allowed.
// The baseline defines none; everything comes from configuration.
var baselineMcpPatterns []baselinePattern

// BlockedTools returns a copy of the compiled-in blocked-tool set.
func BlockedTools() map[string]bool {
	out := make(map[string]bool, len(blockedTools))
	for k, v := range blockedTools {
		out[k] = v
	}
	return out
}

// compileBaseline compiles a baseline seed list. Baseline patterns are
// maintained in this file and must always compile.
func compileBaseline(seeds []baselinePattern) []CompiledPattern {
	out := make([]CompiledPattern, 0, len(seeds))
	for _, s := range seeds {
		out = append(out, CompiledPattern{
			Regex:   regexp.MustCompile(s.pattern),
			Source:  s.pattern,
			Comment: s.comment,
		})
	}
	return out
}
