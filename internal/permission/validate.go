package permission

import (
	"regexp"

	"github.com/rs/zerolog/log"
)

// compilePattern compiles one pattern string. The dialect is Go's RE2;
// patterns relying on lookaround or backreferences do not compile and
// are dropped by the caller.
func compilePattern(pattern string) (*regexp.Regexp, bool) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, false
	}
	return re, true
}

// compileEntries compiles a list of pattern entries, dropping any entry
// that fails to compile with a diagnostic naming the field, index, and
// pattern. One bad pattern never blocks the rest of a config from
// loading.
func compileEntries(dst []CompiledPattern, field, scope string, entries []PatternEntry) []CompiledPattern {
	for i, e := range entries {
		re, ok := compilePattern(e.Pattern)
		if !ok {
			log.Warn().Str("scope", scope).Str("field", field).Int("index", i).
				Str("pattern", e.Pattern).
				Msg("invalid pattern skipped")
			continue
		}
		dst = append(dst, CompiledPattern{Regex: re, Source: e.Pattern, Comment: e.Comment})
	}
	return dst
}

// compileEndpointRules compiles API endpoint rules the same way.
func compileEndpointRules(dst []CompiledApiEndpointRule, scope string, rules []ApiEndpointRule) []CompiledApiEndpointRule {
	for i, r := range rules {
		re, ok := compilePattern(r.Path)
		if !ok {
			log.Warn().Str("scope", scope).Str("field", "allowedApiEndpoints").Int("index", i).
				Str("pattern", r.Path).
				Msg("invalid endpoint path pattern skipped")
			continue
		}
		dst = append(dst, CompiledApiEndpointRule{
			Method:  r.Method,
			Path:    re,
			Source:  r.Path,
			Comment: r.Comment,
		})
	}
	return dst
}
