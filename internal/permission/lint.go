package permission

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Issue is one problem found while linting a permissions file.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Index   int    `json:"index"`
	Pattern string `json:"pattern,omitempty"`
	Message string `json:"message"`
}

// LintFile checks a permissions file the way the loader would, but
// reports problems instead of silently degrading. The engine never calls
// this; it exists for the validate command and the permissions UI.
func LintFile(path string) ([]Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data = jsonc.ToJSON(data)

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return []Issue{{Index: -1, Message: fmt.Sprintf("not valid JSON: %v", err)}}, nil
	}
	if err := validatePermissionsJSON(doc); err != nil {
		var issues []Issue
		for _, msg := range schemaIssues(err) {
			issues = append(issues, Issue{Index: -1, Message: "schema violation: " + msg})
		}
		return issues, nil
	}

	var raw rawCustomConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return []Issue{{Index: -1, Message: fmt.Sprintf("decode failed: %v", err)}}, nil
	}

	var issues []Issue
	check := func(field string, entries []PatternEntry) {
		for i, e := range entries {
			if _, ok := compilePattern(e.Pattern); !ok {
				issues = append(issues, Issue{
					Field:   field,
					Index:   i,
					Pattern: e.Pattern,
					Message: "pattern does not compile as a Go (RE2) regular expression",
				})
			}
		}
	}
	check("allowedBashPatterns", raw.AllowedBashPatterns)
	check("allowedMcpPatterns", raw.AllowedMcpPatterns)
	for i, r := range raw.AllowedApiEndpoints {
		if _, ok := compilePattern(r.Path); !ok {
			issues = append(issues, Issue{
				Field:   "allowedApiEndpoints",
				Index:   i,
				Pattern: r.Path,
				Message: "path pattern does not compile as a Go (RE2) regular expression",
			})
		}
	}

	return issues, nil
}
